// Package badgerstore persists link records in BadgerDB.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/E1Shivank/whispr/internal/storage/links"
)

const keyPrefix = "link:"

type Store struct {
	db *badger.DB
}

// Open opens (or creates) a badger directory at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func key(chatID domain.ChatID) []byte {
	return []byte(keyPrefix + string(chatID))
}

// Create stores the record under "link:{chatId}". An existing key is never overwritten.
func (s *Store) Create(ctx context.Context, link domain.Link) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(link.ChatID))
		switch {
		case err == nil:
			return links.ErrExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key(link.ChatID), value)
	})
}

func (s *Store) Get(ctx context.Context, chatID domain.ChatID) (domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return domain.Link{}, err
	}
	var link domain.Link
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(chatID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return links.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &link)
		})
	})
	if err != nil {
		return domain.Link{}, err
	}
	return link, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ links.Store = (*Store)(nil)
