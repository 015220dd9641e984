// Package memstore keeps link records in process memory. Records are lost on restart.
package memstore

import (
	"context"
	"sync"

	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/E1Shivank/whispr/internal/storage/links"
)

type Store struct {
	mu    sync.RWMutex
	links map[domain.ChatID]domain.Link
}

func New() *Store {
	return &Store{links: make(map[domain.ChatID]domain.Link)}
}

func (s *Store) Create(ctx context.Context, link domain.Link) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[link.ChatID]; ok {
		return links.ErrExists
	}
	s.links[link.ChatID] = link
	return nil
}

func (s *Store) Get(ctx context.Context, chatID domain.ChatID) (domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return domain.Link{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[chatID]
	if !ok {
		return domain.Link{}, links.ErrNotFound
	}
	return link, nil
}

func (s *Store) Close() error { return nil }

var _ links.Store = (*Store)(nil)
