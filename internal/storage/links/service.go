package links

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	chatIDBytes   = 16
	createRetries = 3
)

// Service issues fresh chat ids and records them in a Store.
type Service struct {
	store  Store
	now    func() time.Time
	random io.Reader
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now, random: rand.Reader}
}

func (s *Service) CreateLink(ctx context.Context) (domain.Link, error) {
	for range createRetries {
		id, err := s.newChatID()
		if err != nil {
			return domain.Link{}, err
		}
		link := domain.Link{ChatID: id, CreatedAt: s.now().UTC().Truncate(time.Millisecond)}
		err = s.store.Create(ctx, link)
		if errors.Is(err, ErrExists) {
			log.Warn().Str("module", "links").Msg("chat id collision, retrying")
			continue
		}
		if err != nil {
			return domain.Link{}, fmt.Errorf("create link: %w", err)
		}
		log.Info().Str("module", "links").Str("chat", string(id)).Msg("link created")
		return link, nil
	}
	return domain.Link{}, fmt.Errorf("create link: %w", ErrExists)
}

func (s *Service) GetLink(ctx context.Context, chatID domain.ChatID) (domain.Link, error) {
	return s.store.Get(ctx, chatID)
}

func (s *Service) newChatID() (domain.ChatID, error) {
	buf := make([]byte, chatIDBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return domain.ChatID(hex.EncodeToString(buf)), nil
}
