//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
package links

import (
	"context"
	"errors"

	"github.com/E1Shivank/whispr/internal/domain"
)

var (
	ErrNotFound = errors.New("link not found")
	ErrExists   = errors.New("link already exists")
)

// Store keeps link records. Records are immutable: there is no update.
type Store interface {
	Create(ctx context.Context, link domain.Link) error
	Get(ctx context.Context, chatID domain.ChatID) (domain.Link, error)
	Close() error
}
