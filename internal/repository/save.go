package repository

import (
	"context"
	"fmt"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/save"
)

var ErrSaveNotFound = fmt.Errorf("save not found: %w", apperror.ErrNotFound)

// SaveRepository stores save payloads. Locations are opaque to callers and
// only meaningful to the repository that issued them.
type SaveRepository interface {
	Create(ctx context.Context, payload *save.Payload) (save.Entry, error)
	Read(ctx context.Context, location string) (*save.Payload, error)
	Write(ctx context.Context, location string, payload *save.Payload) error
	List(ctx context.Context) ([]save.Entry, error)
}
