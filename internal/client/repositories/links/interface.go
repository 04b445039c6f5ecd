package links

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/sealnote/internal/client/models"
)

var ErrNotFound = errors.New("link not found")

// Repository stores the local link history.
type Repository interface {
	// Insert adds a new link.
	Insert(ctx context.Context, l *models.Link) error

	// List returns every link, newest first, deleted ones included.
	List(ctx context.Context) ([]models.Link, error)

	// GetByCode returns the newest link for a code.
	GetByCode(ctx context.Context, code string) (*models.Link, error)

	// MarkDeleted flags every row of code as deleted and reports how many
	// rows changed. Unknown codes are not an error.
	MarkDeleted(ctx context.Context, code string) (int64, error)

	// Prune removes rows that are deleted or expired at now.
	Prune(ctx context.Context, now time.Time) (int64, error)
}
