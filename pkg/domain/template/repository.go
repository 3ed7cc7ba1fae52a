package template

import (
	"context"
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Template errors.
var (
	ErrTemplateNotFound   = fmt.Errorf("access template %w", shared.ErrNotFound)
	ErrTemplateNameExists = fmt.Errorf("template name %w", shared.ErrAlreadyExists)

	// ErrNoItems marks an attempt to persist a template without items.
	ErrNoItems = fmt.Errorf("%w: a template must own at least one item", shared.ErrValidation)
)

// Repository persists templates and their items.
type Repository interface {
	// CreateWithItems persists the template and its non-empty item list in
	// one transaction.
	CreateWithItems(ctx context.Context, t *AccessTemplate, items []*Item) error
	GetByID(ctx context.Context, id shared.ID) (*AccessTemplate, error)
	GetByName(ctx context.Context, name string) (*AccessTemplate, error)
	ListActive(ctx context.Context) ([]*AccessTemplate, error)
	Update(ctx context.Context, t *AccessTemplate) error
	Delete(ctx context.Context, id shared.ID) error

	ListItems(ctx context.Context, templateID shared.ID) ([]*Item, error)

	// CountItemsBySelectionSet backs the shared reference counter.
	CountItemsBySelectionSet(ctx context.Context, selectionSetID shared.ID) (int64, error)
}
