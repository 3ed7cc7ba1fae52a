package request

import (
	"context"
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Request errors.
var (
	ErrRequestNotFound = fmt.Errorf("access request %w", shared.ErrNotFound)

	// ErrNoItems marks an attempt to persist a request without items. A
	// request always owns a non-empty ordered item list.
	ErrNoItems = fmt.Errorf("%w: a request must own at least one item", shared.ErrValidation)

	// ErrDuplicateSelectionSet marks an item wrapping a selection set the
	// request already references.
	ErrDuplicateSelectionSet = fmt.Errorf("%w: selection set already attached to this request", shared.ErrConflict)
)

// Repository persists access requests and their items.
type Repository interface {
	// CreateWithItems persists the request and its non-empty item list in
	// one transaction.
	CreateWithItems(ctx context.Context, r *AccessRequest, items []*Item) error
	GetByID(ctx context.Context, id shared.ID) (*AccessRequest, error)
	Update(ctx context.Context, r *AccessRequest) error
	Delete(ctx context.Context, id shared.ID) error

	ListItems(ctx context.Context, requestID shared.ID) ([]*Item, error)
	AddItem(ctx context.Context, item *Item) error
	RemoveItem(ctx context.Context, id shared.ID) error

	// CountItemsBySelectionSet backs the shared reference counter.
	CountItemsBySelectionSet(ctx context.Context, selectionSetID shared.ID) (int64, error)
}
