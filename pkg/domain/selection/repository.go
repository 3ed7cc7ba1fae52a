package selection

import (
	"context"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Repository persists selection sets and their global value rows.
type Repository interface {
	Create(ctx context.Context, s *SelectionSet) error
	GetByID(ctx context.Context, id shared.ID) (*SelectionSet, error)
	UpdateNotes(ctx context.Context, s *SelectionSet) error
	Delete(ctx context.Context, id shared.ID) error

	// GetSnapshot reads the entire child relation graph in one consistent
	// view.
	GetSnapshot(ctx context.Context, id shared.ID) (*Snapshot, error)

	// CreateWithSnapshot creates the set and all child rows in a single
	// transaction; on any failure nothing is persisted.
	CreateWithSnapshot(ctx context.Context, s *SelectionSet, snap *Snapshot) error

	// ReplaceGlobals deletes and re-inserts the three global child tables in
	// one transaction. Callers pass already validated, meaningful rows.
	ReplaceGlobals(ctx context.Context, id shared.ID, actions []*ActionValue, matrix []*MatrixGrant, payments []*PaymentGrant) error

	// InsertMissingGlobals creates default rows for catalog entries not yet
	// linked, with conflict-ignoring inserts. Existing rows are never touched.
	InsertMissingGlobals(ctx context.Context, id shared.ID, actions []*ActionValue, matrix []*MatrixGrant, payments []*PaymentGrant) error

	ListActionValues(ctx context.Context, id shared.ID) ([]*ActionValue, error)
	ListMatrixGrants(ctx context.Context, id shared.ID) ([]*MatrixGrant, error)
	ListPaymentGrants(ctx context.Context, id shared.ID) ([]*PaymentGrant, error)
}

// LinkRepository is the typed contract for one selection-set link table.
// Every child relation (modules, levels, sublevels, warehouses, cash
// registers, control panels, sellers) gets its own implementation so the
// compiler, not a string lookup, ties a sync call to a concrete table.
type LinkRepository interface {
	// ListCatalogIDs returns the catalog ids currently linked to the set.
	ListCatalogIDs(ctx context.Context, setID shared.ID) ([]shared.ID, error)
	// DeleteExcept removes every link whose catalog id is not in keep, as a
	// single set-based delete.
	DeleteExcept(ctx context.Context, setID shared.ID, keep []shared.ID) error
	// InsertMissing links the given catalog ids, ignoring conflicts on the
	// (set, catalog) uniqueness pair, as a single bulk insert.
	InsertMissing(ctx context.Context, setID shared.ID, ids []shared.ID) error
}

// ReferenceCounter reports how many aggregate items (request items, template
// items) reference a selection set. Every deletion path consults it.
type ReferenceCounter interface {
	CountReferences(ctx context.Context, setID shared.ID) (int64, error)
}
