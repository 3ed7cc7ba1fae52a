package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// branchResourceTables maps a branch resource kind to its table.
var branchResourceTables = map[scopecat.BranchResourceKind]string{
	scopecat.KindWarehouse:    "warehouses",
	scopecat.KindCashRegister: "cash_registers",
}

// BranchResourceRepository implements scopecat.BranchResourceRepository using
// PostgreSQL. Each resource kind has its own table with an identical shape.
type BranchResourceRepository struct {
	db *DB
}

// NewBranchResourceRepository creates a new BranchResourceRepository.
func NewBranchResourceRepository(db *DB) *BranchResourceRepository {
	return &BranchResourceRepository{db: db}
}

// Create persists a new branch-owned resource.
func (r *BranchResourceRepository) Create(ctx context.Context, res *scopecat.BranchResource) error {
	table, ok := branchResourceTables[res.Kind()]
	if !ok {
		return fmt.Errorf("%w: unknown branch resource kind %q", shared.ErrInvalidInput, res.Kind())
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, branch_id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, table)

	_, err := r.db.ExecContext(ctx, query,
		res.ID().String(),
		res.BranchID().String(),
		res.Name(),
		res.IsActive(),
		res.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s %q: %w", res.Kind(), res.Name(), shared.ErrAlreadyExists)
		}
		if isForeignKeyViolation(err) {
			return scopecat.ErrBranchNotFound
		}
		return fmt.Errorf("failed to create %s: %w", res.Kind(), err)
	}

	return nil
}

// ListByIDs retrieves resources of one kind by their IDs.
func (r *BranchResourceRepository) ListByIDs(ctx context.Context, kind scopecat.BranchResourceKind, ids []shared.ID) ([]*scopecat.BranchResource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	table, ok := branchResourceTables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown branch resource kind %q", shared.ErrInvalidInput, kind)
	}

	query := fmt.Sprintf(`
		SELECT id, branch_id, name, is_active, created_at
		FROM %s
		WHERE id = ANY($1::uuid[])
	`, table)

	return r.list(ctx, kind, query, pq.Array(idStrings(ids)))
}

// ListActiveByBranch lists active resources of one kind under a branch.
func (r *BranchResourceRepository) ListActiveByBranch(ctx context.Context, kind scopecat.BranchResourceKind, branchID shared.ID) ([]*scopecat.BranchResource, error) {
	table, ok := branchResourceTables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown branch resource kind %q", shared.ErrInvalidInput, kind)
	}

	query := fmt.Sprintf(`
		SELECT id, branch_id, name, is_active, created_at
		FROM %s
		WHERE branch_id = $1 AND is_active = TRUE
		ORDER BY name ASC
	`, table)

	return r.list(ctx, kind, query, branchID.String())
}

func (r *BranchResourceRepository) list(ctx context.Context, kind scopecat.BranchResourceKind, query string, args ...interface{}) ([]*scopecat.BranchResource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s rows: %w", kind, err)
	}
	defer rows.Close()

	var resources []*scopecat.BranchResource
	for rows.Next() {
		var (
			idStr, branchIDStr, name string
			isActive                 bool
			createdAt                time.Time
		)
		if err := rows.Scan(&idStr, &branchIDStr, &name, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}
		id, _ := shared.IDFromString(idStr)
		bID, _ := shared.IDFromString(branchIDStr)
		resources = append(resources, scopecat.ReconstituteBranchResource(id, bID, kind, name, isActive, createdAt))
	}

	return resources, rows.Err()
}
