package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// companyResourceTables maps a company resource kind to its table.
var companyResourceTables = map[scopecat.CompanyResourceKind]string{
	scopecat.KindControlPanel: "control_panels",
	scopecat.KindSeller:       "sellers",
}

// CompanyResourceRepository implements scopecat.CompanyResourceRepository
// using PostgreSQL.
type CompanyResourceRepository struct {
	db *DB
}

// NewCompanyResourceRepository creates a new CompanyResourceRepository.
func NewCompanyResourceRepository(db *DB) *CompanyResourceRepository {
	return &CompanyResourceRepository{db: db}
}

// Create persists a new company-owned resource.
func (r *CompanyResourceRepository) Create(ctx context.Context, res *scopecat.CompanyResource) error {
	table, ok := companyResourceTables[res.Kind()]
	if !ok {
		return fmt.Errorf("%w: unknown company resource kind %q", shared.ErrInvalidInput, res.Kind())
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, company_id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, table)

	_, err := r.db.ExecContext(ctx, query,
		res.ID().String(),
		res.CompanyID().String(),
		res.Name(),
		res.IsActive(),
		res.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s %q: %w", res.Kind(), res.Name(), shared.ErrAlreadyExists)
		}
		if isForeignKeyViolation(err) {
			return scopecat.ErrCompanyNotFound
		}
		return fmt.Errorf("failed to create %s: %w", res.Kind(), err)
	}

	return nil
}

// ListByIDs retrieves resources of one kind by their IDs.
func (r *CompanyResourceRepository) ListByIDs(ctx context.Context, kind scopecat.CompanyResourceKind, ids []shared.ID) ([]*scopecat.CompanyResource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	table, ok := companyResourceTables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown company resource kind %q", shared.ErrInvalidInput, kind)
	}

	query := fmt.Sprintf(`
		SELECT id, company_id, name, is_active, created_at
		FROM %s
		WHERE id = ANY($1::uuid[])
	`, table)

	return r.list(ctx, kind, query, pq.Array(idStrings(ids)))
}

// ListActiveByCompany lists active resources of one kind under a company.
func (r *CompanyResourceRepository) ListActiveByCompany(ctx context.Context, kind scopecat.CompanyResourceKind, companyID shared.ID) ([]*scopecat.CompanyResource, error) {
	table, ok := companyResourceTables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown company resource kind %q", shared.ErrInvalidInput, kind)
	}

	query := fmt.Sprintf(`
		SELECT id, company_id, name, is_active, created_at
		FROM %s
		WHERE company_id = $1 AND is_active = TRUE
		ORDER BY name ASC
	`, table)

	return r.list(ctx, kind, query, companyID.String())
}

func (r *CompanyResourceRepository) list(ctx context.Context, kind scopecat.CompanyResourceKind, query string, args ...interface{}) ([]*scopecat.CompanyResource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s rows: %w", kind, err)
	}
	defer rows.Close()

	var resources []*scopecat.CompanyResource
	for rows.Next() {
		var (
			idStr, companyIDStr, name string
			isActive                  bool
			createdAt                 time.Time
		)
		if err := rows.Scan(&idStr, &companyIDStr, &name, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}
		id, _ := shared.IDFromString(idStr)
		cID, _ := shared.IDFromString(companyIDStr)
		resources = append(resources, scopecat.ReconstituteCompanyResource(id, cID, kind, name, isActive, createdAt))
	}

	return resources, rows.Err()
}
