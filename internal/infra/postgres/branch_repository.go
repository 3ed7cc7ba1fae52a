package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// BranchRepository implements scopecat.BranchRepository using PostgreSQL.
type BranchRepository struct {
	db *DB
}

// NewBranchRepository creates a new BranchRepository.
func NewBranchRepository(db *DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// Create persists a new branch.
func (r *BranchRepository) Create(ctx context.Context, b *scopecat.Branch) error {
	query := `
		INSERT INTO branches (id, company_id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID().String(),
		b.CompanyID().String(),
		b.Name(),
		b.IsActive(),
		b.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("branch %q: %w", b.Name(), shared.ErrAlreadyExists)
		}
		if isForeignKeyViolation(err) {
			return scopecat.ErrCompanyNotFound
		}
		return fmt.Errorf("failed to create branch: %w", err)
	}

	return nil
}

// GetByID retrieves a branch by ID.
func (r *BranchRepository) GetByID(ctx context.Context, id shared.ID) (*scopecat.Branch, error) {
	query := `
		SELECT id, company_id, name, is_active, created_at
		FROM branches
		WHERE id = $1
	`

	return r.scanBranch(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByName retrieves a branch by company and normalized name.
func (r *BranchRepository) GetByName(ctx context.Context, companyID shared.ID, name string) (*scopecat.Branch, error) {
	query := `
		SELECT id, company_id, name, is_active, created_at
		FROM branches
		WHERE company_id = $1 AND name = $2
	`

	return r.scanBranch(r.db.QueryRowContext(ctx, query, companyID.String(), shared.NormalizeName(name)))
}

// ListActiveByCompany lists active branches of a company ordered by name.
func (r *BranchRepository) ListActiveByCompany(ctx context.Context, companyID shared.ID) ([]*scopecat.Branch, error) {
	query := `
		SELECT id, company_id, name, is_active, created_at
		FROM branches
		WHERE company_id = $1 AND is_active = TRUE
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, companyID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branches []*scopecat.Branch
	for rows.Next() {
		var (
			idStr, companyIDStr, name string
			isActive                  bool
			createdAt                 time.Time
		)
		if err := rows.Scan(&idStr, &companyIDStr, &name, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		cID, _ := shared.IDFromString(companyIDStr)
		branches = append(branches, scopecat.ReconstituteBranch(id, cID, name, isActive, createdAt))
	}

	return branches, rows.Err()
}

func (r *BranchRepository) scanBranch(row *sql.Row) (*scopecat.Branch, error) {
	var (
		idStr, companyIDStr, name string
		isActive                  bool
		createdAt                 time.Time
	)

	err := row.Scan(&idStr, &companyIDStr, &name, &isActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scopecat.ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to scan branch: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	cID, _ := shared.IDFromString(companyIDStr)
	return scopecat.ReconstituteBranch(id, cID, name, isActive, createdAt), nil
}
