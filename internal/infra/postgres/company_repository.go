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

// CompanyRepository implements scopecat.CompanyRepository using PostgreSQL.
type CompanyRepository struct {
	db *DB
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(db *DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create persists a new company.
func (r *CompanyRepository) Create(ctx context.Context, c *scopecat.Company) error {
	query := `
		INSERT INTO companies (id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID().String(),
		c.Name(),
		c.IsActive(),
		c.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("company %q: %w", c.Name(), shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create company: %w", err)
	}

	return nil
}

// GetByID retrieves a company by ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id shared.ID) (*scopecat.Company, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM companies
		WHERE id = $1
	`

	return r.scanCompany(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByName retrieves a company by its normalized name.
func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*scopecat.Company, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM companies
		WHERE name = $1
	`

	return r.scanCompany(r.db.QueryRowContext(ctx, query, shared.NormalizeName(name)))
}

// ListActive lists active companies ordered by name.
func (r *CompanyRepository) ListActive(ctx context.Context) ([]*scopecat.Company, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM companies
		WHERE is_active = TRUE
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []*scopecat.Company
	for rows.Next() {
		var (
			idStr, name string
			isActive    bool
			createdAt   time.Time
		)
		if err := rows.Scan(&idStr, &name, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		companies = append(companies, scopecat.ReconstituteCompany(id, name, isActive, createdAt))
	}

	return companies, rows.Err()
}

func (r *CompanyRepository) scanCompany(row *sql.Row) (*scopecat.Company, error) {
	var (
		idStr, name string
		isActive    bool
		createdAt   time.Time
	)

	err := row.Scan(&idStr, &name, &isActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scopecat.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	return scopecat.ReconstituteCompany(id, name, isActive, createdAt), nil
}
