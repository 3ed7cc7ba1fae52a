package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/domain/template"
)

// TemplateRepository implements template.Repository using PostgreSQL.
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// CreateWithItems persists the template and its non-empty item list in one
// transaction.
func (r *TemplateRepository) CreateWithItems(ctx context.Context, t *template.AccessTemplate, items []*template.Item) error {
	if len(items) == 0 {
		return template.ErrNoItems
	}

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO access_templates (id, name, department, role_name, is_active, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			t.ID().String(),
			t.Name(),
			t.Department(),
			t.RoleName(),
			t.IsActive(),
			t.Notes(),
			t.CreatedAt(),
			t.UpdatedAt(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return template.ErrTemplateNameExists
			}
			return fmt.Errorf("failed to create template: %w", err)
		}

		itemQuery := `
			INSERT INTO access_template_items (id, template_id, selection_set_id, position, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, item := range items {
			_, err := tx.ExecContext(ctx, itemQuery,
				item.ID().String(),
				item.TemplateID().String(),
				item.SelectionSetID().String(),
				item.Order(),
				item.Notes(),
				item.CreatedAt(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert template item: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves a template by ID.
func (r *TemplateRepository) GetByID(ctx context.Context, id shared.ID) (*template.AccessTemplate, error) {
	query := `
		SELECT id, name, department, role_name, is_active, notes, created_at, updated_at
		FROM access_templates
		WHERE id = $1
	`

	return r.scanTemplate(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByName retrieves a template by its normalized name.
func (r *TemplateRepository) GetByName(ctx context.Context, name string) (*template.AccessTemplate, error) {
	query := `
		SELECT id, name, department, role_name, is_active, notes, created_at, updated_at
		FROM access_templates
		WHERE name = $1
	`

	return r.scanTemplate(r.db.QueryRowContext(ctx, query, shared.NormalizeName(name)))
}

// ListActive lists active templates ordered by name.
func (r *TemplateRepository) ListActive(ctx context.Context) ([]*template.AccessTemplate, error) {
	query := `
		SELECT id, name, department, role_name, is_active, notes, created_at, updated_at
		FROM access_templates
		WHERE is_active = TRUE
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*template.AccessTemplate
	for rows.Next() {
		var (
			idStr, name, department, roleName, notes string
			isActive                                 bool
			createdAt, updatedAt                     time.Time
		)
		if err := rows.Scan(&idStr, &name, &department, &roleName, &isActive, &notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		templates = append(templates, template.Reconstitute(id, name, department, roleName, isActive, notes, createdAt, updatedAt))
	}

	return templates, rows.Err()
}

// Update persists template changes.
func (r *TemplateRepository) Update(ctx context.Context, t *template.AccessTemplate) error {
	query := `
		UPDATE access_templates
		SET name = $2, department = $3, role_name = $4, is_active = $5, notes = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		t.ID().String(),
		t.Name(),
		t.Department(),
		t.RoleName(),
		t.IsActive(),
		t.Notes(),
		t.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return template.ErrTemplateNameExists
		}
		return fmt.Errorf("failed to update template: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return template.ErrTemplateNotFound
	}

	return nil
}

// Delete removes a template and its items.
func (r *TemplateRepository) Delete(ctx context.Context, id shared.ID) error {
	query := `DELETE FROM access_templates WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return template.ErrTemplateNotFound
	}

	return nil
}

// ListItems lists template items in positional order.
func (r *TemplateRepository) ListItems(ctx context.Context, templateID shared.ID) ([]*template.Item, error) {
	query := `
		SELECT id, template_id, selection_set_id, position, notes, created_at
		FROM access_template_items
		WHERE template_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, templateID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list template items: %w", err)
	}
	defer rows.Close()

	var items []*template.Item
	for rows.Next() {
		var (
			idStr, tmplIDStr, setIDStr, notes string
			position                          int
			createdAt                         time.Time
		)
		if err := rows.Scan(&idStr, &tmplIDStr, &setIDStr, &position, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan template item: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		tmplID, _ := shared.IDFromString(tmplIDStr)
		setID, _ := shared.IDFromString(setIDStr)
		items = append(items, template.ReconstituteItem(id, tmplID, setID, position, notes, createdAt))
	}

	return items, rows.Err()
}

// CountItemsBySelectionSet counts template items wrapping a selection set.
func (r *TemplateRepository) CountItemsBySelectionSet(ctx context.Context, selectionSetID shared.ID) (int64, error) {
	query := `SELECT COUNT(*) FROM access_template_items WHERE selection_set_id = $1`

	var count int64
	err := r.db.QueryRowContext(ctx, query, selectionSetID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count template items: %w", err)
	}

	return count, nil
}

func (r *TemplateRepository) scanTemplate(row *sql.Row) (*template.AccessTemplate, error) {
	var (
		idStr, name, department, roleName, notes string
		isActive                                 bool
		createdAt, updatedAt                     time.Time
	)

	err := row.Scan(&idStr, &name, &department, &roleName, &isActive, &notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, template.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	return template.Reconstitute(id, name, department, roleName, isActive, notes, createdAt, updatedAt), nil
}
