package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// GlobalCatalogRepository implements globalcat.Repository using PostgreSQL.
type GlobalCatalogRepository struct {
	db *DB
}

// NewGlobalCatalogRepository creates a new GlobalCatalogRepository.
func NewGlobalCatalogRepository(db *DB) *GlobalCatalogRepository {
	return &GlobalCatalogRepository{db: db}
}

// CreateActionPermission persists a new action permission.
func (r *GlobalCatalogRepository) CreateActionPermission(ctx context.Context, p *globalcat.ActionPermission) error {
	query := `
		INSERT INTO action_permissions (id, perm_group, action, value_kind, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID().String(),
		p.Group(),
		p.Action(),
		p.ValueKind().String(),
		p.IsActive(),
		p.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("action permission %s/%s: %w", p.Group(), p.Action(), shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create action permission: %w", err)
	}

	return nil
}

// CreateMatrixPermission persists a new matrix permission.
func (r *GlobalCatalogRepository) CreateMatrixPermission(ctx context.Context, p *globalcat.MatrixPermission) error {
	query := `
		INSERT INTO matrix_permissions (
			id, name, can_create, can_update, can_authorize,
			can_close, can_cancel, can_update_validity, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	f := p.Flags()
	_, err := r.db.ExecContext(ctx, query,
		p.ID().String(),
		p.Name(),
		f.CanCreate,
		f.CanUpdate,
		f.CanAuthorize,
		f.CanClose,
		f.CanCancel,
		f.CanUpdateValidity,
		p.IsActive(),
		p.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("matrix permission %q: %w", p.Name(), shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create matrix permission: %w", err)
	}

	return nil
}

// CreatePaymentMethod persists a new payment method.
func (r *GlobalCatalogRepository) CreatePaymentMethod(ctx context.Context, p *globalcat.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, p.ID().String(), p.Name(), p.IsActive(), p.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("payment method %q: %w", p.Name(), shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create payment method: %w", err)
	}

	return nil
}

// ListActiveActionPermissions lists active action permissions ordered by group and action.
func (r *GlobalCatalogRepository) ListActiveActionPermissions(ctx context.Context) ([]*globalcat.ActionPermission, error) {
	query := `
		SELECT id, perm_group, action, value_kind, is_active, created_at
		FROM action_permissions
		WHERE is_active = TRUE
		ORDER BY perm_group ASC, action ASC
	`

	return r.listActionPermissions(ctx, query)
}

// ListActionPermissionsByIDs retrieves action permissions by their IDs.
func (r *GlobalCatalogRepository) ListActionPermissionsByIDs(ctx context.Context, ids []shared.ID) ([]*globalcat.ActionPermission, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, perm_group, action, value_kind, is_active, created_at
		FROM action_permissions
		WHERE id = ANY($1::uuid[])
	`

	return r.listActionPermissions(ctx, query, pq.Array(idStrings(ids)))
}

// ListActiveMatrixPermissions lists active matrix permissions ordered by name.
func (r *GlobalCatalogRepository) ListActiveMatrixPermissions(ctx context.Context) ([]*globalcat.MatrixPermission, error) {
	query := `
		SELECT id, name, can_create, can_update, can_authorize,
		       can_close, can_cancel, can_update_validity, is_active, created_at
		FROM matrix_permissions
		WHERE is_active = TRUE
		ORDER BY name ASC
	`

	return r.listMatrixPermissions(ctx, query)
}

// ListMatrixPermissionsByIDs retrieves matrix permissions by their IDs.
func (r *GlobalCatalogRepository) ListMatrixPermissionsByIDs(ctx context.Context, ids []shared.ID) ([]*globalcat.MatrixPermission, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, can_create, can_update, can_authorize,
		       can_close, can_cancel, can_update_validity, is_active, created_at
		FROM matrix_permissions
		WHERE id = ANY($1::uuid[])
	`

	return r.listMatrixPermissions(ctx, query, pq.Array(idStrings(ids)))
}

// ListActivePaymentMethods lists active payment methods ordered by name.
func (r *GlobalCatalogRepository) ListActivePaymentMethods(ctx context.Context) ([]*globalcat.PaymentMethod, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM payment_methods
		WHERE is_active = TRUE
		ORDER BY name ASC
	`

	return r.listPaymentMethods(ctx, query)
}

// ListPaymentMethodsByIDs retrieves payment methods by their IDs.
func (r *GlobalCatalogRepository) ListPaymentMethodsByIDs(ctx context.Context, ids []shared.ID) ([]*globalcat.PaymentMethod, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, is_active, created_at
		FROM payment_methods
		WHERE id = ANY($1::uuid[])
	`

	return r.listPaymentMethods(ctx, query, pq.Array(idStrings(ids)))
}

func (r *GlobalCatalogRepository) listActionPermissions(ctx context.Context, query string, args ...interface{}) ([]*globalcat.ActionPermission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list action permissions: %w", err)
	}
	defer rows.Close()

	var perms []*globalcat.ActionPermission
	for rows.Next() {
		var (
			idStr, group, action, kindStr string
			isActive                      bool
			createdAt                     time.Time
		)
		if err := rows.Scan(&idStr, &group, &action, &kindStr, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan action permission: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		perms = append(perms, globalcat.ReconstituteActionPermission(
			id, group, action, globalcat.ValueKind(kindStr), isActive, createdAt))
	}

	return perms, rows.Err()
}

func (r *GlobalCatalogRepository) listMatrixPermissions(ctx context.Context, query string, args ...interface{}) ([]*globalcat.MatrixPermission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matrix permissions: %w", err)
	}
	defer rows.Close()

	var perms []*globalcat.MatrixPermission
	for rows.Next() {
		var (
			idStr, name string
			flags       globalcat.MatrixFlags
			isActive    bool
			createdAt   time.Time
		)
		if err := rows.Scan(
			&idStr, &name,
			&flags.CanCreate, &flags.CanUpdate, &flags.CanAuthorize,
			&flags.CanClose, &flags.CanCancel, &flags.CanUpdateValidity,
			&isActive, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan matrix permission: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		perms = append(perms, globalcat.ReconstituteMatrixPermission(id, name, flags, isActive, createdAt))
	}

	return perms, rows.Err()
}

func (r *GlobalCatalogRepository) listPaymentMethods(ctx context.Context, query string, args ...interface{}) ([]*globalcat.PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []*globalcat.PaymentMethod
	for rows.Next() {
		var (
			idStr, name string
			isActive    bool
			createdAt   time.Time
		)
		if err := rows.Scan(&idStr, &name, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		methods = append(methods, globalcat.ReconstitutePaymentMethod(id, name, isActive, createdAt))
	}

	return methods, rows.Err()
}
