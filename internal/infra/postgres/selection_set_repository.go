package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// SelectionSetRepository implements selection.Repository using PostgreSQL.
type SelectionSetRepository struct {
	db *DB
}

// NewSelectionSetRepository creates a new SelectionSetRepository.
func NewSelectionSetRepository(db *DB) *SelectionSetRepository {
	return &SelectionSetRepository{db: db}
}

// Create persists a new selection set without children.
func (r *SelectionSetRepository) Create(ctx context.Context, s *selection.SelectionSet) error {
	query := `
		INSERT INTO selection_sets (id, company_id, branch_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID().String(),
		s.CompanyID().String(),
		nullID(s.BranchID()),
		s.Notes(),
		s.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create selection set: %w", err)
	}

	return nil
}

// GetByID retrieves a selection set by ID.
func (r *SelectionSetRepository) GetByID(ctx context.Context, id shared.ID) (*selection.SelectionSet, error) {
	query := `
		SELECT id, company_id, branch_id, notes, created_at
		FROM selection_sets
		WHERE id = $1
	`

	var (
		idStr, companyIDStr string
		branchIDStr         sql.NullString
		notes               string
		createdAt           time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).
		Scan(&idStr, &companyIDStr, &branchIDStr, &notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, selection.ErrSelectionSetNotFound
		}
		return nil, fmt.Errorf("failed to scan selection set: %w", err)
	}

	setID, _ := shared.IDFromString(idStr)
	companyID, _ := shared.IDFromString(companyIDStr)
	return selection.Reconstitute(setID, companyID, parseNullID(branchIDStr), notes, createdAt), nil
}

// UpdateNotes persists changed notes.
func (r *SelectionSetRepository) UpdateNotes(ctx context.Context, s *selection.SelectionSet) error {
	query := `UPDATE selection_sets SET notes = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, s.ID().String(), s.Notes())
	if err != nil {
		return fmt.Errorf("failed to update selection set: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return selection.ErrSelectionSetNotFound
	}

	return nil
}

// Delete removes a selection set. Child rows are removed by cascading
// foreign keys.
func (r *SelectionSetRepository) Delete(ctx context.Context, id shared.ID) error {
	query := `DELETE FROM selection_sets WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		if isForeignKeyViolation(err) {
			return selection.ErrSelectionSetInUse
		}
		return fmt.Errorf("failed to delete selection set: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return selection.ErrSelectionSetNotFound
	}

	return nil
}

// GetSnapshot reads the entire child relation graph of a selection set.
func (r *SelectionSetRepository) GetSnapshot(ctx context.Context, id shared.ID) (*selection.Snapshot, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	snap := &selection.Snapshot{}

	links := []struct {
		table  string
		column string
		dest   *[]shared.ID
	}{
		{"selection_set_modules", "module_id", &snap.ModuleIDs},
		{"selection_set_levels", "level_id", &snap.LevelIDs},
		{"selection_set_sublevels", "sublevel_id", &snap.SublevelIDs},
		{"selection_set_warehouses", "warehouse_id", &snap.WarehouseIDs},
		{"selection_set_cash_registers", "cash_register_id", &snap.CashRegisterIDs},
		{"selection_set_control_panels", "control_panel_id", &snap.ControlPanelIDs},
		{"selection_set_sellers", "seller_id", &snap.SellerIDs},
	}

	for _, l := range links {
		ids, err := r.listLinkIDs(ctx, l.table, l.column, id)
		if err != nil {
			return nil, err
		}
		*l.dest = ids
	}

	actions, err := r.ListActionValues(ctx, id)
	if err != nil {
		return nil, err
	}
	matrix, err := r.ListMatrixGrants(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := r.ListPaymentGrants(ctx, id)
	if err != nil {
		return nil, err
	}

	snap.ActionValues = actions
	snap.MatrixGrants = matrix
	snap.PaymentGrants = payments
	return snap, nil
}

// CreateWithSnapshot creates the set and all child rows in one transaction.
func (r *SelectionSetRepository) CreateWithSnapshot(ctx context.Context, s *selection.SelectionSet, snap *selection.Snapshot) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO selection_sets (id, company_id, branch_id, notes, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`,
			s.ID().String(),
			s.CompanyID().String(),
			nullID(s.BranchID()),
			s.Notes(),
			s.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to create selection set: %w", err)
		}

		links := []struct {
			table  string
			column string
			ids    []shared.ID
		}{
			{"selection_set_modules", "module_id", snap.ModuleIDs},
			{"selection_set_levels", "level_id", snap.LevelIDs},
			{"selection_set_sublevels", "sublevel_id", snap.SublevelIDs},
			{"selection_set_warehouses", "warehouse_id", snap.WarehouseIDs},
			{"selection_set_cash_registers", "cash_register_id", snap.CashRegisterIDs},
			{"selection_set_control_panels", "control_panel_id", snap.ControlPanelIDs},
			{"selection_set_sellers", "seller_id", snap.SellerIDs},
		}
		for _, l := range links {
			if err := insertLinksTx(ctx, tx, l.table, l.column, s.ID(), l.ids); err != nil {
				return err
			}
		}

		return insertGlobalsTx(ctx, tx, snap.ActionValues, snap.MatrixGrants, snap.PaymentGrants, false)
	})
}

// ReplaceGlobals deletes and re-inserts the three global child tables in one
// transaction.
func (r *SelectionSetRepository) ReplaceGlobals(ctx context.Context, id shared.ID, actions []*selection.ActionValue, matrix []*selection.MatrixGrant, payments []*selection.PaymentGrant) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{
			"selection_action_values",
			"selection_matrix_grants",
			"selection_payment_grants",
		} {
			query := fmt.Sprintf("DELETE FROM %s WHERE selection_set_id = $1", table)
			if _, err := tx.ExecContext(ctx, query, id.String()); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		return insertGlobalsTx(ctx, tx, actions, matrix, payments, false)
	})
}

// InsertMissingGlobals creates default rows for catalog entries not yet
// linked. Existing rows are never touched.
func (r *SelectionSetRepository) InsertMissingGlobals(ctx context.Context, id shared.ID, actions []*selection.ActionValue, matrix []*selection.MatrixGrant, payments []*selection.PaymentGrant) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		return insertGlobalsTx(ctx, tx, actions, matrix, payments, true)
	})
}

// ListActionValues lists the action value rows of a selection set.
func (r *SelectionSetRepository) ListActionValues(ctx context.Context, id shared.ID) ([]*selection.ActionValue, error) {
	query := `
		SELECT selection_set_id, permission_id, value_kind,
		       bool_value, int_value, decimal_value, text_value
		FROM selection_action_values
		WHERE selection_set_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list action values: %w", err)
	}
	defer rows.Close()

	var values []*selection.ActionValue
	for rows.Next() {
		var (
			setIDStr, permIDStr, kindStr string
			boolVal                      sql.NullBool
			intVal                       sql.NullInt64
			decimalVal                   sql.NullFloat64
			textVal                      sql.NullString
		)
		if err := rows.Scan(&setIDStr, &permIDStr, &kindStr, &boolVal, &intVal, &decimalVal, &textVal); err != nil {
			return nil, fmt.Errorf("failed to scan action value: %w", err)
		}

		setID, _ := shared.IDFromString(setIDStr)
		permID, _ := shared.IDFromString(permIDStr)

		var v selection.TypedValue
		if boolVal.Valid {
			v.Bool = &boolVal.Bool
		}
		if intVal.Valid {
			v.Int = &intVal.Int64
		}
		if decimalVal.Valid {
			v.Decimal = &decimalVal.Float64
		}
		if textVal.Valid {
			v.Text = &textVal.String
		}

		values = append(values, selection.ReconstituteActionValue(setID, permID, globalcat.ValueKind(kindStr), v))
	}

	return values, rows.Err()
}

// ListMatrixGrants lists the matrix grant rows of a selection set.
func (r *SelectionSetRepository) ListMatrixGrants(ctx context.Context, id shared.ID) ([]*selection.MatrixGrant, error) {
	query := `
		SELECT selection_set_id, permission_id, can_create, can_update, can_authorize,
		       can_close, can_cancel, can_update_validity
		FROM selection_matrix_grants
		WHERE selection_set_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list matrix grants: %w", err)
	}
	defer rows.Close()

	var grants []*selection.MatrixGrant
	for rows.Next() {
		var (
			setIDStr, permIDStr string
			flags               globalcat.MatrixFlags
		)
		if err := rows.Scan(
			&setIDStr, &permIDStr,
			&flags.CanCreate, &flags.CanUpdate, &flags.CanAuthorize,
			&flags.CanClose, &flags.CanCancel, &flags.CanUpdateValidity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan matrix grant: %w", err)
		}

		setID, _ := shared.IDFromString(setIDStr)
		permID, _ := shared.IDFromString(permIDStr)
		grants = append(grants, selection.ReconstituteMatrixGrant(setID, permID, flags))
	}

	return grants, rows.Err()
}

// ListPaymentGrants lists the payment grant rows of a selection set.
func (r *SelectionSetRepository) ListPaymentGrants(ctx context.Context, id shared.ID) ([]*selection.PaymentGrant, error) {
	query := `
		SELECT selection_set_id, payment_method_id, enabled
		FROM selection_payment_grants
		WHERE selection_set_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list payment grants: %w", err)
	}
	defer rows.Close()

	var grants []*selection.PaymentGrant
	for rows.Next() {
		var (
			setIDStr, methodIDStr string
			enabled               bool
		)
		if err := rows.Scan(&setIDStr, &methodIDStr, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan payment grant: %w", err)
		}

		setID, _ := shared.IDFromString(setIDStr)
		methodID, _ := shared.IDFromString(methodIDStr)
		grants = append(grants, selection.ReconstitutePaymentGrant(setID, methodID, enabled))
	}

	return grants, rows.Err()
}

func (r *SelectionSetRepository) listLinkIDs(ctx context.Context, table, column string, setID shared.ID) ([]shared.ID, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE selection_set_id = $1
		ORDER BY created_at ASC, %s ASC
	`, column, table, column)

	rows, err := r.db.QueryContext(ctx, query, setID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s links: %w", table, err)
	}
	defer rows.Close()

	var ids []shared.ID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, fmt.Errorf("failed to scan %s link: %w", table, err)
		}
		id, _ := shared.IDFromString(idStr)
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// insertLinksTx bulk-inserts link rows inside a transaction, ignoring
// conflicts on the (selection set, catalog) pair.
func insertLinksTx(ctx context.Context, tx *sql.Tx, table, column string, setID shared.ID, ids []shared.ID) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (selection_set_id, %s)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (selection_set_id, %s) DO NOTHING
	`, table, column, column)

	_, err := tx.ExecContext(ctx, query, setID.String(), pq.Array(idStrings(ids)))
	if err != nil {
		if isForeignKeyViolation(err) {
			return selection.ErrUnknownCatalogID
		}
		return fmt.Errorf("failed to insert %s links: %w", table, err)
	}

	return nil
}

// insertGlobalsTx inserts the three global child tables inside a
// transaction. With ignoreConflicts the inserts leave existing rows alone,
// which is what the bootstrapper relies on.
func insertGlobalsTx(ctx context.Context, tx *sql.Tx, actions []*selection.ActionValue, matrix []*selection.MatrixGrant, payments []*selection.PaymentGrant, ignoreConflicts bool) error {
	actionConflict := ""
	matrixConflict := ""
	paymentConflict := ""
	if ignoreConflicts {
		actionConflict = "ON CONFLICT (selection_set_id, permission_id) DO NOTHING"
		matrixConflict = "ON CONFLICT (selection_set_id, permission_id) DO NOTHING"
		paymentConflict = "ON CONFLICT (selection_set_id, payment_method_id) DO NOTHING"
	}

	actionQuery := fmt.Sprintf(`
		INSERT INTO selection_action_values (
			selection_set_id, permission_id, value_kind,
			bool_value, int_value, decimal_value, text_value
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		%s
	`, actionConflict)

	for _, av := range actions {
		v := av.Value()
		_, err := tx.ExecContext(ctx, actionQuery,
			av.SelectionSetID().String(),
			av.PermissionID().String(),
			av.Kind().String(),
			v.Bool,
			v.Int,
			v.Decimal,
			v.Text,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return selection.ErrUnknownCatalogID
			}
			return fmt.Errorf("failed to insert action value: %w", err)
		}
	}

	matrixQuery := fmt.Sprintf(`
		INSERT INTO selection_matrix_grants (
			selection_set_id, permission_id, can_create, can_update, can_authorize,
			can_close, can_cancel, can_update_validity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		%s
	`, matrixConflict)

	for _, mg := range matrix {
		f := mg.Flags()
		_, err := tx.ExecContext(ctx, matrixQuery,
			mg.SelectionSetID().String(),
			mg.PermissionID().String(),
			f.CanCreate,
			f.CanUpdate,
			f.CanAuthorize,
			f.CanClose,
			f.CanCancel,
			f.CanUpdateValidity,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return selection.ErrUnknownCatalogID
			}
			return fmt.Errorf("failed to insert matrix grant: %w", err)
		}
	}

	paymentQuery := fmt.Sprintf(`
		INSERT INTO selection_payment_grants (selection_set_id, payment_method_id, enabled)
		VALUES ($1, $2, $3)
		%s
	`, paymentConflict)

	for _, pg := range payments {
		_, err := tx.ExecContext(ctx, paymentQuery,
			pg.SelectionSetID().String(),
			pg.PaymentMethodID().String(),
			pg.Enabled(),
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return selection.ErrUnknownCatalogID
			}
			return fmt.Errorf("failed to insert payment grant: %w", err)
		}
	}

	return nil
}
