package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// linkTable implements selection.LinkRepository for one selection-set link
// table. Each child relation gets its own named constructor so the wiring
// reads as seven distinct repositories while the SQL stays in one place.
type linkTable struct {
	db     *DB
	table  string
	column string
}

// NewModuleLinkRepository returns the link repository for chosen modules.
func NewModuleLinkRepository(db *DB) selection.LinkRepository {
	return &linkTable{db: db, table: "selection_set_modules", column: "module_id"}
}

// NewLevelLinkRepository returns the link repository for chosen levels.
func NewLevelLinkRepository(db *DB) selection.LinkRepository {
	return &linkTable{db: db, table: "selection_set_levels", column: "level_id"}
}

// NewSublevelLinkRepository returns the link repository for chosen sublevels.
func NewSublevelLinkRepository(db *DB) selection.LinkRepository {
	return &linkTable{db: db, table: "selection_set_sublevels", column: "sublevel_id"}
}

// NewWarehouseLinkRepository returns the link repository for chosen warehouses.
func NewWarehouseLinkRepository(db *DB) selection.LinkRepository {
	return &linkTable{db: db, table: "selection_set_warehouses", column: "warehouse_id"}
}

// NewCashRegisterLinkRepository returns the link repository for chosen cash registers.
func NewCashRegisterLinkRepository(db *DB) selection.LinkRepository {
	return &linkTable{db: db, table: "selection_set_cash_registers", column: "cash_register_id"}
}

// NewControlPanelLinkRepository returns the link repository for chosen control panels.
func NewControlPanelLinkRepository(db *DB) selection.LinkRepository {
	return &linkTable{db: db, table: "selection_set_control_panels", column: "control_panel_id"}
}

// NewSellerLinkRepository returns the link repository for chosen sellers.
func NewSellerLinkRepository(db *DB) selection.LinkRepository {
	return &linkTable{db: db, table: "selection_set_sellers", column: "seller_id"}
}

// ListCatalogIDs returns the catalog ids currently linked to the set, in
// insertion order.
func (l *linkTable) ListCatalogIDs(ctx context.Context, setID shared.ID) ([]shared.ID, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE selection_set_id = $1
		ORDER BY created_at ASC, %s ASC
	`, l.column, l.table, l.column)

	rows, err := l.db.QueryContext(ctx, query, setID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s links: %w", l.table, err)
	}
	defer rows.Close()

	var ids []shared.ID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, fmt.Errorf("failed to scan %s link: %w", l.table, err)
		}
		id, _ := shared.IDFromString(idStr)
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DeleteExcept removes every link whose catalog id is not in keep, as a
// single set-based delete.
func (l *linkTable) DeleteExcept(ctx context.Context, setID shared.ID, keep []shared.ID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE selection_set_id = $1 AND %s <> ALL($2::uuid[])
	`, l.table, l.column)

	_, err := l.db.ExecContext(ctx, query, setID.String(), pq.Array(idStrings(keep)))
	if err != nil {
		return fmt.Errorf("failed to delete %s links: %w", l.table, err)
	}

	return nil
}

// InsertMissing links the given catalog ids with a single conflict-ignoring
// bulk insert.
func (l *linkTable) InsertMissing(ctx context.Context, setID shared.ID, ids []shared.ID) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (selection_set_id, %s)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (selection_set_id, %s) DO NOTHING
	`, l.table, l.column, l.column)

	_, err := l.db.ExecContext(ctx, query, setID.String(), pq.Array(idStrings(ids)))
	if err != nil {
		if isForeignKeyViolation(err) {
			return selection.ErrUnknownCatalogID
		}
		return fmt.Errorf("failed to insert %s links: %w", l.table, err)
	}

	return nil
}
