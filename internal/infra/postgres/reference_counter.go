package postgres

import (
	"context"
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// SelectionSetReferenceCounter implements selection.ReferenceCounter by
// summing request and template item references in one query. Deletion paths
// consult it before removing a selection set.
type SelectionSetReferenceCounter struct {
	db *DB
}

// NewSelectionSetReferenceCounter creates a new SelectionSetReferenceCounter.
func NewSelectionSetReferenceCounter(db *DB) *SelectionSetReferenceCounter {
	return &SelectionSetReferenceCounter{db: db}
}

// CountReferences returns how many request and template items wrap the
// selection set.
func (r *SelectionSetReferenceCounter) CountReferences(ctx context.Context, setID shared.ID) (int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM access_request_items WHERE selection_set_id = $1) +
			(SELECT COUNT(*) FROM access_template_items WHERE selection_set_id = $1)
	`

	var count int64
	err := r.db.QueryRowContext(ctx, query, setID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count selection set references: %w", err)
	}

	return count, nil
}
