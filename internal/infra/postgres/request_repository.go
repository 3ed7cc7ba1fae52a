package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erpacceso/api/pkg/domain/request"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// RequestRepository implements request.Repository using PostgreSQL.
type RequestRepository struct {
	db *DB
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(db *DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// CreateWithItems persists the request and its non-empty item list in one
// transaction.
func (r *RequestRepository) CreateWithItems(ctx context.Context, req *request.AccessRequest, items []*request.Item) error {
	if len(items) == 0 {
		return request.ErrNoItems
	}

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO access_requests (id, kind, status, applicant, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			req.ID().String(),
			string(req.Kind()),
			string(req.Status()),
			req.Applicant(),
			req.Notes(),
			req.CreatedAt(),
			req.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to create access request: %w", err)
		}

		for _, item := range items {
			if err := insertRequestItemTx(ctx, tx, item); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByID retrieves an access request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id shared.ID) (*request.AccessRequest, error) {
	query := `
		SELECT id, kind, status, applicant, notes, created_at, updated_at
		FROM access_requests
		WHERE id = $1
	`

	var (
		idStr, kindStr, statusStr, applicant, notes string
		createdAt, updatedAt                        time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).
		Scan(&idStr, &kindStr, &statusStr, &applicant, &notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, request.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan access request: %w", err)
	}

	reqID, _ := shared.IDFromString(idStr)
	return request.Reconstitute(
		reqID, request.Kind(kindStr), request.Status(statusStr),
		applicant, notes, createdAt, updatedAt,
	), nil
}

// Update persists request changes.
func (r *RequestRepository) Update(ctx context.Context, req *request.AccessRequest) error {
	query := `
		UPDATE access_requests
		SET status = $2, notes = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		req.ID().String(),
		string(req.Status()),
		req.Notes(),
		req.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update access request: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return request.ErrRequestNotFound
	}

	return nil
}

// Delete removes an access request. Items are removed by cascading foreign
// keys; the selection sets the items wrapped stay untouched.
func (r *RequestRepository) Delete(ctx context.Context, id shared.ID) error {
	query := `DELETE FROM access_requests WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete access request: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return request.ErrRequestNotFound
	}

	return nil
}

// ListItems lists request items in positional order.
func (r *RequestRepository) ListItems(ctx context.Context, requestID shared.ID) ([]*request.Item, error) {
	query := `
		SELECT id, request_id, selection_set_id, position, notes, created_at
		FROM access_request_items
		WHERE request_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, requestID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list request items: %w", err)
	}
	defer rows.Close()

	var items []*request.Item
	for rows.Next() {
		var (
			idStr, reqIDStr, setIDStr, notes string
			position                         int
			createdAt                        time.Time
		)
		if err := rows.Scan(&idStr, &reqIDStr, &setIDStr, &position, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan request item: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		reqID, _ := shared.IDFromString(reqIDStr)
		setID, _ := shared.IDFromString(setIDStr)
		items = append(items, request.ReconstituteItem(id, reqID, setID, position, notes, createdAt))
	}

	return items, rows.Err()
}

// AddItem appends an item to a request.
func (r *RequestRepository) AddItem(ctx context.Context, item *request.Item) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		return insertRequestItemTx(ctx, tx, item)
	})
}

// RemoveItem removes a single request item.
func (r *RequestRepository) RemoveItem(ctx context.Context, id shared.ID) error {
	query := `DELETE FROM access_request_items WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to remove request item: %w", err)
	}

	return nil
}

// CountItemsBySelectionSet counts request items wrapping a selection set.
func (r *RequestRepository) CountItemsBySelectionSet(ctx context.Context, selectionSetID shared.ID) (int64, error) {
	query := `SELECT COUNT(*) FROM access_request_items WHERE selection_set_id = $1`

	var count int64
	err := r.db.QueryRowContext(ctx, query, selectionSetID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count request items: %w", err)
	}

	return count, nil
}

func insertRequestItemTx(ctx context.Context, tx *sql.Tx, item *request.Item) error {
	query := `
		INSERT INTO access_request_items (id, request_id, selection_set_id, position, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.ExecContext(ctx, query,
		item.ID().String(),
		item.RequestID().String(),
		item.SelectionSetID().String(),
		item.Order(),
		item.Notes(),
		item.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return request.ErrDuplicateSelectionSet
		}
		if isForeignKeyViolation(err) {
			return request.ErrRequestNotFound
		}
		return fmt.Errorf("failed to insert request item: %w", err)
	}

	return nil
}
