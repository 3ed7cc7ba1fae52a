// Package request models the access request aggregate: a traceable workflow
// document owning an ordered, non-empty list of selection set items.
package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Kind classifies what the request asks for.
type Kind string

// Request kinds.
const (
	KindCreate Kind = "ALTA"
	KindModify Kind = "MOD"
	KindRemove Kind = "BAJA"
)

// ParseKind parses a request kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCreate, KindModify, KindRemove:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown request kind %q", shared.ErrValidation, s)
}

// Status is the workflow state of a request.
type Status string

// Request statuses.
const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// ParseStatus parses a request status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown request status %q", shared.ErrValidation, s)
}

// AccessRequest is the aggregate root. It owns its items; the selection sets
// the items wrap are shared-nothing copies managed through the cloner.
type AccessRequest struct {
	id        shared.ID
	kind      Kind
	status    Status
	applicant string
	notes     string
	createdAt time.Time
	updatedAt time.Time
}

// NewAccessRequest creates a draft request.
func NewAccessRequest(kind Kind, applicant, notes string) (*AccessRequest, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	applicant = shared.NormalizeName(applicant)
	if applicant == "" {
		return nil, fmt.Errorf("%w: applicant is required", shared.ErrValidation)
	}
	now := time.Now().UTC()
	return &AccessRequest{
		id:        shared.NewID(),
		kind:      kind,
		status:    StatusDraft,
		applicant: applicant,
		notes:     strings.TrimSpace(notes),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstitute recreates an AccessRequest from persistence.
func Reconstitute(id shared.ID, kind Kind, status Status, applicant, notes string, createdAt, updatedAt time.Time) *AccessRequest {
	return &AccessRequest{id: id, kind: kind, status: status, applicant: applicant, notes: notes, createdAt: createdAt, updatedAt: updatedAt}
}

func (r *AccessRequest) ID() shared.ID        { return r.id }
func (r *AccessRequest) Kind() Kind           { return r.kind }
func (r *AccessRequest) Status() Status       { return r.status }
func (r *AccessRequest) Applicant() string    { return r.applicant }
func (r *AccessRequest) Notes() string        { return r.notes }
func (r *AccessRequest) CreatedAt() time.Time { return r.createdAt }
func (r *AccessRequest) UpdatedAt() time.Time { return r.updatedAt }

// Submit moves a draft into review.
func (r *AccessRequest) Submit() error {
	if r.status != StatusDraft {
		return fmt.Errorf("%w: only draft requests can be submitted", shared.ErrConflict)
	}
	r.status = StatusSubmitted
	r.updatedAt = time.Now().UTC()
	return nil
}

// Approve accepts a submitted request.
func (r *AccessRequest) Approve() error {
	if r.status != StatusSubmitted {
		return fmt.Errorf("%w: only submitted requests can be approved", shared.ErrConflict)
	}
	r.status = StatusApproved
	r.updatedAt = time.Now().UTC()
	return nil
}

// Reject declines a submitted request.
func (r *AccessRequest) Reject() error {
	if r.status != StatusSubmitted {
		return fmt.Errorf("%w: only submitted requests can be rejected", shared.ErrConflict)
	}
	r.status = StatusRejected
	r.updatedAt = time.Now().UTC()
	return nil
}

// IsEditable reports whether items may still change.
func (r *AccessRequest) IsEditable() bool { return r.status == StatusDraft }

// CanSeedTemplate reports whether a template may be built from this request.
// Drafts are excluded so templates never capture half-built selections.
func (r *AccessRequest) CanSeedTemplate() bool {
	return r.status == StatusSubmitted || r.status == StatusApproved
}

// Item wraps one selection set inside a request, with a position and
// line-level notes. A request references a given selection set at most once.
type Item struct {
	id             shared.ID
	requestID      shared.ID
	selectionSetID shared.ID
	order          int
	notes          string
	createdAt      time.Time
}

// NewItem creates a request item.
func NewItem(requestID, selectionSetID shared.ID, order int, notes string) (*Item, error) {
	if requestID.IsZero() || selectionSetID.IsZero() {
		return nil, fmt.Errorf("%w: requestID and selectionSetID are required", shared.ErrValidation)
	}
	if order < 0 {
		return nil, fmt.Errorf("%w: order must not be negative", shared.ErrValidation)
	}
	return &Item{
		id:             shared.NewID(),
		requestID:      requestID,
		selectionSetID: selectionSetID,
		order:          order,
		notes:          strings.TrimSpace(notes),
		createdAt:      time.Now().UTC(),
	}, nil
}

// ReconstituteItem recreates an Item from persistence.
func ReconstituteItem(id, requestID, selectionSetID shared.ID, order int, notes string, createdAt time.Time) *Item {
	return &Item{id: id, requestID: requestID, selectionSetID: selectionSetID, order: order, notes: notes, createdAt: createdAt}
}

func (i *Item) ID() shared.ID             { return i.id }
func (i *Item) RequestID() shared.ID      { return i.requestID }
func (i *Item) SelectionSetID() shared.ID { return i.selectionSetID }
func (i *Item) Order() int                { return i.order }
func (i *Item) Notes() string             { return i.notes }
func (i *Item) CreatedAt() time.Time      { return i.createdAt }
