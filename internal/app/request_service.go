package app

import (
	"context"
	"fmt"

	"github.com/erpacceso/api/pkg/domain/request"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
)

// RequestService manages access requests and their workflow transitions.
type RequestService struct {
	requestRepo   request.Repository
	selectionRepo selection.Repository
	logger        *logger.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(requestRepo request.Repository, selectionRepo selection.Repository, log *logger.Logger) *RequestService {
	return &RequestService{
		requestRepo:   requestRepo,
		selectionRepo: selectionRepo,
		logger:        log.With("service", "request"),
	}
}

// RequestItemInput names one selection set a new request wraps.
type RequestItemInput struct {
	SelectionSetID shared.ID
	Notes          string
}

// RequestWithItems pairs a request with its ordered items.
type RequestWithItems struct {
	Request *request.AccessRequest
	Items   []*request.Item
}

// CreateRequest creates a draft request wrapping the given selection sets in
// order. The item list must be non-empty and free of duplicates, and every
// selection set must exist.
func (s *RequestService) CreateRequest(ctx context.Context, kind request.Kind, applicant, notes string, items []RequestItemInput) (*RequestWithItems, error) {
	if len(items) == 0 {
		return nil, request.ErrNoItems
	}

	seen := make(map[shared.ID]struct{}, len(items))
	for _, in := range items {
		if _, ok := seen[in.SelectionSetID]; ok {
			return nil, request.ErrDuplicateSelectionSet
		}
		seen[in.SelectionSetID] = struct{}{}

		if _, err := s.selectionRepo.GetByID(ctx, in.SelectionSetID); err != nil {
			return nil, err
		}
	}

	req, err := request.NewAccessRequest(kind, applicant, notes)
	if err != nil {
		return nil, err
	}

	reqItems := make([]*request.Item, 0, len(items))
	for i, in := range items {
		item, err := request.NewItem(req.ID(), in.SelectionSetID, i, in.Notes)
		if err != nil {
			return nil, err
		}
		reqItems = append(reqItems, item)
	}

	if err := s.requestRepo.CreateWithItems(ctx, req, reqItems); err != nil {
		return nil, err
	}

	s.logger.Info("access request created",
		"request_id", req.ID().String(),
		"kind", string(req.Kind()),
		"items", len(reqItems),
	)
	return &RequestWithItems{Request: req, Items: reqItems}, nil
}

// GetRequest retrieves a request with its items.
func (s *RequestService) GetRequest(ctx context.Context, id shared.ID) (*RequestWithItems, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.requestRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return &RequestWithItems{Request: req, Items: items}, nil
}

// SubmitRequest moves a draft into review.
func (s *RequestService) SubmitRequest(ctx context.Context, id shared.ID) (*request.AccessRequest, error) {
	return s.transition(ctx, id, (*request.AccessRequest).Submit, "submitted")
}

// ApproveRequest accepts a submitted request.
func (s *RequestService) ApproveRequest(ctx context.Context, id shared.ID) (*request.AccessRequest, error) {
	return s.transition(ctx, id, (*request.AccessRequest).Approve, "approved")
}

// RejectRequest declines a submitted request.
func (s *RequestService) RejectRequest(ctx context.Context, id shared.ID) (*request.AccessRequest, error) {
	return s.transition(ctx, id, (*request.AccessRequest).Reject, "rejected")
}

// DeleteRequest removes a draft request. Non-draft requests are kept for
// traceability.
func (s *RequestService) DeleteRequest(ctx context.Context, id shared.ID) error {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !req.IsEditable() {
		return fmt.Errorf("%w: only draft requests can be deleted", shared.ErrConflict)
	}

	if err := s.requestRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("access request deleted", "request_id", id.String())
	return nil
}

func (s *RequestService) transition(ctx context.Context, id shared.ID, fn func(*request.AccessRequest) error, verb string) (*request.AccessRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(req); err != nil {
		return nil, err
	}
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("access request "+verb, "request_id", id.String())
	return req, nil
}
