package handler

import (
	"net/http"
	"time"

	"github.com/erpacceso/api/internal/app"
	"github.com/erpacceso/api/pkg/domain/request"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/erpacceso/api/pkg/validator"
)

// RequestHandler serves access request lifecycle endpoints.
type RequestHandler struct {
	service   *app.RequestService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(service *app.RequestService, v *validator.Validator, log *logger.Logger) *RequestHandler {
	return &RequestHandler{
		service:   service,
		validator: v,
		logger:    log.With("handler", "request"),
	}
}

// RequestItemResponse is one selection set attached to a request.
type RequestItemResponse struct {
	ID             string `json:"id"`
	SelectionSetID string `json:"selection_set_id"`
	Order          int    `json:"order"`
	Notes          string `json:"notes,omitempty"`
}

// RequestResponse is the API representation of an access request.
type RequestResponse struct {
	ID        string                `json:"id"`
	Kind      string                `json:"kind"`
	Status    string                `json:"status"`
	Applicant string                `json:"applicant"`
	Notes     string                `json:"notes,omitempty"`
	Items     []RequestItemResponse `json:"items,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func toRequestResponse(req *request.AccessRequest, items []*request.Item) RequestResponse {
	resp := RequestResponse{
		ID:        req.ID().String(),
		Kind:      string(req.Kind()),
		Status:    string(req.Status()),
		Applicant: req.Applicant(),
		Notes:     req.Notes(),
		CreatedAt: req.CreatedAt(),
		UpdatedAt: req.UpdatedAt(),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, RequestItemResponse{
			ID:             item.ID().String(),
			SelectionSetID: item.SelectionSetID().String(),
			Order:          item.Order(),
			Notes:          item.Notes(),
		})
	}
	return resp
}

type requestItemRequest struct {
	SelectionSetID string `json:"selection_set_id" validate:"required,uuid"`
	Notes          string `json:"notes" validate:"max=2000"`
}

type createRequestRequest struct {
	Kind      string               `json:"kind" validate:"required,request_kind"`
	Applicant string               `json:"applicant" validate:"required,max=255"`
	Notes     string               `json:"notes" validate:"max=2000"`
	Items     []requestItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Create handles POST /api/v1/requests. A request is born DRAFT and must
// carry at least one selection set.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	kind, err := request.ParseKind(req.Kind)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	items := make([]app.RequestItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, app.RequestItemInput{
			SelectionSetID: shared.MustIDFromString(item.SelectionSetID),
			Notes:          item.Notes,
		})
	}

	created, err := h.service.CreateRequest(r.Context(), kind, req.Applicant, req.Notes, items)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRequestResponse(created.Request, created.Items))
}

// Get handles GET /api/v1/requests/{id}.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	found, err := h.service.GetRequest(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRequestResponse(found.Request, found.Items))
}

func (h *RequestHandler) transition(w http.ResponseWriter, r *http.Request, fn func(*http.Request, shared.ID) (*request.AccessRequest, error)) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	req, err := fn(r, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRequestResponse(req, nil))
}

// Submit handles POST /api/v1/requests/{id}/submit.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, id shared.ID) (*request.AccessRequest, error) {
		return h.service.SubmitRequest(r.Context(), id)
	})
}

// Approve handles POST /api/v1/requests/{id}/approve.
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, id shared.ID) (*request.AccessRequest, error) {
		return h.service.ApproveRequest(r.Context(), id)
	})
}

// Reject handles POST /api/v1/requests/{id}/reject.
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, id shared.ID) (*request.AccessRequest, error) {
		return h.service.RejectRequest(r.Context(), id)
	})
}

// Delete handles DELETE /api/v1/requests/{id}. Only drafts are deletable.
func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.service.DeleteRequest(r.Context(), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
