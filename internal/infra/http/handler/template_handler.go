package handler

import (
	"net/http"
	"time"

	"github.com/erpacceso/api/internal/app"
	"github.com/erpacceso/api/pkg/domain/request"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/domain/template"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/erpacceso/api/pkg/validator"
)

// TemplateHandler serves access template endpoints: capturing a request as a
// template and materializing a template back into a fresh draft request.
type TemplateHandler struct {
	service   *app.TemplateService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(service *app.TemplateService, v *validator.Validator, log *logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		service:   service,
		validator: v,
		logger:    log.With("handler", "template"),
	}
}

// TemplateItemResponse is one selection set held by a template.
type TemplateItemResponse struct {
	ID             string `json:"id"`
	SelectionSetID string `json:"selection_set_id"`
	Order          int    `json:"order"`
	Notes          string `json:"notes,omitempty"`
}

// TemplateResponse is the API representation of an access template.
type TemplateResponse struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Department string                 `json:"department,omitempty"`
	RoleName   string                 `json:"role_name,omitempty"`
	IsActive   bool                   `json:"is_active"`
	Notes      string                 `json:"notes,omitempty"`
	Items      []TemplateItemResponse `json:"items,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

func toTemplateResponse(t *template.AccessTemplate, items []*template.Item) TemplateResponse {
	resp := TemplateResponse{
		ID:         t.ID().String(),
		Name:       t.Name(),
		Department: t.Department(),
		RoleName:   t.RoleName(),
		IsActive:   t.IsActive(),
		Notes:      t.Notes(),
		CreatedAt:  t.CreatedAt(),
		UpdatedAt:  t.UpdatedAt(),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, TemplateItemResponse{
			ID:             item.ID().String(),
			SelectionSetID: item.SelectionSetID().String(),
			Order:          item.Order(),
			Notes:          item.Notes(),
		})
	}
	return resp
}

type createTemplateRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Department string `json:"department" validate:"max=255"`
	RoleName   string `json:"role_name" validate:"max=255"`
	Notes      string `json:"notes" validate:"max=2000"`
}

// CreateFromRequest handles POST /api/v1/templates/from-request/{id}. The
// source request must be SUBMITTED or APPROVED; its selection sets are cloned
// so later edits to the request do not leak into the template.
func (h *TemplateHandler) CreateFromRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req createTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	created, err := h.service.CreateTemplateFromRequest(
		r.Context(), requestID,
		req.Name, req.Department, req.RoleName, req.Notes,
	)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTemplateResponse(created.Template, created.Items))
}

type materializeRequest struct {
	Kind            string  `json:"kind" validate:"required,request_kind"`
	Applicant       string  `json:"applicant" validate:"required,max=255"`
	Notes           string  `json:"notes" validate:"max=2000"`
	TargetCompanyID *string `json:"target_company_id" validate:"omitempty,uuid"`
	TargetBranchID  *string `json:"target_branch_id" validate:"omitempty,uuid"`
}

// Materialize handles POST /api/v1/requests/from-template/{id}. Every
// template item is cloned into a fresh selection set wrapped by a new draft
// request.
func (h *TemplateHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	templateID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req materializeRequest
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

	input := app.MaterializeInput{Kind: kind, Applicant: req.Applicant, Notes: req.Notes}
	if req.TargetCompanyID != nil {
		companyID := shared.MustIDFromString(*req.TargetCompanyID)
		input.TargetCompanyID = &companyID
	}
	if req.TargetBranchID != nil {
		branchID := shared.MustIDFromString(*req.TargetBranchID)
		input.TargetBranchID = &branchID
	}

	created, err := h.service.MaterializeRequest(r.Context(), templateID, input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRequestResponse(created.Request, created.Items))
}

// Get handles GET /api/v1/templates/{id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	found, err := h.service.GetTemplate(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTemplateResponse(found.Template, found.Items))
}

// List handles GET /api/v1/templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateResponse(t, nil))
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// Deactivate handles POST /api/v1/templates/{id}/deactivate.
func (h *TemplateHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.service.DeactivateTemplate(r.Context(), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
