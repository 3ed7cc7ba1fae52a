package handler

import (
	"net/http"
	"time"

	"github.com/erpacceso/api/internal/app"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/erpacceso/api/pkg/validator"
)

// SelectionHandler serves selection set lifecycle, row synchronization and
// clone endpoints.
type SelectionHandler struct {
	selections *app.SelectionService
	clones     *app.CloneService
	visibility *app.VisibilityService
	validator  *validator.Validator
	logger     *logger.Logger
}

// NewSelectionHandler creates a new SelectionHandler.
func NewSelectionHandler(
	selections *app.SelectionService,
	clones *app.CloneService,
	visibility *app.VisibilityService,
	v *validator.Validator,
	log *logger.Logger,
) *SelectionHandler {
	return &SelectionHandler{
		selections: selections,
		clones:     clones,
		visibility: visibility,
		validator:  v,
		logger:     log.With("handler", "selection"),
	}
}

// SelectionSetResponse is the API representation of a selection set.
type SelectionSetResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	BranchID  *string   `json:"branch_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toSelectionSetResponse(s *selection.SelectionSet) SelectionSetResponse {
	return SelectionSetResponse{
		ID:        s.ID().String(),
		CompanyID: s.CompanyID().String(),
		BranchID:  idPtrString(s.BranchID()),
		Notes:     s.Notes(),
		CreatedAt: s.CreatedAt(),
	}
}

// SnapshotResponse is the API representation of a selection set's full child
// relation graph.
type SnapshotResponse struct {
	ModuleIDs       []string `json:"module_ids"`
	LevelIDs        []string `json:"level_ids"`
	SublevelIDs     []string `json:"sublevel_ids"`
	WarehouseIDs    []string `json:"warehouse_ids"`
	CashRegisterIDs []string `json:"cash_register_ids"`
	ControlPanelIDs []string `json:"control_panel_ids"`
	SellerIDs       []string `json:"seller_ids"`

	ActionValues  []ActionValueResponse  `json:"action_values"`
	MatrixGrants  []MatrixGrantResponse  `json:"matrix_grants"`
	PaymentGrants []PaymentGrantResponse `json:"payment_grants"`
}

// ActionValueResponse is one typed action permission value.
type ActionValueResponse struct {
	PermissionID string   `json:"permission_id"`
	ValueKind    string   `json:"value_kind"`
	BoolValue    *bool    `json:"bool_value,omitempty"`
	IntValue     *int64   `json:"int_value,omitempty"`
	DecimalValue *float64 `json:"decimal_value,omitempty"`
	TextValue    *string  `json:"text_value,omitempty"`
}

// MatrixGrantResponse is one matrix permission capability row.
type MatrixGrantResponse struct {
	PermissionID      string `json:"permission_id"`
	CanCreate         bool   `json:"can_create"`
	CanUpdate         bool   `json:"can_update"`
	CanAuthorize      bool   `json:"can_authorize"`
	CanClose          bool   `json:"can_close"`
	CanCancel         bool   `json:"can_cancel"`
	CanUpdateValidity bool   `json:"can_update_validity"`
}

// PaymentGrantResponse is one payment method enablement row.
type PaymentGrantResponse struct {
	PaymentMethodID string `json:"payment_method_id"`
	Enabled         bool   `json:"enabled"`
}

func toSnapshotResponse(snap *selection.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		ModuleIDs:       idStrings(snap.ModuleIDs),
		LevelIDs:        idStrings(snap.LevelIDs),
		SublevelIDs:     idStrings(snap.SublevelIDs),
		WarehouseIDs:    idStrings(snap.WarehouseIDs),
		CashRegisterIDs: idStrings(snap.CashRegisterIDs),
		ControlPanelIDs: idStrings(snap.ControlPanelIDs),
		SellerIDs:       idStrings(snap.SellerIDs),
		ActionValues:    make([]ActionValueResponse, 0, len(snap.ActionValues)),
		MatrixGrants:    make([]MatrixGrantResponse, 0, len(snap.MatrixGrants)),
		PaymentGrants:   make([]PaymentGrantResponse, 0, len(snap.PaymentGrants)),
	}
	for _, av := range snap.ActionValues {
		v := av.Value()
		resp.ActionValues = append(resp.ActionValues, ActionValueResponse{
			PermissionID: av.PermissionID().String(),
			ValueKind:    av.Kind().String(),
			BoolValue:    v.Bool,
			IntValue:     v.Int,
			DecimalValue: v.Decimal,
			TextValue:    v.Text,
		})
	}
	for _, mg := range snap.MatrixGrants {
		f := mg.Flags()
		resp.MatrixGrants = append(resp.MatrixGrants, MatrixGrantResponse{
			PermissionID:      mg.PermissionID().String(),
			CanCreate:         f.CanCreate,
			CanUpdate:         f.CanUpdate,
			CanAuthorize:      f.CanAuthorize,
			CanClose:          f.CanClose,
			CanCancel:         f.CanCancel,
			CanUpdateValidity: f.CanUpdateValidity,
		})
	}
	for _, pg := range snap.PaymentGrants {
		resp.PaymentGrants = append(resp.PaymentGrants, PaymentGrantResponse{
			PaymentMethodID: pg.PaymentMethodID().String(),
			Enabled:         pg.Enabled(),
		})
	}
	return resp
}

type createSelectionSetRequest struct {
	CompanyID string  `json:"company_id" validate:"required,uuid"`
	BranchID  *string `json:"branch_id" validate:"omitempty,uuid"`
	Notes     string  `json:"notes" validate:"max=2000"`
}

// Create handles POST /api/v1/selection-sets.
func (h *SelectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSelectionSetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	companyID := shared.MustIDFromString(req.CompanyID)
	var branchID *shared.ID
	if req.BranchID != nil {
		id := shared.MustIDFromString(*req.BranchID)
		branchID = &id
	}

	set, err := h.selections.CreateSelectionSet(r.Context(), companyID, branchID, req.Notes)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSelectionSetResponse(set))
}

// Get handles GET /api/v1/selection-sets/{id}.
func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	set, err := h.selections.GetSelectionSet(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSelectionSetResponse(set))
}

// GetSnapshot handles GET /api/v1/selection-sets/{id}/snapshot.
func (h *SelectionHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	snap, err := h.selections.GetSnapshot(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

type updateNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// UpdateNotes handles PUT /api/v1/selection-sets/{id}/notes.
func (h *SelectionHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req updateNotesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	set, err := h.selections.UpdateNotes(r.Context(), id, req.Notes)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSelectionSetResponse(set))
}

// Delete handles DELETE /api/v1/selection-sets/{id}. Deletion is refused
// while any request or template item still references the set.
func (h *SelectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.selections.DeleteSelectionSet(r.Context(), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type syncRequest struct {
	IDs []string `json:"ids" validate:"dive,uuid"`
}

// SyncResponse reports the membership kept after a row synchronization.
type SyncResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

type syncFunc func(r *http.Request, setID shared.ID, ids []shared.ID) ([]shared.ID, error)

func (h *SelectionHandler) sync(w http.ResponseWriter, r *http.Request, fn syncFunc) {
	setID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	kept, err := fn(r, setID, ids)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, SyncResponse{IDs: idStrings(kept), Count: len(kept)})
}

// SyncModules handles PUT /api/v1/selection-sets/{id}/modules. Module tree
// changes drop the set's cached visibility resolution.
func (h *SelectionHandler) SyncModules(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, func(r *http.Request, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
		kept, err := h.selections.SyncModules(r.Context(), setID, ids)
		if err == nil {
			h.visibility.InvalidateSelection(r.Context(), setID)
		}
		return kept, err
	})
}

// SyncLevels handles PUT /api/v1/selection-sets/{id}/levels.
func (h *SelectionHandler) SyncLevels(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, func(r *http.Request, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
		kept, err := h.selections.SyncLevels(r.Context(), setID, ids)
		if err == nil {
			h.visibility.InvalidateSelection(r.Context(), setID)
		}
		return kept, err
	})
}

// SyncSublevels handles PUT /api/v1/selection-sets/{id}/sublevels.
func (h *SelectionHandler) SyncSublevels(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, func(r *http.Request, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
		kept, err := h.selections.SyncSublevels(r.Context(), setID, ids)
		if err == nil {
			h.visibility.InvalidateSelection(r.Context(), setID)
		}
		return kept, err
	})
}

// SyncWarehouses handles PUT /api/v1/selection-sets/{id}/warehouses.
func (h *SelectionHandler) SyncWarehouses(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, func(r *http.Request, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
		return h.selections.SyncWarehouses(r.Context(), setID, ids)
	})
}

// SyncCashRegisters handles PUT /api/v1/selection-sets/{id}/cash-registers.
func (h *SelectionHandler) SyncCashRegisters(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, func(r *http.Request, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
		return h.selections.SyncCashRegisters(r.Context(), setID, ids)
	})
}

// SyncControlPanels handles PUT /api/v1/selection-sets/{id}/control-panels.
func (h *SelectionHandler) SyncControlPanels(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, func(r *http.Request, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
		return h.selections.SyncControlPanels(r.Context(), setID, ids)
	})
}

// SyncSellers handles PUT /api/v1/selection-sets/{id}/sellers.
func (h *SelectionHandler) SyncSellers(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, func(r *http.Request, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
		return h.selections.SyncSellers(r.Context(), setID, ids)
	})
}

type cloneRequest struct {
	TargetCompanyID string  `json:"target_company_id" validate:"required,uuid"`
	TargetBranchID  *string `json:"target_branch_id" validate:"omitempty,uuid"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

// Clone handles POST /api/v1/selection-sets/{id}/clone. Scoped picks the
// target cannot own and retired global catalog rows are dropped from the
// copy.
func (h *SelectionHandler) Clone(w http.ResponseWriter, r *http.Request) {
	sourceID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req cloneRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	input := app.CloneInput{
		TargetCompanyID: shared.MustIDFromString(req.TargetCompanyID),
		NotesOverride:   req.Notes,
	}
	if req.TargetBranchID != nil {
		id := shared.MustIDFromString(*req.TargetBranchID)
		input.TargetBranchID = &id
	}

	clone, err := h.clones.Clone(r.Context(), sourceID, input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSelectionSetResponse(clone))
}
