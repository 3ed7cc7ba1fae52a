package handler

import (
	"net/http"

	"github.com/erpacceso/api/internal/app"
	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/erpacceso/api/pkg/validator"
)

// GlobalsHandler serves the global permission tab endpoints: bootstrapping
// the editable rows and saving the edited values.
type GlobalsHandler struct {
	globals   *app.GlobalsService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewGlobalsHandler creates a new GlobalsHandler.
func NewGlobalsHandler(globals *app.GlobalsService, v *validator.Validator, log *logger.Logger) *GlobalsHandler {
	return &GlobalsHandler{
		globals:   globals,
		validator: v,
		logger:    log.With("handler", "globals"),
	}
}

// Bootstrap handles POST /api/v1/selection-sets/{id}/globals/bootstrap.
// Missing rows are seeded from the active catalogs; existing rows are never
// touched, so the call is safe to repeat.
func (h *GlobalsHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	setID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.globals.EnsureGlobalRows(r.Context(), setID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type actionValueRequest struct {
	PermissionID string   `json:"permission_id" validate:"required,uuid"`
	BoolValue    *bool    `json:"bool_value"`
	IntValue     *int64   `json:"int_value"`
	DecimalValue *float64 `json:"decimal_value"`
	TextValue    *string  `json:"text_value" validate:"omitempty,max=2000"`
}

type matrixGrantRequest struct {
	PermissionID      string `json:"permission_id" validate:"required,uuid"`
	CanCreate         bool   `json:"can_create"`
	CanUpdate         bool   `json:"can_update"`
	CanAuthorize      bool   `json:"can_authorize"`
	CanClose          bool   `json:"can_close"`
	CanCancel         bool   `json:"can_cancel"`
	CanUpdateValidity bool   `json:"can_update_validity"`
}

type paymentGrantRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required,uuid"`
	Enabled         bool   `json:"enabled"`
}

type saveGlobalsRequest struct {
	ActionValues  []actionValueRequest  `json:"action_values" validate:"dive"`
	MatrixGrants  []matrixGrantRequest  `json:"matrix_grants" validate:"dive"`
	PaymentGrants []paymentGrantRequest `json:"payment_grants" validate:"dive"`
}

// Save handles PUT /api/v1/selection-sets/{id}/globals. The submitted rows
// replace the set's global values; rows carrying no meaningful value are
// dropped rather than stored.
func (h *GlobalsHandler) Save(w http.ResponseWriter, r *http.Request) {
	setID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req saveGlobalsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	input := app.GlobalsInput{
		ActionValues:  make([]app.ActionValueInput, 0, len(req.ActionValues)),
		MatrixGrants:  make([]app.MatrixGrantInput, 0, len(req.MatrixGrants)),
		PaymentGrants: make([]app.PaymentGrantInput, 0, len(req.PaymentGrants)),
	}
	for _, av := range req.ActionValues {
		input.ActionValues = append(input.ActionValues, app.ActionValueInput{
			PermissionID: shared.MustIDFromString(av.PermissionID),
			Value: selection.TypedValue{
				Bool:    av.BoolValue,
				Int:     av.IntValue,
				Decimal: av.DecimalValue,
				Text:    av.TextValue,
			},
		})
	}
	for _, mg := range req.MatrixGrants {
		input.MatrixGrants = append(input.MatrixGrants, app.MatrixGrantInput{
			PermissionID: shared.MustIDFromString(mg.PermissionID),
			Flags: globalcat.MatrixFlags{
				CanCreate:         mg.CanCreate,
				CanUpdate:         mg.CanUpdate,
				CanAuthorize:      mg.CanAuthorize,
				CanClose:          mg.CanClose,
				CanCancel:         mg.CanCancel,
				CanUpdateValidity: mg.CanUpdateValidity,
			},
		})
	}
	for _, pg := range req.PaymentGrants {
		input.PaymentGrants = append(input.PaymentGrants, app.PaymentGrantInput{
			PaymentMethodID: shared.MustIDFromString(pg.PaymentMethodID),
			Enabled:         pg.Enabled,
		})
	}

	if err := h.globals.SaveGlobals(r.Context(), setID, input); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
