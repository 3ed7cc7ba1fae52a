package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erpacceso/api/internal/app"
	"github.com/erpacceso/api/pkg/apierror"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/domain/visibility"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/erpacceso/api/pkg/validator"
)

// VisibilityHandler serves block/rule administration and the resolution
// endpoints that tell the flow which blocks to render.
type VisibilityHandler struct {
	service   *app.VisibilityService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewVisibilityHandler creates a new VisibilityHandler.
func NewVisibilityHandler(service *app.VisibilityService, v *validator.Validator, log *logger.Logger) *VisibilityHandler {
	return &VisibilityHandler{
		service:   service,
		validator: v,
		logger:    log.With("handler", "visibility"),
	}
}

// BlockResponse is the API representation of a permission block.
type BlockResponse struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	ScopedEntity string    `json:"scoped_entity,omitempty"`
	GlobalEntity string    `json:"global_entity,omitempty"`
	ActionGroup  string    `json:"action_group,omitempty"`
	IsActive     bool      `json:"is_active"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"created_at"`
}

func toBlockResponse(b *visibility.Block) BlockResponse {
	return BlockResponse{
		ID:           b.ID().String(),
		Code:         b.Code(),
		Name:         b.Name(),
		Kind:         string(b.Kind()),
		ScopedEntity: string(b.ScopedEntity()),
		GlobalEntity: string(b.GlobalEntity()),
		ActionGroup:  b.ActionGroup(),
		IsActive:     b.IsActive(),
		Order:        b.Order(),
		CreatedAt:    b.CreatedAt(),
	}
}

// RuleResponse is the API representation of a visibility rule.
type RuleResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Priority  int       `json:"priority"`
	MatchMode string    `json:"match_mode"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toRuleResponse(r *visibility.Rule) RuleResponse {
	return RuleResponse{
		ID:        r.ID().String(),
		Name:      r.Name(),
		IsActive:  r.IsActive(),
		Priority:  r.Priority(),
		MatchMode: string(r.MatchMode()),
		Notes:     r.Notes(),
		CreatedAt: r.CreatedAt(),
	}
}

// VisibleBlocksResponse lists the block codes a selection resolves to.
type VisibleBlocksResponse struct {
	Codes []string `json:"codes"`
	Count int      `json:"count"`
}

func toVisibleBlocksResponse(v visibility.VisibleBlocks) VisibleBlocksResponse {
	codes := v.Codes()
	if codes == nil {
		codes = []string{}
	}
	return VisibleBlocksResponse{Codes: codes, Count: v.Len()}
}

// ResolveForSet handles GET /api/v1/selection-sets/{id}/visible-blocks.
func (h *VisibilityHandler) ResolveForSet(w http.ResponseWriter, r *http.Request) {
	setID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	visible, err := h.service.ResolveVisibleBlocks(r.Context(), setID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toVisibleBlocksResponse(visible))
}

// AllowedActionGroupsResponse reports the action group filter for a
// selection. When Filtered is false every group is editable.
type AllowedActionGroupsResponse struct {
	Groups   []string `json:"groups"`
	Filtered bool     `json:"filtered"`
}

// AllowedActionGroups handles GET /api/v1/selection-sets/{id}/allowed-action-groups.
func (h *VisibilityHandler) AllowedActionGroups(w http.ResponseWriter, r *http.Request) {
	setID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	groups, filtered, err := h.service.AllowedActionGroups(r.Context(), setID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)
	respondJSON(w, http.StatusOK, AllowedActionGroupsResponse{Groups: names, Filtered: filtered})
}

type resolvePreviewRequest struct {
	ModuleIDs   []string `json:"module_ids" validate:"dive,uuid"`
	LevelIDs    []string `json:"level_ids" validate:"dive,uuid"`
	SublevelIDs []string `json:"sublevel_ids" validate:"dive,uuid"`
}

// ResolvePreview handles POST /api/v1/visibility/resolve. It resolves ad hoc
// picks without a persisted selection set, for previewing rule changes.
func (h *VisibilityHandler) ResolvePreview(w http.ResponseWriter, r *http.Request) {
	var req resolvePreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	var picks visibility.Picks
	var err error
	if picks.ModuleIDs, err = parseIDs(req.ModuleIDs); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if picks.LevelIDs, err = parseIDs(req.LevelIDs); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if picks.SublevelIDs, err = parseIDs(req.SublevelIDs); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	visible, err := h.service.ResolveForPicks(r.Context(), picks)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toVisibleBlocksResponse(visible))
}

type createBlockRequest struct {
	Code        string `json:"code" validate:"required,max=100"`
	Name        string `json:"name" validate:"required,max=255"`
	Kind        string `json:"kind" validate:"required,oneof=SCOPED GLOBAL"`
	Entity      string `json:"entity" validate:"required,max=50"`
	ActionGroup string `json:"action_group" validate:"omitempty,max=100"`
	Order       int    `json:"order" validate:"min=0"`
}

// CreateBlock handles POST /api/v1/visibility/blocks.
func (h *VisibilityHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	var block *visibility.Block
	var err error
	switch visibility.BlockKind(req.Kind) {
	case visibility.BlockScoped:
		block, err = visibility.NewScopedBlock(req.Code, req.Name, visibility.ScopedEntity(req.Entity), req.Order)
	case visibility.BlockGlobal:
		block, err = visibility.NewGlobalBlock(req.Code, req.Name, visibility.GlobalEntity(req.Entity), req.ActionGroup, req.Order)
	}
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	if err := h.service.CreateBlock(r.Context(), block); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toBlockResponse(block))
}

// ListBlocks handles GET /api/v1/visibility/blocks.
func (h *VisibilityHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.service.ListActiveBlocks(r.Context())
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]BlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toBlockResponse(b))
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

type statusRequest struct {
	Active bool `json:"active"`
}

// UpdateBlockStatus handles PUT /api/v1/visibility/blocks/{code}/status.
func (h *VisibilityHandler) UpdateBlockStatus(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		respondError(w, h.logger, r, apierror.BadRequest("missing block code"))
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	block, err := h.service.GetBlockByCode(r.Context(), code)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if req.Active {
		block.Activate()
	} else {
		block.Deactivate()
	}
	if err := h.service.UpdateBlock(r.Context(), block); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBlockResponse(block))
}

type createRuleRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Priority  int    `json:"priority" validate:"min=0"`
	MatchMode string `json:"match_mode" validate:"required,match_mode"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// CreateRule handles POST /api/v1/visibility/rules.
func (h *VisibilityHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	mode, err := visibility.ParseMatchMode(req.MatchMode)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	rule, err := visibility.NewRule(req.Name, req.Priority, mode, req.Notes)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	if err := h.service.CreateRule(r.Context(), rule); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRuleResponse(rule))
}

// GetRule handles GET /api/v1/visibility/rules/{id}.
func (h *VisibilityHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	rule, err := h.service.GetRule(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRuleResponse(rule))
}

// UpdateRuleStatus handles PUT /api/v1/visibility/rules/{id}/status.
func (h *VisibilityHandler) UpdateRuleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	rule, err := h.service.GetRule(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if req.Active {
		rule.Activate()
	} else {
		rule.Deactivate()
	}
	if err := h.service.UpdateRule(r.Context(), rule); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRuleResponse(rule))
}

type addTriggerRequest struct {
	Target string `json:"target" validate:"required,oneof=module level sublevel"`
	NodeID string `json:"node_id" validate:"required,uuid"`
}

// TriggerResponse is the API representation of a rule trigger.
type TriggerResponse struct {
	ID     string `json:"id"`
	RuleID string `json:"rule_id"`
	Target string `json:"target"`
	NodeID string `json:"node_id"`
}

// AddTrigger handles POST /api/v1/visibility/rules/{id}/triggers.
func (h *VisibilityHandler) AddTrigger(w http.ResponseWriter, r *http.Request) {
	ruleID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req addTriggerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	nodeID := shared.MustIDFromString(req.NodeID)
	var trigger *visibility.Trigger
	switch visibility.TriggerTarget(req.Target) {
	case visibility.TargetModule:
		trigger, err = visibility.NewModuleTrigger(ruleID, nodeID)
	case visibility.TargetLevel:
		trigger, err = visibility.NewLevelTrigger(ruleID, nodeID)
	case visibility.TargetSublevel:
		trigger, err = visibility.NewSublevelTrigger(ruleID, nodeID)
	}
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	if err := h.service.AddTrigger(r.Context(), trigger); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, TriggerResponse{
		ID:     trigger.ID().String(),
		RuleID: trigger.RuleID().String(),
		Target: string(trigger.Target()),
		NodeID: trigger.NodeID().String(),
	})
}

// RemoveTrigger handles DELETE /api/v1/visibility/triggers/{id}.
func (h *VisibilityHandler) RemoveTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.service.RemoveTrigger(r.Context(), id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type addRuleBlockRequest struct {
	BlockID string `json:"block_id" validate:"required,uuid"`
	Mode    string `json:"mode" validate:"required,block_mode"`
	Order   int    `json:"order" validate:"min=0"`
}

// AddRuleBlock handles POST /api/v1/visibility/rules/{id}/blocks.
func (h *VisibilityHandler) AddRuleBlock(w http.ResponseWriter, r *http.Request) {
	ruleID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	var req addRuleBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	mode, err := visibility.ParseBlockMode(req.Mode)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	rb, err := visibility.NewRuleBlock(ruleID, shared.MustIDFromString(req.BlockID), mode, req.Order)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	if err := h.service.AddRuleBlock(r.Context(), rb); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// RemoveRuleBlock handles DELETE /api/v1/visibility/rules/{id}/blocks/{blockID}.
func (h *VisibilityHandler) RemoveRuleBlock(w http.ResponseWriter, r *http.Request) {
	ruleID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	blockID, err := urlID(r, "blockID")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if err := h.service.RemoveRuleBlock(r.Context(), ruleID, blockID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
