package handler

import (
	"net/http"

	"github.com/erpacceso/api/internal/app"
	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/logger"
)

// CatalogHandler serves the read-only reference catalogs the selection flow
// picks from.
type CatalogHandler struct {
	service *app.CatalogService
	logger  *logger.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *app.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  log.With("handler", "catalog"),
	}
}

// CatalogEntryResponse is the common shape of a catalog row: an id and a
// display name. Rows carrying extra columns get their own response type.
type CatalogEntryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionPermissionResponse is one action permission catalog row.
type ActionPermissionResponse struct {
	ID        string `json:"id"`
	Group     string `json:"group"`
	Action    string `json:"action"`
	ValueKind string `json:"value_kind"`
}

// MatrixPermissionResponse is one matrix permission catalog row with its
// default capability flags.
type MatrixPermissionResponse struct {
	ID    string                `json:"id"`
	Name  string                `json:"name"`
	Flags globalcat.MatrixFlags `json:"flags"`
}

// ListCompanies handles GET /api/v1/companies.
func (h *CatalogHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]CatalogEntryResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, CatalogEntryResponse{ID: c.ID().String(), Name: c.Name()})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// ListBranches handles GET /api/v1/companies/{id}/branches.
func (h *CatalogHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	companyID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	branches, err := h.service.ListBranches(r.Context(), companyID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]CatalogEntryResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, CatalogEntryResponse{ID: b.ID().String(), Name: b.Name()})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

func (h *CatalogHandler) listBranchResources(w http.ResponseWriter, r *http.Request, kind scopecat.BranchResourceKind) {
	branchID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	resources, err := h.service.ListBranchResources(r.Context(), kind, branchID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]CatalogEntryResponse, 0, len(resources))
	for _, res := range resources {
		out = append(out, CatalogEntryResponse{ID: res.ID().String(), Name: res.Name()})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// ListWarehouses handles GET /api/v1/branches/{id}/warehouses.
func (h *CatalogHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	h.listBranchResources(w, r, scopecat.KindWarehouse)
}

// ListCashRegisters handles GET /api/v1/branches/{id}/cash-registers.
func (h *CatalogHandler) ListCashRegisters(w http.ResponseWriter, r *http.Request) {
	h.listBranchResources(w, r, scopecat.KindCashRegister)
}

func (h *CatalogHandler) listCompanyResources(w http.ResponseWriter, r *http.Request, kind scopecat.CompanyResourceKind) {
	companyID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	resources, err := h.service.ListCompanyResources(r.Context(), kind, companyID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]CatalogEntryResponse, 0, len(resources))
	for _, res := range resources {
		out = append(out, CatalogEntryResponse{ID: res.ID().String(), Name: res.Name()})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// ListControlPanels handles GET /api/v1/companies/{id}/control-panels.
func (h *CatalogHandler) ListControlPanels(w http.ResponseWriter, r *http.Request) {
	h.listCompanyResources(w, r, scopecat.KindControlPanel)
}

// ListSellers handles GET /api/v1/companies/{id}/sellers.
func (h *CatalogHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	h.listCompanyResources(w, r, scopecat.KindSeller)
}

// ListModules handles GET /api/v1/modules.
func (h *CatalogHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.service.ListModules(r.Context())
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]CatalogEntryResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, CatalogEntryResponse{ID: m.ID().String(), Name: m.Name()})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// ListLevels handles GET /api/v1/modules/{id}/levels.
func (h *CatalogHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	moduleID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	levels, err := h.service.ListLevels(r.Context(), moduleID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]CatalogEntryResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, CatalogEntryResponse{ID: l.ID().String(), Name: l.Name()})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// ListSublevels handles GET /api/v1/levels/{id}/sublevels.
func (h *CatalogHandler) ListSublevels(w http.ResponseWriter, r *http.Request) {
	levelID, err := urlID(r, "id")
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	sublevels, err := h.service.ListSublevels(r.Context(), levelID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]CatalogEntryResponse, 0, len(sublevels))
	for _, s := range sublevels {
		out = append(out, CatalogEntryResponse{ID: s.ID().String(), Name: s.Name()})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// ListActionPermissions handles GET /api/v1/action-permissions.
func (h *CatalogHandler) ListActionPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListActionPermissions(r.Context())
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]ActionPermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, ActionPermissionResponse{
			ID:        p.ID().String(),
			Group:     p.Group(),
			Action:    p.Action(),
			ValueKind: p.ValueKind().String(),
		})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// ListMatrixPermissions handles GET /api/v1/matrix-permissions.
func (h *CatalogHandler) ListMatrixPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListMatrixPermissions(r.Context())
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]MatrixPermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, MatrixPermissionResponse{
			ID:    p.ID().String(),
			Name:  p.Name(),
			Flags: p.Flags(),
		})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}

// ListPaymentMethods handles GET /api/v1/payment-methods.
func (h *CatalogHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListPaymentMethods(r.Context())
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	out := make([]CatalogEntryResponse, 0, len(methods))
	for _, m := range methods {
		out = append(out, CatalogEntryResponse{ID: m.ID().String(), Name: m.Name()})
	}
	respondJSON(w, http.StatusOK, newListResponse(out))
}
