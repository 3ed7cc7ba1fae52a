// Package app holds the application services coordinating domain objects and
// repositories.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erpacceso/api/internal/metrics"
	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
)

// SelectionService manages selection sets and their child link tables. All
// reads and writes of the chosen rows go through SyncModules and friends, so
// callers always replace a link table wholesale instead of editing single
// rows.
type SelectionService struct {
	selectionRepo  selection.Repository
	companyRepo    scopecat.CompanyRepository
	branchRepo     scopecat.BranchRepository
	branchResRepo  scopecat.BranchResourceRepository
	companyResRepo scopecat.CompanyResourceRepository

	moduleLinks       selection.LinkRepository
	levelLinks        selection.LinkRepository
	sublevelLinks     selection.LinkRepository
	warehouseLinks    selection.LinkRepository
	cashRegisterLinks selection.LinkRepository
	controlPanelLinks selection.LinkRepository
	sellerLinks       selection.LinkRepository

	refCounters []selection.ReferenceCounter
	logger      *logger.Logger
}

// SelectionLinkRepositories bundles the seven typed link repositories so the
// service constructor stays readable.
type SelectionLinkRepositories struct {
	Modules       selection.LinkRepository
	Levels        selection.LinkRepository
	Sublevels     selection.LinkRepository
	Warehouses    selection.LinkRepository
	CashRegisters selection.LinkRepository
	ControlPanels selection.LinkRepository
	Sellers       selection.LinkRepository
}

// NewSelectionService creates a new SelectionService.
func NewSelectionService(
	selectionRepo selection.Repository,
	companyRepo scopecat.CompanyRepository,
	branchRepo scopecat.BranchRepository,
	branchResRepo scopecat.BranchResourceRepository,
	companyResRepo scopecat.CompanyResourceRepository,
	links SelectionLinkRepositories,
	refCounters []selection.ReferenceCounter,
	log *logger.Logger,
) *SelectionService {
	return &SelectionService{
		selectionRepo:     selectionRepo,
		companyRepo:       companyRepo,
		branchRepo:        branchRepo,
		branchResRepo:     branchResRepo,
		companyResRepo:    companyResRepo,
		moduleLinks:       links.Modules,
		levelLinks:        links.Levels,
		sublevelLinks:     links.Sublevels,
		warehouseLinks:    links.Warehouses,
		cashRegisterLinks: links.CashRegisters,
		controlPanelLinks: links.ControlPanels,
		sellerLinks:       links.Sellers,
		refCounters:       refCounters,
		logger:            log.With("service", "selection"),
	}
}

// CreateSelectionSet creates an empty selection set anchored at a company and
// optionally at one of its branches.
func (s *SelectionService) CreateSelectionSet(ctx context.Context, companyID shared.ID, branchID *shared.ID, notes string) (*selection.SelectionSet, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if branchID != nil {
		branch, err := s.branchRepo.GetByID(ctx, *branchID)
		if err != nil {
			return nil, err
		}
		if !branch.BelongsTo(company.ID()) {
			return nil, selection.ErrBranchNotInCompany
		}
	}

	set, err := selection.NewSelectionSet(company.ID(), branchID, notes)
	if err != nil {
		return nil, err
	}

	if err := s.selectionRepo.Create(ctx, set); err != nil {
		return nil, err
	}

	s.logger.Info("selection set created",
		"selection_set_id", set.ID().String(),
		"company_id", companyID.String(),
		"has_branch", set.HasBranch(),
	)
	return set, nil
}

// GetSelectionSet retrieves a selection set by ID.
func (s *SelectionService) GetSelectionSet(ctx context.Context, id shared.ID) (*selection.SelectionSet, error) {
	return s.selectionRepo.GetByID(ctx, id)
}

// GetSnapshot returns the full child relation graph of a selection set.
func (s *SelectionService) GetSnapshot(ctx context.Context, id shared.ID) (*selection.Snapshot, error) {
	return s.selectionRepo.GetSnapshot(ctx, id)
}

// UpdateNotes replaces the free-text notes of a selection set.
func (s *SelectionService) UpdateNotes(ctx context.Context, id shared.ID, notes string) (*selection.SelectionSet, error) {
	set, err := s.selectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set.UpdateNotes(notes)
	if err := s.selectionRepo.UpdateNotes(ctx, set); err != nil {
		return nil, err
	}

	return set, nil
}

// DeleteSelectionSet removes a selection set and all its child rows. The
// delete is refused while any request or template item still references the
// set.
func (s *SelectionService) DeleteSelectionSet(ctx context.Context, id shared.ID) error {
	if _, err := s.selectionRepo.GetByID(ctx, id); err != nil {
		return err
	}

	for _, counter := range s.refCounters {
		count, err := counter.CountReferences(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return selection.ErrSelectionSetInUse
		}
	}

	if err := s.selectionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("selection set deleted", "selection_set_id", id.String())
	return nil
}

// SyncModules replaces the chosen modules of a selection set.
func (s *SelectionService) SyncModules(ctx context.Context, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	return s.syncTreeLinks(ctx, s.moduleLinks, "modules", setID, ids)
}

// SyncLevels replaces the chosen levels of a selection set.
func (s *SelectionService) SyncLevels(ctx context.Context, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	return s.syncTreeLinks(ctx, s.levelLinks, "levels", setID, ids)
}

// SyncSublevels replaces the chosen sublevels of a selection set.
func (s *SelectionService) SyncSublevels(ctx context.Context, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	return s.syncTreeLinks(ctx, s.sublevelLinks, "sublevels", setID, ids)
}

// SyncWarehouses replaces the chosen warehouses. Every id must name a
// warehouse owned by the set's branch; one bad id rejects the whole call
// before anything is written.
func (s *SelectionService) SyncWarehouses(ctx context.Context, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	return s.syncBranchScoped(ctx, s.warehouseLinks, scopecat.KindWarehouse, "warehouses", setID, ids)
}

// SyncCashRegisters replaces the chosen cash registers under the same scope
// rule as SyncWarehouses.
func (s *SelectionService) SyncCashRegisters(ctx context.Context, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	return s.syncBranchScoped(ctx, s.cashRegisterLinks, scopecat.KindCashRegister, "cash_registers", setID, ids)
}

// SyncControlPanels replaces the chosen control panels. Every id must name a
// control panel owned by the set's company.
func (s *SelectionService) SyncControlPanels(ctx context.Context, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	return s.syncCompanyScoped(ctx, s.controlPanelLinks, scopecat.KindControlPanel, "control_panels", setID, ids)
}

// SyncSellers replaces the chosen sellers under the same scope rule as
// SyncControlPanels.
func (s *SelectionService) SyncSellers(ctx context.Context, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	return s.syncCompanyScoped(ctx, s.sellerLinks, scopecat.KindSeller, "sellers", setID, ids)
}

func (s *SelectionService) syncTreeLinks(ctx context.Context, links selection.LinkRepository, table string, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	if _, err := s.selectionRepo.GetByID(ctx, setID); err != nil {
		metrics.RowSyncRejections.WithLabelValues(table, "not_found").Inc()
		return nil, err
	}
	return s.syncLinks(ctx, links, table, setID, dedupeIDs(ids))
}

func (s *SelectionService) syncBranchScoped(ctx context.Context, links selection.LinkRepository, kind scopecat.BranchResourceKind, table string, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	set, err := s.selectionRepo.GetByID(ctx, setID)
	if err != nil {
		metrics.RowSyncRejections.WithLabelValues(table, "not_found").Inc()
		return nil, err
	}

	deduped := dedupeIDs(ids)

	if len(deduped) > 0 {
		if !set.HasBranch() {
			metrics.RowSyncRejections.WithLabelValues(table, "scope").Inc()
			return nil, selection.NewScopeError(table, "selection set has no branch, branch-owned picks are not allowed")
		}

		resources, err := s.branchResRepo.ListByIDs(ctx, kind, deduped)
		if err != nil {
			return nil, err
		}
		byID := make(map[shared.ID]*scopecat.BranchResource, len(resources))
		for _, r := range resources {
			byID[r.ID()] = r
		}
		for _, id := range deduped {
			r, ok := byID[id]
			if !ok {
				metrics.RowSyncRejections.WithLabelValues(table, "unknown").Inc()
				return nil, fmt.Errorf("%w: %s %s", selection.ErrUnknownCatalogID, kind, id)
			}
			if !r.BelongsTo(*set.BranchID()) {
				metrics.RowSyncRejections.WithLabelValues(table, "scope").Inc()
				return nil, selection.NewScopeError(table,
					fmt.Sprintf("%s %q does not belong to the selection set branch", kind, r.Name()))
			}
			if !r.IsActive() {
				metrics.RowSyncRejections.WithLabelValues(table, "inactive").Inc()
				return nil, fmt.Errorf("%w: %s %q", selection.ErrInactiveCatalogRow, kind, r.Name())
			}
		}
	}

	return s.syncLinks(ctx, links, table, setID, deduped)
}

func (s *SelectionService) syncCompanyScoped(ctx context.Context, links selection.LinkRepository, kind scopecat.CompanyResourceKind, table string, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	set, err := s.selectionRepo.GetByID(ctx, setID)
	if err != nil {
		metrics.RowSyncRejections.WithLabelValues(table, "not_found").Inc()
		return nil, err
	}

	deduped := dedupeIDs(ids)

	if len(deduped) > 0 {
		resources, err := s.companyResRepo.ListByIDs(ctx, kind, deduped)
		if err != nil {
			return nil, err
		}
		byID := make(map[shared.ID]*scopecat.CompanyResource, len(resources))
		for _, r := range resources {
			byID[r.ID()] = r
		}
		for _, id := range deduped {
			r, ok := byID[id]
			if !ok {
				metrics.RowSyncRejections.WithLabelValues(table, "unknown").Inc()
				return nil, fmt.Errorf("%w: %s %s", selection.ErrUnknownCatalogID, kind, id)
			}
			if !r.BelongsTo(set.CompanyID()) {
				metrics.RowSyncRejections.WithLabelValues(table, "scope").Inc()
				return nil, selection.NewScopeError(table,
					fmt.Sprintf("%s %q does not belong to the selection set company", kind, r.Name()))
			}
			if !r.IsActive() {
				metrics.RowSyncRejections.WithLabelValues(table, "inactive").Inc()
				return nil, fmt.Errorf("%w: %s %q", selection.ErrInactiveCatalogRow, kind, r.Name())
			}
		}
	}

	return s.syncLinks(ctx, links, table, setID, deduped)
}

// syncLinks is the shared row synchronizer: one set-based delete of rows not
// in the target list, one conflict-ignoring bulk insert of the rest. Running
// it twice with the same input is a no-op.
func (s *SelectionService) syncLinks(ctx context.Context, links selection.LinkRepository, table string, setID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	timer := prometheus.NewTimer(metrics.RowSyncDuration.WithLabelValues(table))
	defer timer.ObserveDuration()

	if err := links.DeleteExcept(ctx, setID, ids); err != nil {
		metrics.RowSyncsTotal.WithLabelValues(table, "error").Inc()
		return nil, err
	}
	if err := links.InsertMissing(ctx, setID, ids); err != nil {
		metrics.RowSyncsTotal.WithLabelValues(table, "error").Inc()
		return nil, err
	}

	metrics.RowSyncsTotal.WithLabelValues(table, "success").Inc()
	s.logger.Debug("link table synchronized",
		"selection_set_id", setID.String(),
		"link_table", table,
		"rows", len(ids),
	)
	return ids, nil
}

// dedupeIDs removes duplicates preserving first-seen order.
func dedupeIDs(ids []shared.ID) []shared.ID {
	seen := make(map[shared.ID]struct{}, len(ids))
	out := make([]shared.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
