package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erpacceso/api/internal/metrics"
	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
)

// CloneService copies a selection set into a new independent aggregate,
// re-scoping branch and company owned picks to the target anchor. Picks that
// do not exist under the target scope are dropped silently; module tree picks
// and global rows whose catalog entries are still active travel verbatim.
type CloneService struct {
	selectionRepo  selection.Repository
	companyRepo    scopecat.CompanyRepository
	branchRepo     scopecat.BranchRepository
	branchResRepo  scopecat.BranchResourceRepository
	companyResRepo scopecat.CompanyResourceRepository
	catalogRepo    globalcat.Repository
	logger         *logger.Logger
}

// NewCloneService creates a new CloneService.
func NewCloneService(
	selectionRepo selection.Repository,
	companyRepo scopecat.CompanyRepository,
	branchRepo scopecat.BranchRepository,
	branchResRepo scopecat.BranchResourceRepository,
	companyResRepo scopecat.CompanyResourceRepository,
	catalogRepo globalcat.Repository,
	log *logger.Logger,
) *CloneService {
	return &CloneService{
		selectionRepo:  selectionRepo,
		companyRepo:    companyRepo,
		branchRepo:     branchRepo,
		branchResRepo:  branchResRepo,
		companyResRepo: companyResRepo,
		catalogRepo:    catalogRepo,
		logger:         log.With("service", "clone"),
	}
}

// CloneInput names the target anchor of a clone. A nil NotesOverride keeps
// the source notes.
type CloneInput struct {
	TargetCompanyID shared.ID
	TargetBranchID  *shared.ID
	NotesOverride   *string
}

// Clone copies the source selection set into a brand-new one anchored at the
// given target. The new set shares no rows with the source; editing one never
// touches the other.
func (s *CloneService) Clone(ctx context.Context, sourceID shared.ID, input CloneInput) (*selection.SelectionSet, error) {
	timer := prometheus.NewTimer(metrics.CloneDuration)
	defer timer.ObserveDuration()

	source, err := s.selectionRepo.GetByID(ctx, sourceID)
	if err != nil {
		metrics.ClonesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, input.TargetCompanyID)
	if err != nil {
		metrics.ClonesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if input.TargetBranchID != nil {
		branch, err := s.branchRepo.GetByID(ctx, *input.TargetBranchID)
		if err != nil {
			metrics.ClonesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		if !branch.BelongsTo(company.ID()) {
			metrics.ClonesTotal.WithLabelValues("error").Inc()
			return nil, selection.ErrBranchNotInCompany
		}
	}

	snap, err := s.selectionRepo.GetSnapshot(ctx, sourceID)
	if err != nil {
		metrics.ClonesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	notes := source.Notes()
	if input.NotesOverride != nil {
		notes = *input.NotesOverride
	}

	target, err := selection.NewSelectionSet(company.ID(), input.TargetBranchID, notes)
	if err != nil {
		metrics.ClonesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	rebound := snap.Rebind(target.ID())

	if err := s.rescope(ctx, target, rebound); err != nil {
		metrics.ClonesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := s.filterGlobals(ctx, rebound); err != nil {
		metrics.ClonesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.selectionRepo.CreateWithSnapshot(ctx, target, rebound); err != nil {
		metrics.ClonesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ClonesTotal.WithLabelValues("success").Inc()
	s.logger.Info("selection set cloned",
		"source_id", sourceID.String(),
		"target_id", target.ID().String(),
		"target_company_id", company.ID().String(),
	)
	return target, nil
}

// rescope filters branch and company owned picks down to rows that exist and
// are active under the target anchor. Non-portable picks disappear from the
// clone without failing the operation.
func (s *CloneService) rescope(ctx context.Context, target *selection.SelectionSet, snap *selection.Snapshot) error {
	if target.HasBranch() {
		kept, err := s.keepBranchOwned(ctx, scopecat.KindWarehouse, *target.BranchID(), snap.WarehouseIDs)
		if err != nil {
			return err
		}
		metrics.CloneRowsDropped.WithLabelValues("warehouses").Add(float64(len(snap.WarehouseIDs) - len(kept)))
		snap.WarehouseIDs = kept

		kept, err = s.keepBranchOwned(ctx, scopecat.KindCashRegister, *target.BranchID(), snap.CashRegisterIDs)
		if err != nil {
			return err
		}
		metrics.CloneRowsDropped.WithLabelValues("cash_registers").Add(float64(len(snap.CashRegisterIDs) - len(kept)))
		snap.CashRegisterIDs = kept
	} else {
		metrics.CloneRowsDropped.WithLabelValues("warehouses").Add(float64(len(snap.WarehouseIDs)))
		metrics.CloneRowsDropped.WithLabelValues("cash_registers").Add(float64(len(snap.CashRegisterIDs)))
		snap.WarehouseIDs = nil
		snap.CashRegisterIDs = nil
	}

	kept, err := s.keepCompanyOwned(ctx, scopecat.KindControlPanel, target.CompanyID(), snap.ControlPanelIDs)
	if err != nil {
		return err
	}
	metrics.CloneRowsDropped.WithLabelValues("control_panels").Add(float64(len(snap.ControlPanelIDs) - len(kept)))
	snap.ControlPanelIDs = kept

	kept, err = s.keepCompanyOwned(ctx, scopecat.KindSeller, target.CompanyID(), snap.SellerIDs)
	if err != nil {
		return err
	}
	metrics.CloneRowsDropped.WithLabelValues("sellers").Add(float64(len(snap.SellerIDs) - len(kept)))
	snap.SellerIDs = kept

	return nil
}

func (s *CloneService) keepBranchOwned(ctx context.Context, kind scopecat.BranchResourceKind, branchID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	resources, err := s.branchResRepo.ListByIDs(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	portable := make(map[shared.ID]struct{}, len(resources))
	for _, r := range resources {
		if r.IsActive() && r.BelongsTo(branchID) {
			portable[r.ID()] = struct{}{}
		}
	}

	kept := make([]shared.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := portable[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept, nil
}

func (s *CloneService) keepCompanyOwned(ctx context.Context, kind scopecat.CompanyResourceKind, companyID shared.ID, ids []shared.ID) ([]shared.ID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	resources, err := s.companyResRepo.ListByIDs(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	portable := make(map[shared.ID]struct{}, len(resources))
	for _, r := range resources {
		if r.IsActive() && r.BelongsTo(companyID) {
			portable[r.ID()] = struct{}{}
		}
	}

	kept := make([]shared.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := portable[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept, nil
}

// filterGlobals drops global rows whose catalog entries have been retired
// since the source was built. Values of surviving rows travel verbatim.
func (s *CloneService) filterGlobals(ctx context.Context, snap *selection.Snapshot) error {
	if len(snap.ActionValues) > 0 {
		ids := make([]shared.ID, 0, len(snap.ActionValues))
		for _, av := range snap.ActionValues {
			ids = append(ids, av.PermissionID())
		}
		perms, err := s.catalogRepo.ListActionPermissionsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		active := make(map[shared.ID]struct{}, len(perms))
		for _, p := range perms {
			if p.IsActive() {
				active[p.ID()] = struct{}{}
			}
		}
		kept := snap.ActionValues[:0]
		for _, av := range snap.ActionValues {
			if _, ok := active[av.PermissionID()]; ok {
				kept = append(kept, av)
			}
		}
		snap.ActionValues = kept
	}

	if len(snap.MatrixGrants) > 0 {
		ids := make([]shared.ID, 0, len(snap.MatrixGrants))
		for _, mg := range snap.MatrixGrants {
			ids = append(ids, mg.PermissionID())
		}
		perms, err := s.catalogRepo.ListMatrixPermissionsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		active := make(map[shared.ID]struct{}, len(perms))
		for _, p := range perms {
			if p.IsActive() {
				active[p.ID()] = struct{}{}
			}
		}
		kept := snap.MatrixGrants[:0]
		for _, mg := range snap.MatrixGrants {
			if _, ok := active[mg.PermissionID()]; ok {
				kept = append(kept, mg)
			}
		}
		snap.MatrixGrants = kept
	}

	if len(snap.PaymentGrants) > 0 {
		ids := make([]shared.ID, 0, len(snap.PaymentGrants))
		for _, pg := range snap.PaymentGrants {
			ids = append(ids, pg.PaymentMethodID())
		}
		methods, err := s.catalogRepo.ListPaymentMethodsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		active := make(map[shared.ID]struct{}, len(methods))
		for _, m := range methods {
			if m.IsActive() {
				active[m.ID()] = struct{}{}
			}
		}
		kept := snap.PaymentGrants[:0]
		for _, pg := range snap.PaymentGrants {
			if _, ok := active[pg.PaymentMethodID()]; ok {
				kept = append(kept, pg)
			}
		}
		snap.PaymentGrants = kept
	}

	return nil
}
