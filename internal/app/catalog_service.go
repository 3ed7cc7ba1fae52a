package app

import (
	"context"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/moduletree"
	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
)

// CatalogService exposes the reference catalogs the selection flow picks
// from. It is read-mostly; creation exists for seeding and administration.
type CatalogService struct {
	companyRepo    scopecat.CompanyRepository
	branchRepo     scopecat.BranchRepository
	branchResRepo  scopecat.BranchResourceRepository
	companyResRepo scopecat.CompanyResourceRepository
	treeRepo       moduletree.Repository
	globalRepo     globalcat.Repository
	logger         *logger.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	companyRepo scopecat.CompanyRepository,
	branchRepo scopecat.BranchRepository,
	branchResRepo scopecat.BranchResourceRepository,
	companyResRepo scopecat.CompanyResourceRepository,
	treeRepo moduletree.Repository,
	globalRepo globalcat.Repository,
	log *logger.Logger,
) *CatalogService {
	return &CatalogService{
		companyRepo:    companyRepo,
		branchRepo:     branchRepo,
		branchResRepo:  branchResRepo,
		companyResRepo: companyResRepo,
		treeRepo:       treeRepo,
		globalRepo:     globalRepo,
		logger:         log.With("service", "catalog"),
	}
}

// ListCompanies lists active companies.
func (s *CatalogService) ListCompanies(ctx context.Context) ([]*scopecat.Company, error) {
	return s.companyRepo.ListActive(ctx)
}

// ListBranches lists active branches of a company.
func (s *CatalogService) ListBranches(ctx context.Context, companyID shared.ID) ([]*scopecat.Branch, error) {
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return nil, err
	}
	return s.branchRepo.ListActiveByCompany(ctx, companyID)
}

// ListBranchResources lists active branch-owned resources of one kind.
func (s *CatalogService) ListBranchResources(ctx context.Context, kind scopecat.BranchResourceKind, branchID shared.ID) ([]*scopecat.BranchResource, error) {
	if _, err := s.branchRepo.GetByID(ctx, branchID); err != nil {
		return nil, err
	}
	return s.branchResRepo.ListActiveByBranch(ctx, kind, branchID)
}

// ListCompanyResources lists active company-owned resources of one kind.
func (s *CatalogService) ListCompanyResources(ctx context.Context, kind scopecat.CompanyResourceKind, companyID shared.ID) ([]*scopecat.CompanyResource, error) {
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return nil, err
	}
	return s.companyResRepo.ListActiveByCompany(ctx, kind, companyID)
}

// ListModules lists active root modules.
func (s *CatalogService) ListModules(ctx context.Context) ([]*moduletree.Module, error) {
	return s.treeRepo.ListActiveModules(ctx)
}

// ListLevels lists active levels of a module.
func (s *CatalogService) ListLevels(ctx context.Context, moduleID shared.ID) ([]*moduletree.Level, error) {
	return s.treeRepo.ListActiveLevels(ctx, moduleID)
}

// ListSublevels lists active sublevels of a level.
func (s *CatalogService) ListSublevels(ctx context.Context, levelID shared.ID) ([]*moduletree.Sublevel, error) {
	return s.treeRepo.ListActiveSublevels(ctx, levelID)
}

// ListActionPermissions lists active action permissions.
func (s *CatalogService) ListActionPermissions(ctx context.Context) ([]*globalcat.ActionPermission, error) {
	return s.globalRepo.ListActiveActionPermissions(ctx)
}

// ListMatrixPermissions lists active matrix permissions.
func (s *CatalogService) ListMatrixPermissions(ctx context.Context) ([]*globalcat.MatrixPermission, error) {
	return s.globalRepo.ListActiveMatrixPermissions(ctx)
}

// ListPaymentMethods lists active payment methods.
func (s *CatalogService) ListPaymentMethods(ctx context.Context) ([]*globalcat.PaymentMethod, error) {
	return s.globalRepo.ListActivePaymentMethods(ctx)
}
