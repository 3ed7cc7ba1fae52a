package scopecat

import (
	"context"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// CompanyRepository provides access to the company catalog.
type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id shared.ID) (*Company, error)
	GetByName(ctx context.Context, name string) (*Company, error)
	ListActive(ctx context.Context) ([]*Company, error)
}

// BranchRepository provides access to the branch catalog.
type BranchRepository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id shared.ID) (*Branch, error)
	GetByName(ctx context.Context, companyID shared.ID, name string) (*Branch, error)
	ListActiveByCompany(ctx context.Context, companyID shared.ID) ([]*Branch, error)
}

// BranchResourceRepository provides access to branch-owned catalogs
// (warehouses, cash registers). Each kind lives in its own table; the kind
// argument selects it.
type BranchResourceRepository interface {
	Create(ctx context.Context, r *BranchResource) error
	ListByIDs(ctx context.Context, kind BranchResourceKind, ids []shared.ID) ([]*BranchResource, error)
	ListActiveByBranch(ctx context.Context, kind BranchResourceKind, branchID shared.ID) ([]*BranchResource, error)
}

// CompanyResourceRepository provides access to company-owned catalogs
// (control panels, sellers).
type CompanyResourceRepository interface {
	Create(ctx context.Context, r *CompanyResource) error
	ListByIDs(ctx context.Context, kind CompanyResourceKind, ids []shared.ID) ([]*CompanyResource, error)
	ListActiveByCompany(ctx context.Context, kind CompanyResourceKind, companyID shared.ID) ([]*CompanyResource, error)
}
