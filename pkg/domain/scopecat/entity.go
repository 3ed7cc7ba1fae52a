// Package scopecat holds the scoped reference catalogs: companies, their
// branches, and the branch/company owned resources (warehouses, cash
// registers, control panels, sellers) that selection sets can pick from.
package scopecat

import (
	"fmt"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Company is the root scope. Every other scoped catalog hangs off a company
// directly or through a branch.
type Company struct {
	id        shared.ID
	name      string
	isActive  bool
	createdAt time.Time
}

// NewCompany creates a company with a normalized name.
func NewCompany(name string) (*Company, error) {
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", shared.ErrValidation)
	}
	return &Company{
		id:        shared.NewID(),
		name:      name,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteCompany recreates a Company from persistence.
func ReconstituteCompany(id shared.ID, name string, isActive bool, createdAt time.Time) *Company {
	return &Company{id: id, name: name, isActive: isActive, createdAt: createdAt}
}

func (c *Company) ID() shared.ID        { return c.id }
func (c *Company) Name() string         { return c.name }
func (c *Company) IsActive() bool       { return c.isActive }
func (c *Company) CreatedAt() time.Time { return c.createdAt }

// Branch belongs to exactly one company.
type Branch struct {
	id        shared.ID
	companyID shared.ID
	name      string
	isActive  bool
	createdAt time.Time
}

// NewBranch creates a branch under a company.
func NewBranch(companyID shared.ID, name string) (*Branch, error) {
	if companyID.IsZero() {
		return nil, fmt.Errorf("%w: companyID is required", shared.ErrValidation)
	}
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: branch name is required", shared.ErrValidation)
	}
	return &Branch{
		id:        shared.NewID(),
		companyID: companyID,
		name:      name,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteBranch recreates a Branch from persistence.
func ReconstituteBranch(id, companyID shared.ID, name string, isActive bool, createdAt time.Time) *Branch {
	return &Branch{id: id, companyID: companyID, name: name, isActive: isActive, createdAt: createdAt}
}

func (b *Branch) ID() shared.ID        { return b.id }
func (b *Branch) CompanyID() shared.ID { return b.companyID }
func (b *Branch) Name() string         { return b.name }
func (b *Branch) IsActive() bool       { return b.isActive }
func (b *Branch) CreatedAt() time.Time { return b.createdAt }

// BelongsTo reports whether the branch is anchored to the given company.
func (b *Branch) BelongsTo(companyID shared.ID) bool {
	return b.companyID.Equals(companyID)
}

// BranchResource is a catalog row owned by a branch (warehouse, cash
// register). The resource kind is carried so scope errors can name the
// offending catalog.
type BranchResource struct {
	id        shared.ID
	branchID  shared.ID
	kind      BranchResourceKind
	name      string
	isActive  bool
	createdAt time.Time
}

// BranchResourceKind discriminates branch-owned catalogs.
type BranchResourceKind string

// Branch-owned catalog kinds.
const (
	KindWarehouse    BranchResourceKind = "warehouse"
	KindCashRegister BranchResourceKind = "cash_register"
)

// NewBranchResource creates a branch-owned catalog row.
func NewBranchResource(branchID shared.ID, kind BranchResourceKind, name string) (*BranchResource, error) {
	if branchID.IsZero() {
		return nil, fmt.Errorf("%w: branchID is required", shared.ErrValidation)
	}
	if kind != KindWarehouse && kind != KindCashRegister {
		return nil, fmt.Errorf("%w: unknown branch resource kind %q", shared.ErrValidation, kind)
	}
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return &BranchResource{
		id:        shared.NewID(),
		branchID:  branchID,
		kind:      kind,
		name:      name,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteBranchResource recreates a BranchResource from persistence.
func ReconstituteBranchResource(id, branchID shared.ID, kind BranchResourceKind, name string, isActive bool, createdAt time.Time) *BranchResource {
	return &BranchResource{id: id, branchID: branchID, kind: kind, name: name, isActive: isActive, createdAt: createdAt}
}

func (r *BranchResource) ID() shared.ID            { return r.id }
func (r *BranchResource) BranchID() shared.ID      { return r.branchID }
func (r *BranchResource) Kind() BranchResourceKind { return r.kind }
func (r *BranchResource) Name() string             { return r.name }
func (r *BranchResource) IsActive() bool           { return r.isActive }
func (r *BranchResource) CreatedAt() time.Time     { return r.createdAt }

// BelongsTo reports whether the resource is owned by the given branch.
func (r *BranchResource) BelongsTo(branchID shared.ID) bool {
	return r.branchID.Equals(branchID)
}

// CompanyResource is a catalog row owned directly by a company (control
// panel, seller).
type CompanyResource struct {
	id        shared.ID
	companyID shared.ID
	kind      CompanyResourceKind
	name      string
	isActive  bool
	createdAt time.Time
}

// CompanyResourceKind discriminates company-owned catalogs.
type CompanyResourceKind string

// Company-owned catalog kinds.
const (
	KindControlPanel CompanyResourceKind = "control_panel"
	KindSeller       CompanyResourceKind = "seller"
)

// NewCompanyResource creates a company-owned catalog row.
func NewCompanyResource(companyID shared.ID, kind CompanyResourceKind, name string) (*CompanyResource, error) {
	if companyID.IsZero() {
		return nil, fmt.Errorf("%w: companyID is required", shared.ErrValidation)
	}
	if kind != KindControlPanel && kind != KindSeller {
		return nil, fmt.Errorf("%w: unknown company resource kind %q", shared.ErrValidation, kind)
	}
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return &CompanyResource{
		id:        shared.NewID(),
		companyID: companyID,
		kind:      kind,
		name:      name,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteCompanyResource recreates a CompanyResource from persistence.
func ReconstituteCompanyResource(id, companyID shared.ID, kind CompanyResourceKind, name string, isActive bool, createdAt time.Time) *CompanyResource {
	return &CompanyResource{id: id, companyID: companyID, kind: kind, name: name, isActive: isActive, createdAt: createdAt}
}

func (r *CompanyResource) ID() shared.ID             { return r.id }
func (r *CompanyResource) CompanyID() shared.ID      { return r.companyID }
func (r *CompanyResource) Kind() CompanyResourceKind { return r.kind }
func (r *CompanyResource) Name() string              { return r.name }
func (r *CompanyResource) IsActive() bool            { return r.isActive }
func (r *CompanyResource) CreatedAt() time.Time      { return r.createdAt }

// BelongsTo reports whether the resource is owned by the given company.
func (r *CompanyResource) BelongsTo(companyID shared.ID) bool {
	return r.companyID.Equals(companyID)
}
