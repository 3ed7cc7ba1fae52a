package app

import (
	"context"
	"testing"
	"time"

	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type selectionFixture struct {
	svc *SelectionService

	selectionRepo  *fakeSelectionRepo
	companyRepo    *fakeCompanyRepo
	branchRepo     *fakeBranchRepo
	branchResRepo  *fakeBranchResourceRepo
	companyResRepo *fakeCompanyResourceRepo
	refCounter     *fakeRefCounter

	moduleLinks    *fakeLinkRepo
	warehouseLinks *fakeLinkRepo
	sellerLinks    *fakeLinkRepo

	company *scopecat.Company
	branch  *scopecat.Branch
	set     *selection.SelectionSet
}

// newSelectionFixture wires a service around in-memory fakes with one
// company, one branch and one branch-anchored selection set.
func newSelectionFixture(t *testing.T) *selectionFixture {
	t.Helper()

	company, err := scopecat.NewCompany("Acme Retail")
	require.NoError(t, err)
	branch, err := scopecat.NewBranch(company.ID(), "Central")
	require.NoError(t, err)

	branchID := branch.ID()
	set, err := selection.NewSelectionSet(company.ID(), &branchID, "")
	require.NoError(t, err)

	f := &selectionFixture{
		selectionRepo:  newFakeSelectionRepo(),
		companyRepo:    newFakeCompanyRepo(company),
		branchRepo:     newFakeBranchRepo(branch),
		branchResRepo:  &fakeBranchResourceRepo{},
		companyResRepo: &fakeCompanyResourceRepo{},
		refCounter:     &fakeRefCounter{},
		moduleLinks:    &fakeLinkRepo{},
		warehouseLinks: &fakeLinkRepo{},
		sellerLinks:    &fakeLinkRepo{},
		company:        company,
		branch:         branch,
		set:            set,
	}
	f.selectionRepo.add(set)

	f.svc = NewSelectionService(
		f.selectionRepo,
		f.companyRepo,
		f.branchRepo,
		f.branchResRepo,
		f.companyResRepo,
		SelectionLinkRepositories{
			Modules:       f.moduleLinks,
			Levels:        &fakeLinkRepo{},
			Sublevels:     &fakeLinkRepo{},
			Warehouses:    f.warehouseLinks,
			CashRegisters: &fakeLinkRepo{},
			ControlPanels: &fakeLinkRepo{},
			Sellers:       f.sellerLinks,
		},
		[]selection.ReferenceCounter{f.refCounter},
		logger.NewNop(),
	)
	return f
}

func (f *selectionFixture) addWarehouse(t *testing.T, branchID shared.ID) *scopecat.BranchResource {
	t.Helper()
	wh, err := scopecat.NewBranchResource(branchID, scopecat.KindWarehouse, "Warehouse")
	require.NoError(t, err)
	f.branchResRepo.resources = append(f.branchResRepo.resources, wh)
	return wh
}

func (f *selectionFixture) addSeller(t *testing.T, companyID shared.ID) *scopecat.CompanyResource {
	t.Helper()
	seller, err := scopecat.NewCompanyResource(companyID, scopecat.KindSeller, "Seller")
	require.NoError(t, err)
	f.companyResRepo.resources = append(f.companyResRepo.resources, seller)
	return seller
}

// =============================================================================
// Selection Set Lifecycle Tests
// =============================================================================

func TestCreateSelectionSet(t *testing.T) {
	ctx := context.Background()

	t.Run("company only", func(t *testing.T) {
		f := newSelectionFixture(t)

		set, err := f.svc.CreateSelectionSet(ctx, f.company.ID(), nil, "bodega user")

		require.NoError(t, err)
		assert.False(t, set.HasBranch())
		assert.Equal(t, "bodega user", set.Notes())
		assert.Contains(t, f.selectionRepo.sets, set.ID())
	})

	t.Run("company and branch", func(t *testing.T) {
		f := newSelectionFixture(t)
		branchID := f.branch.ID()

		set, err := f.svc.CreateSelectionSet(ctx, f.company.ID(), &branchID, "")

		require.NoError(t, err)
		assert.True(t, set.HasBranch())
	})

	t.Run("branch of another company rejected", func(t *testing.T) {
		f := newSelectionFixture(t)
		other, err := scopecat.NewCompany("Other Corp")
		require.NoError(t, err)
		foreignBranch, err := scopecat.NewBranch(other.ID(), "Remote")
		require.NoError(t, err)
		f.companyRepo.companies[other.ID()] = other
		f.branchRepo.branches[foreignBranch.ID()] = foreignBranch

		foreignID := foreignBranch.ID()
		_, err = f.svc.CreateSelectionSet(ctx, f.company.ID(), &foreignID, "")

		assert.ErrorIs(t, err, selection.ErrBranchNotInCompany)
	})

	t.Run("unknown company rejected", func(t *testing.T) {
		f := newSelectionFixture(t)

		_, err := f.svc.CreateSelectionSet(ctx, shared.NewID(), nil, "")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestDeleteSelectionSet(t *testing.T) {
	ctx := context.Background()

	t.Run("unreferenced set deleted", func(t *testing.T) {
		f := newSelectionFixture(t)

		err := f.svc.DeleteSelectionSet(ctx, f.set.ID())

		require.NoError(t, err)
		assert.NotContains(t, f.selectionRepo.sets, f.set.ID())
	})

	t.Run("referenced set refused", func(t *testing.T) {
		f := newSelectionFixture(t)
		f.refCounter.count = 2

		err := f.svc.DeleteSelectionSet(ctx, f.set.ID())

		assert.ErrorIs(t, err, selection.ErrSelectionSetInUse)
		assert.Contains(t, f.selectionRepo.sets, f.set.ID())
	})

	t.Run("unknown set", func(t *testing.T) {
		f := newSelectionFixture(t)

		err := f.svc.DeleteSelectionSet(ctx, shared.NewID())

		assert.ErrorIs(t, err, selection.ErrSelectionSetNotFound)
	})
}

// =============================================================================
// Row Synchronizer Tests
// =============================================================================

func TestSyncModules_ReplacesMembership(t *testing.T) {
	ctx := context.Background()
	f := newSelectionFixture(t)

	id1 := shared.NewID()
	id2 := shared.NewID()
	id3 := shared.NewID()
	id4 := shared.NewID()

	_, err := f.svc.SyncModules(ctx, f.set.ID(), []shared.ID{id1, id2, id3})
	require.NoError(t, err)
	assert.Equal(t, []shared.ID{id1, id2, id3}, f.moduleLinks.rows)

	// {1,2,3} -> {2,3,4}: 1 goes, 2 and 3 survive, 4 arrives.
	_, err = f.svc.SyncModules(ctx, f.set.ID(), []shared.ID{id2, id3, id4})
	require.NoError(t, err)
	assert.Equal(t, []shared.ID{id2, id3, id4}, f.moduleLinks.rows)
}

func TestSyncModules_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newSelectionFixture(t)

	ids := []shared.ID{shared.NewID(), shared.NewID()}

	first, err := f.svc.SyncModules(ctx, f.set.ID(), ids)
	require.NoError(t, err)

	second, err := f.svc.SyncModules(ctx, f.set.ID(), ids)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, ids, f.moduleLinks.rows)
}

func TestSyncModules_DedupesPreservingOrder(t *testing.T) {
	ctx := context.Background()
	f := newSelectionFixture(t)

	id1 := shared.NewID()
	id2 := shared.NewID()

	result, err := f.svc.SyncModules(ctx, f.set.ID(), []shared.ID{id1, id2, id1, id2, id1})

	require.NoError(t, err)
	assert.Equal(t, []shared.ID{id1, id2}, result)
	assert.Equal(t, []shared.ID{id1, id2}, f.moduleLinks.rows)
}

func TestSyncModules_EmptyListClearsTable(t *testing.T) {
	ctx := context.Background()
	f := newSelectionFixture(t)
	f.moduleLinks.rows = []shared.ID{shared.NewID(), shared.NewID()}

	result, err := f.svc.SyncModules(ctx, f.set.ID(), nil)

	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, f.moduleLinks.rows)
}

func TestSyncModules_UnknownSet(t *testing.T) {
	ctx := context.Background()
	f := newSelectionFixture(t)

	_, err := f.svc.SyncModules(ctx, shared.NewID(), []shared.ID{shared.NewID()})

	assert.ErrorIs(t, err, selection.ErrSelectionSetNotFound)
	assert.Zero(t, f.moduleLinks.deleteCalls)
	assert.Zero(t, f.moduleLinks.insertCalls)
}

// =============================================================================
// Scope Validation Tests
// =============================================================================

func TestSyncWarehouses_ScopeChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("owned warehouse accepted", func(t *testing.T) {
		f := newSelectionFixture(t)
		wh := f.addWarehouse(t, f.branch.ID())

		result, err := f.svc.SyncWarehouses(ctx, f.set.ID(), []shared.ID{wh.ID()})

		require.NoError(t, err)
		assert.Equal(t, []shared.ID{wh.ID()}, result)
	})

	t.Run("foreign warehouse rejected before any write", func(t *testing.T) {
		f := newSelectionFixture(t)
		owned := f.addWarehouse(t, f.branch.ID())

		otherBranch, err := scopecat.NewBranch(f.company.ID(), "North")
		require.NoError(t, err)
		foreign := f.addWarehouse(t, otherBranch.ID())

		_, err = f.svc.SyncWarehouses(ctx, f.set.ID(), []shared.ID{owned.ID(), foreign.ID()})

		assert.ErrorIs(t, err, selection.ErrScopeViolation)
		var scopeErr *selection.ScopeError
		require.ErrorAs(t, err, &scopeErr)
		assert.Equal(t, "warehouses", scopeErr.Field)

		// The whole call is rejected: nothing was deleted or inserted.
		assert.Zero(t, f.warehouseLinks.deleteCalls)
		assert.Zero(t, f.warehouseLinks.insertCalls)
	})

	t.Run("retired warehouse rejected even in the set's own branch", func(t *testing.T) {
		f := newSelectionFixture(t)
		retired := scopecat.ReconstituteBranchResource(
			shared.NewID(), f.branch.ID(), scopecat.KindWarehouse, "Old Depot", false, time.Now())
		f.branchResRepo.resources = append(f.branchResRepo.resources, retired)

		_, err := f.svc.SyncWarehouses(ctx, f.set.ID(), []shared.ID{retired.ID()})

		assert.ErrorIs(t, err, selection.ErrInactiveCatalogRow)
		assert.Zero(t, f.warehouseLinks.deleteCalls)
		assert.Zero(t, f.warehouseLinks.insertCalls)
	})

	t.Run("unknown warehouse id rejected", func(t *testing.T) {
		f := newSelectionFixture(t)

		_, err := f.svc.SyncWarehouses(ctx, f.set.ID(), []shared.ID{shared.NewID()})

		assert.ErrorIs(t, err, selection.ErrUnknownCatalogID)
		assert.Zero(t, f.warehouseLinks.deleteCalls)
	})

	t.Run("branchless set refuses branch picks", func(t *testing.T) {
		f := newSelectionFixture(t)
		companyOnly, err := selection.NewSelectionSet(f.company.ID(), nil, "")
		require.NoError(t, err)
		f.selectionRepo.add(companyOnly)
		wh := f.addWarehouse(t, f.branch.ID())

		_, err = f.svc.SyncWarehouses(ctx, companyOnly.ID(), []shared.ID{wh.ID()})

		assert.ErrorIs(t, err, selection.ErrScopeViolation)
	})

	t.Run("branchless set may clear branch tables", func(t *testing.T) {
		f := newSelectionFixture(t)
		companyOnly, err := selection.NewSelectionSet(f.company.ID(), nil, "")
		require.NoError(t, err)
		f.selectionRepo.add(companyOnly)

		result, err := f.svc.SyncWarehouses(ctx, companyOnly.ID(), nil)

		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestSyncSellers_CompanyScope(t *testing.T) {
	ctx := context.Background()

	t.Run("owned seller accepted", func(t *testing.T) {
		f := newSelectionFixture(t)
		seller := f.addSeller(t, f.company.ID())

		result, err := f.svc.SyncSellers(ctx, f.set.ID(), []shared.ID{seller.ID()})

		require.NoError(t, err)
		assert.Equal(t, []shared.ID{seller.ID()}, result)
	})

	t.Run("seller of another company rejected", func(t *testing.T) {
		f := newSelectionFixture(t)
		other, err := scopecat.NewCompany("Other Corp")
		require.NoError(t, err)
		foreign := f.addSeller(t, other.ID())

		_, err = f.svc.SyncSellers(ctx, f.set.ID(), []shared.ID{foreign.ID()})

		assert.ErrorIs(t, err, selection.ErrScopeViolation)
		assert.Zero(t, f.sellerLinks.deleteCalls)
		assert.Zero(t, f.sellerLinks.insertCalls)
	})

	t.Run("retired seller rejected", func(t *testing.T) {
		f := newSelectionFixture(t)
		retired := scopecat.ReconstituteCompanyResource(
			shared.NewID(), f.company.ID(), scopecat.KindSeller, "Former Seller", false, time.Now())
		f.companyResRepo.resources = append(f.companyResRepo.resources, retired)

		_, err := f.svc.SyncSellers(ctx, f.set.ID(), []shared.ID{retired.ID()})

		assert.ErrorIs(t, err, selection.ErrInactiveCatalogRow)
		assert.Zero(t, f.sellerLinks.insertCalls)
	})
}
