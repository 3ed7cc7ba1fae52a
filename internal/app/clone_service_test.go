package app

import (
	"context"
	"testing"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cloneFixture struct {
	svc *CloneService

	selectionRepo  *fakeSelectionRepo
	companyRepo    *fakeCompanyRepo
	branchRepo     *fakeBranchRepo
	branchResRepo  *fakeBranchResourceRepo
	companyResRepo *fakeCompanyResourceRepo
	catalogRepo    *fakeCatalogRepo

	company *scopecat.Company
	branchA *scopecat.Branch
	branchB *scopecat.Branch
	source  *selection.SelectionSet
}

// newCloneFixture wires a clone service with one company, two branches and a
// source selection set anchored at branch A.
func newCloneFixture(t *testing.T) *cloneFixture {
	t.Helper()

	company, err := scopecat.NewCompany("Acme Retail")
	require.NoError(t, err)
	branchA, err := scopecat.NewBranch(company.ID(), "Central")
	require.NoError(t, err)
	branchB, err := scopecat.NewBranch(company.ID(), "North")
	require.NoError(t, err)

	branchAID := branchA.ID()
	source, err := selection.NewSelectionSet(company.ID(), &branchAID, "seed notes")
	require.NoError(t, err)

	f := &cloneFixture{
		selectionRepo:  newFakeSelectionRepo(),
		companyRepo:    newFakeCompanyRepo(company),
		branchRepo:     newFakeBranchRepo(branchA, branchB),
		branchResRepo:  &fakeBranchResourceRepo{},
		companyResRepo: &fakeCompanyResourceRepo{},
		catalogRepo:    &fakeCatalogRepo{},
		company:        company,
		branchA:        branchA,
		branchB:        branchB,
		source:         source,
	}
	f.selectionRepo.add(source)

	f.svc = NewCloneService(
		f.selectionRepo,
		f.companyRepo,
		f.branchRepo,
		f.branchResRepo,
		f.companyResRepo,
		f.catalogRepo,
		logger.NewNop(),
	)
	return f
}

func (f *cloneFixture) setSnapshot(snap *selection.Snapshot) {
	f.selectionRepo.snapshots[f.source.ID()] = snap
}

func (f *cloneFixture) addWarehouse(t *testing.T, branchID shared.ID, name string) *scopecat.BranchResource {
	t.Helper()
	wh, err := scopecat.NewBranchResource(branchID, scopecat.KindWarehouse, name)
	require.NoError(t, err)
	f.branchResRepo.resources = append(f.branchResRepo.resources, wh)
	return wh
}

func (f *cloneFixture) addSeller(t *testing.T, companyID shared.ID, name string) *scopecat.CompanyResource {
	t.Helper()
	seller, err := scopecat.NewCompanyResource(companyID, scopecat.KindSeller, name)
	require.NoError(t, err)
	f.companyResRepo.resources = append(f.companyResRepo.resources, seller)
	return seller
}

// =============================================================================
// Clone Tests
// =============================================================================

func TestClone_CreatesIndependentCopy(t *testing.T) {
	ctx := context.Background()
	f := newCloneFixture(t)

	moduleID := shared.NewID()
	perm, err := globalcat.NewActionPermission("sales", "max discount", globalcat.KindPercent)
	require.NoError(t, err)
	f.catalogRepo.actions = append(f.catalogRepo.actions, perm)

	sourceValue := selection.ReconstituteActionValue(f.source.ID(), perm.ID(), globalcat.KindPercent, selection.TypedValue{Decimal: decimalPtr(10)})
	f.setSnapshot(&selection.Snapshot{
		ModuleIDs:    []shared.ID{moduleID},
		ActionValues: []*selection.ActionValue{sourceValue},
	})

	branchBID := f.branchB.ID()
	clone, err := f.svc.Clone(ctx, f.source.ID(), CloneInput{
		TargetCompanyID: f.company.ID(),
		TargetBranchID:  &branchBID,
	})

	require.NoError(t, err)
	assert.NotEqual(t, f.source.ID(), clone.ID())
	assert.Equal(t, "seed notes", clone.Notes())
	assert.Equal(t, branchBID, *clone.BranchID())

	snap := f.selectionRepo.createdWithSnapshot[clone.ID()]
	require.NotNil(t, snap)
	assert.Equal(t, []shared.ID{moduleID}, snap.ModuleIDs)
	require.Len(t, snap.ActionValues, 1)
	assert.Equal(t, clone.ID(), snap.ActionValues[0].SelectionSetID())
	assert.Equal(t, 10.0, *snap.ActionValues[0].Value().Decimal)

	// Source rows keep pointing at the source set.
	assert.Equal(t, f.source.ID(), sourceValue.SelectionSetID())
}

func TestClone_NotesOverride(t *testing.T) {
	ctx := context.Background()
	f := newCloneFixture(t)
	f.setSnapshot(&selection.Snapshot{ModuleIDs: []shared.ID{shared.NewID()}})

	override := "replacement profile"
	clone, err := f.svc.Clone(ctx, f.source.ID(), CloneInput{
		TargetCompanyID: f.company.ID(),
		NotesOverride:   &override,
	})

	require.NoError(t, err)
	assert.Equal(t, override, clone.Notes())
}

func TestClone_DropsNonPortableScopedPicks(t *testing.T) {
	ctx := context.Background()
	f := newCloneFixture(t)

	portable := f.addWarehouse(t, f.branchB.ID(), "Shared depot")
	foreign := f.addWarehouse(t, f.branchA.ID(), "Branch A only")

	f.setSnapshot(&selection.Snapshot{
		WarehouseIDs: []shared.ID{portable.ID(), foreign.ID()},
	})

	branchBID := f.branchB.ID()
	clone, err := f.svc.Clone(ctx, f.source.ID(), CloneInput{
		TargetCompanyID: f.company.ID(),
		TargetBranchID:  &branchBID,
	})

	// Non-portable picks disappear silently; the clone still succeeds.
	require.NoError(t, err)
	snap := f.selectionRepo.createdWithSnapshot[clone.ID()]
	assert.Equal(t, []shared.ID{portable.ID()}, snap.WarehouseIDs)
}

func TestClone_BranchlessTargetDropsAllBranchPicks(t *testing.T) {
	ctx := context.Background()
	f := newCloneFixture(t)

	wh := f.addWarehouse(t, f.branchA.ID(), "Central depot")
	seller := f.addSeller(t, f.company.ID(), "Counter seller")

	f.setSnapshot(&selection.Snapshot{
		WarehouseIDs: []shared.ID{wh.ID()},
		SellerIDs:    []shared.ID{seller.ID()},
	})

	clone, err := f.svc.Clone(ctx, f.source.ID(), CloneInput{TargetCompanyID: f.company.ID()})

	require.NoError(t, err)
	snap := f.selectionRepo.createdWithSnapshot[clone.ID()]
	assert.Empty(t, snap.WarehouseIDs)
	// Company-owned picks survive under the same company.
	assert.Equal(t, []shared.ID{seller.ID()}, snap.SellerIDs)
}

func TestClone_FiltersRetiredGlobalRows(t *testing.T) {
	ctx := context.Background()
	f := newCloneFixture(t)

	activePerm, err := globalcat.NewActionPermission("sales", "max discount", globalcat.KindPercent)
	require.NoError(t, err)
	retiredPerm := globalcat.ReconstituteActionPermission(
		shared.NewID(), "legacy", "old toggle", globalcat.KindBool, false, activePerm.CreatedAt())
	f.catalogRepo.actions = append(f.catalogRepo.actions, activePerm, retiredPerm)

	method, err := globalcat.NewPaymentMethod("Cash")
	require.NoError(t, err)
	f.catalogRepo.payments = append(f.catalogRepo.payments, method)

	f.setSnapshot(&selection.Snapshot{
		ActionValues: []*selection.ActionValue{
			selection.ReconstituteActionValue(f.source.ID(), activePerm.ID(), globalcat.KindPercent, selection.TypedValue{Decimal: decimalPtr(5)}),
			selection.ReconstituteActionValue(f.source.ID(), retiredPerm.ID(), globalcat.KindBool, selection.TypedValue{Bool: boolPtr(true)}),
		},
		PaymentGrants: []*selection.PaymentGrant{
			selection.ReconstitutePaymentGrant(f.source.ID(), method.ID(), true),
			selection.ReconstitutePaymentGrant(f.source.ID(), shared.NewID(), true),
		},
	})

	clone, err := f.svc.Clone(ctx, f.source.ID(), CloneInput{TargetCompanyID: f.company.ID()})

	require.NoError(t, err)
	snap := f.selectionRepo.createdWithSnapshot[clone.ID()]
	require.Len(t, snap.ActionValues, 1)
	assert.Equal(t, activePerm.ID(), snap.ActionValues[0].PermissionID())
	require.Len(t, snap.PaymentGrants, 1)
	assert.Equal(t, method.ID(), snap.PaymentGrants[0].PaymentMethodID())
}

func TestClone_TargetValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown source", func(t *testing.T) {
		f := newCloneFixture(t)

		_, err := f.svc.Clone(ctx, shared.NewID(), CloneInput{TargetCompanyID: f.company.ID()})

		assert.ErrorIs(t, err, selection.ErrSelectionSetNotFound)
	})

	t.Run("unknown target company", func(t *testing.T) {
		f := newCloneFixture(t)

		_, err := f.svc.Clone(ctx, f.source.ID(), CloneInput{TargetCompanyID: shared.NewID()})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("target branch outside target company", func(t *testing.T) {
		f := newCloneFixture(t)
		other, err := scopecat.NewCompany("Other Corp")
		require.NoError(t, err)
		foreignBranch, err := scopecat.NewBranch(other.ID(), "Elsewhere")
		require.NoError(t, err)
		f.branchRepo.branches[foreignBranch.ID()] = foreignBranch

		foreignID := foreignBranch.ID()
		_, err = f.svc.Clone(ctx, f.source.ID(), CloneInput{
			TargetCompanyID: f.company.ID(),
			TargetBranchID:  &foreignID,
		})

		assert.ErrorIs(t, err, selection.ErrBranchNotInCompany)
	})
}
