package app

import (
	"context"
	"testing"
	"time"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool          { return &b }
func intPtr(i int64) *int64         { return &i }
func decimalPtr(f float64) *float64 { return &f }
func textPtr(s string) *string      { return &s }

type globalsFixture struct {
	svc           *GlobalsService
	selectionRepo *fakeSelectionRepo
	catalogRepo   *fakeCatalogRepo
	set           *selection.SelectionSet
}

func newGlobalsFixture(t *testing.T) *globalsFixture {
	t.Helper()

	set, err := selection.NewSelectionSet(shared.NewID(), nil, "")
	require.NoError(t, err)

	f := &globalsFixture{
		selectionRepo: newFakeSelectionRepo(),
		catalogRepo:   &fakeCatalogRepo{},
		set:           set,
	}
	f.selectionRepo.add(set)
	f.svc = NewGlobalsService(f.selectionRepo, f.catalogRepo, logger.NewNop())
	return f
}

func (f *globalsFixture) addActionPermission(t *testing.T, group, action string, kind globalcat.ValueKind) *globalcat.ActionPermission {
	t.Helper()
	perm, err := globalcat.NewActionPermission(group, action, kind)
	require.NoError(t, err)
	f.catalogRepo.actions = append(f.catalogRepo.actions, perm)
	return perm
}

func (f *globalsFixture) addMatrixPermission(t *testing.T, name string, flags globalcat.MatrixFlags) *globalcat.MatrixPermission {
	t.Helper()
	perm, err := globalcat.NewMatrixPermission(name, flags)
	require.NoError(t, err)
	f.catalogRepo.matrix = append(f.catalogRepo.matrix, perm)
	return perm
}

func (f *globalsFixture) addPaymentMethod(t *testing.T, name string) *globalcat.PaymentMethod {
	t.Helper()
	method, err := globalcat.NewPaymentMethod(name)
	require.NoError(t, err)
	f.catalogRepo.payments = append(f.catalogRepo.payments, method)
	return method
}

// =============================================================================
// Global Bootstrap Tests
// =============================================================================

func TestEnsureGlobalRows_SeedsEveryActiveCatalogEntry(t *testing.T) {
	ctx := context.Background()
	f := newGlobalsFixture(t)

	f.addActionPermission(t, "sales", "max discount", globalcat.KindPercent)
	f.addActionPermission(t, "stock", "adjust", globalcat.KindBool)
	f.addMatrixPermission(t, "Sales orders", globalcat.MatrixFlags{CanCreate: true, CanUpdate: true})
	f.addPaymentMethod(t, "Cash")
	f.addPaymentMethod(t, "Credit")

	err := f.svc.EnsureGlobalRows(ctx, f.set.ID())

	require.NoError(t, err)
	assert.Len(t, f.selectionRepo.insertedActions, 2)
	assert.Len(t, f.selectionRepo.insertedMatrix, 1)
	assert.Len(t, f.selectionRepo.insertedPayments, 2)

	// Action rows start empty, so nothing is meaningful yet.
	for _, av := range f.selectionRepo.insertedActions {
		assert.False(t, av.IsMeaningful())
	}
	// Matrix grants start with every capability off, no matter what the
	// catalog row allows.
	assert.False(t, f.selectionRepo.insertedMatrix[0].Flags().Any())
	// Payment grants start disabled.
	for _, pg := range f.selectionRepo.insertedPayments {
		assert.False(t, pg.Enabled())
	}
}

func TestEnsureGlobalRows_NeverOverwritesExistingRows(t *testing.T) {
	ctx := context.Background()
	f := newGlobalsFixture(t)

	perm := f.addActionPermission(t, "sales", "max discount", globalcat.KindPercent)

	// An edited row already exists for the permission.
	edited, err := selection.NewActionValue(f.set.ID(), perm, selection.TypedValue{Decimal: decimalPtr(15)})
	require.NoError(t, err)
	f.selectionRepo.insertedActions = []*selection.ActionValue{edited}

	err = f.svc.EnsureGlobalRows(ctx, f.set.ID())

	require.NoError(t, err)
	require.Len(t, f.selectionRepo.insertedActions, 1)
	assert.Equal(t, 15.0, *f.selectionRepo.insertedActions[0].Value().Decimal)
}

func TestEnsureGlobalRows_FillsGapsAfterCatalogGrowth(t *testing.T) {
	ctx := context.Background()
	f := newGlobalsFixture(t)

	f.addActionPermission(t, "sales", "max discount", globalcat.KindPercent)
	require.NoError(t, f.svc.EnsureGlobalRows(ctx, f.set.ID()))
	require.Len(t, f.selectionRepo.insertedActions, 1)

	f.addActionPermission(t, "stock", "adjust", globalcat.KindBool)
	require.NoError(t, f.svc.EnsureGlobalRows(ctx, f.set.ID()))

	assert.Len(t, f.selectionRepo.insertedActions, 2)
}

func TestEnsureGlobalRows_UnknownSet(t *testing.T) {
	f := newGlobalsFixture(t)

	err := f.svc.EnsureGlobalRows(context.Background(), shared.NewID())

	assert.ErrorIs(t, err, selection.ErrSelectionSetNotFound)
}

// =============================================================================
// Save Globals Tests
// =============================================================================

func TestSaveGlobals_PersistsMeaningfulRows(t *testing.T) {
	ctx := context.Background()
	f := newGlobalsFixture(t)

	percentPerm := f.addActionPermission(t, "sales", "max discount", globalcat.KindPercent)
	boolPerm := f.addActionPermission(t, "stock", "adjust", globalcat.KindBool)
	matrixPerm := f.addMatrixPermission(t, "Sales orders", globalcat.MatrixFlags{})
	method := f.addPaymentMethod(t, "Cash")

	err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
		ActionValues: []ActionValueInput{
			{PermissionID: percentPerm.ID(), Value: selection.TypedValue{Decimal: decimalPtr(20)}},
			{PermissionID: boolPerm.ID(), Value: selection.TypedValue{Bool: boolPtr(true)}},
		},
		MatrixGrants: []MatrixGrantInput{
			{PermissionID: matrixPerm.ID(), Flags: globalcat.MatrixFlags{CanAuthorize: true}},
		},
		PaymentGrants: []PaymentGrantInput{
			{PaymentMethodID: method.ID(), Enabled: true},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.selectionRepo.replaceCalls)
	assert.Len(t, f.selectionRepo.replacedActions, 2)
	assert.Len(t, f.selectionRepo.replacedMatrix, 1)
	assert.Len(t, f.selectionRepo.replacedPayments, 1)
}

func TestSaveGlobals_DropsNonMeaningfulRows(t *testing.T) {
	ctx := context.Background()
	f := newGlobalsFixture(t)

	boolPerm := f.addActionPermission(t, "stock", "adjust", globalcat.KindBool)
	textPerm := f.addActionPermission(t, "sales", "note", globalcat.KindText)
	matrixPerm := f.addMatrixPermission(t, "Sales orders", globalcat.MatrixFlags{})
	method := f.addPaymentMethod(t, "Cash")

	err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
		ActionValues: []ActionValueInput{
			{PermissionID: boolPerm.ID(), Value: selection.TypedValue{Bool: boolPtr(false)}},
			{PermissionID: textPerm.ID(), Value: selection.TypedValue{Text: textPtr("   ")}},
		},
		MatrixGrants: []MatrixGrantInput{
			{PermissionID: matrixPerm.ID(), Flags: globalcat.MatrixFlags{}},
		},
		PaymentGrants: []PaymentGrantInput{
			{PaymentMethodID: method.ID(), Enabled: false},
		},
	})

	require.NoError(t, err)
	assert.Empty(t, f.selectionRepo.replacedActions)
	assert.Empty(t, f.selectionRepo.replacedMatrix)
	assert.Empty(t, f.selectionRepo.replacedPayments)
}

func TestSaveGlobals_TypedSlotEnforcement(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong slot rejected before write", func(t *testing.T) {
		f := newGlobalsFixture(t)
		intPerm := f.addActionPermission(t, "sales", "max lines", globalcat.KindInt)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			ActionValues: []ActionValueInput{
				{PermissionID: intPerm.ID(), Value: selection.TypedValue{Text: textPtr("twelve")}},
			},
		})

		assert.ErrorIs(t, err, selection.ErrValueKindMismatch)
		assert.Zero(t, f.selectionRepo.replaceCalls)
	})

	t.Run("percent out of range rejected", func(t *testing.T) {
		f := newGlobalsFixture(t)
		percentPerm := f.addActionPermission(t, "sales", "max discount", globalcat.KindPercent)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			ActionValues: []ActionValueInput{
				{PermissionID: percentPerm.ID(), Value: selection.TypedValue{Decimal: decimalPtr(150)}},
			},
		})

		assert.ErrorIs(t, err, selection.ErrPercentOutOfRange)
		assert.Zero(t, f.selectionRepo.replaceCalls)
	})

	t.Run("percent boundary accepted", func(t *testing.T) {
		f := newGlobalsFixture(t)
		percentPerm := f.addActionPermission(t, "sales", "max discount", globalcat.KindPercent)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			ActionValues: []ActionValueInput{
				{PermissionID: percentPerm.ID(), Value: selection.TypedValue{Decimal: decimalPtr(100)}},
			},
		})

		require.NoError(t, err)
		require.Len(t, f.selectionRepo.replacedActions, 1)
		assert.Equal(t, 100.0, *f.selectionRepo.replacedActions[0].Value().Decimal)
	})

	t.Run("int slot on int kind accepted", func(t *testing.T) {
		f := newGlobalsFixture(t)
		intPerm := f.addActionPermission(t, "sales", "max lines", globalcat.KindInt)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			ActionValues: []ActionValueInput{
				{PermissionID: intPerm.ID(), Value: selection.TypedValue{Int: intPtr(12)}},
			},
		})

		require.NoError(t, err)
		require.Len(t, f.selectionRepo.replacedActions, 1)
		assert.Equal(t, int64(12), *f.selectionRepo.replacedActions[0].Value().Int)
	})
}

func TestSaveGlobals_InactiveCatalogRows(t *testing.T) {
	ctx := context.Background()

	t.Run("retired action permission rejected", func(t *testing.T) {
		f := newGlobalsFixture(t)
		retired := globalcat.ReconstituteActionPermission(
			shared.NewID(), "sales", "legacy discount", globalcat.KindPercent, false, time.Now())
		f.catalogRepo.actions = append(f.catalogRepo.actions, retired)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			ActionValues: []ActionValueInput{
				{PermissionID: retired.ID(), Value: selection.TypedValue{Decimal: decimalPtr(10)}},
			},
		})

		assert.ErrorIs(t, err, selection.ErrInactiveCatalogRow)
		assert.Zero(t, f.selectionRepo.replaceCalls)
	})

	t.Run("retired matrix permission rejected", func(t *testing.T) {
		f := newGlobalsFixture(t)
		retired := globalcat.ReconstituteMatrixPermission(
			shared.NewID(), "Old module", globalcat.MatrixFlags{}, false, time.Now())
		f.catalogRepo.matrix = append(f.catalogRepo.matrix, retired)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			MatrixGrants: []MatrixGrantInput{
				{PermissionID: retired.ID(), Flags: globalcat.MatrixFlags{CanCreate: true}},
			},
		})

		assert.ErrorIs(t, err, selection.ErrInactiveCatalogRow)
		assert.Zero(t, f.selectionRepo.replaceCalls)
	})

	t.Run("retired payment method rejected", func(t *testing.T) {
		f := newGlobalsFixture(t)
		retired := globalcat.ReconstitutePaymentMethod(shared.NewID(), "Cheque", false, time.Now())
		f.catalogRepo.payments = append(f.catalogRepo.payments, retired)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			PaymentGrants: []PaymentGrantInput{
				{PaymentMethodID: retired.ID(), Enabled: true},
			},
		})

		assert.ErrorIs(t, err, selection.ErrInactiveCatalogRow)
		assert.Zero(t, f.selectionRepo.replaceCalls)
	})
}

func TestSaveGlobals_UnknownCatalogIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown action permission", func(t *testing.T) {
		f := newGlobalsFixture(t)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			ActionValues: []ActionValueInput{
				{PermissionID: shared.NewID(), Value: selection.TypedValue{Bool: boolPtr(true)}},
			},
		})

		assert.ErrorIs(t, err, selection.ErrUnknownCatalogID)
	})

	t.Run("unknown matrix permission", func(t *testing.T) {
		f := newGlobalsFixture(t)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			MatrixGrants: []MatrixGrantInput{
				{PermissionID: shared.NewID(), Flags: globalcat.MatrixFlags{CanCreate: true}},
			},
		})

		assert.ErrorIs(t, err, selection.ErrUnknownCatalogID)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		f := newGlobalsFixture(t)

		err := f.svc.SaveGlobals(ctx, f.set.ID(), GlobalsInput{
			PaymentGrants: []PaymentGrantInput{
				{PaymentMethodID: shared.NewID(), Enabled: true},
			},
		})

		assert.ErrorIs(t, err, selection.ErrUnknownCatalogID)
	})
}
