package selection

import (
	"testing"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Rebind(t *testing.T) {
	sourceSet := shared.NewID()
	targetSet := shared.NewID()
	permID := shared.NewID()
	methodID := shared.NewID()
	moduleID := shared.NewID()
	warehouseID := shared.NewID()

	snap := &Snapshot{
		ModuleIDs:    []shared.ID{moduleID},
		WarehouseIDs: []shared.ID{warehouseID},
		ActionValues: []*ActionValue{
			ReconstituteActionValue(sourceSet, permID, globalcat.KindInt, TypedValue{Int: intPtr(5)}),
		},
		MatrixGrants: []*MatrixGrant{
			ReconstituteMatrixGrant(sourceSet, permID, globalcat.MatrixFlags{CanCreate: true}),
		},
		PaymentGrants: []*PaymentGrant{
			ReconstitutePaymentGrant(sourceSet, methodID, true),
		},
	}

	out := snap.Rebind(targetSet)

	t.Run("child rows re-keyed to target", func(t *testing.T) {
		require.Len(t, out.ActionValues, 1)
		assert.Equal(t, targetSet, out.ActionValues[0].SelectionSetID())
		assert.Equal(t, permID, out.ActionValues[0].PermissionID())
		assert.Equal(t, int64(5), *out.ActionValues[0].Value().Int)

		require.Len(t, out.MatrixGrants, 1)
		assert.Equal(t, targetSet, out.MatrixGrants[0].SelectionSetID())
		assert.True(t, out.MatrixGrants[0].Flags().CanCreate)

		require.Len(t, out.PaymentGrants, 1)
		assert.Equal(t, targetSet, out.PaymentGrants[0].SelectionSetID())
		assert.True(t, out.PaymentGrants[0].Enabled())
	})

	t.Run("link slices are independent copies", func(t *testing.T) {
		assert.Equal(t, []shared.ID{moduleID}, out.ModuleIDs)

		out.ModuleIDs[0] = shared.NewID()
		out.WarehouseIDs = append(out.WarehouseIDs, shared.NewID())

		assert.Equal(t, moduleID, snap.ModuleIDs[0])
		assert.Len(t, snap.WarehouseIDs, 1)
	})

	t.Run("source rows untouched", func(t *testing.T) {
		assert.Equal(t, sourceSet, snap.ActionValues[0].SelectionSetID())
		assert.Equal(t, sourceSet, snap.PaymentGrants[0].SelectionSetID())
	})
}

func TestNewSelectionSet(t *testing.T) {
	companyID := shared.NewID()
	branchID := shared.NewID()

	t.Run("company only", func(t *testing.T) {
		set, err := NewSelectionSet(companyID, nil, "  trimmed  ")
		require.NoError(t, err)
		assert.False(t, set.HasBranch())
		assert.Equal(t, "trimmed", set.Notes())
	})

	t.Run("company and branch", func(t *testing.T) {
		set, err := NewSelectionSet(companyID, &branchID, "")
		require.NoError(t, err)
		assert.True(t, set.HasBranch())
		assert.Equal(t, branchID, *set.BranchID())
	})

	t.Run("zero company rejected", func(t *testing.T) {
		_, err := NewSelectionSet(shared.ID{}, nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("zero branch pointer rejected", func(t *testing.T) {
		zero := shared.ID{}
		_, err := NewSelectionSet(companyID, &zero, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
