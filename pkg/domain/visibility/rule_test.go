package visibility

import (
	"testing"

	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Trigger Shape Tests
// =============================================================================

func TestTriggerConstructors(t *testing.T) {
	ruleID := shared.NewID()
	nodeID := shared.NewID()

	tests := []struct {
		name   string
		build  func() (*Trigger, error)
		target TriggerTarget
	}{
		{name: "module trigger", build: func() (*Trigger, error) { return NewModuleTrigger(ruleID, nodeID) }, target: TargetModule},
		{name: "level trigger", build: func() (*Trigger, error) { return NewLevelTrigger(ruleID, nodeID) }, target: TargetLevel},
		{name: "sublevel trigger", build: func() (*Trigger, error) { return NewSublevelTrigger(ruleID, nodeID) }, target: TargetSublevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trg, err := tt.build()

			require.NoError(t, err)
			assert.Equal(t, tt.target, trg.Target())
			assert.Equal(t, nodeID, trg.NodeID())
			assert.Equal(t, ruleID, trg.RuleID())
		})
	}
}

func TestTrigger_ShapeViolations(t *testing.T) {
	ruleID := shared.NewID()

	t.Run("zero node id", func(t *testing.T) {
		_, err := NewModuleTrigger(ruleID, shared.ID{})
		assert.ErrorIs(t, err, ErrTriggerShape)
	})

	t.Run("zero rule id", func(t *testing.T) {
		_, err := NewLevelTrigger(shared.ID{}, shared.NewID())
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("reconstitute rejects unknown target", func(t *testing.T) {
		_, err := ReconstituteTrigger(shared.NewID(), ruleID, TriggerTarget("branch"), shared.NewID())
		assert.ErrorIs(t, err, ErrTriggerShape)
	})

	t.Run("reconstitute rejects zero node", func(t *testing.T) {
		_, err := ReconstituteTrigger(shared.NewID(), ruleID, TargetModule, shared.ID{})
		assert.ErrorIs(t, err, ErrTriggerShape)
	})
}

// =============================================================================
// Block Shape Tests
// =============================================================================

func TestNewScopedBlock(t *testing.T) {
	b, err := NewScopedBlock("Warehouses", "Warehouse picks", EntityWarehouse, 3)

	require.NoError(t, err)
	assert.Equal(t, "warehouses", b.Code())
	assert.Equal(t, BlockScoped, b.Kind())
	assert.Equal(t, EntityWarehouse, b.ScopedEntity())
	assert.Empty(t, b.GlobalEntity())
	assert.True(t, b.IsActive())
	assert.Equal(t, 3, b.Order())
}

func TestNewGlobalBlock(t *testing.T) {
	t.Run("action block with group filter", func(t *testing.T) {
		b, err := NewGlobalBlock("actions-sales", "Sales actions", EntityAction, "Sales", 1)

		require.NoError(t, err)
		assert.Equal(t, BlockGlobal, b.Kind())
		assert.Equal(t, EntityAction, b.GlobalEntity())
		assert.Equal(t, "Sales", b.ActionGroup())
	})

	t.Run("group filter on non-action entity rejected", func(t *testing.T) {
		_, err := NewGlobalBlock("matrix", "Matrix", EntityMatrix, "Sales", 0)
		assert.ErrorIs(t, err, ErrBlockShape)
	})

	t.Run("unknown global entity rejected", func(t *testing.T) {
		_, err := NewGlobalBlock("x", "X", GlobalEntity("USER"), "", 0)
		assert.ErrorIs(t, err, ErrBlockShape)
	})
}

func TestBlock_CodeValidation(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "kebab case", code: "cash-registers", wantErr: false},
		{name: "snake case", code: "cash_registers", wantErr: false},
		{name: "uppercase normalized", code: "Warehouses", wantErr: false},
		{name: "empty", code: "", wantErr: true},
		{name: "spaces", code: "cash registers", wantErr: true},
		{name: "leading dash", code: "-warehouses", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScopedBlock(tt.code, "Name", EntityWarehouse, 0)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// =============================================================================
// Rule and Link Mode Tests
// =============================================================================

func TestNewRule(t *testing.T) {
	r, err := NewRule("  Inventory   rule  ", 10, MatchAny, " note ")

	require.NoError(t, err)
	assert.Equal(t, "Inventory rule", r.Name())
	assert.Equal(t, 10, r.Priority())
	assert.Equal(t, MatchAny, r.MatchMode())
	assert.Equal(t, "note", r.Notes())
	assert.True(t, r.IsActive())
}

func TestNewRule_Invalid(t *testing.T) {
	_, err := NewRule("", 0, MatchAny, "")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewRule("rule", 0, MatchMode("ALL"), "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestNewRuleBlock(t *testing.T) {
	ruleID := shared.NewID()
	blockID := shared.NewID()

	rb, err := NewRuleBlock(ruleID, blockID, ModeShow, 2)
	require.NoError(t, err)
	assert.Equal(t, ModeShow, rb.Mode())
	assert.Equal(t, 2, rb.Order())

	_, err = NewRuleBlock(ruleID, blockID, BlockMode("HIDE"), 0)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewRuleBlock(shared.ID{}, blockID, ModeShow, 0)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

// =============================================================================
// Action Group Filter Tests
// =============================================================================

func TestAllowedActionGroups(t *testing.T) {
	salesBlock, err := NewGlobalBlock("actions-sales", "Sales actions", EntityAction, "Sales", 0)
	require.NoError(t, err)
	stockBlock, err := NewGlobalBlock("actions-stock", "Stock actions", EntityAction, "Stock", 1)
	require.NoError(t, err)
	allBlock, err := NewGlobalBlock("actions-all", "All actions", EntityAction, "", 2)
	require.NoError(t, err)
	matrixBlock, err := NewGlobalBlock("matrix", "Matrix", EntityMatrix, "", 3)
	require.NoError(t, err)

	blocks := []*Block{salesBlock, stockBlock, allBlock, matrixBlock}

	t.Run("filtered groups collected", func(t *testing.T) {
		visible := NewVisibleBlocks(map[string]struct{}{"actions-sales": {}, "actions-stock": {}, "matrix": {}})

		groups, filter := AllowedActionGroups(blocks, visible)

		assert.True(t, filter)
		assert.Len(t, groups, 2)
		assert.Contains(t, groups, "Sales")
		assert.Contains(t, groups, "Stock")
	})

	t.Run("unfiltered block disables filtering", func(t *testing.T) {
		visible := NewVisibleBlocks(map[string]struct{}{"actions-sales": {}, "actions-all": {}})

		_, filter := AllowedActionGroups(blocks, visible)

		assert.False(t, filter)
	})

	t.Run("no visible action block disables filtering", func(t *testing.T) {
		visible := NewVisibleBlocks(map[string]struct{}{"matrix": {}})

		_, filter := AllowedActionGroups(blocks, visible)

		assert.False(t, filter)
	})
}
