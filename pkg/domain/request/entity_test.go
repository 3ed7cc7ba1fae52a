package request

import (
	"testing"

	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessRequest(t *testing.T) {
	r, err := NewAccessRequest(KindCreate, "  Ana   Torres ", " first access ")

	require.NoError(t, err)
	assert.Equal(t, StatusDraft, r.Status())
	assert.Equal(t, "Ana Torres", r.Applicant())
	assert.Equal(t, "first access", r.Notes())
	assert.True(t, r.IsEditable())
	assert.False(t, r.CanSeedTemplate())
}

func TestNewAccessRequest_Invalid(t *testing.T) {
	_, err := NewAccessRequest(Kind("PERM"), "Ana", "")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewAccessRequest(KindModify, "   ", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAccessRequest_Workflow(t *testing.T) {
	t.Run("draft to approved", func(t *testing.T) {
		r, err := NewAccessRequest(KindCreate, "Ana", "")
		require.NoError(t, err)

		require.NoError(t, r.Submit())
		assert.Equal(t, StatusSubmitted, r.Status())
		assert.False(t, r.IsEditable())
		assert.True(t, r.CanSeedTemplate())

		require.NoError(t, r.Approve())
		assert.Equal(t, StatusApproved, r.Status())
		assert.True(t, r.CanSeedTemplate())
	})

	t.Run("draft to rejected", func(t *testing.T) {
		r, err := NewAccessRequest(KindRemove, "Ana", "")
		require.NoError(t, err)

		require.NoError(t, r.Submit())
		require.NoError(t, r.Reject())
		assert.Equal(t, StatusRejected, r.Status())
		assert.False(t, r.CanSeedTemplate())
	})

	t.Run("illegal transitions", func(t *testing.T) {
		r, err := NewAccessRequest(KindCreate, "Ana", "")
		require.NoError(t, err)

		assert.ErrorIs(t, r.Approve(), shared.ErrConflict)
		assert.ErrorIs(t, r.Reject(), shared.ErrConflict)

		require.NoError(t, r.Submit())
		assert.ErrorIs(t, r.Submit(), shared.ErrConflict)

		require.NoError(t, r.Approve())
		assert.ErrorIs(t, r.Approve(), shared.ErrConflict)
		assert.ErrorIs(t, r.Reject(), shared.ErrConflict)
	})
}

func TestNewItem(t *testing.T) {
	requestID := shared.NewID()
	setID := shared.NewID()

	item, err := NewItem(requestID, setID, 0, " line note ")
	require.NoError(t, err)
	assert.Equal(t, requestID, item.RequestID())
	assert.Equal(t, setID, item.SelectionSetID())
	assert.Equal(t, "line note", item.Notes())

	_, err = NewItem(shared.ID{}, setID, 0, "")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewItem(requestID, setID, -1, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
