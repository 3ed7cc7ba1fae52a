package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpacceso/api/pkg/apierror"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/erpacceso/api/pkg/validator"
)

// ============================================================================
// Body decoding
// ============================================================================

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid body", body: `{"name": "ventas"}`, wantErr: false},
		{name: "invalid json", body: `{invalid}`, wantErr: true},
		{name: "unknown field rejected", body: `{"name": "ventas", "extra": 1}`, wantErr: true},
		{name: "empty object", body: `{}`, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := decodeJSON(r, &p)
			if tt.wantErr {
				var apiErr *apierror.Error
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadRequest, apiErr.Status)
				return
			}
			require.NoError(t, err)
		})
	}
}

// ============================================================================
// Path and id parsing
// ============================================================================

func TestURLID(t *testing.T) {
	newRequest := func(raw string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("valid uuid", func(t *testing.T) {
		want := shared.NewID()
		got, err := urlID(newRequest(want.String()), "id")
		require.NoError(t, err)
		assert.True(t, want.Equals(got))
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := urlID(newRequest("not-a-uuid"), "id")
		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	})
}

func TestParseIDs(t *testing.T) {
	a, b := shared.NewID(), shared.NewID()

	ids, err := parseIDs([]string{a.String(), b.String()})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.True(t, a.Equals(ids[0]))
	assert.True(t, b.Equals(ids[1]))

	_, err = parseIDs([]string{a.String(), "bogus"})
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	ids, err = parseIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// ============================================================================
// Error envelope
// ============================================================================

func TestRespondError(t *testing.T) {
	log := logger.NewNop()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "api error passes through",
			err:        apierror.BadRequest("bad input"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "not found domain error",
			err:        selection.ErrSelectionSetNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "scope violation maps to validation",
			err:        selection.NewScopeError("warehouses", "warehouse not owned by branch"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "conflict domain error",
			err:        selection.ErrSelectionSetInUse,
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "validation errors carry details",
			err:        validator.ValidationErrors{{Field: "company_id", Message: "is required"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "unknown error becomes internal",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)

			respondError(w, log, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

// ============================================================================
// List envelope
// ============================================================================

func TestNewListResponse(t *testing.T) {
	resp := newListResponse([]string{"a", "b"})
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"a", "b"}, resp.Data)

	empty := newListResponse[string](nil)
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Data)
}
