// Package handler implements the HTTP handlers of the access API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erpacceso/api/pkg/apierror"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/erpacceso/api/pkg/validator"
)

// maxBodyBytes bounds request bodies; every payload in this API is small.
const maxBodyBytes = 1 << 20

// ListResponse is the common envelope for list endpoints.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func newListResponse[T any](data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Data: data, Total: len(data)}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierror.BadRequest("invalid request body: " + err.Error())
	}
	return nil
}

// urlID parses a UUID path parameter.
func urlID(r *http.Request, param string) (shared.ID, error) {
	id, err := shared.IDFromString(chi.URLParam(r, param))
	if err != nil {
		return shared.ID{}, apierror.BadRequest("invalid " + param + ": must be a UUID")
	}
	return id, nil
}

// parseIDs converts a list of UUID strings, reporting the first bad one.
func parseIDs(raw []string) ([]shared.ID, error) {
	out := make([]shared.ID, 0, len(raw))
	for _, s := range raw {
		id, err := shared.IDFromString(s)
		if err != nil {
			return nil, apierror.BadRequest("invalid id " + s + ": must be a UUID")
		}
		out = append(out, id)
	}
	return out, nil
}

func idStrings(ids []shared.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func idPtrString(id *shared.ID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// respondError maps any error onto the standard error envelope. Handler and
// validation errors pass through; everything else goes through the domain
// mapping, with 5xx causes logged.
func respondError(w http.ResponseWriter, log *logger.Logger, r *http.Request, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			apiErr = apierror.ValidationFailed("validation failed", fieldErrs)
		} else {
			apiErr = apierror.FromDomain(err)
		}
	}
	if apiErr.Status >= 500 {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	apierror.Write(w, apiErr)
}
