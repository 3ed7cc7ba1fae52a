package selection

import (
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Selection set errors.
var (
	ErrSelectionSetNotFound = fmt.Errorf("selection set %w", shared.ErrNotFound)

	// ErrScopeViolation marks a pick whose owning company/branch does not
	// match the selection set's anchor. Raised before any write.
	ErrScopeViolation = fmt.Errorf("%w: scope violation", shared.ErrValidation)

	// ErrBranchNotInCompany marks a selection set anchored to a branch that
	// does not belong to its company.
	ErrBranchNotInCompany = fmt.Errorf("%w: branch does not belong to company", shared.ErrValidation)

	// ErrValueKindMismatch marks an action value populating a slot that does
	// not match the permission's value kind.
	ErrValueKindMismatch = fmt.Errorf("%w: value does not match permission value kind", shared.ErrValidation)

	// ErrPercentOutOfRange marks a PERCENT value outside [0,100].
	ErrPercentOutOfRange = fmt.Errorf("%w: percent out of range (0-100)", shared.ErrValidation)

	// ErrSelectionSetInUse marks a delete attempt on a selection set still
	// referenced by a request or template item.
	ErrSelectionSetInUse = fmt.Errorf("%w: selection set is referenced by a request or template", shared.ErrConflict)

	// ErrUnknownCatalogID marks a sync/save call naming a catalog id that
	// does not exist in the referenced catalog.
	ErrUnknownCatalogID = fmt.Errorf("%w: unknown catalog id", shared.ErrValidation)

	// ErrInactiveCatalogRow marks a sync/save call naming a retired catalog
	// row. Child rows written before the retirement are tolerated as-is.
	ErrInactiveCatalogRow = fmt.Errorf("%w: catalog row is inactive", shared.ErrValidation)
)

// ScopeError attributes a scope violation to a field so callers can surface
// it next to the offending input.
type ScopeError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ScopeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes the error match ErrScopeViolation (and shared.ErrValidation).
func (e *ScopeError) Unwrap() error { return ErrScopeViolation }

// NewScopeError builds a field-attributable scope violation.
func NewScopeError(field, message string) *ScopeError {
	return &ScopeError{Field: field, Message: message}
}
