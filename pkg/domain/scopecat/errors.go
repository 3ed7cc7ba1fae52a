package scopecat

import (
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Catalog lookup errors.
var (
	ErrCompanyNotFound  = fmt.Errorf("company %w", shared.ErrNotFound)
	ErrBranchNotFound   = fmt.Errorf("branch %w", shared.ErrNotFound)
	ErrResourceNotFound = fmt.Errorf("scoped resource %w", shared.ErrNotFound)
)
