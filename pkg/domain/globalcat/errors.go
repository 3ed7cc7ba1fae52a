package globalcat

import (
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Global catalog lookup errors.
var (
	ErrActionPermissionNotFound = fmt.Errorf("action permission %w", shared.ErrNotFound)
	ErrMatrixPermissionNotFound = fmt.Errorf("matrix permission %w", shared.ErrNotFound)
	ErrPaymentMethodNotFound    = fmt.Errorf("payment method %w", shared.ErrNotFound)
)
