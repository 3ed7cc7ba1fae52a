package moduletree

import (
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Module tree lookup errors.
var (
	ErrModuleNotFound   = fmt.Errorf("module %w", shared.ErrNotFound)
	ErrLevelNotFound    = fmt.Errorf("level %w", shared.ErrNotFound)
	ErrSublevelNotFound = fmt.Errorf("sublevel %w", shared.ErrNotFound)
)
