package visibility

import (
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Rule/block creation errors.
var (
	ErrRuleNotFound  = fmt.Errorf("visibility rule %w", shared.ErrNotFound)
	ErrBlockNotFound = fmt.Errorf("permission block %w", shared.ErrNotFound)

	// ErrTriggerShape marks a trigger not referencing exactly one of
	// module/level/sublevel. Enforced at creation, assumed at resolution.
	ErrTriggerShape = fmt.Errorf("%w: trigger must reference exactly one of module, level or sublevel", shared.ErrValidation)

	// ErrBlockShape marks an inconsistent kind/entity/action-group
	// combination on a block.
	ErrBlockShape = fmt.Errorf("%w: inconsistent block shape", shared.ErrValidation)

	ErrBlockCodeExists = fmt.Errorf("block code %w", shared.ErrAlreadyExists)
)
