// Package visibility models the rule system that decides which permission
// blocks (UI-visibility units) apply to a given selection: blocks, rules with
// triggers, and the resolution algorithm joining them.
package visibility

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
)

var blockCodeRegex = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// BlockKind separates blocks governing scoped catalogs from blocks governing
// global catalogs.
type BlockKind string

// Block kinds.
const (
	BlockScoped BlockKind = "SCOPED"
	BlockGlobal BlockKind = "GLOBAL"
)

// ScopedEntity names the scoped catalog a SCOPED block governs.
type ScopedEntity string

// Scoped entities. Company and branch are always requested by the flow but
// stay addressable so rules can govern them later.
const (
	EntityCompany      ScopedEntity = "COMPANY"
	EntityBranch       ScopedEntity = "BRANCH"
	EntityWarehouse    ScopedEntity = "WAREHOUSE"
	EntityCashRegister ScopedEntity = "CASH_REGISTER"
	EntityControlPanel ScopedEntity = "CONTROL_PANEL"
	EntitySeller       ScopedEntity = "SELLER"
)

func (e ScopedEntity) isValid() bool {
	switch e {
	case EntityCompany, EntityBranch, EntityWarehouse, EntityCashRegister, EntityControlPanel, EntitySeller:
		return true
	}
	return false
}

// GlobalEntity names the global catalog a GLOBAL block governs.
type GlobalEntity string

// Global entities.
const (
	EntityAction        GlobalEntity = "ACTION"
	EntityMatrix        GlobalEntity = "MATRIX"
	EntityPaymentMethod GlobalEntity = "PAYMENT_METHOD"
)

func (e GlobalEntity) isValid() bool {
	switch e {
	case EntityAction, EntityMatrix, EntityPaymentMethod:
		return true
	}
	return false
}

// Block is a UI-visibility unit a rule can mark as shown. It carries no
// chosen values, only what section of the flow it stands for.
type Block struct {
	id           shared.ID
	code         string
	name         string
	kind         BlockKind
	scopedEntity ScopedEntity
	globalEntity GlobalEntity
	actionGroup  string
	isActive     bool
	order        int
	createdAt    time.Time
}

// NewScopedBlock creates a block governing a scoped catalog section.
func NewScopedBlock(code, name string, entity ScopedEntity, order int) (*Block, error) {
	if !entity.isValid() {
		return nil, fmt.Errorf("%w: unknown scoped entity %q", ErrBlockShape, entity)
	}
	b := &Block{
		id:           shared.NewID(),
		code:         strings.ToLower(strings.TrimSpace(code)),
		name:         shared.NormalizeName(name),
		kind:         BlockScoped,
		scopedEntity: entity,
		isActive:     true,
		order:        order,
		createdAt:    time.Now().UTC(),
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewGlobalBlock creates a block governing a global catalog section. An
// action group filter is only legal for ACTION blocks; it narrows the block
// to action permissions of that exact group.
func NewGlobalBlock(code, name string, entity GlobalEntity, actionGroup string, order int) (*Block, error) {
	if !entity.isValid() {
		return nil, fmt.Errorf("%w: unknown global entity %q", ErrBlockShape, entity)
	}
	b := &Block{
		id:           shared.NewID(),
		code:         strings.ToLower(strings.TrimSpace(code)),
		name:         shared.NormalizeName(name),
		kind:         BlockGlobal,
		globalEntity: entity,
		actionGroup:  shared.NormalizeName(actionGroup),
		isActive:     true,
		order:        order,
		createdAt:    time.Now().UTC(),
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// ReconstituteBlock recreates a Block from persistence.
func ReconstituteBlock(
	id shared.ID,
	code, name string,
	kind BlockKind,
	scopedEntity ScopedEntity,
	globalEntity GlobalEntity,
	actionGroup string,
	isActive bool,
	order int,
	createdAt time.Time,
) *Block {
	return &Block{
		id: id, code: code, name: name, kind: kind,
		scopedEntity: scopedEntity, globalEntity: globalEntity,
		actionGroup: actionGroup, isActive: isActive, order: order, createdAt: createdAt,
	}
}

func (b *Block) validate() error {
	if b.code == "" || !blockCodeRegex.MatchString(b.code) {
		return fmt.Errorf("%w: invalid block code %q", shared.ErrValidation, b.code)
	}
	if b.name == "" {
		return fmt.Errorf("%w: block name is required", shared.ErrValidation)
	}
	switch b.kind {
	case BlockScoped:
		if b.scopedEntity == "" || b.globalEntity != "" {
			return fmt.Errorf("%w: SCOPED requires a scoped entity and no global entity", ErrBlockShape)
		}
		if b.actionGroup != "" {
			return fmt.Errorf("%w: action group does not apply to SCOPED blocks", ErrBlockShape)
		}
	case BlockGlobal:
		if b.globalEntity == "" || b.scopedEntity != "" {
			return fmt.Errorf("%w: GLOBAL requires a global entity and no scoped entity", ErrBlockShape)
		}
		if b.actionGroup != "" && b.globalEntity != EntityAction {
			return fmt.Errorf("%w: action group only applies to GLOBAL/ACTION blocks", ErrBlockShape)
		}
	default:
		return fmt.Errorf("%w: unknown block kind %q", ErrBlockShape, b.kind)
	}
	return nil
}

func (b *Block) ID() shared.ID              { return b.id }
func (b *Block) Code() string               { return b.code }
func (b *Block) Name() string               { return b.name }
func (b *Block) Kind() BlockKind            { return b.kind }
func (b *Block) ScopedEntity() ScopedEntity { return b.scopedEntity }
func (b *Block) GlobalEntity() GlobalEntity { return b.globalEntity }
func (b *Block) ActionGroup() string        { return b.actionGroup }
func (b *Block) IsActive() bool             { return b.isActive }
func (b *Block) Order() int                 { return b.order }
func (b *Block) CreatedAt() time.Time       { return b.createdAt }

// Deactivate hides the block from every resolution result.
func (b *Block) Deactivate() { b.isActive = false }

// Activate re-enables the block.
func (b *Block) Activate() { b.isActive = true }
