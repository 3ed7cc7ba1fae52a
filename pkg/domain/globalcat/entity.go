// Package globalcat holds the scope-independent permission catalogs: typed
// action permissions, fixed-column matrix permissions and payment methods.
package globalcat

import (
	"fmt"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// ActionPermission is a catalog row identified by its (group, action) pair.
// Its ValueKind decides which single value slot a selection may populate.
type ActionPermission struct {
	id        shared.ID
	group     string
	action    string
	valueKind ValueKind
	isActive  bool
	createdAt time.Time
}

// NewActionPermission creates an action permission catalog row.
func NewActionPermission(group, action string, kind ValueKind) (*ActionPermission, error) {
	group = shared.NormalizeName(group)
	action = shared.NormalizeName(action)
	if group == "" {
		return nil, fmt.Errorf("%w: group is required", shared.ErrValidation)
	}
	if action == "" {
		return nil, fmt.Errorf("%w: action is required", shared.ErrValidation)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown value kind %q", shared.ErrValidation, kind)
	}
	return &ActionPermission{
		id:        shared.NewID(),
		group:     group,
		action:    action,
		valueKind: kind,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteActionPermission recreates an ActionPermission from persistence.
func ReconstituteActionPermission(id shared.ID, group, action string, kind ValueKind, isActive bool, createdAt time.Time) *ActionPermission {
	return &ActionPermission{id: id, group: group, action: action, valueKind: kind, isActive: isActive, createdAt: createdAt}
}

func (p *ActionPermission) ID() shared.ID        { return p.id }
func (p *ActionPermission) Group() string        { return p.group }
func (p *ActionPermission) Action() string       { return p.action }
func (p *ActionPermission) ValueKind() ValueKind { return p.valueKind }
func (p *ActionPermission) IsActive() bool       { return p.isActive }
func (p *ActionPermission) CreatedAt() time.Time { return p.createdAt }

// MatrixFlags are the six fixed capability columns of the permission matrix.
type MatrixFlags struct {
	CanCreate         bool `json:"can_create"`
	CanUpdate         bool `json:"can_update"`
	CanAuthorize      bool `json:"can_authorize"`
	CanClose          bool `json:"can_close"`
	CanCancel         bool `json:"can_cancel"`
	CanUpdateValidity bool `json:"can_update_validity"`
}

// Any reports whether at least one capability flag is set.
func (f MatrixFlags) Any() bool {
	return f.CanCreate || f.CanUpdate || f.CanAuthorize || f.CanClose || f.CanCancel || f.CanUpdateValidity
}

// MatrixPermission is a full row of the functional permission matrix. The
// catalog row carries the default capability columns; selections override
// them per selection set.
type MatrixPermission struct {
	id        shared.ID
	name      string
	flags     MatrixFlags
	isActive  bool
	createdAt time.Time
}

// NewMatrixPermission creates a matrix permission catalog row.
func NewMatrixPermission(name string, flags MatrixFlags) (*MatrixPermission, error) {
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return &MatrixPermission{
		id:        shared.NewID(),
		name:      name,
		flags:     flags,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteMatrixPermission recreates a MatrixPermission from persistence.
func ReconstituteMatrixPermission(id shared.ID, name string, flags MatrixFlags, isActive bool, createdAt time.Time) *MatrixPermission {
	return &MatrixPermission{id: id, name: name, flags: flags, isActive: isActive, createdAt: createdAt}
}

func (p *MatrixPermission) ID() shared.ID        { return p.id }
func (p *MatrixPermission) Name() string         { return p.name }
func (p *MatrixPermission) Flags() MatrixFlags   { return p.flags }
func (p *MatrixPermission) IsActive() bool       { return p.isActive }
func (p *MatrixPermission) CreatedAt() time.Time { return p.createdAt }

// PaymentMethod is the flat payment-method catalog.
type PaymentMethod struct {
	id        shared.ID
	name      string
	isActive  bool
	createdAt time.Time
}

// NewPaymentMethod creates a payment method catalog row.
func NewPaymentMethod(name string) (*PaymentMethod, error) {
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return &PaymentMethod{
		id:        shared.NewID(),
		name:      name,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstitutePaymentMethod recreates a PaymentMethod from persistence.
func ReconstitutePaymentMethod(id shared.ID, name string, isActive bool, createdAt time.Time) *PaymentMethod {
	return &PaymentMethod{id: id, name: name, isActive: isActive, createdAt: createdAt}
}

func (p *PaymentMethod) ID() shared.ID        { return p.id }
func (p *PaymentMethod) Name() string         { return p.name }
func (p *PaymentMethod) IsActive() bool       { return p.isActive }
func (p *PaymentMethod) CreatedAt() time.Time { return p.createdAt }
