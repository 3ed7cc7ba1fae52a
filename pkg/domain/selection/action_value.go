package selection

import (
	"fmt"
	"strings"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// TypedValue carries the four possible value slots of an action value row.
// The owning permission's value kind decides which single slot is legitimate.
type TypedValue struct {
	Bool    *bool
	Int     *int64
	Decimal *float64
	Text    *string
}

// ActionValue is one (selection set, action permission) row. The permission's
// value kind is captured at construction so the row can validate and filter
// itself without another catalog lookup.
type ActionValue struct {
	selectionSetID shared.ID
	permissionID   shared.ID
	kind           globalcat.ValueKind
	value          TypedValue
}

// NewActionValue builds a validated action value row. It rejects any slot
// population inconsistent with the permission's value kind and enforces the
// PERCENT range. An all-empty value is legal (the bootstrapper creates rows
// that way); meaningfulness is a separate filter.
func NewActionValue(selectionSetID shared.ID, perm *globalcat.ActionPermission, v TypedValue) (*ActionValue, error) {
	if selectionSetID.IsZero() {
		return nil, fmt.Errorf("%w: selectionSetID is required", shared.ErrValidation)
	}
	if perm == nil {
		return nil, fmt.Errorf("%w: action permission is required", shared.ErrValidation)
	}
	if err := validateSlots(perm.ValueKind(), v); err != nil {
		return nil, err
	}
	return &ActionValue{
		selectionSetID: selectionSetID,
		permissionID:   perm.ID(),
		kind:           perm.ValueKind(),
		value:          v,
	}, nil
}

// ReconstituteActionValue recreates an ActionValue from persistence. Rows
// written before a catalog kind change are tolerated as-is.
func ReconstituteActionValue(selectionSetID, permissionID shared.ID, kind globalcat.ValueKind, v TypedValue) *ActionValue {
	return &ActionValue{selectionSetID: selectionSetID, permissionID: permissionID, kind: kind, value: v}
}

func (a *ActionValue) SelectionSetID() shared.ID { return a.selectionSetID }
func (a *ActionValue) PermissionID() shared.ID   { return a.permissionID }
func (a *ActionValue) Kind() globalcat.ValueKind { return a.kind }
func (a *ActionValue) Value() TypedValue         { return a.value }

// IsMeaningful reports whether the designated slot carries a value worth
// persisting or displaying: BOOL true, INT/DECIMAL/PERCENT non-null, TEXT
// non-blank after trim.
func (a *ActionValue) IsMeaningful() bool {
	switch a.kind {
	case globalcat.KindBool:
		return a.value.Bool != nil && *a.value.Bool
	case globalcat.KindInt:
		return a.value.Int != nil
	case globalcat.KindDecimal, globalcat.KindPercent:
		return a.value.Decimal != nil
	case globalcat.KindText:
		return a.value.Text != nil && strings.TrimSpace(*a.value.Text) != ""
	}
	return false
}

func validateSlots(kind globalcat.ValueKind, v TypedValue) error {
	allowed := map[globalcat.ValueKind]TypedValue{
		globalcat.KindBool:    {Bool: v.Bool},
		globalcat.KindInt:     {Int: v.Int},
		globalcat.KindDecimal: {Decimal: v.Decimal},
		globalcat.KindPercent: {Decimal: v.Decimal},
		globalcat.KindText:    {Text: v.Text},
	}[kind]

	if v.Bool != nil && allowed.Bool == nil {
		return fmt.Errorf("%w: bool slot not allowed for kind %s", ErrValueKindMismatch, kind)
	}
	if v.Int != nil && allowed.Int == nil {
		return fmt.Errorf("%w: int slot not allowed for kind %s", ErrValueKindMismatch, kind)
	}
	if v.Decimal != nil && allowed.Decimal == nil {
		return fmt.Errorf("%w: decimal slot not allowed for kind %s", ErrValueKindMismatch, kind)
	}
	if v.Text != nil && allowed.Text == nil {
		return fmt.Errorf("%w: text slot not allowed for kind %s", ErrValueKindMismatch, kind)
	}

	if kind == globalcat.KindPercent && v.Decimal != nil {
		if *v.Decimal < 0 || *v.Decimal > 100 {
			return fmt.Errorf("%w: got %v", ErrPercentOutOfRange, *v.Decimal)
		}
	}
	return nil
}

// MatrixGrant is one (selection set, matrix permission) row carrying the six
// capability flags chosen for this selection.
type MatrixGrant struct {
	selectionSetID shared.ID
	permissionID   shared.ID
	flags          globalcat.MatrixFlags
}

// NewMatrixGrant builds a matrix grant row.
func NewMatrixGrant(selectionSetID, permissionID shared.ID, flags globalcat.MatrixFlags) (*MatrixGrant, error) {
	if selectionSetID.IsZero() || permissionID.IsZero() {
		return nil, fmt.Errorf("%w: selectionSetID and permissionID are required", shared.ErrValidation)
	}
	return &MatrixGrant{selectionSetID: selectionSetID, permissionID: permissionID, flags: flags}, nil
}

// ReconstituteMatrixGrant recreates a MatrixGrant from persistence.
func ReconstituteMatrixGrant(selectionSetID, permissionID shared.ID, flags globalcat.MatrixFlags) *MatrixGrant {
	return &MatrixGrant{selectionSetID: selectionSetID, permissionID: permissionID, flags: flags}
}

func (m *MatrixGrant) SelectionSetID() shared.ID    { return m.selectionSetID }
func (m *MatrixGrant) PermissionID() shared.ID      { return m.permissionID }
func (m *MatrixGrant) Flags() globalcat.MatrixFlags { return m.flags }

// IsMeaningful reports whether at least one capability flag is set.
func (m *MatrixGrant) IsMeaningful() bool { return m.flags.Any() }

// PaymentGrant is one (selection set, payment method) row.
type PaymentGrant struct {
	selectionSetID  shared.ID
	paymentMethodID shared.ID
	enabled         bool
}

// NewPaymentGrant builds a payment grant row.
func NewPaymentGrant(selectionSetID, paymentMethodID shared.ID, enabled bool) (*PaymentGrant, error) {
	if selectionSetID.IsZero() || paymentMethodID.IsZero() {
		return nil, fmt.Errorf("%w: selectionSetID and paymentMethodID are required", shared.ErrValidation)
	}
	return &PaymentGrant{selectionSetID: selectionSetID, paymentMethodID: paymentMethodID, enabled: enabled}, nil
}

// ReconstitutePaymentGrant recreates a PaymentGrant from persistence.
func ReconstitutePaymentGrant(selectionSetID, paymentMethodID shared.ID, enabled bool) *PaymentGrant {
	return &PaymentGrant{selectionSetID: selectionSetID, paymentMethodID: paymentMethodID, enabled: enabled}
}

func (p *PaymentGrant) SelectionSetID() shared.ID  { return p.selectionSetID }
func (p *PaymentGrant) PaymentMethodID() shared.ID { return p.paymentMethodID }
func (p *PaymentGrant) Enabled() bool              { return p.enabled }

// IsMeaningful reports whether the method is enabled.
func (p *PaymentGrant) IsMeaningful() bool { return p.enabled }
