package globalcat

import (
	"fmt"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// ValueKind discriminates which value slot an action permission accepts.
type ValueKind string

// Supported value kinds.
const (
	KindBool    ValueKind = "BOOL"
	KindInt     ValueKind = "INT"
	KindDecimal ValueKind = "DECIMAL"
	KindPercent ValueKind = "PERCENT"
	KindText    ValueKind = "TEXT"
)

// ParseValueKind parses a value kind string.
func ParseValueKind(s string) (ValueKind, error) {
	k := ValueKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: unknown value kind %q", shared.ErrValidation, s)
	}
	return k, nil
}

// IsValid reports whether the kind is one of the supported discriminators.
func (k ValueKind) IsValid() bool {
	switch k {
	case KindBool, KindInt, KindDecimal, KindPercent, KindText:
		return true
	}
	return false
}

// IsNumeric reports whether the kind stores into the decimal slot.
func (k ValueKind) IsNumeric() bool {
	return k == KindDecimal || k == KindPercent
}

// String returns the string representation.
func (k ValueKind) String() string { return string(k) }
