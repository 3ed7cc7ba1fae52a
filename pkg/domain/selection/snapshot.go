package selection

import "github.com/erpacceso/api/pkg/domain/shared"

// Snapshot is the full child relation graph of one selection set, read in a
// single consistent view. The cloner filters and rewrites it before handing
// it back to the repository as the child set of a new aggregate.
type Snapshot struct {
	ModuleIDs   []shared.ID
	LevelIDs    []shared.ID
	SublevelIDs []shared.ID

	WarehouseIDs    []shared.ID
	CashRegisterIDs []shared.ID
	ControlPanelIDs []shared.ID
	SellerIDs       []shared.ID

	ActionValues  []*ActionValue
	MatrixGrants  []*MatrixGrant
	PaymentGrants []*PaymentGrant
}

// Rebind returns a copy of the snapshot with every child row re-keyed to the
// given selection set. Link id slices are copied so the result shares no
// backing arrays with the source.
func (s *Snapshot) Rebind(target shared.ID) *Snapshot {
	out := &Snapshot{
		ModuleIDs:       append([]shared.ID(nil), s.ModuleIDs...),
		LevelIDs:        append([]shared.ID(nil), s.LevelIDs...),
		SublevelIDs:     append([]shared.ID(nil), s.SublevelIDs...),
		WarehouseIDs:    append([]shared.ID(nil), s.WarehouseIDs...),
		CashRegisterIDs: append([]shared.ID(nil), s.CashRegisterIDs...),
		ControlPanelIDs: append([]shared.ID(nil), s.ControlPanelIDs...),
		SellerIDs:       append([]shared.ID(nil), s.SellerIDs...),
	}
	for _, av := range s.ActionValues {
		out.ActionValues = append(out.ActionValues,
			ReconstituteActionValue(target, av.PermissionID(), av.Kind(), av.Value()))
	}
	for _, mg := range s.MatrixGrants {
		out.MatrixGrants = append(out.MatrixGrants,
			ReconstituteMatrixGrant(target, mg.PermissionID(), mg.Flags()))
	}
	for _, pg := range s.PaymentGrants {
		out.PaymentGrants = append(out.PaymentGrants,
			ReconstitutePaymentGrant(target, pg.PaymentMethodID(), pg.Enabled()))
	}
	return out
}
