package app

import (
	"context"
	"fmt"

	"github.com/erpacceso/api/internal/metrics"
	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/logger"
)

// GlobalsService manages the three global child tables of a selection set:
// typed action values, matrix grants and payment grants.
type GlobalsService struct {
	selectionRepo selection.Repository
	catalogRepo   globalcat.Repository
	logger        *logger.Logger
}

// NewGlobalsService creates a new GlobalsService.
func NewGlobalsService(selectionRepo selection.Repository, catalogRepo globalcat.Repository, log *logger.Logger) *GlobalsService {
	return &GlobalsService{
		selectionRepo: selectionRepo,
		catalogRepo:   catalogRepo,
		logger:        log.With("service", "globals"),
	}
}

// ActionValueInput is one typed action value submitted by a caller.
type ActionValueInput struct {
	PermissionID shared.ID
	Value        selection.TypedValue
}

// MatrixGrantInput is one matrix grant submitted by a caller.
type MatrixGrantInput struct {
	PermissionID shared.ID
	Flags        globalcat.MatrixFlags
}

// PaymentGrantInput is one payment grant submitted by a caller.
type PaymentGrantInput struct {
	PaymentMethodID shared.ID
	Enabled         bool
}

// GlobalsInput is the full global-values payload of one save call.
type GlobalsInput struct {
	ActionValues  []ActionValueInput
	MatrixGrants  []MatrixGrantInput
	PaymentGrants []PaymentGrantInput
}

// EnsureGlobalRows creates a row for every active global catalog entry the
// selection set does not have yet: empty action values, all-false matrix
// grants, disabled payment grants. A fresh selection grants nothing until
// someone saves values explicitly. Existing rows are never touched, so
// running it again after new catalog entries appear only fills the gaps.
func (s *GlobalsService) EnsureGlobalRows(ctx context.Context, setID shared.ID) error {
	set, err := s.selectionRepo.GetByID(ctx, setID)
	if err != nil {
		metrics.GlobalBootstrapsTotal.WithLabelValues("error").Inc()
		return err
	}

	actionPerms, err := s.catalogRepo.ListActiveActionPermissions(ctx)
	if err != nil {
		return err
	}
	matrixPerms, err := s.catalogRepo.ListActiveMatrixPermissions(ctx)
	if err != nil {
		return err
	}
	paymentMethods, err := s.catalogRepo.ListActivePaymentMethods(ctx)
	if err != nil {
		return err
	}

	actions := make([]*selection.ActionValue, 0, len(actionPerms))
	for _, perm := range actionPerms {
		av, err := selection.NewActionValue(set.ID(), perm, selection.TypedValue{})
		if err != nil {
			return err
		}
		actions = append(actions, av)
	}

	matrix := make([]*selection.MatrixGrant, 0, len(matrixPerms))
	for _, perm := range matrixPerms {
		mg, err := selection.NewMatrixGrant(set.ID(), perm.ID(), globalcat.MatrixFlags{})
		if err != nil {
			return err
		}
		matrix = append(matrix, mg)
	}

	payments := make([]*selection.PaymentGrant, 0, len(paymentMethods))
	for _, method := range paymentMethods {
		pg, err := selection.NewPaymentGrant(set.ID(), method.ID(), false)
		if err != nil {
			return err
		}
		payments = append(payments, pg)
	}

	if err := s.selectionRepo.InsertMissingGlobals(ctx, set.ID(), actions, matrix, payments); err != nil {
		metrics.GlobalBootstrapsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.GlobalBootstrapsTotal.WithLabelValues("success").Inc()
	metrics.GlobalRowsInserted.WithLabelValues("action").Add(float64(len(actions)))
	metrics.GlobalRowsInserted.WithLabelValues("matrix").Add(float64(len(matrix)))
	metrics.GlobalRowsInserted.WithLabelValues("payment").Add(float64(len(payments)))

	s.logger.Info("global rows ensured",
		"selection_set_id", setID.String(),
		"action_rows", len(actions),
		"matrix_rows", len(matrix),
		"payment_rows", len(payments),
	)
	return nil
}

// SaveGlobals validates and persists the full global-values payload of a
// selection set. Every row is checked against its catalog entry before any
// write; rows that carry no meaningful value are dropped rather than stored,
// and the three tables are replaced in one transaction.
func (s *GlobalsService) SaveGlobals(ctx context.Context, setID shared.ID, input GlobalsInput) error {
	set, err := s.selectionRepo.GetByID(ctx, setID)
	if err != nil {
		return err
	}

	actions, err := s.buildActionValues(ctx, set.ID(), input.ActionValues)
	if err != nil {
		return err
	}
	matrix, err := s.buildMatrixGrants(ctx, set.ID(), input.MatrixGrants)
	if err != nil {
		return err
	}
	payments, err := s.buildPaymentGrants(ctx, set.ID(), input.PaymentGrants)
	if err != nil {
		return err
	}

	if err := s.selectionRepo.ReplaceGlobals(ctx, set.ID(), actions, matrix, payments); err != nil {
		return err
	}

	s.logger.Info("global rows saved",
		"selection_set_id", setID.String(),
		"action_rows", len(actions),
		"matrix_rows", len(matrix),
		"payment_rows", len(payments),
	)
	return nil
}

func (s *GlobalsService) buildActionValues(ctx context.Context, setID shared.ID, inputs []ActionValueInput) ([]*selection.ActionValue, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	ids := make([]shared.ID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.PermissionID)
	}
	perms, err := s.catalogRepo.ListActionPermissionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[shared.ID]*globalcat.ActionPermission, len(perms))
	for _, p := range perms {
		byID[p.ID()] = p
	}

	values := make([]*selection.ActionValue, 0, len(inputs))
	for _, in := range inputs {
		perm, ok := byID[in.PermissionID]
		if !ok {
			return nil, fmt.Errorf("%w: action permission %s", selection.ErrUnknownCatalogID, in.PermissionID)
		}
		if !perm.IsActive() {
			return nil, fmt.Errorf("%w: action permission %q", selection.ErrInactiveCatalogRow, perm.Action())
		}
		av, err := selection.NewActionValue(setID, perm, in.Value)
		if err != nil {
			return nil, err
		}
		if !av.IsMeaningful() {
			continue
		}
		values = append(values, av)
	}
	return values, nil
}

func (s *GlobalsService) buildMatrixGrants(ctx context.Context, setID shared.ID, inputs []MatrixGrantInput) ([]*selection.MatrixGrant, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	ids := make([]shared.ID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.PermissionID)
	}
	perms, err := s.catalogRepo.ListMatrixPermissionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[shared.ID]*globalcat.MatrixPermission, len(perms))
	for _, p := range perms {
		byID[p.ID()] = p
	}

	grants := make([]*selection.MatrixGrant, 0, len(inputs))
	for _, in := range inputs {
		perm, ok := byID[in.PermissionID]
		if !ok {
			return nil, fmt.Errorf("%w: matrix permission %s", selection.ErrUnknownCatalogID, in.PermissionID)
		}
		if !perm.IsActive() {
			return nil, fmt.Errorf("%w: matrix permission %q", selection.ErrInactiveCatalogRow, perm.Name())
		}
		mg, err := selection.NewMatrixGrant(setID, in.PermissionID, in.Flags)
		if err != nil {
			return nil, err
		}
		if !mg.IsMeaningful() {
			continue
		}
		grants = append(grants, mg)
	}
	return grants, nil
}

func (s *GlobalsService) buildPaymentGrants(ctx context.Context, setID shared.ID, inputs []PaymentGrantInput) ([]*selection.PaymentGrant, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	ids := make([]shared.ID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.PaymentMethodID)
	}
	methods, err := s.catalogRepo.ListPaymentMethodsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[shared.ID]*globalcat.PaymentMethod, len(methods))
	for _, m := range methods {
		byID[m.ID()] = m
	}

	grants := make([]*selection.PaymentGrant, 0, len(inputs))
	for _, in := range inputs {
		method, ok := byID[in.PaymentMethodID]
		if !ok {
			return nil, fmt.Errorf("%w: payment method %s", selection.ErrUnknownCatalogID, in.PaymentMethodID)
		}
		if !method.IsActive() {
			return nil, fmt.Errorf("%w: payment method %q", selection.ErrInactiveCatalogRow, method.Name())
		}
		pg, err := selection.NewPaymentGrant(setID, in.PaymentMethodID, in.Enabled)
		if err != nil {
			return nil, err
		}
		if !pg.IsMeaningful() {
			continue
		}
		grants = append(grants, pg)
	}
	return grants, nil
}
