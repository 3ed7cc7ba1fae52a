package globalcat

import (
	"context"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Repository provides access to the three global catalogs.
type Repository interface {
	CreateActionPermission(ctx context.Context, p *ActionPermission) error
	CreateMatrixPermission(ctx context.Context, p *MatrixPermission) error
	CreatePaymentMethod(ctx context.Context, p *PaymentMethod) error

	ListActiveActionPermissions(ctx context.Context) ([]*ActionPermission, error)
	ListActiveMatrixPermissions(ctx context.Context) ([]*MatrixPermission, error)
	ListActivePaymentMethods(ctx context.Context) ([]*PaymentMethod, error)

	ListActionPermissionsByIDs(ctx context.Context, ids []shared.ID) ([]*ActionPermission, error)
	ListMatrixPermissionsByIDs(ctx context.Context, ids []shared.ID) ([]*MatrixPermission, error)
	ListPaymentMethodsByIDs(ctx context.Context, ids []shared.ID) ([]*PaymentMethod, error)
}
