package moduletree

import (
	"context"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Repository provides access to the module tree catalogs.
type Repository interface {
	CreateModule(ctx context.Context, m *Module) error
	CreateLevel(ctx context.Context, l *Level) error
	CreateSublevel(ctx context.Context, s *Sublevel) error

	GetModuleByName(ctx context.Context, name string) (*Module, error)
	GetLevelByName(ctx context.Context, moduleID shared.ID, name string) (*Level, error)
	GetSublevelByName(ctx context.Context, levelID shared.ID, name string) (*Sublevel, error)

	ListActiveModules(ctx context.Context) ([]*Module, error)
	ListActiveLevels(ctx context.Context, moduleID shared.ID) ([]*Level, error)
	ListActiveSublevels(ctx context.Context, levelID shared.ID) ([]*Sublevel, error)
}
