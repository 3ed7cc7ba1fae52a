// Package moduletree models the static three-level ERP module hierarchy:
// module, level, sublevel. Selection sets pick nodes from each tier
// independently so a module can be granted partially.
package moduletree

import (
	"fmt"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Module is the root tier of the tree, e.g. "Gestión Comercial".
type Module struct {
	id        shared.ID
	name      string
	isActive  bool
	createdAt time.Time
}

// NewModule creates a root module node.
func NewModule(name string) (*Module, error) {
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: module name is required", shared.ErrValidation)
	}
	return &Module{
		id:        shared.NewID(),
		name:      name,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteModule recreates a Module from persistence.
func ReconstituteModule(id shared.ID, name string, isActive bool, createdAt time.Time) *Module {
	return &Module{id: id, name: name, isActive: isActive, createdAt: createdAt}
}

func (m *Module) ID() shared.ID        { return m.id }
func (m *Module) Name() string         { return m.name }
func (m *Module) IsActive() bool       { return m.isActive }
func (m *Module) CreatedAt() time.Time { return m.createdAt }

// Level is the second tier, unique by name within its module.
type Level struct {
	id        shared.ID
	moduleID  shared.ID
	name      string
	isActive  bool
	createdAt time.Time
}

// NewLevel creates a level under a module.
func NewLevel(moduleID shared.ID, name string) (*Level, error) {
	if moduleID.IsZero() {
		return nil, fmt.Errorf("%w: moduleID is required", shared.ErrValidation)
	}
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: level name is required", shared.ErrValidation)
	}
	return &Level{
		id:        shared.NewID(),
		moduleID:  moduleID,
		name:      name,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteLevel recreates a Level from persistence.
func ReconstituteLevel(id, moduleID shared.ID, name string, isActive bool, createdAt time.Time) *Level {
	return &Level{id: id, moduleID: moduleID, name: name, isActive: isActive, createdAt: createdAt}
}

func (l *Level) ID() shared.ID        { return l.id }
func (l *Level) ModuleID() shared.ID  { return l.moduleID }
func (l *Level) Name() string         { return l.name }
func (l *Level) IsActive() bool       { return l.isActive }
func (l *Level) CreatedAt() time.Time { return l.createdAt }

// Sublevel is the third tier, unique by name within its level.
type Sublevel struct {
	id        shared.ID
	levelID   shared.ID
	name      string
	isActive  bool
	createdAt time.Time
}

// NewSublevel creates a sublevel under a level.
func NewSublevel(levelID shared.ID, name string) (*Sublevel, error) {
	if levelID.IsZero() {
		return nil, fmt.Errorf("%w: levelID is required", shared.ErrValidation)
	}
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: sublevel name is required", shared.ErrValidation)
	}
	return &Sublevel{
		id:        shared.NewID(),
		levelID:   levelID,
		name:      name,
		isActive:  true,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteSublevel recreates a Sublevel from persistence.
func ReconstituteSublevel(id, levelID shared.ID, name string, isActive bool, createdAt time.Time) *Sublevel {
	return &Sublevel{id: id, levelID: levelID, name: name, isActive: isActive, createdAt: createdAt}
}

func (s *Sublevel) ID() shared.ID        { return s.id }
func (s *Sublevel) LevelID() shared.ID   { return s.levelID }
func (s *Sublevel) Name() string         { return s.name }
func (s *Sublevel) IsActive() bool       { return s.isActive }
func (s *Sublevel) CreatedAt() time.Time { return s.createdAt }
