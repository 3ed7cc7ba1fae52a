package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erpacceso/api/pkg/domain/moduletree"
	"github.com/erpacceso/api/pkg/domain/shared"
)

// ModuleTreeRepository implements moduletree.Repository using PostgreSQL.
type ModuleTreeRepository struct {
	db *DB
}

// NewModuleTreeRepository creates a new ModuleTreeRepository.
func NewModuleTreeRepository(db *DB) *ModuleTreeRepository {
	return &ModuleTreeRepository{db: db}
}

// CreateModule persists a new root module.
func (r *ModuleTreeRepository) CreateModule(ctx context.Context, m *moduletree.Module) error {
	query := `
		INSERT INTO modules (id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, m.ID().String(), m.Name(), m.IsActive(), m.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("module %q: %w", m.Name(), shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create module: %w", err)
	}

	return nil
}

// CreateLevel persists a new level under a module.
func (r *ModuleTreeRepository) CreateLevel(ctx context.Context, l *moduletree.Level) error {
	query := `
		INSERT INTO module_levels (id, module_id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, l.ID().String(), l.ModuleID().String(), l.Name(), l.IsActive(), l.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("level %q: %w", l.Name(), shared.ErrAlreadyExists)
		}
		if isForeignKeyViolation(err) {
			return moduletree.ErrModuleNotFound
		}
		return fmt.Errorf("failed to create level: %w", err)
	}

	return nil
}

// CreateSublevel persists a new sublevel under a level.
func (r *ModuleTreeRepository) CreateSublevel(ctx context.Context, s *moduletree.Sublevel) error {
	query := `
		INSERT INTO module_sublevels (id, level_id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, s.ID().String(), s.LevelID().String(), s.Name(), s.IsActive(), s.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sublevel %q: %w", s.Name(), shared.ErrAlreadyExists)
		}
		if isForeignKeyViolation(err) {
			return moduletree.ErrLevelNotFound
		}
		return fmt.Errorf("failed to create sublevel: %w", err)
	}

	return nil
}

// GetModuleByName retrieves a module by its normalized name.
func (r *ModuleTreeRepository) GetModuleByName(ctx context.Context, name string) (*moduletree.Module, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM modules
		WHERE name = $1
	`

	var (
		idStr, n  string
		isActive  bool
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, shared.NormalizeName(name)).Scan(&idStr, &n, &isActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, moduletree.ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to scan module: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	return moduletree.ReconstituteModule(id, n, isActive, createdAt), nil
}

// GetLevelByName retrieves a level by module and normalized name.
func (r *ModuleTreeRepository) GetLevelByName(ctx context.Context, moduleID shared.ID, name string) (*moduletree.Level, error) {
	query := `
		SELECT id, module_id, name, is_active, created_at
		FROM module_levels
		WHERE module_id = $1 AND name = $2
	`

	var (
		idStr, parentStr, n string
		isActive            bool
		createdAt           time.Time
	)
	err := r.db.QueryRowContext(ctx, query, moduleID.String(), shared.NormalizeName(name)).
		Scan(&idStr, &parentStr, &n, &isActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, moduletree.ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to scan level: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	pID, _ := shared.IDFromString(parentStr)
	return moduletree.ReconstituteLevel(id, pID, n, isActive, createdAt), nil
}

// GetSublevelByName retrieves a sublevel by level and normalized name.
func (r *ModuleTreeRepository) GetSublevelByName(ctx context.Context, levelID shared.ID, name string) (*moduletree.Sublevel, error) {
	query := `
		SELECT id, level_id, name, is_active, created_at
		FROM module_sublevels
		WHERE level_id = $1 AND name = $2
	`

	var (
		idStr, parentStr, n string
		isActive            bool
		createdAt           time.Time
	)
	err := r.db.QueryRowContext(ctx, query, levelID.String(), shared.NormalizeName(name)).
		Scan(&idStr, &parentStr, &n, &isActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, moduletree.ErrSublevelNotFound
		}
		return nil, fmt.Errorf("failed to scan sublevel: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	pID, _ := shared.IDFromString(parentStr)
	return moduletree.ReconstituteSublevel(id, pID, n, isActive, createdAt), nil
}

// ListActiveModules lists active modules ordered by name.
func (r *ModuleTreeRepository) ListActiveModules(ctx context.Context) ([]*moduletree.Module, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM modules
		WHERE is_active = TRUE
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer rows.Close()

	var modules []*moduletree.Module
	for rows.Next() {
		var (
			idStr, n  string
			isActive  bool
			createdAt time.Time
		)
		if err := rows.Scan(&idStr, &n, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		modules = append(modules, moduletree.ReconstituteModule(id, n, isActive, createdAt))
	}

	return modules, rows.Err()
}

// ListActiveLevels lists active levels of a module ordered by name.
func (r *ModuleTreeRepository) ListActiveLevels(ctx context.Context, moduleID shared.ID) ([]*moduletree.Level, error) {
	query := `
		SELECT id, module_id, name, is_active, created_at
		FROM module_levels
		WHERE module_id = $1 AND is_active = TRUE
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, moduleID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	defer rows.Close()

	var levels []*moduletree.Level
	for rows.Next() {
		var (
			idStr, parentStr, n string
			isActive            bool
			createdAt           time.Time
		)
		if err := rows.Scan(&idStr, &parentStr, &n, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		pID, _ := shared.IDFromString(parentStr)
		levels = append(levels, moduletree.ReconstituteLevel(id, pID, n, isActive, createdAt))
	}

	return levels, rows.Err()
}

// ListActiveSublevels lists active sublevels of a level ordered by name.
func (r *ModuleTreeRepository) ListActiveSublevels(ctx context.Context, levelID shared.ID) ([]*moduletree.Sublevel, error) {
	query := `
		SELECT id, level_id, name, is_active, created_at
		FROM module_sublevels
		WHERE level_id = $1 AND is_active = TRUE
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, levelID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list sublevels: %w", err)
	}
	defer rows.Close()

	var sublevels []*moduletree.Sublevel
	for rows.Next() {
		var (
			idStr, parentStr, n string
			isActive            bool
			createdAt           time.Time
		)
		if err := rows.Scan(&idStr, &parentStr, &n, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan sublevel: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		pID, _ := shared.IDFromString(parentStr)
		sublevels = append(sublevels, moduletree.ReconstituteSublevel(id, pID, n, isActive, createdAt))
	}

	return sublevels, rows.Err()
}
