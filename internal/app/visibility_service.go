package app

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erpacceso/api/internal/infra/redis"
	"github.com/erpacceso/api/internal/metrics"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/domain/visibility"
	"github.com/erpacceso/api/pkg/logger"
)

// VisibilityService resolves which permission blocks apply to a selection and
// manages the rule catalog behind the resolution. Results are cached per
// selection set when a cache is wired; every rule or block mutation flushes
// the whole cache since any cached result may depend on it.
type VisibilityService struct {
	visibilityRepo visibility.Repository
	selectionRepo  selection.Repository
	cache          *redis.Cache[[]string]
	logger         *logger.Logger
}

// NewVisibilityService creates a new VisibilityService. A nil cache disables
// caching and every resolution goes to the store.
func NewVisibilityService(
	visibilityRepo visibility.Repository,
	selectionRepo selection.Repository,
	cache *redis.Cache[[]string],
	log *logger.Logger,
) *VisibilityService {
	return &VisibilityService{
		visibilityRepo: visibilityRepo,
		selectionRepo:  selectionRepo,
		cache:          cache,
		logger:         log.With("service", "visibility"),
	}
}

// ResolveVisibleBlocks resolves the visible block codes for a selection set
// from its chosen module tree nodes.
func (s *VisibilityService) ResolveVisibleBlocks(ctx context.Context, setID shared.ID) (visibility.VisibleBlocks, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, setID.String())
		if err == nil {
			metrics.VisibilityResolvesTotal.WithLabelValues("hit").Inc()
			codes := make(map[string]struct{}, len(*cached))
			for _, c := range *cached {
				codes[c] = struct{}{}
			}
			return visibility.NewVisibleBlocks(codes), nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("visibility cache read failed", "error", err)
		}
	}

	snap, err := s.selectionRepo.GetSnapshot(ctx, setID)
	if err != nil {
		return visibility.VisibleBlocks{}, err
	}

	picks := visibility.Picks{
		ModuleIDs:   snap.ModuleIDs,
		LevelIDs:    snap.LevelIDs,
		SublevelIDs: snap.SublevelIDs,
	}

	result, err := s.ResolveForPicks(ctx, picks)
	if err != nil {
		return visibility.VisibleBlocks{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, setID.String(), result.Codes()); err != nil {
			s.logger.Warn("visibility cache write failed", "error", err)
		}
	}

	metrics.VisibilityResolvesTotal.WithLabelValues("miss").Inc()
	return result, nil
}

// ResolveForPicks resolves visible blocks for an explicit set of module tree
// picks, without touching any stored selection set.
func (s *VisibilityService) ResolveForPicks(ctx context.Context, picks visibility.Picks) (visibility.VisibleBlocks, error) {
	timer := prometheus.NewTimer(metrics.VisibilityResolveDuration)
	defer timer.ObserveDuration()

	rules, err := s.visibilityRepo.ListActiveRulesWithLinks(ctx)
	if err != nil {
		return visibility.VisibleBlocks{}, err
	}

	metrics.VisibilityRulesEvaluated.Observe(float64(len(rules)))
	return visibility.NewVisibleBlocks(visibility.Resolve(picks, rules)), nil
}

// AllowedActionGroups reports which action permission groups the visible
// ACTION blocks of a selection set allow. The second return is false when
// the result must not be used as a filter.
func (s *VisibilityService) AllowedActionGroups(ctx context.Context, setID shared.ID) (map[string]struct{}, bool, error) {
	visible, err := s.ResolveVisibleBlocks(ctx, setID)
	if err != nil {
		return nil, false, err
	}

	blocks, err := s.visibilityRepo.ListActiveBlocks(ctx)
	if err != nil {
		return nil, false, err
	}

	groups, filter := visibility.AllowedActionGroups(blocks, visible)
	return groups, filter, nil
}

// CreateBlock adds a permission block and flushes cached resolutions.
func (s *VisibilityService) CreateBlock(ctx context.Context, b *visibility.Block) error {
	if err := s.visibilityRepo.CreateBlock(ctx, b); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateBlock persists block changes and flushes cached resolutions.
func (s *VisibilityService) UpdateBlock(ctx context.Context, b *visibility.Block) error {
	if err := s.visibilityRepo.UpdateBlock(ctx, b); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// GetBlockByCode retrieves a block by its code.
func (s *VisibilityService) GetBlockByCode(ctx context.Context, code string) (*visibility.Block, error) {
	return s.visibilityRepo.GetBlockByCode(ctx, code)
}

// ListActiveBlocks lists active blocks in display order.
func (s *VisibilityService) ListActiveBlocks(ctx context.Context) ([]*visibility.Block, error) {
	return s.visibilityRepo.ListActiveBlocks(ctx)
}

// CreateRule adds a visibility rule and flushes cached resolutions.
func (s *VisibilityService) CreateRule(ctx context.Context, r *visibility.Rule) error {
	if err := s.visibilityRepo.CreateRule(ctx, r); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// GetRule retrieves a rule by ID.
func (s *VisibilityService) GetRule(ctx context.Context, id shared.ID) (*visibility.Rule, error) {
	return s.visibilityRepo.GetRuleByID(ctx, id)
}

// UpdateRule persists rule changes and flushes cached resolutions.
func (s *VisibilityService) UpdateRule(ctx context.Context, r *visibility.Rule) error {
	if err := s.visibilityRepo.UpdateRule(ctx, r); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AddTrigger attaches a trigger to a rule and flushes cached resolutions.
func (s *VisibilityService) AddTrigger(ctx context.Context, t *visibility.Trigger) error {
	if err := s.visibilityRepo.AddTrigger(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// RemoveTrigger detaches a trigger and flushes cached resolutions.
func (s *VisibilityService) RemoveTrigger(ctx context.Context, id shared.ID) error {
	if err := s.visibilityRepo.RemoveTrigger(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AddRuleBlock links a block to a rule and flushes cached resolutions.
func (s *VisibilityService) AddRuleBlock(ctx context.Context, rb *visibility.RuleBlock) error {
	if err := s.visibilityRepo.AddRuleBlock(ctx, rb); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// RemoveRuleBlock unlinks a block from a rule and flushes cached resolutions.
func (s *VisibilityService) RemoveRuleBlock(ctx context.Context, ruleID, blockID shared.ID) error {
	if err := s.visibilityRepo.RemoveRuleBlock(ctx, ruleID, blockID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// InvalidateSelection drops the cached resolution of one selection set. The
// row synchronizer calls it after module tree picks change.
func (s *VisibilityService) InvalidateSelection(ctx context.Context, setID shared.ID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, setID.String()); err != nil {
		s.logger.Warn("visibility cache invalidation failed", "error", err, "selection_set_id", setID.String())
	}
}

func (s *VisibilityService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteAll(ctx); err != nil {
		s.logger.Warn("visibility cache flush failed", "error", err)
	}
}
