package visibility

import (
	"context"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// Repository persists blocks, rules, triggers and rule→block links.
type Repository interface {
	CreateBlock(ctx context.Context, b *Block) error
	GetBlockByCode(ctx context.Context, code string) (*Block, error)
	ListActiveBlocks(ctx context.Context) ([]*Block, error)
	UpdateBlock(ctx context.Context, b *Block) error

	CreateRule(ctx context.Context, r *Rule) error
	GetRuleByID(ctx context.Context, id shared.ID) (*Rule, error)
	UpdateRule(ctx context.Context, r *Rule) error

	AddTrigger(ctx context.Context, t *Trigger) error
	RemoveTrigger(ctx context.Context, id shared.ID) error

	AddRuleBlock(ctx context.Context, rb *RuleBlock) error
	RemoveRuleBlock(ctx context.Context, ruleID, blockID shared.ID) error

	// ListActiveRulesWithLinks returns active rules joined with triggers and
	// block links, ordered by (priority desc, name asc), which is the
	// evaluation order the resolver expects.
	ListActiveRulesWithLinks(ctx context.Context) ([]*RuleWithLinks, error)
}
