package visibility

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// MatchMode decides how a rule's triggers combine. Only ANY exists today;
// the type is open so ALL can be added without changing the contract.
type MatchMode string

// Match modes.
const (
	MatchAny MatchMode = "ANY"
)

// ParseMatchMode parses a match mode string.
func ParseMatchMode(s string) (MatchMode, error) {
	if MatchMode(s) != MatchAny {
		return "", fmt.Errorf("%w: unsupported match mode %q", shared.ErrValidation, s)
	}
	return MatchAny, nil
}

// BlockMode decides what a matching rule does with a linked block. Only SHOW
// exists today; HIDE stays out until a real case appears.
type BlockMode string

// Block modes.
const (
	ModeShow BlockMode = "SHOW"
)

// ParseBlockMode parses a block mode string.
func ParseBlockMode(s string) (BlockMode, error) {
	if BlockMode(s) != ModeShow {
		return "", fmt.Errorf("%w: unsupported block mode %q", shared.ErrValidation, s)
	}
	return ModeShow, nil
}

// Rule matches a selection by its chosen module tree nodes and contributes
// its SHOW blocks to the visible set. A rule with no triggers matches
// unconditionally; that is how the always-on default rule works.
type Rule struct {
	id        shared.ID
	name      string
	isActive  bool
	priority  int
	matchMode MatchMode
	notes     string
	createdAt time.Time
}

// NewRule creates a visibility rule. Higher priority rules are evaluated
// first; with ANY/SHOW-union semantics priority affects order only, not the
// result.
func NewRule(name string, priority int, mode MatchMode, notes string) (*Rule, error) {
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: rule name is required", shared.ErrValidation)
	}
	if _, err := ParseMatchMode(string(mode)); err != nil {
		return nil, err
	}
	return &Rule{
		id:        shared.NewID(),
		name:      name,
		isActive:  true,
		priority:  priority,
		matchMode: mode,
		notes:     strings.TrimSpace(notes),
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteRule recreates a Rule from persistence.
func ReconstituteRule(id shared.ID, name string, isActive bool, priority int, mode MatchMode, notes string, createdAt time.Time) *Rule {
	return &Rule{id: id, name: name, isActive: isActive, priority: priority, matchMode: mode, notes: notes, createdAt: createdAt}
}

func (r *Rule) ID() shared.ID        { return r.id }
func (r *Rule) Name() string         { return r.name }
func (r *Rule) IsActive() bool       { return r.isActive }
func (r *Rule) Priority() int        { return r.priority }
func (r *Rule) MatchMode() MatchMode { return r.matchMode }
func (r *Rule) Notes() string        { return r.notes }
func (r *Rule) CreatedAt() time.Time { return r.createdAt }

// Deactivate removes the rule from evaluation.
func (r *Rule) Deactivate() { r.isActive = false }

// Activate re-enables the rule.
func (r *Rule) Activate() { r.isActive = true }

// TriggerTarget names the module tree tier a trigger references.
type TriggerTarget string

// Trigger targets.
const (
	TargetModule   TriggerTarget = "module"
	TargetLevel    TriggerTarget = "level"
	TargetSublevel TriggerTarget = "sublevel"
)

// Trigger references exactly one module tree node. The shape invariant
// (exactly one of module/level/sublevel) is enforced here, never at
// resolution time.
type Trigger struct {
	id     shared.ID
	ruleID shared.ID
	target TriggerTarget
	nodeID shared.ID
}

// NewModuleTrigger creates a trigger matching a chosen module.
func NewModuleTrigger(ruleID, moduleID shared.ID) (*Trigger, error) {
	return newTrigger(ruleID, TargetModule, moduleID)
}

// NewLevelTrigger creates a trigger matching a chosen level.
func NewLevelTrigger(ruleID, levelID shared.ID) (*Trigger, error) {
	return newTrigger(ruleID, TargetLevel, levelID)
}

// NewSublevelTrigger creates a trigger matching a chosen sublevel.
func NewSublevelTrigger(ruleID, sublevelID shared.ID) (*Trigger, error) {
	return newTrigger(ruleID, TargetSublevel, sublevelID)
}

func newTrigger(ruleID shared.ID, target TriggerTarget, nodeID shared.ID) (*Trigger, error) {
	if ruleID.IsZero() {
		return nil, fmt.Errorf("%w: ruleID is required", shared.ErrValidation)
	}
	if nodeID.IsZero() {
		return nil, ErrTriggerShape
	}
	return &Trigger{id: shared.NewID(), ruleID: ruleID, target: target, nodeID: nodeID}, nil
}

// ReconstituteTrigger recreates a Trigger from persistence, re-checking the
// shape invariant so a corrupted row fails loudly at load time.
func ReconstituteTrigger(id, ruleID shared.ID, target TriggerTarget, nodeID shared.ID) (*Trigger, error) {
	switch target {
	case TargetModule, TargetLevel, TargetSublevel:
	default:
		return nil, ErrTriggerShape
	}
	if nodeID.IsZero() {
		return nil, ErrTriggerShape
	}
	return &Trigger{id: id, ruleID: ruleID, target: target, nodeID: nodeID}, nil
}

func (t *Trigger) ID() shared.ID         { return t.id }
func (t *Trigger) RuleID() shared.ID     { return t.ruleID }
func (t *Trigger) Target() TriggerTarget { return t.target }
func (t *Trigger) NodeID() shared.ID     { return t.nodeID }

// RuleBlock links a rule to a block it shows.
type RuleBlock struct {
	ruleID  shared.ID
	blockID shared.ID
	mode    BlockMode
	order   int
}

// NewRuleBlock creates a rule→block link.
func NewRuleBlock(ruleID, blockID shared.ID, mode BlockMode, order int) (*RuleBlock, error) {
	if ruleID.IsZero() || blockID.IsZero() {
		return nil, fmt.Errorf("%w: ruleID and blockID are required", shared.ErrValidation)
	}
	if _, err := ParseBlockMode(string(mode)); err != nil {
		return nil, err
	}
	return &RuleBlock{ruleID: ruleID, blockID: blockID, mode: mode, order: order}, nil
}

// ReconstituteRuleBlock recreates a RuleBlock from persistence.
func ReconstituteRuleBlock(ruleID, blockID shared.ID, mode BlockMode, order int) *RuleBlock {
	return &RuleBlock{ruleID: ruleID, blockID: blockID, mode: mode, order: order}
}

func (rb *RuleBlock) RuleID() shared.ID  { return rb.ruleID }
func (rb *RuleBlock) BlockID() shared.ID { return rb.blockID }
func (rb *RuleBlock) Mode() BlockMode    { return rb.mode }
func (rb *RuleBlock) Order() int         { return rb.order }
