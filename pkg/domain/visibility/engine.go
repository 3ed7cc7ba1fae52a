package visibility

import "github.com/erpacceso/api/pkg/domain/shared"

// Picks are the module tree nodes chosen by a selection set, the only input
// the matcher looks at.
type Picks struct {
	ModuleIDs   []shared.ID
	LevelIDs    []shared.ID
	SublevelIDs []shared.ID
}

func (p Picks) index() map[TriggerTarget]map[shared.ID]struct{} {
	idx := map[TriggerTarget]map[shared.ID]struct{}{
		TargetModule:   make(map[shared.ID]struct{}, len(p.ModuleIDs)),
		TargetLevel:    make(map[shared.ID]struct{}, len(p.LevelIDs)),
		TargetSublevel: make(map[shared.ID]struct{}, len(p.SublevelIDs)),
	}
	for _, id := range p.ModuleIDs {
		idx[TargetModule][id] = struct{}{}
	}
	for _, id := range p.LevelIDs {
		idx[TargetLevel][id] = struct{}{}
	}
	for _, id := range p.SublevelIDs {
		idx[TargetSublevel][id] = struct{}{}
	}
	return idx
}

// RuleWithLinks is a rule joined with its triggers and block links, plus the
// referenced blocks, as loaded by the repository in priority order.
type RuleWithLinks struct {
	Rule     *Rule
	Triggers []*Trigger
	Blocks   []*BlockLink
}

// BlockLink pairs a rule→block link with the block it names.
type BlockLink struct {
	Link  *RuleBlock
	Block *Block
}

// Resolve evaluates rules against the picks and returns the union of block
// codes contributed by every matching rule's SHOW links. Rules are expected
// active and ordered by (priority desc, name asc); priority affects
// evaluation order only, since ANY/SHOW-union semantics have no suppression.
// There is no short-circuit on first match: all matching rules contribute.
func Resolve(picks Picks, rules []*RuleWithLinks) map[string]struct{} {
	idx := picks.index()
	visible := make(map[string]struct{})

	for _, r := range rules {
		if r.Rule == nil || !r.Rule.IsActive() {
			continue
		}
		if !matches(r, idx) {
			continue
		}
		for _, bl := range r.Blocks {
			if bl.Link.Mode() != ModeShow {
				continue
			}
			if bl.Block == nil || !bl.Block.IsActive() {
				continue
			}
			visible[bl.Block.Code()] = struct{}{}
		}
	}
	return visible
}

// matches applies the rule's match mode. A rule with zero triggers matches
// unconditionally.
func matches(r *RuleWithLinks, idx map[TriggerTarget]map[shared.ID]struct{}) bool {
	if len(r.Triggers) == 0 {
		return true
	}
	switch r.Rule.MatchMode() {
	case MatchAny:
		for _, t := range r.Triggers {
			if _, ok := idx[t.Target()][t.NodeID()]; ok {
				return true
			}
		}
		return false
	default:
		// Unknown modes never match; creation rejects them so this only
		// guards against rows written by a newer schema.
		return false
	}
}

// VisibleBlocks is the resolution result handed to UI-layer consumers.
type VisibleBlocks struct {
	codes map[string]struct{}
}

// NewVisibleBlocks wraps a resolved code set.
func NewVisibleBlocks(codes map[string]struct{}) VisibleBlocks {
	if codes == nil {
		codes = make(map[string]struct{})
	}
	return VisibleBlocks{codes: codes}
}

// Has reports whether a block code is visible. An absent code means "hide
// this UI section".
func (v VisibleBlocks) Has(code string) bool {
	_, ok := v.codes[code]
	return ok
}

// Codes returns the visible block codes as a slice (unordered).
func (v VisibleBlocks) Codes() []string {
	out := make([]string, 0, len(v.codes))
	for c := range v.codes {
		out = append(out, c)
	}
	return out
}

// Len returns the number of visible blocks.
func (v VisibleBlocks) Len() int { return len(v.codes) }
