package visibility

// AllowedActionGroups computes, for GLOBAL/ACTION blocks among the visible
// set, which action groups the UI may present. A visible ACTION block with no
// group filter means "all groups"; in that case (and when no ACTION block is
// visible at all but filtering is moot) the second return is false and the
// caller must not filter.
func AllowedActionGroups(blocks []*Block, visible VisibleBlocks) (map[string]struct{}, bool) {
	groups := make(map[string]struct{})
	sawActionBlock := false

	for _, b := range blocks {
		if b.Kind() != BlockGlobal || b.GlobalEntity() != EntityAction {
			continue
		}
		if !visible.Has(b.Code()) {
			continue
		}
		sawActionBlock = true
		if b.ActionGroup() == "" {
			return nil, false
		}
		groups[b.ActionGroup()] = struct{}{}
	}

	if !sawActionBlock {
		return nil, false
	}
	return groups, true
}
