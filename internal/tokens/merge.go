package tokens

// Merge combines target and source into a new value. Neither input is
// modified.
//
// When both sides are groups the result holds every key of target, in
// target's order, followed by keys that only source has. Keys present on
// both sides merge recursively when the source value is a group and are
// overwritten by the source value otherwise. When target is not a group
// the result is source; when source is not a group the result is target.
func Merge(target, source Value) Value {
	tg, ok := target.(*Group)
	if !ok || tg == nil {
		return Clone(source)
	}
	sg, ok := source.(*Group)
	if !ok || sg == nil {
		return Clone(target)
	}
	return MergeGroups(tg, sg)
}

// MergeGroups deep-merges source into a copy of target. Either side may be
// nil.
func MergeGroups(target, source *Group) *Group {
	out := target.Clone()
	if out == nil {
		out = NewGroup()
	}
	for key, sv := range source.All() {
		if sg, isGroup := sv.(*Group); isGroup {
			existing, _ := out.Get(key)
			out.Set(key, Merge(existing, sg))
			continue
		}
		out.Set(key, Clone(sv))
	}
	return out
}
