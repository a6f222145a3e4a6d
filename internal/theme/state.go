package theme

import (
	"slices"

	"github.com/zjrosen/themer/internal/tokens"
)

// Entry is a non-default theme.
type Entry struct {
	Name   string
	Scope  Scope
	Extend *tokens.Group
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	return Entry{Name: e.Name, Scope: e.Scope.Clone(), Extend: cloneExtend(e.Extend)}
}

// DefaultEntry is the theme bound to the document root.
type DefaultEntry struct {
	Name   string
	Extend *tokens.Group
}

// Entry returns the default theme as an Entry with root scope.
func (d DefaultEntry) Entry() Entry {
	return Entry{Name: d.Name, Scope: RootScope(), Extend: cloneExtend(d.Extend)}
}

// State is a snapshot of a Registry.
type State struct {
	Default   DefaultEntry
	Themes    []Entry
	Utilities *tokens.Group
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Default:   DefaultEntry{Name: s.Default.Name, Extend: cloneExtend(s.Default.Extend)},
		Utilities: cloneExtend(s.Utilities),
	}
	if s.Themes != nil {
		out.Themes = make([]Entry, len(s.Themes))
		for i, e := range s.Themes {
			out.Themes[i] = e.Clone()
		}
	}
	return out
}

// Equal reports whether two snapshots hold the same themes, in the same
// order, with the same tokens.
func (s State) Equal(o State) bool {
	if s.Default.Name != o.Default.Name || !tokens.Equal(cloneExtend(s.Default.Extend), cloneExtend(o.Default.Extend)) {
		return false
	}
	if !tokens.Equal(cloneExtend(s.Utilities), cloneExtend(o.Utilities)) {
		return false
	}
	return slices.EqualFunc(s.Themes, o.Themes, func(a, b Entry) bool {
		return a.Name == b.Name && a.Scope.Equal(b.Scope) && tokens.Equal(cloneExtend(a.Extend), cloneExtend(b.Extend))
	})
}

// All returns the default theme followed by the others.
func (s State) All() []Entry {
	if s.Default.Name == "" {
		return slices.Clone(s.Themes)
	}
	out := make([]Entry, 0, len(s.Themes)+1)
	out = append(out, s.Default.Entry())
	return append(out, s.Themes...)
}

// SelectorInfo describes how a theme is activated.
type SelectorInfo struct {
	Name      string   `json:"name"`
	Selectors []string `json:"selectors,omitempty"`
}

// DefaultKey is the synthetic ThemeSelectors key naming the default theme.
const DefaultKey = "default"

// cloneExtend never returns nil so callers can treat every theme as having
// a token tree.
func cloneExtend(g *tokens.Group) *tokens.Group {
	if g == nil {
		return tokens.NewGroup()
	}
	return g.Clone()
}
