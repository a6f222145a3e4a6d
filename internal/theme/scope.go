package theme

import (
	"slices"
	"strings"
)

// ScopeKind says where a theme's custom properties apply.
type ScopeKind int

const (
	// ScopeDerived themes have no explicit activation condition; renderers
	// derive a class selector from the theme name.
	ScopeDerived ScopeKind = iota
	// ScopeRoot is the document root. Only the default theme has it.
	ScopeRoot
	// ScopeSelectors themes apply under an explicit list of selectors.
	ScopeSelectors
	// ScopeMedia themes apply inside a media query.
	ScopeMedia
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeDerived:
		return "derived"
	case ScopeRoot:
		return "root"
	case ScopeSelectors:
		return "selectors"
	case ScopeMedia:
		return "media"
	default:
		return "unknown"
	}
}

// Scope is the activation condition of a theme, resolved once when the
// theme is registered.
type Scope struct {
	Kind       ScopeKind
	Selectors  []string
	MediaQuery string
}

// RootScope is the scope of the default theme.
func RootScope() Scope { return Scope{Kind: ScopeRoot} }

// DerivedScope leaves the selector to the renderer.
func DerivedScope() Scope { return Scope{Kind: ScopeDerived} }

// SelectorScope applies a theme under the given selectors.
func SelectorScope(selectors ...string) Scope {
	return Scope{Kind: ScopeSelectors, Selectors: slices.Clone(selectors)}
}

// AttributeScope is the scope registered themes get by default.
func AttributeScope(name string) Scope {
	return SelectorScope(AttributeSelector(name))
}

// MediaScope applies a theme inside a media query. A bare condition such
// as "(prefers-color-scheme: dark)" gets the "@media" prefix.
func MediaScope(query string) Scope {
	q := strings.TrimSpace(query)
	if !strings.HasPrefix(q, "@") {
		q = "@media " + q
	}
	return Scope{Kind: ScopeMedia, MediaQuery: q}
}

// ResolveScope turns the optional selector and media-query fields of a
// theme declaration into a Scope. With neither given the theme gets its
// attribute selector, or a derived class selector when class is set.
func ResolveScope(name string, selectors []string, mediaQuery string, class bool) (Scope, error) {
	hasSelectors := len(selectors) > 0
	hasMedia := strings.TrimSpace(mediaQuery) != ""
	switch {
	case hasSelectors && hasMedia:
		return Scope{}, ErrInvalidScope
	case (hasSelectors || hasMedia) && class:
		return Scope{}, ErrInvalidScope
	case hasSelectors:
		return SelectorScope(selectors...), nil
	case hasMedia:
		return MediaScope(mediaQuery), nil
	case class:
		return DerivedScope(), nil
	}
	return AttributeScope(name), nil
}

// Clone returns a copy that shares no slices with s.
func (s Scope) Clone() Scope {
	s.Selectors = slices.Clone(s.Selectors)
	return s
}

// Equal reports whether two scopes describe the same condition.
func (s Scope) Equal(o Scope) bool {
	return s.Kind == o.Kind && s.MediaQuery == o.MediaQuery && slices.Equal(s.Selectors, o.Selectors)
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeSelectors:
		return strings.Join(s.Selectors, ", ")
	case ScopeMedia:
		return s.MediaQuery
	case ScopeRoot:
		return ":root"
	}
	return s.Kind.String()
}
