// Package cssvars turns theme token trees into CSS custom properties and
// into a framework theme extension that refers to those properties, so the
// active theme can change at runtime without regenerating utilities.
package cssvars

import (
	"strconv"
	"strings"

	"github.com/zjrosen/themer/internal/css"
	"github.com/zjrosen/themer/internal/tokens"
)

// DefaultKey is the token segment that names a group's base value. It
// collapses into the parent path in property names.
const DefaultKey = "DEFAULT"

// AlphaPlaceholder is substituted by the framework with the opacity
// modifier of a utility class.
const AlphaPlaceholder = "<alpha-value>"

// EscapeFunc escapes an identifier for use in CSS.
type EscapeFunc func(string) string

// PropertyName builds the custom property name for a token path:
// segments are kebab-cased, DEFAULT segments dropped and the result
// joined by "-". colors.primary.DEFAULT gives "--colors-primary".
func PropertyName(path []string, escape EscapeFunc) string {
	parts := make([]string, 0, len(path))
	for _, seg := range path {
		if seg == DefaultKey {
			continue
		}
		parts = append(parts, css.Kebab(seg))
	}
	name := "--" + strings.Join(parts, "-")
	if escape != nil {
		name = escape(name)
	}
	return name
}

// propertyInfo aggregates what every theme says about one property.
type propertyInfo struct {
	colors      int
	leaves      int
	translucent bool
}

func (p propertyInfo) isColor() bool { return p.leaves > 0 && p.colors == p.leaves }

// Resolver knows, across a set of themes, which properties hold colors.
// A property is color-shaped only when every theme that sets it uses a
// color, so one theme's literal value never ends up inside rgb().
type Resolver struct {
	escape  EscapeFunc
	extends []*tokens.Group
	props   map[string]*propertyInfo
	// groups records the joined paths that are groups in some theme, so a
	// leaf at the same path moves under DEFAULT in the extension.
	groups map[string]bool
}

// NewResolver analyses the token trees of every theme.
func NewResolver(escape EscapeFunc, extends ...*tokens.Group) *Resolver {
	if escape == nil {
		escape = css.Escape
	}
	r := &Resolver{
		escape:  escape,
		extends: extends,
		props:   make(map[string]*propertyInfo),
		groups:  make(map[string]bool),
	}
	for _, ext := range extends {
		r.collectGroups(nil, ext)
		for _, e := range tokens.Flatten(ext) {
			name := PropertyName(e.Path, escape)
			info := r.props[name]
			if info == nil {
				info = &propertyInfo{}
				r.props[name] = info
			}
			info.leaves++
			if c, err := ParseColor(e.Value); err == nil {
				info.colors++
				if c.Translucent() {
					info.translucent = true
				}
			}
		}
	}
	return r
}

func (r *Resolver) collectGroups(prefix []string, g *tokens.Group) {
	for k, v := range g.All() {
		child, ok := v.(*tokens.Group)
		if !ok {
			continue
		}
		path := append(append([]string(nil), prefix...), k)
		r.groups[strings.Join(path, "\x00")] = true
		r.collectGroups(path, child)
	}
}

// CustomProperties returns the declarations for one theme. Color-shaped
// properties carry "r g b" channels; translucent ones get an extra
// "-alpha" property. A nil tree yields no declarations.
func (r *Resolver) CustomProperties(extend *tokens.Group) []css.Declaration {
	var decls []css.Declaration
	index := make(map[string]int)
	put := func(prop, value string) {
		if i, ok := index[prop]; ok {
			decls[i].Value = value
			return
		}
		index[prop] = len(decls)
		decls = append(decls, css.Declaration{Property: prop, Value: value})
	}

	for _, e := range tokens.Flatten(extend) {
		name := PropertyName(e.Path, r.escape)
		info := r.props[name]
		if info == nil || !info.isColor() {
			put(name, e.Value)
			continue
		}
		c, err := ParseColor(e.Value)
		if err != nil {
			put(name, e.Value)
			continue
		}
		put(name, c.Channels())
		if info.translucent {
			put(alphaProperty(name), strconv.FormatFloat(round(c.Alpha), 'f', -1, 64))
		}
	}
	return decls
}

// Extension returns the nested theme extension covering every leaf path
// of every theme, each value referencing its custom property.
func (r *Resolver) Extension() *tokens.Group {
	out := tokens.NewGroup()
	for _, ext := range r.extends {
		for _, e := range tokens.Flatten(ext) {
			path := e.Path
			if r.groups[strings.Join(path, "\x00")] {
				path = append(append([]string(nil), path...), DefaultKey)
			}
			if existing, ok := out.Lookup(path...); ok {
				if _, isLeaf := existing.(tokens.Leaf); isLeaf {
					continue
				}
			}
			out.SetPath(path, tokens.Leaf(r.Reference(e.Path)))
		}
	}
	return out
}

// Reference is the extension value for a token path.
func (r *Resolver) Reference(path []string) string {
	name := PropertyName(path, r.escape)
	info := r.props[name]
	if info == nil || !info.isColor() {
		return "var(" + name + ")"
	}
	if info.translucent {
		return "rgb(var(" + name + ") / calc(var(" + alphaProperty(name) + ", 1) * " + AlphaPlaceholder + "))"
	}
	return "rgb(var(" + name + ") / " + AlphaPlaceholder + ")"
}

// ToCustomProperties resolves a single theme on its own.
func ToCustomProperties(extend *tokens.Group, escape EscapeFunc) []css.Declaration {
	return NewResolver(escape, extend).CustomProperties(extend)
}

// ToTailwindExtension builds the extension for a set of themes.
func ToTailwindExtension(extends []*tokens.Group, escape EscapeFunc) *tokens.Group {
	return NewResolver(escape, extends...).Extension()
}

// PropertyMap flattens declarations into property -> value.
func PropertyMap(decls []css.Declaration) map[string]string {
	out := make(map[string]string, len(decls))
	for _, d := range decls {
		out[d.Property] = d.Value
	}
	return out
}

func alphaProperty(name string) string { return name + "-alpha" }

func round(f float64) float64 {
	return float64(int(f*1000+0.5)) / 1000
}
