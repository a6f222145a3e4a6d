// Package plugin registers themes with a utility-first CSS framework.
//
// The framework is reached only through the API capability surface, so
// the same registration logic drives a real framework bridge or the
// stylesheet-rendering Collector used by the CLI.
package plugin

import (
	"strings"

	"github.com/zjrosen/themer/internal/css"
	"github.com/zjrosen/themer/internal/cssvars"
	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tokens"
)

// API is the set of framework capabilities the adapter uses.
type API interface {
	// AddVariant registers a conditional prefix. Each definition is a
	// selector template containing "&", or an at-rule such as a media query.
	AddVariant(name string, definitions []string)
	// AddBase registers global base styles.
	AddBase(rules []css.Rule)
	// AddUtilities registers raw utility classes.
	AddUtilities(rules []css.Rule)
	// Escape makes an identifier safe for use in a selector.
	Escape(ident string) string
}

// Options is what the adapter renders: every theme, default first, and
// optional utility classes.
type Options struct {
	Themes    []theme.Entry
	Utilities *tokens.Group
}

// OptionsFromState builds Options from a registry snapshot.
func OptionsFromState(s theme.State) Options {
	return Options{Themes: s.All(), Utilities: s.Utilities}
}

// Apply registers variants, base styles and utilities for opts.
func Apply(api API, opts Options) {
	resolver := newResolver(api, opts)
	addVariants(api, opts.Themes)
	addStyles(api, opts.Themes, resolver)
	if opts.Utilities.Len() > 0 {
		rules := css.RulesFromTokens(opts.Utilities)
		api.AddUtilities(rules)
		log.Debug(log.CatPlugin, "utilities registered", "rules", len(rules))
	}
}

// Extension returns the theme extension the framework merges into its
// config, with every token indirecting through its custom property.
func Extension(api API, opts Options) *tokens.Group {
	return newResolver(api, opts).Extension()
}

func newResolver(api API, opts Options) *cssvars.Resolver {
	extends := make([]*tokens.Group, 0, len(opts.Themes))
	for _, e := range opts.Themes {
		extends = append(extends, e.Extend)
	}
	var escape cssvars.EscapeFunc
	if api != nil {
		escape = api.Escape
	}
	return cssvars.NewResolver(escape, extends...)
}

// VariantSelectors returns the selectors a theme's variant is bound to.
// Root and derived scopes use a class named after the theme.
func VariantSelectors(api API, e theme.Entry) []string {
	switch e.Scope.Kind {
	case theme.ScopeSelectors:
		return e.Scope.Selectors
	case theme.ScopeMedia:
		return nil
	}
	return []string{"." + api.Escape(e.Name)}
}

func addVariants(api API, themes []theme.Entry) {
	for _, e := range themes {
		if e.Scope.Kind == theme.ScopeMedia {
			api.AddVariant(e.Name, []string{e.Scope.MediaQuery})
			log.Debug(log.CatPlugin, "variant registered", "name", e.Name, "media", e.Scope.MediaQuery)
			continue
		}
		selectors := VariantSelectors(api, e)
		if len(selectors) == 0 {
			continue
		}
		defs := make([]string, 0, len(selectors)*2)
		for _, sel := range selectors {
			defs = append(defs, sel+" &", "&"+sel)
		}
		api.AddVariant(e.Name, defs)
		log.Debug(log.CatPlugin, "variant registered", "name", e.Name, "selectors", len(selectors))
	}
}

// StyleSelectors returns the selector list a theme's custom properties
// are declared under.
func StyleSelectors(api API, e theme.Entry) []string {
	switch e.Scope.Kind {
	case theme.ScopeRoot:
		return []string{":root"}
	case theme.ScopeSelectors:
		return e.Scope.Selectors
	case theme.ScopeMedia:
		return []string{":root"}
	}
	return []string{"." + api.Escape(e.Name)}
}

func addStyles(api API, themes []theme.Entry, resolver *cssvars.Resolver) {
	for _, e := range themes {
		decls := resolver.CustomProperties(e.Extend)
		rule := css.Rule{Selector: strings.Join(StyleSelectors(api, e), ", "), Declarations: decls}
		if e.Scope.Kind == theme.ScopeMedia {
			rule = css.Rule{Selector: e.Scope.MediaQuery, Rules: []css.Rule{rule}}
		}
		api.AddBase([]css.Rule{rule})
		log.Debug(log.CatPlugin, "base styles registered", "name", e.Name, "properties", len(decls))
	}
}
