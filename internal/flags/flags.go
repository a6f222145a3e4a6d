// Package flags holds feature flags read from the flags section of the
// config. Flags are read-only once loaded and unknown names read as off.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/themer/internal/log"
)

// FlagAutoForeground derives a readable foreground for every color group
// that has a DEFAULT color but no foreground.
const FlagAutoForeground = "auto-foreground"

// Known lists the flags this build understands.
var Known = []string{FlagAutoForeground}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. A nil map disables every flag.
// Names this build does not know are kept but logged.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: maps.Clone(flags)}
	if r.flags == nil {
		r.flags = make(map[string]bool)
	}
	for name := range r.flags {
		if !slices.Contains(Known, name) {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.flags)
	return r
}

// Enabled reports whether the named flag is on. It is nil-safe.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}
