// Package theme owns the set of themes a stylesheet is generated from.
//
// A Registry holds one default theme, bound to the document root, and an
// ordered list of other themes, each activated by selectors or a media
// query. Every mutation validates its input before touching state, so a
// failed call leaves the registry exactly as it was.
package theme

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/pubsub"
	"github.com/zjrosen/themer/internal/tokens"
)

// ThemeInput declares one theme for Init.
type ThemeInput struct {
	Name       string
	Extend     *tokens.Group
	Selectors  []string
	MediaQuery string
	// Class asks for a class selector derived from the name instead of the
	// default data-theme attribute selector.
	Class bool
}

// Config is the input to Init. Themes keep their declared order; the first
// one is the default unless DefaultTheme names another.
type Config struct {
	Themes       []ThemeInput
	DefaultTheme string
	Utilities    *tokens.Group
}

// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	state  State
	broker *pubsub.Broker[Change]
}

// NewRegistry returns an empty registry with no default theme.
func NewRegistry() *Registry {
	return &Registry{
		state:  State{Utilities: tokens.NewGroup()},
		broker: pubsub.NewBroker[Change](pubsub.WithDropHandler(logDroppedChange)),
	}
}

func logDroppedChange(d pubsub.Drop) {
	log.Warn(log.CatRegistry, "change not delivered", "subscriber", d.Subscriber, "seq", d.Seq, "missed", d.Missed)
}

// New returns a registry initialized from cfg.
func New(cfg Config) (*Registry, error) {
	r := NewRegistry()
	if err := r.Init(cfg); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Init replaces every theme with those in cfg. Utilities are merged into
// the ones already registered rather than replaced.
func (r *Registry) Init(cfg Config) error {
	if len(cfg.Themes) == 0 {
		return opError(OpInit, "", ErrEmptyRegistry)
	}

	entries := make([]Entry, 0, len(cfg.Themes))
	seen := make(map[string]struct{}, len(cfg.Themes))
	for _, in := range cfg.Themes {
		if err := ValidateName(in.Name); err != nil {
			return opError(OpInit, in.Name, err)
		}
		if _, dup := seen[in.Name]; dup {
			return opError(OpInit, in.Name, ErrDuplicateTheme)
		}
		seen[in.Name] = struct{}{}

		scope, err := ResolveScope(in.Name, in.Selectors, in.MediaQuery, in.Class)
		if err != nil {
			return opError(OpInit, in.Name, err)
		}
		entries = append(entries, Entry{Name: in.Name, Scope: scope, Extend: cloneExtend(in.Extend)})
	}

	defaultName := cfg.DefaultTheme
	if defaultName == "" {
		defaultName = entries[0].Name
	} else {
		if err := ValidateName(defaultName); err != nil {
			return opError(OpInit, defaultName, err)
		}
		if _, ok := seen[defaultName]; !ok {
			return opError(OpInit, defaultName, ErrNoDefault)
		}
	}

	next := State{Themes: make([]Entry, 0, len(entries)-1)}
	for _, e := range entries {
		if e.Name == defaultName {
			next.Default = DefaultEntry{Name: e.Name, Extend: e.Extend}
			continue
		}
		next.Themes = append(next.Themes, e)
	}

	r.mu.Lock()
	next.Utilities = tokens.MergeGroups(r.state.Utilities, cfg.Utilities)
	r.state = next
	r.mu.Unlock()

	log.Debug(log.CatRegistry, "registry initialized", "default", defaultName, "themes", len(entries))
	r.publish(pubsub.ReplacedEvent, OpInit, defaultName)
	return nil
}

// EntryOption customizes a theme added with Add.
type EntryOption func(*entryOptions)

type entryOptions struct {
	selectors  []string
	mediaQuery string
	class      bool
}

// WithSelectors activates the theme under explicit selectors.
func WithSelectors(selectors ...string) EntryOption {
	return func(o *entryOptions) { o.selectors = append(o.selectors, selectors...) }
}

// WithMediaQuery activates the theme inside a media query.
func WithMediaQuery(query string) EntryOption {
	return func(o *entryOptions) { o.mediaQuery = query }
}

// WithClassSelector activates the theme with a class named after it.
func WithClassSelector() EntryOption {
	return func(o *entryOptions) { o.class = true }
}

// Add appends a new non-default theme. Without options it is activated by
// its data-theme attribute selector.
func (r *Registry) Add(name string, extend *tokens.Group, opts ...EntryOption) error {
	if err := ValidateName(name); err != nil {
		return opError(OpAdd, name, err)
	}
	var o entryOptions
	for _, opt := range opts {
		opt(&o)
	}
	scope, err := ResolveScope(name, o.selectors, o.mediaQuery, o.class)
	if err != nil {
		return opError(OpAdd, name, err)
	}

	r.mu.Lock()
	if r.hasLocked(name) {
		r.mu.Unlock()
		log.Warn(log.CatRegistry, "add rejected", "name", name, "reason", "duplicate")
		return opError(OpAdd, name, ErrDuplicateTheme)
	}
	r.state.Themes = append(r.state.Themes, Entry{Name: name, Scope: scope, Extend: cloneExtend(extend)})
	r.mu.Unlock()

	log.Debug(log.CatRegistry, "theme added", "name", name, "scope", scope)
	r.publish(pubsub.CreatedEvent, OpAdd, name)
	return nil
}

// Update deep-merges partial into the named theme's tokens. Leaves the
// patch does not mention are kept.
func (r *Registry) Update(name string, partial *tokens.Group) error {
	if err := ValidateName(name); err != nil {
		return opError(OpUpdate, name, err)
	}

	r.mu.Lock()
	switch idx := r.indexLocked(name); {
	case r.state.Default.Name != "" && r.state.Default.Name == name:
		r.state.Default.Extend = tokens.MergeGroups(r.state.Default.Extend, partial)
	case idx >= 0:
		r.state.Themes[idx].Extend = tokens.MergeGroups(r.state.Themes[idx].Extend, partial)
	default:
		r.mu.Unlock()
		log.Warn(log.CatRegistry, "update rejected", "name", name, "reason", "not found")
		return opError(OpUpdate, name, ErrNotFound)
	}
	r.mu.Unlock()

	log.Debug(log.CatRegistry, "theme updated", "name", name, "keys", partial.Len())
	r.publish(pubsub.UpdatedEvent, OpUpdate, name)
	return nil
}

// Remove deletes a non-default theme. The default theme cannot be removed;
// asking for it reports ErrNotFound.
func (r *Registry) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return opError(OpRemove, name, err)
	}

	r.mu.Lock()
	idx := r.indexLocked(name)
	if idx < 0 {
		isDefault := r.state.Default.Name == name
		r.mu.Unlock()
		log.Warn(log.CatRegistry, "remove rejected", "name", name, "default", isDefault)
		return opError(OpRemove, name, ErrNotFound)
	}
	r.state.Themes = slices.Delete(r.state.Themes, idx, idx+1)
	r.mu.Unlock()

	log.Debug(log.CatRegistry, "theme removed", "name", name)
	r.publish(pubsub.DeletedEvent, OpRemove, name)
	return nil
}

// SetDefault promotes the named theme to the root scope. The previous
// default moves to the end of the theme list with its attribute selector.
// Promoting the current default changes nothing.
func (r *Registry) SetDefault(name string) error {
	if err := ValidateName(name); err != nil {
		return opError(OpSetDefault, name, err)
	}

	r.mu.Lock()
	if r.state.Default.Name == name {
		r.mu.Unlock()
		return nil
	}
	idx := r.indexLocked(name)
	if idx < 0 {
		r.mu.Unlock()
		log.Warn(log.CatRegistry, "set default rejected", "name", name, "reason", "not found")
		return opError(OpSetDefault, name, ErrNotFound)
	}

	promoted := r.state.Themes[idx]
	previous := r.state.Default
	r.state.Themes = slices.Delete(r.state.Themes, idx, idx+1)
	if previous.Name != "" {
		r.state.Themes = append(r.state.Themes, Entry{
			Name:   previous.Name,
			Scope:  AttributeScope(previous.Name),
			Extend: previous.Extend,
		})
	}
	r.state.Default = DefaultEntry{Name: promoted.Name, Extend: promoted.Extend}
	r.mu.Unlock()

	log.Debug(log.CatRegistry, "default theme changed", "from", previous.Name, "to", name)
	r.publish(pubsub.UpdatedEvent, OpSetDefault, name)
	return nil
}

// AddUtilities deep-merges utility classes into those already registered.
func (r *Registry) AddUtilities(utilities *tokens.Group) {
	r.mu.Lock()
	r.state.Utilities = tokens.MergeGroups(r.state.Utilities, utilities)
	r.mu.Unlock()

	if utilities.Len() == 0 {
		return
	}
	log.Debug(log.CatRegistry, "utilities added", "classes", utilities.Len())
	r.publish(pubsub.UpdatedEvent, OpAddUtilities, "")
}

// ThemeSelectors maps every non-default theme name to its activation
// selectors. The DefaultKey entry names the default theme, which has no
// selectors of its own.
func (r *Registry) ThemeSelectors() map[string]SelectorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]SelectorInfo, len(r.state.Themes)+1)
	out[DefaultKey] = SelectorInfo{Name: r.state.Default.Name}
	for _, e := range r.state.Themes {
		out[e.Name] = SelectorInfo{Name: e.Name, Selectors: slices.Clone(e.Scope.Selectors)}
	}
	return out
}

// Get returns a snapshot of the registry. Changing the snapshot does not
// affect the registry.
func (r *Registry) Get() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Clone()
}

// Themes returns a snapshot of every theme, default first.
func (r *Registry) Themes() []Entry {
	return r.Get().All()
}

// Find returns a copy of the named theme. The default theme is reported
// with root scope.
func (r *Registry) Find(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.state.Default.Name != "" && r.state.Default.Name == name {
		return r.state.Default.Entry(), true
	}
	if idx := r.indexLocked(name); idx >= 0 {
		return r.state.Themes[idx].Clone(), true
	}
	return Entry{}, false
}

// DefaultName returns the name of the default theme, or "" before Init.
func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Default.Name
}

// Subscribe delivers a Change for every successful mutation until ctx is
// cancelled.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return r.broker.Subscribe(ctx)
}

// EventStats reports how many changes were published and how many a slow
// subscriber missed.
func (r *Registry) EventStats() pubsub.Stats {
	return r.broker.Stats()
}

// Close closes every subscription. The registry stays usable but
// publishes nothing further.
func (r *Registry) Close() {
	r.broker.Close()
}

func (r *Registry) hasLocked(name string) bool {
	return (r.state.Default.Name != "" && r.state.Default.Name == name) || r.indexLocked(name) >= 0
}

func (r *Registry) indexLocked(name string) int {
	return slices.IndexFunc(r.state.Themes, func(e Entry) bool { return e.Name == name })
}

func (r *Registry) publish(eventType pubsub.EventType, op Op, name string) {
	r.broker.Publish(eventType, Change{ID: uuid.NewString(), Op: op, Name: name})
}
