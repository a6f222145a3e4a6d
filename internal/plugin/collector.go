package plugin

import (
	"sync"

	"github.com/zjrosen/themer/internal/css"
)

// Variant is a registered conditional prefix.
type Variant struct {
	Name        string   `json:"name"`
	Definitions []string `json:"definitions"`
}

// Collector is an API that records every registration so the result can
// be rendered as a standalone stylesheet.
type Collector struct {
	mu        sync.Mutex
	variants  []Variant
	base      []css.Rule
	utilities []css.Rule
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) AddVariant(name string, definitions []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variants = append(c.variants, Variant{Name: name, Definitions: append([]string(nil), definitions...)})
}

func (c *Collector) AddBase(rules []css.Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = append(c.base, rules...)
}

func (c *Collector) AddUtilities(rules []css.Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.utilities = append(c.utilities, rules...)
}

func (c *Collector) Escape(ident string) string {
	return css.Escape(ident)
}

// Variants returns the registered variants in order.
func (c *Collector) Variants() []Variant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Variant(nil), c.variants...)
}

// Base returns the registered base rules in order.
func (c *Collector) Base() []css.Rule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]css.Rule(nil), c.base...)
}

// Utilities returns the registered utility rules in order.
func (c *Collector) Utilities() []css.Rule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]css.Rule(nil), c.utilities...)
}

// Stylesheet returns base rules followed by utilities.
func (c *Collector) Stylesheet() css.Stylesheet {
	c.mu.Lock()
	defer c.mu.Unlock()
	sheet := make(css.Stylesheet, 0, len(c.base)+len(c.utilities))
	sheet = append(sheet, c.base...)
	return append(sheet, c.utilities...)
}

var _ API = (*Collector)(nil)
