// Package tokens models design-token trees.
//
// A tree is a Group of named values where every value is either a Leaf
// (a scalar such as "#FFFFFF" or "1rem") or another Group. Groups keep the
// order in which keys were first inserted so that generated CSS and theme
// extensions are stable across runs.
package tokens

import (
	"iter"
	"slices"
	"strings"
)

// Value is a node of a token tree: a Leaf or a *Group.
type Value interface {
	isValue()
}

// Leaf is a scalar token value.
type Leaf string

func (Leaf) isValue() {}

// Group is an ordered mapping from key to Value.
// The zero value is not usable; create groups with NewGroup.
type Group struct {
	keys   []string
	values map[string]Value
}

func (*Group) isValue() {}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{values: make(map[string]Value)}
}

// GroupOf builds a group from alternating key/value pairs.
// Values may be Value, string or map-like types accepted by FromAny.
// It panics on malformed input and is meant for literals in code and tests.
func GroupOf(pairs ...any) *Group {
	if len(pairs)%2 != 0 {
		panic("tokens.GroupOf: odd number of arguments")
	}
	g := NewGroup()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("tokens.GroupOf: key must be a string")
		}
		switch v := pairs[i+1].(type) {
		case Value:
			g.Set(key, v)
		default:
			converted, err := FromAny(v)
			if err != nil {
				panic("tokens.GroupOf: " + err.Error())
			}
			g.Set(key, converted)
		}
	}
	return g
}

// Len returns the number of keys. A nil group has length zero.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Keys returns the keys in insertion order.
func (g *Group) Keys() []string {
	if g == nil {
		return nil
	}
	return slices.Clone(g.keys)
}

// Get returns the value stored under key.
func (g *Group) Get(key string) (Value, bool) {
	if g == nil {
		return nil, false
	}
	v, ok := g.values[key]
	return v, ok
}

// Set stores v under key. An existing key keeps its position.
func (g *Group) Set(key string, v Value) {
	if _, exists := g.values[key]; !exists {
		g.keys = append(g.keys, key)
	}
	g.values[key] = v
}

// Delete removes key if present.
func (g *Group) Delete(key string) {
	if g == nil {
		return
	}
	if _, ok := g.values[key]; !ok {
		return
	}
	delete(g.values, key)
	g.keys = slices.DeleteFunc(g.keys, func(k string) bool { return k == key })
}

// All iterates over the group in insertion order.
func (g *Group) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if g == nil {
			return
		}
		for _, k := range g.keys {
			if !yield(k, g.values[k]) {
				return
			}
		}
	}
}

// Lookup walks path from g and returns the value at its end.
func (g *Group) Lookup(path ...string) (Value, bool) {
	var cur Value = g
	for _, key := range path {
		grp, ok := cur.(*Group)
		if !ok || grp == nil {
			return nil, false
		}
		cur, ok = grp.values[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// LeafAt returns the scalar at path, if the path ends on a Leaf.
func (g *Group) LeafAt(path ...string) (string, bool) {
	v, ok := g.Lookup(path...)
	if !ok {
		return "", false
	}
	leaf, ok := v.(Leaf)
	return string(leaf), ok
}

// SetPath stores v at path, creating intermediate groups. A Leaf found on
// the way is replaced by a group.
func (g *Group) SetPath(path []string, v Value) {
	if len(path) == 0 {
		return
	}
	cur := g
	for _, key := range path[:len(path)-1] {
		next, ok := cur.values[key].(*Group)
		if !ok || next == nil {
			next = NewGroup()
			cur.Set(key, next)
		}
		cur = next
	}
	cur.Set(path[len(path)-1], v)
}

// Clone returns a deep copy of g.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	out := &Group{
		keys:   slices.Clone(g.keys),
		values: make(map[string]Value, len(g.values)),
	}
	for k, v := range g.values {
		out.values[k] = Clone(v)
	}
	return out
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	if grp, ok := v.(*Group); ok {
		return grp.Clone()
	}
	return v
}

// Equal reports whether a and b hold the same keys, in the same order, with
// equal values.
func Equal(a, b Value) bool {
	ag, aIsGroup := a.(*Group)
	bg, bIsGroup := b.(*Group)
	if aIsGroup != bIsGroup {
		return false
	}
	if !aIsGroup {
		return a == b
	}
	if ag.Len() != bg.Len() {
		return false
	}
	if ag.Len() == 0 {
		return true
	}
	if !slices.Equal(ag.keys, bg.keys) {
		return false
	}
	for _, k := range ag.keys {
		if !Equal(ag.values[k], bg.values[k]) {
			return false
		}
	}
	return true
}

// String renders the group in a compact, order-preserving form for logs
// and test failures.
func (g *Group) String() string {
	var b strings.Builder
	writeValue(&b, g)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case Leaf:
		b.WriteString(string(val))
	case *Group:
		b.WriteByte('{')
		for i, k := range val.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			child, _ := val.Get(k)
			writeValue(b, child)
		}
		b.WriteByte('}')
	}
}
