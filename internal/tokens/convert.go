package tokens

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Entry is a leaf of a flattened tree together with the keys leading to it.
type Entry struct {
	Path  []string
	Value string
}

// Flatten returns every leaf of g in depth-first, insertion order.
func Flatten(g *Group) []Entry {
	var out []Entry
	var walk func(prefix []string, grp *Group)
	walk = func(prefix []string, grp *Group) {
		for key, v := range grp.All() {
			path := append(slices.Clone(prefix), key)
			switch val := v.(type) {
			case Leaf:
				out = append(out, Entry{Path: path, Value: string(val)})
			case *Group:
				walk(path, val)
			}
		}
	}
	walk(nil, g)
	return out
}

// FromAny converts decoded data (JSON, YAML or Go literals) into a Value.
//
// Maps become groups with keys sorted, since Go maps carry no order.
// Scalars become leaves. Lists of scalars are joined with ", " which is the
// CSS spelling of font stacks and similar value lists.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null token value")
	case Value:
		return Clone(val), nil
	case string:
		return Leaf(val), nil
	case bool:
		return Leaf(strconv.FormatBool(val)), nil
	case int:
		return Leaf(strconv.Itoa(val)), nil
	case int64:
		return Leaf(strconv.FormatInt(val, 10)), nil
	case float64:
		return Leaf(strconv.FormatFloat(val, 'f', -1, 64)), nil
	case map[string]any:
		g := NewGroup()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			child, err := FromAny(val[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			g.Set(k, child)
		}
		return g, nil
	case []any:
		parts := make([]string, 0, len(val))
		for i, item := range val {
			child, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			leaf, ok := child.(Leaf)
			if !ok {
				return nil, fmt.Errorf("[%d]: lists may only contain scalar values", i)
			}
			parts = append(parts, string(leaf))
		}
		return Leaf(strings.Join(parts, ", ")), nil
	case []string:
		return Leaf(strings.Join(val, ", ")), nil
	}

	// Fall back to reflection for typed maps such as map[string]string.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return FromAny(m)
	case reflect.Slice:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return FromAny(items)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Leaf(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Leaf(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32:
		return Leaf(strconv.FormatFloat(rv.Float(), 'f', -1, 32)), nil
	}
	return nil, fmt.Errorf("unsupported token value of type %T", v)
}

// GroupFromAny is FromAny for inputs that must decode to a group.
func GroupFromAny(v any) (*Group, error) {
	if v == nil {
		return NewGroup(), nil
	}
	val, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	g, ok := val.(*Group)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got scalar %q", val)
	}
	return g, nil
}

// ToAny converts v into plain Go maps and strings. Key order is lost.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Leaf:
		return string(val)
	case *Group:
		m := make(map[string]any, val.Len())
		for k, child := range val.All() {
			m[k] = ToAny(child)
		}
		return m
	}
	return nil
}
