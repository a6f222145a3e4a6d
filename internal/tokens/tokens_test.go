package tokens

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"
)

func TestGroup_KeepsInsertionOrder(t *testing.T) {
	g := NewGroup()
	g.Set("zeta", Leaf("1"))
	g.Set("alpha", Leaf("2"))
	g.Set("mid", Leaf("3"))
	g.Set("zeta", Leaf("4"))

	require.Equal(t, []string{"zeta", "alpha", "mid"}, g.Keys())
	v, ok := g.Get("zeta")
	require.True(t, ok)
	require.Equal(t, Leaf("4"), v)
}

func TestGroup_Delete(t *testing.T) {
	g := GroupOf("a", "1", "b", "2", "c", "3")
	g.Delete("b")
	g.Delete("missing")

	require.Equal(t, []string{"a", "c"}, g.Keys())
	_, ok := g.Get("b")
	require.False(t, ok)
}

func TestGroup_LookupAndSetPath(t *testing.T) {
	g := NewGroup()
	g.SetPath([]string{"colors", "primary", "DEFAULT"}, Leaf("#0000ff"))
	g.SetPath([]string{"colors", "primary", "foreground"}, Leaf("#ffffff"))

	v, ok := g.LeafAt("colors", "primary", "DEFAULT")
	require.True(t, ok)
	require.Equal(t, "#0000ff", v)

	_, ok = g.LeafAt("colors", "primary")
	require.False(t, ok, "group is not a leaf")

	_, ok = g.Lookup("colors", "secondary")
	require.False(t, ok)
}

func TestGroup_CloneIsDeep(t *testing.T) {
	orig := GroupOf("colors", GroupOf("primary", "#000000"))
	cp := orig.Clone()
	cp.SetPath([]string{"colors", "primary"}, Leaf("#ffffff"))

	v, _ := orig.LeafAt("colors", "primary")
	require.Equal(t, "#000000", v)
}

func TestGroupOf_ConvertsMaps(t *testing.T) {
	g := GroupOf("spacing", map[string]string{"sm": "1rem", "lg": "2rem"})
	require.Equal(t, "{spacing: {lg: 2rem, sm: 1rem}}", g.String())
}

func TestMerge_OverrideWinsOnLeaf(t *testing.T) {
	base := GroupOf("colors", GroupOf("primary", "#000000", "secondary", "#111111"))
	patch := GroupOf("colors", GroupOf("primary", "#ffffff"), "spacing", GroupOf("sm", "1rem"))

	got := MergeGroups(base, patch)

	require.Equal(t, "{colors: {primary: #ffffff, secondary: #111111}, spacing: {sm: 1rem}}", got.String())
	// Inputs are untouched.
	require.Equal(t, "{colors: {primary: #000000, secondary: #111111}}", base.String())
}

func TestMerge_GroupReplacesLeaf(t *testing.T) {
	base := GroupOf("primary", "#000000")
	patch := GroupOf("primary", GroupOf("DEFAULT", "#ffffff"))

	got := MergeGroups(base, patch)
	require.Equal(t, "{primary: {DEFAULT: #ffffff}}", got.String())
}

func TestMerge_LeafReplacesGroup(t *testing.T) {
	base := GroupOf("primary", GroupOf("DEFAULT", "#ffffff"))
	patch := GroupOf("primary", "#000000")

	got := MergeGroups(base, patch)
	require.Equal(t, "{primary: #000000}", got.String())
}

func TestMerge_NonGroupOperands(t *testing.T) {
	require.Equal(t, Leaf("b"), Merge(Leaf("a"), Leaf("b")))
	g := GroupOf("a", "1")
	require.True(t, Equal(g, Merge(Leaf("x"), g)))
	require.True(t, Equal(g, Merge(g, Leaf("x"))))
	require.True(t, Equal(g, MergeGroups(nil, g)))
	require.True(t, Equal(g, MergeGroups(g, nil)))
}

func TestFlatten(t *testing.T) {
	g := GroupOf(
		"colors", GroupOf("background", "#fff", "primary", GroupOf("DEFAULT", "#00f", "100", "#eef")),
		"radius", "4px",
	)
	entries := Flatten(g)
	require.Equal(t, []Entry{
		{Path: []string{"colors", "background"}, Value: "#fff"},
		{Path: []string{"colors", "primary", "DEFAULT"}, Value: "#00f"},
		{Path: []string{"colors", "primary", "100"}, Value: "#eef"},
		{Path: []string{"radius"}, Value: "4px"},
	}, entries)
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"fontFamily": map[string]any{"sans": []any{"Inter", "sans-serif"}},
		"opacity":    0.5,
		"zIndex":     10,
	})
	require.NoError(t, err)
	require.Equal(t, "{fontFamily: {sans: Inter, sans-serif}, opacity: 0.5, zIndex: 10}", v.(*Group).String())

	_, err = FromAny(map[string]any{"bad": nil})
	require.ErrorContains(t, err, "bad")

	_, err = GroupFromAny("scalar")
	require.Error(t, err)
}

func TestYAML_PreservesOrder(t *testing.T) {
	doc := `
colors:
  zebra: "#000"
  apple: "#fff"
fontFamily:
  sans: [Inter, sans-serif]
`
	var g Group
	require.NoError(t, yaml.Unmarshal([]byte(doc), &g))
	require.Equal(t, []string{"colors", "fontFamily"}, g.Keys())
	colors, _ := g.Lookup("colors")
	require.Equal(t, []string{"zebra", "apple"}, colors.(*Group).Keys())
	sans, _ := g.LeafAt("fontFamily", "sans")
	require.Equal(t, "Inter, sans-serif", sans)

	out, err := yaml.Marshal(&g)
	require.NoError(t, err)
	require.Contains(t, string(out), "zebra: '#000'")

	var back Group
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.True(t, Equal(&g, &back), "%s != %s", &g, &back)
}

func TestYAML_RejectsScalarRoot(t *testing.T) {
	var g Group
	err := yaml.Unmarshal([]byte(`just a string`), &g)
	require.ErrorContains(t, err, "expected a mapping")
}

func TestJSON_RoundTripKeepsOrder(t *testing.T) {
	in := `{"z":"1","a":{"y":"2","b":"3"},"n":5,"list":["x","y"]}`
	var g Group
	require.NoError(t, json.Unmarshal([]byte(in), &g))
	require.Equal(t, []string{"z", "a", "n", "list"}, g.Keys())

	out, err := json.Marshal(&g)
	require.NoError(t, err)
	require.Equal(t, `{"z":"1","a":{"y":"2","b":"3"},"n":"5","list":"x, y"}`, string(out))
}

// groupGen draws small token trees with a limited key alphabet so merges
// exercise overlapping keys.
func groupGen(depth int) *rapid.Generator[*Group] {
	return rapid.Custom(func(t *rapid.T) *Group {
		g := NewGroup()
		n := rapid.IntRange(0, 4).Draw(t, "n")
		for i := 0; i < n; i++ {
			key := rapid.SampledFrom([]string{"a", "b", "c", "DEFAULT"}).Draw(t, "key")
			if depth > 0 && rapid.Bool().Draw(t, "nested") {
				g.Set(key, groupGen(depth-1).Draw(t, "child"))
				continue
			}
			g.Set(key, Leaf(rapid.StringMatching(`#[0-9a-f]{6}`).Draw(t, "leaf")))
		}
		return g
	})
}

func TestMerge_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := groupGen(2).Draw(rt, "a")
		b := groupGen(2).Draw(rt, "b")

		merged := MergeGroups(a, b)

		// Every leaf of the override is visible in the result.
		for _, e := range Flatten(b) {
			got, ok := merged.LeafAt(e.Path...)
			require.True(rt, ok, "missing %v", e.Path)
			require.Equal(rt, e.Value, got)
		}

		// Merging is idempotent once the override is applied.
		require.True(rt, Equal(merged, MergeGroups(merged, b)))

		// Merging with an empty group is identity.
		require.True(rt, Equal(a, MergeGroups(a, NewGroup())))
	})
}

func TestJSON_Property_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := groupGen(3).Draw(rt, "g")
		data, err := json.Marshal(g)
		require.NoError(rt, err)

		var back Group
		require.NoError(rt, json.Unmarshal(data, &back))
		require.True(rt, Equal(g, &back), "%s != %s", g, &back)
	})
}
