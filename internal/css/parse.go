package css

import (
	"fmt"
	"strings"

	douceur "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/zjrosen/themer/internal/tokens"
)

// ParseUtilities reads a stylesheet of utility classes into a token tree
// of selector -> property -> value. At-rules such as @media become groups
// keyed by their full prelude, holding the rules they wrap.
func ParseUtilities(text string) (*tokens.Group, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing utilities: %w", err)
	}
	out := tokens.NewGroup()
	for _, rule := range sheet.Rules {
		if err := addRule(out, rule); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func addRule(into *tokens.Group, rule *douceur.Rule) error {
	var key string
	switch rule.Kind {
	case douceur.AtRule:
		key = strings.TrimSpace(rule.Name + " " + rule.Prelude)
	default:
		key = strings.Join(rule.Selectors, ", ")
		if key == "" {
			key = strings.TrimSpace(rule.Prelude)
		}
	}
	if key == "" {
		return fmt.Errorf("rule without selector")
	}

	block := tokens.NewGroup()
	if existing, ok := into.Get(key); ok {
		if g, isGroup := existing.(*tokens.Group); isGroup {
			block = g
		}
	}
	for _, decl := range rule.Declarations {
		value := decl.Value
		if decl.Important {
			value += " !important"
		}
		block.Set(decl.Property, tokens.Leaf(value))
	}
	for _, child := range rule.Rules {
		if err := addRule(block, child); err != nil {
			return err
		}
	}
	into.Set(key, block)
	return nil
}

// RulesFromTokens converts a selector -> declarations tree back into rules.
// Nested groups become nested rules, so "@media print": {".a": {...}}
// renders as a media block.
func RulesFromTokens(g *tokens.Group) []Rule {
	var rules []Rule
	for selector, v := range g.All() {
		block, ok := v.(*tokens.Group)
		if !ok {
			continue
		}
		rule := Rule{Selector: selector}
		for prop, pv := range block.All() {
			switch val := pv.(type) {
			case tokens.Leaf:
				rule.Declarations = append(rule.Declarations, declarationFromLeaf(prop, string(val)))
			case *tokens.Group:
				rule.Rules = append(rule.Rules, RulesFromTokens(tokens.GroupOf(prop, val))...)
			}
		}
		rules = append(rules, rule)
	}
	return rules
}

func declarationFromLeaf(prop, value string) Declaration {
	const important = "!important"
	prop = Kebab(prop)
	trimmed := strings.TrimSpace(value)
	if strings.HasSuffix(trimmed, important) {
		return Declaration{
			Property:  prop,
			Value:     strings.TrimSpace(strings.TrimSuffix(trimmed, important)),
			Important: true,
		}
	}
	return Declaration{Property: prop, Value: value}
}
