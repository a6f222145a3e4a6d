// Package css holds the small slice of CSS the generator emits: rule
// blocks with declarations, optionally nested inside at-rules.
package css

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return fmt.Sprintf("%s: %s !important;", d.Property, d.Value)
	}
	return fmt.Sprintf("%s: %s;", d.Property, d.Value)
}

// Rule is a block of declarations under a selector or at-rule prelude
// (e.g. "@media (prefers-color-scheme: dark)"). Rules nest for at-rules.
type Rule struct {
	Selector     string
	Declarations []Declaration
	Rules        []Rule
}

// Empty reports whether the rule would render nothing.
func (r Rule) Empty() bool {
	if len(r.Declarations) > 0 {
		return false
	}
	for _, child := range r.Rules {
		if !child.Empty() {
			return false
		}
	}
	return true
}

// Stylesheet is an ordered list of top-level rules.
type Stylesheet []Rule

// Render writes rules with two-space indentation. Empty rules are skipped.
func Render(w io.Writer, rules []Rule) error {
	first := true
	for _, r := range rules {
		if r.Empty() {
			continue
		}
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false
		if err := renderRule(w, r, 0); err != nil {
			return err
		}
	}
	return nil
}

func renderRule(w io.Writer, r Rule, depth int) error {
	indent := strings.Repeat("  ", depth)
	if _, err := fmt.Fprintf(w, "%s%s {\n", indent, r.Selector); err != nil {
		return err
	}
	for _, d := range r.Declarations {
		if _, err := fmt.Fprintf(w, "%s  %s\n", indent, d); err != nil {
			return err
		}
	}
	for _, child := range r.Rules {
		if child.Empty() {
			continue
		}
		if err := renderRule(w, child, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s}\n", indent)
	return err
}

// String renders the stylesheet.
func (s Stylesheet) String() string {
	var b strings.Builder
	_ = Render(&b, s)
	return b.String()
}

// Kebab converts a camelCase identifier to kebab-case: "fontFamily"
// becomes "font-family". Custom properties (leading "--") are returned
// unchanged.
func Kebab(s string) string {
	if strings.HasPrefix(s, "--") {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Escape makes ident safe to use as a CSS identifier, following the
// CSSOM CSS.escape() algorithm.
func Escape(ident string) string {
	runes := []rune(ident)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case (r >= 0x01 && r <= 0x1f) || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r >= '0' && r <= '9':
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 1 && r >= '0' && r <= '9' && runes[0] == '-':
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r == '-' && len(runes) == 1:
			b.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
