package theme

import "strings"

const nameSuffix = "theme"

// ValidateName reports ErrInvalidName unless name ends with "theme",
// compared case-insensitively.
func ValidateName(name string) error {
	if !strings.HasSuffix(strings.ToLower(name), nameSuffix) {
		return ErrInvalidName
	}
	return nil
}

// AttributeSelector returns the data-attribute selector that activates the
// named theme, e.g. [data-theme="dark-theme"].
func AttributeSelector(name string) string {
	var b strings.Builder
	b.WriteString(`[data-theme="`)
	for _, r := range name {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteString(`"]`)
	return b.String()
}
