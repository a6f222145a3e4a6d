// Package presentation formats registry contents for machine-readable
// output.
package presentation

import (
	"encoding/json"
	"io"

	"github.com/zjrosen/themer/internal/theme"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatThemes formats a list of themes as JSON
func (f *Formatter) FormatThemes(themes []ThemeDTO) error {
	return f.encode(themes)
}

// FormatSelectors formats the theme selector map as JSON. Keys are sorted.
func (f *Formatter) FormatSelectors(selectors map[string]theme.SelectorInfo) error {
	return f.encode(selectors)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
