package presentation

import (
	"github.com/zjrosen/themer/internal/plugin"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tokens"
)

// ThemeDTO represents a registered theme for presentation
type ThemeDTO struct {
	Name       string   `json:"name"`
	Default    bool     `json:"default"`
	Scope      string   `json:"scope"`
	Selectors  []string `json:"selectors"` // where the custom properties are declared
	MediaQuery string   `json:"media_query,omitempty"`
	Variant    []string `json:"variant"` // variant definitions registered with the framework
	Tokens     int      `json:"tokens"`
}

// FromEntry converts a registry entry to a DTO. api supplies selector
// escaping.
func FromEntry(api plugin.API, e theme.Entry, isDefault bool) ThemeDTO {
	dto := ThemeDTO{
		Name:      e.Name,
		Default:   isDefault,
		Scope:     e.Scope.Kind.String(),
		Selectors: plugin.StyleSelectors(api, e),
		Variant:   make([]string, 0),
		Tokens:    len(tokens.Flatten(e.Extend)),
	}
	if e.Scope.Kind == theme.ScopeMedia {
		dto.MediaQuery = e.Scope.MediaQuery
		dto.Variant = append(dto.Variant, e.Scope.MediaQuery)
		return dto
	}
	for _, sel := range plugin.VariantSelectors(api, e) {
		dto.Variant = append(dto.Variant, sel+" &", "&"+sel)
	}
	return dto
}

// FromState converts every theme in s, default first.
func FromState(api plugin.API, s theme.State) []ThemeDTO {
	entries := s.All()
	dtos := make([]ThemeDTO, len(entries))
	for i, e := range entries {
		dtos[i] = FromEntry(api, e, e.Name == s.Default.Name)
	}
	return dtos
}
