// Package templates holds the files themer writes for new projects.
package templates

import (
	_ "embed"
)

// configTemplate is the commented starter config written by `themer init`
// and on first run.
//
//go:embed config.yaml
var configTemplate string

// ConfigTemplate returns the starter config.
func ConfigTemplate() string {
	return configTemplate
}
