// Package paths resolves the config file and the paths it names.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// LocalConfigFile is the project-level config, relative to the working
// directory.
const LocalConfigFile = ".themer/config.yaml"

// UserConfigFile returns ~/.config/themer/config.yaml, or an empty string
// when the home directory is unknown.
func UserConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "themer", "config.yaml")
}

// ResolveConfigFile picks the config file to load:
//   - explicit, when non-empty, whether or not it exists
//   - .themer/config.yaml in the working directory
//   - ~/.config/themer/config.yaml
//
// found is false when neither default location exists; path is then the
// local location, where a default config should be written.
func ResolveConfigFile(explicit string) (path string, found bool) {
	if explicit != "" {
		_, err := os.Stat(explicit)
		return ExpandHome(explicit), err == nil
	}
	for _, candidate := range []string{LocalConfigFile, UserConfigFile()} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return LocalConfigFile, false
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// RelativeTo resolves p against the directory of configPath. Absolute
// and home-relative paths are returned as is, after expansion.
func RelativeTo(configPath, p string) string {
	if p == "" {
		return ""
	}
	p = ExpandHome(p)
	if filepath.IsAbs(p) || configPath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}
