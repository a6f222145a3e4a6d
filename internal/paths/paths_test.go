package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveConfigFile_Explicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")

	got, found := ResolveConfigFile(path)
	require.Equal(t, path, got)
	require.False(t, found)

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	got, found = ResolveConfigFile(path)
	require.Equal(t, path, got)
	require.True(t, found)
}

func TestResolveConfigFile_Local(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	got, found := ResolveConfigFile("")
	require.Equal(t, LocalConfigFile, got)
	require.False(t, found, "nothing exists yet")

	require.NoError(t, os.MkdirAll(".themer", 0o750))
	require.NoError(t, os.WriteFile(LocalConfigFile, nil, 0o600))
	got, found = ResolveConfigFile("")
	require.Equal(t, LocalConfigFile, got)
	require.True(t, found)
}

func TestResolveConfigFile_User(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("HOME", home)

	userCfg := filepath.Join(home, ".config", "themer", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userCfg), 0o750))
	require.NoError(t, os.WriteFile(userCfg, nil, 0o600))

	got, found := ResolveConfigFile("")
	require.Equal(t, userCfg, got)
	require.True(t, found)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, "x", "y"), ExpandHome("~/x/y"))
	require.Equal(t, home, ExpandHome("~"))
	require.Equal(t, "~user/x", ExpandHome("~user/x"))
	require.Equal(t, "/abs", ExpandHome("/abs"))
}

func TestRelativeTo(t *testing.T) {
	require.Equal(t, filepath.Join("proj", ".themer", "utilities.css"), RelativeTo(filepath.Join("proj", ".themer", "config.yaml"), "utilities.css"))
	require.Equal(t, "/abs/u.css", RelativeTo("proj/.themer/config.yaml", "/abs/u.css"))
	require.Equal(t, "u.css", RelativeTo("", "u.css"))
	require.Equal(t, "", RelativeTo("cfg.yaml", ""))
}
