package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/themer/internal/watcher"
)

func startWatcher(t *testing.T, paths ...string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Paths:       paths,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("presets: true\n"), 0o644))

	onChange := startWatcher(t, cfgPath)

	// Rapid writes should coalesce into a single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("# %d\n", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	otherPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(cfgPath, []byte("presets: true\n"), 0o644))
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0o644))

	onChange := startWatcher(t, cfgPath)

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0o644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_AtomicRename(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("presets: true\n"), 0o644))

	onChange := startWatcher(t, cfgPath)

	tmp := filepath.Join(dir, ".config.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("presets: false\n"), 0o644))
	require.NoError(t, os.Rename(tmp, cfgPath))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for a rename over the config file")
	}
}

func TestWatcher_MultipleFiles(t *testing.T) {
	cfgDir := t.TempDir()
	cssDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	cssPath := filepath.Join(cssDir, "utilities.css")
	require.NoError(t, os.WriteFile(cfgPath, []byte("presets: true\n"), 0o644))
	require.NoError(t, os.WriteFile(cssPath, []byte(".a{}"), 0o644))

	onChange := startWatcher(t, cfgPath, "", cssPath)

	require.NoError(t, os.WriteFile(cssPath, []byte(".a{color:red}"), 0o644))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for the utilities stylesheet")
	}
}

func TestWatcher_SetPathsFollowsNewStylesheet(t *testing.T) {
	cfgDir := t.TempDir()
	oldDir := t.TempDir()
	newDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	oldCSS := filepath.Join(oldDir, "utilities.css")
	newCSS := filepath.Join(newDir, "brand.css")
	for _, p := range []string{cfgPath, oldCSS, newCSS} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	w, err := watcher.New(watcher.Config{Paths: []string{cfgPath, oldCSS}, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	onChange, err := w.Start()
	require.NoError(t, err)

	changed, err := w.SetPaths([]string{cfgPath, newCSS})
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, []string{cfgPath, newCSS}, w.Paths())

	changed, err = w.SetPaths([]string{newCSS, cfgPath})
	require.NoError(t, err)
	require.False(t, changed, "same files in another order")

	require.NoError(t, os.WriteFile(oldCSS, []byte(".old{}"), 0o644))
	select {
	case <-onChange:
		t.Fatal("the replaced stylesheet is no longer watched")
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(newCSS, []byte(".brand{}"), 0o644))
	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for the newly named stylesheet")
	}
}

func TestWatcher_SetPathsBeforeStart(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cssPath := filepath.Join(dir, "utilities.css")
	require.NoError(t, os.WriteFile(cfgPath, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(cssPath, []byte("x"), 0o644))

	w, err := watcher.New(watcher.DefaultConfig(cfgPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	changed, err := w.SetPaths([]string{cfgPath, "", cssPath})
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, []string{cfgPath, cssPath}, w.Paths())
}

func TestWatcher_Stop(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("x"), 0o644))

	w, err := watcher.New(watcher.DefaultConfig(cfgPath))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/a/config.yaml", "/b/utilities.css")
	assert.Equal(t, []string{"/a/config.yaml", "/b/utilities.css"}, cfg.Paths)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDur)
}
