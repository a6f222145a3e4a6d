package templates

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigTemplate_ParsesAsYAML(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(ConfigTemplate()), &doc))
	require.Equal(t, true, doc["presets"])
	require.Len(t, doc["themes"], 2)
	require.Contains(t, doc, "output")
	require.Contains(t, doc, "storage")
}

func TestConfigTemplate_NoHardcodedHome(t *testing.T) {
	require.NotContains(t, ConfigTemplate(), "/home/")
	require.NotContains(t, ConfigTemplate(), "/Users/")
}
