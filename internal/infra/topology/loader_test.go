package topology_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-lights/internal/infra/topology"
)

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lights": {"I1": "aaa-111", "I2": "bbb-222"}}`), 0o600))

	topo, err := topology.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, topo.Len())
	id, ok := topo.Resolve("I2")
	require.True(t, ok)
	assert.Equal(t, "bbb-222", id)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	content := "lights:\n  I1: aaa-111\n  desk: ccc-333\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	topo, err := topology.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"I1", "desk"}, topo.Names())
}

func TestParse_NoLightsSection(t *testing.T) {
	topo, err := topology.Parse([]byte(`{"switches": {"fan": "x"}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, topo.Len())
}

func TestLoad_Errors(t *testing.T) {
	_, err := topology.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = topology.Parse([]byte(`{"lights": [1, 2`))
	assert.Error(t, err)
}

func TestParse_IgnoresOtherSections(t *testing.T) {
	topo, err := topology.Parse([]byte(`{"version": 2, "lights": {"I1": "aaa-111"}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"I1"}, topo.Names())
}
