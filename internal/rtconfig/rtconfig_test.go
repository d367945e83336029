package rtconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	v := viper.New()
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FlagOverridesDefault(t *testing.T) {
	v := viper.New()
	v.Set("stack", uint32(4096))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), cfg.Stack)
}

func TestLoadFile_RoundTripsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rvsim.yaml")
	original := Config{Timeout: 42, Stack: 8192, Storage: 1 << 20, Predictor: true, DetailFormat: "yaml"}

	data, err := WriteYAML(original)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}
