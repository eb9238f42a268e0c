package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1024, cfg.BatchCapacity)
	assert.Equal(t, ConcatPropagateNull, cfg.ConcatNullPolicy)
	assert.Equal(t, int64(0), cfg.MemoryLimit)
	assert.False(t, cfg.VerboseErrors)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero capacity", func(c *Config) { c.BatchCapacity = 0 }, "batch_capacity"},
		{"negative capacity", func(c *Config) { c.BatchCapacity = -1 }, "batch_capacity"},
		{"bad policy", func(c *Config) { c.ConcatNullPolicy = "coalesce" }, "concat_null_policy"},
		{"negative limit", func(c *Config) { c.MemoryLimit = -1 }, "memory_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGlobalConfig(t *testing.T) {
	defer ResetGlobalConfig()

	cfg := Default()
	cfg.BatchCapacity = 64
	cfg.ConcatNullPolicy = ConcatNullAsEmpty
	require.NoError(t, SetGlobalConfig(cfg))

	got := GetGlobalConfig()
	assert.Equal(t, 64, got.BatchCapacity)
	assert.Equal(t, ConcatNullAsEmpty, got.ConcatNullPolicy)

	ResetGlobalConfig()
	assert.Equal(t, Default(), GetGlobalConfig())
}

func TestSetGlobalConfigRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.BatchCapacity = 0
	require.Error(t, SetGlobalConfig(cfg))
	assert.Equal(t, Default(), GetGlobalConfig())
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.yaml")
	content := `
batch_capacity: 256
concat_null_policy: empty
memory_limit: 1048576
verbose_errors: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.BatchCapacity)
	assert.Equal(t, ConcatNullAsEmpty, cfg.ConcatNullPolicy)
	assert.Equal(t, int64(1048576), cfg.MemoryLimit)
	assert.True(t, cfg.VerboseErrors)
}

func TestLoadConfigFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.json")
	content := `{"batch_capacity": 128, "concat_null_policy": "propagate"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.BatchCapacity)
	assert.Equal(t, ConcatPropagateNull, cfg.ConcatNullPolicy)
	// Unset fields keep their defaults.
	assert.Equal(t, int64(0), cfg.MemoryLimit)
}

func TestLoadConfigUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	_, err := LoadConfigFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file extension")
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_capacity: -5"), 0o600))

	_, err := LoadConfigFromFile(path)
	require.Error(t, err)
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("QUIVER_BATCH_CAPACITY", "512")
	t.Setenv("QUIVER_CONCAT_NULL_POLICY", "empty")
	t.Setenv("QUIVER_MEMORY_LIMIT", "2048")
	t.Setenv("QUIVER_VERBOSE_ERRORS", "true")

	cfg, err := ApplyEnvironmentOverrides(Default())
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.BatchCapacity)
	assert.Equal(t, ConcatNullAsEmpty, cfg.ConcatNullPolicy)
	assert.Equal(t, int64(2048), cfg.MemoryLimit)
	assert.True(t, cfg.VerboseErrors)
}

func TestApplyEnvironmentOverridesMalformed(t *testing.T) {
	t.Setenv("QUIVER_BATCH_CAPACITY", "lots")

	_, err := ApplyEnvironmentOverrides(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIVER_BATCH_CAPACITY")
}

func TestApplyEnvironmentOverridesUnsetLeavesConfig(t *testing.T) {
	cfg := Default()
	cfg.BatchCapacity = 99
	got, err := ApplyEnvironmentOverrides(cfg)
	require.NoError(t, err)
	assert.Equal(t, 99, got.BatchCapacity)
}
