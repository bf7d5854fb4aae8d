package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "model.json", c.ModelPath)
	assert.Equal(t, 0.2, c.TestSize)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, "linear", c.Regressor)
	assert.Equal(t, ":8000", c.HTTPAddr)
	assert.Equal(t, "http://localhost:8000", c.APIURL)
	assert.Empty(t, c.RedisAddr)
	assert.NoError(t, c.Validate())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "housepricer.yaml")
	c := Default()
	c.ModelPath = "artifacts/model.json"
	c.Regressor = "ridge"
	c.Alpha = 2.5
	require.NoError(t, Save(c, path))

	loaded, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "artifacts/model.json", loaded.ModelPath)
	assert.Equal(t, "ridge", loaded.Regressor)
	assert.Equal(t, 2.5, loaded.Alpha)
	assert.Equal(t, c.HTTPAddr, loaded.HTTPAddr)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "housepricer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model_path: from-file.json\nhttp_addr: \":9000\"\n"), 0o644))
	t.Setenv("HOUSEPRICER_MODEL_PATH", "from-env.json")
	t.Setenv("HOUSEPRICER_TEST_SIZE", "0.3")

	c, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", c.ModelPath)
	assert.Equal(t, ":9000", c.HTTPAddr)
	assert.Equal(t, 0.3, c.TestSize)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("HOUSEPRICER_REDIS_ADDR=localhost:6379\n"), 0o644))
	t.Setenv("HOUSEPRICER_REDIS_ADDR", "")
	require.NoError(t, os.Unsetenv("HOUSEPRICER_REDIS_ADDR"))

	c, err := Load(filepath.Join(dir, "missing-is-error.yaml"), envFile)
	assert.Error(t, err, "explicit config file must exist")
	assert.Nil(t, c)

	path := filepath.Join(dir, "housepricer.yaml")
	require.NoError(t, Save(Default(), path))
	c, err = Load(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"regressor", func(c *Config) { c.Regressor = "forest" }},
		{"test size zero", func(c *Config) { c.TestSize = 0 }},
		{"test size one", func(c *Config) { c.TestSize = 1 }},
		{"negative alpha", func(c *Config) { c.Alpha = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestRunConfig(t *testing.T) {
	c := Default()
	c.Regressor = "lasso"
	rc := c.RunConfig()
	assert.Equal(t, c.TrainPath, rc.TrainPath)
	assert.Equal(t, "lasso", rc.Options.Regressor)
	assert.Equal(t, int64(42), rc.Seed)
}
