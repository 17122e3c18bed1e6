package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/dora-assist/internal/config"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.MaxRounds)
	assert.Equal(t, int64(4096), cfg.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout.Duration)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.APIKeyEnv)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_TOMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider = "openai"
model = "gpt-4o-mini"
max_rounds = 4
request_timeout = "30s"

[sandbox]
read_root = "/srv/flows"

[tools]
dora_binary = "/opt/dora/bin/dora"
enabled = ["dora_list", "read_file"]

[log]
format = "json"
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 4, cfg.MaxRounds)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout.Duration)
	assert.Equal(t, "/srv/flows", cfg.Sandbox.ReadRoot)
	assert.Equal(t, []string{"dora_list", "read_file"}, cfg.Tools.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, 16, cfg.QueueSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_round = 3\n"), 0o644))
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_round")
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.toml")
	require.NoError(t, os.WriteFile(path, []byte(`request_timeout = "soon"`), 0o644))
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AGT_PROVIDER", "openai")
	t.Setenv("AGT_MODEL", "m")
	t.Setenv("AGT_MAX_ROUNDS", "3")
	t.Setenv("AGT_READ_ROOT", "/r")
	t.Setenv("AGT_LOG_LEVEL", "debug")

	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnvOverrides())
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "m", cfg.Model)
	assert.Equal(t, 3, cfg.MaxRounds)
	assert.Equal(t, "/r", cfg.Sandbox.ReadRoot)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyEnvOverrides_Malformed(t *testing.T) {
	t.Setenv("AGT_MAX_ROUNDS", "many")
	cfg := config.Default()
	err := cfg.ApplyEnvOverrides()
	require.Error(t, err)
	assert.Equal(t, 10, cfg.MaxRounds)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "bedrock"
	cfg.MaxRounds = 0
	cfg.QueueSize = 0
	cfg.BaseURL = "not a url"

	err := cfg.Validate()
	var verrs config.ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, f := range []string{"provider", "max_rounds", "queue_size", "base_url"} {
		assert.True(t, fields[f], "missing %s in %v", f, verrs)
	}
}
