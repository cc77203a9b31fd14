package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthropics/swarmrun/runtime/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.MaxStoredPlans)
	assert.Equal(t, 10000, cfg.MaxCostEntries)
	assert.Equal(t, 1200, cfg.ExampleMaxLen)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SWARMRUN_MAX_STORED_PLANS", "50")
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxStoredPlans)
}

func TestLoad_ProviderEnvVars(t *testing.T) {
	t.Setenv("SWARMRUN_PROVIDER_OPENAI_BASE_URL", "https://api.openai.com")
	t.Setenv("SWARMRUN_PROVIDER_OPENAI_API_KEY", "sk-test")
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	require.Contains(t, cfg.Providers, "openai")
	assert.Equal(t, "https://api.openai.com", cfg.Providers["openai"].BaseURL)
	assert.Equal(t, "sk-test", cfg.Providers["openai"].APIKey)
}

func TestLoad_PlanRetentionDefaultsToOneHour(t *testing.T) {
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 3600, cfg.PlanRetentionSeconds)
}

func TestLoad_AuditDirDefaultsEmpty(t *testing.T) {
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.AuditDir)
}

func TestLoad_AuditDirEnvOverride(t *testing.T) {
	t.Setenv("SWARMRUN_AUDIT_DIR", "/tmp/plan-audit")
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/plan-audit", cfg.AuditDir)
}

func TestValidate_RejectsNonPositive(t *testing.T) {
	v := config.NewValidator()
	err := v.Validate(&config.ServerConfig{MaxStoredPlans: 0, MaxCostEntries: 1, ExampleMaxLen: 1, ListenAddr: ":8080"})
	assert.ErrorIs(t, err, config.ErrMaxStoredPlansInvalid)
}
