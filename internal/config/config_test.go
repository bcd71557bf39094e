package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/petrosul/recon-cli/internal/match"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "recon.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "last-wins", cfg.Match.CollisionPolicy)
	assert.Equal(t, 3, cfg.Divergence.RecencyDays)
	assert.Equal(t, 66000.0, cfg.Divergence.VolumeCapLiters)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialBackoff)
	assert.Equal(t, "@every 50m", cfg.Scheduler.Every)
	assert.Equal(t, []string{"transito", "descarga", "divergencia"}, cfg.Scheduler.Jobs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/recon
paths:
  transport_workbooks:
    - /mnt/fitplan/hidratado.xlsx
  invoice_report: /mnt/reports/nfe.xlsx
match:
  collision_policy: reject
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, []string{"/mnt/fitplan/hidratado.xlsx"}, cfg.Paths.TransportWorkbooks)
	assert.Equal(t, "reject", cfg.Match.CollisionPolicy)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("RECON_STORE_DRIVER", "postgres")
	t.Setenv("RECON_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func validJobConfig() *Config {
	return &Config{
		Store: StoreConfig{Driver: "sqlite", DatabaseURL: "recon.db"},
		Paths: PathsConfig{
			TransportWorkbooks: []string{"/mnt/fitplan/hidratado.xlsx"},
			InvoiceReport:      "/mnt/reports/nfe.xlsx",
			DivergenceReport:   "/mnt/reports/divergencias.xlsx",
		},
		Match:      MatchConfig{CollisionPolicy: "last-wins"},
		Divergence: DivergenceConfig{Products: []string{"HIDRATADO"}},
		Retry:      RetryConfig{MaxAttempts: 3},
		Scheduler:  SchedulerConfig{Jobs: []string{"descarga"}},
	}
}

func TestValidate_Descarga(t *testing.T) {
	assert.NoError(t, validJobConfig().Validate("descarga"))
}

func TestValidate_MissingWorkbooks(t *testing.T) {
	cfg := validJobConfig()
	cfg.Paths.TransportWorkbooks = nil

	err := cfg.Validate("descarga")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport_workbooks")
}

func TestValidate_DivergenceNeedsProducts(t *testing.T) {
	cfg := validJobConfig()
	cfg.Divergence.Products = nil

	err := cfg.Validate("divergencia")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "divergence.products")
}

func TestValidate_BadPolicy(t *testing.T) {
	cfg := validJobConfig()
	cfg.Match.CollisionPolicy = "random"

	err := cfg.Validate("descarga")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision_policy")
}

func TestValidate_UnknownMode(t *testing.T) {
	err := validJobConfig().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestCollisionPolicy(t *testing.T) {
	cfg := validJobConfig()

	cfg.Match.CollisionPolicy = ""
	p, err := cfg.CollisionPolicy()
	require.NoError(t, err)
	assert.Equal(t, match.LastWins, p)

	cfg.Match.CollisionPolicy = "first-wins"
	p, err = cfg.CollisionPolicy()
	require.NoError(t, err)
	assert.Equal(t, match.FirstWins, p)
}

func TestRetryPolicy(t *testing.T) {
	cfg := validJobConfig()
	cfg.Retry = RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    time.Second,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 3,
	}

	rp := cfg.RetryPolicy()
	assert.Equal(t, 5, rp.MaxAttempts)
	assert.Equal(t, time.Second, rp.InitialBackoff)
	assert.Equal(t, 3.0, rp.Multiplier)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
