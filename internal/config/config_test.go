package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-regwizard/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAddr, cfg.Addr)
	assert.Equal(t, config.DefaultSubmitDelay, cfg.SubmitDelay)
	assert.Equal(t, config.DefaultShutdownGrace, cfg.ShutdownGrace)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.DefaultEndpoint, cfg.Endpoint)
	assert.Empty(t, cfg.StepsDir)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "regwizard.yaml", `
addr: ":9000"
submit_delay: 500ms
log_level: DEBUG
endpoint: http://api.example.com
`)
	t.Setenv("REGWIZARD_ADDR", ":9100")

	cfg, err := config.Load(config.WithConfigPath(path))
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr, "environment overrides the file")
	assert.Equal(t, 500*time.Millisecond, cfg.SubmitDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://api.example.com", cfg.Endpoint)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "REGWIZARD_LOCALE=en\nREGWIZARD_SHUTDOWN_GRACE=3s\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("REGWIZARD_LOCALE")
		_ = os.Unsetenv("REGWIZARD_SHUTDOWN_GRACE")
	})

	cfg, err := config.Load(config.WithDotEnv(filepath.Join(dir, "missing.env"), env))
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 3*time.Second, cfg.ShutdownGrace)
}

func TestLoad_FlagsBoundToViper(t *testing.T) {
	v := config.NewViper()
	v.Set(config.KeySubmitDelay, "0s")
	v.Set(config.KeyStepsDir, t.TempDir())

	cfg, err := config.Load(config.WithViper(v))
	require.NoError(t, err)

	assert.Zero(t, cfg.SubmitDelay)
	assert.NotEmpty(t, cfg.StepsDir)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]func(v *viper.Viper){
		"empty addr":       func(v *viper.Viper) { v.Set(config.KeyAddr, " ") },
		"negative delay":   func(v *viper.Viper) { v.Set(config.KeySubmitDelay, "-1s") },
		"zero grace":       func(v *viper.Viper) { v.Set(config.KeyShutdownGrace, "0s") },
		"unknown level":    func(v *viper.Viper) { v.Set(config.KeyLogLevel, "loud") },
		"relative url":     func(v *viper.Viper) { v.Set(config.KeyEndpoint, "/registration") },
		"missing stepsdir": func(v *viper.Viper) { v.Set(config.KeyStepsDir, "/does/not/exist") },
		"messages is dir":  func(v *viper.Viper) { v.Set(config.KeyMessagesFile, os.TempDir()) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := config.NewViper()
			mutate(v)
			_, err := config.Load(config.WithViper(v))
			assert.Error(t, err)
		})
	}
}

func TestLoad_OptionErrors(t *testing.T) {
	_, err := config.Load(config.WithConfigPath(""))
	assert.Error(t, err)

	_, err = config.Load(config.WithViper(nil))
	assert.Error(t, err)

	_, err = config.Load(config.WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Error(t, err)
}
