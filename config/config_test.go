package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/messenger/config"
)

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}

func TestNewWithoutEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVICE_NAME", "billing")

	log := &recordingLogger{}
	cfg, err := config.New(log)
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.GetString("SERVICE_NAME"))
	assert.Equal(t, []string{"The .env file has not been found in the current directory"}, log.warnings)
}

func TestNewReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MESSENGER_ALLOW_NO_HANDLERS=true\nLOG_LEVEL=3\n"), 0o600))
	t.Chdir(dir)

	log := &recordingLogger{}
	cfg, err := config.New(log)
	require.NoError(t, err)

	assert.True(t, cfg.GetBool("MESSENGER_ALLOW_NO_HANDLERS"))
	assert.Equal(t, 3, cfg.GetInt("LOG_LEVEL"))
	assert.Empty(t, log.warnings)
}

func TestDefaultsAndEnvironment(t *testing.T) {
	cfg := config.NewWithViper(nil)

	cfg.SetDefault("MESSENGER_ALLOW_ASYNC_DELEGATION", false)
	assert.False(t, cfg.GetBool("MESSENGER_ALLOW_ASYNC_DELEGATION"))

	t.Setenv("MESSENGER_ALLOW_ASYNC_DELEGATION", "true")
	assert.True(t, cfg.GetBool("MESSENGER_ALLOW_ASYNC_DELEGATION"))

	cfg.Set("CHANNELS", []string{"async", "sync"})
	assert.Equal(t, []string{"async", "sync"}, cfg.GetStringSlice("CHANNELS"))
}

func TestGetStringMapStringSliceFromJSONEnv(t *testing.T) {
	t.Setenv("MESSENGER_ROUTING", `{"orders.command.create_order.v1":["async","audit"]}`)

	cfg := config.NewWithViper(viper.New())

	assert.Equal(t, map[string][]string{
		"orders.command.create_order.v1": {"async", "audit"},
	}, cfg.GetStringMapStringSlice("MESSENGER_ROUTING"))
}
