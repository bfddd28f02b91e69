package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	err := Setup(LogConfig{Level: "loud", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}

func TestSetupWritesJSONToFile(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	})

	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, Setup(LogConfig{
		Level:      "debug",
		Format:     "json",
		TimeFormat: zerolog.TimeFormatUnix,
		Output:     path,
	}))

	log := WithRequestID("req-1")
	log.Info().Str("engine", "stub").Msg("recognized")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	line := gjson.ParseBytes(raw)
	assert.Equal(t, "req-1", line.Get("request_id").String())
	assert.Equal(t, "stub", line.Get("engine").String())
	assert.Equal(t, "recognized", line.Get("message").String())
	assert.Equal(t, "info", line.Get("level").String())
}

func TestWithComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "component.log")
	require.NoError(t, Setup(LogConfig{Level: "info", Format: "json", Output: path}))

	log := WithComponent("server")
	log.Warn().Msg("draining")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "server", gjson.GetBytes(raw, "component").String())
}
