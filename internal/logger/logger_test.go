package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/alexanderramin/redtally/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "info"}, &buf, false)

	log.Info().Str("run_id", "r1").Msg("report generated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "report generated", line["message"])
	assert.Equal(t, "r1", line["run_id"])
	assert.Equal(t, "info", line["level"])
	assert.Contains(t, line, "time")
}

func TestNew_ConsoleWhenRequested(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "debug", Format: "console"}, &buf, false)

	log.Debug().Msg("walking issues")

	out := buf.String()
	assert.Contains(t, out, "walking issues")
	assert.Contains(t, out, "DBG")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "warn", Format: "json"}, &buf, true)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "loud", Format: "json"}, &buf, false)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
