package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpdesk/internal/config"
	"erpdesk/internal/logger"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("document_id", "abc").Msg("saved")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "saved", entry["message"])
	assert.Equal(t, "abc", entry["document_id"])
	assert.Equal(t, "erpdesk", entry["service"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(config.LogConfig{Level: "debug", Format: "console"}, &buf)

	log.Debug().Msg("visible")

	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "DBG")
}

func TestNewWithWriter_UnknownLevel(t *testing.T) {
	log := logger.NewWithWriter(config.LogConfig{Level: "loud", Format: "json"}, &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
