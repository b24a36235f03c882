package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "json", &buf)
	require.NoError(t, err)
	logger.Debug().Str("dir", "/tmp/store").Int("rows", 2).Msg("store opened")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "store opened", line["message"])
	assert.Equal(t, "/tmp/store", line["dir"])
	assert.Equal(t, float64(2), line["rows"])
	assert.Contains(t, line, "time")
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "text", &buf)
	require.NoError(t, err)
	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("reload failed")
	assert.Contains(t, buf.String(), "reload failed")
	assert.Contains(t, buf.String(), "WRN")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel(" ERROR ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.ErrorLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
	_, err = New("loud", "json", &bytes.Buffer{})
	assert.Error(t, err)
}
