package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", "json")

	log.Info().Msg("hidden")
	l := WithComponent("detection")
	l.Warn().Str("user_id", "u1").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "detection", entry["component"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "shown", entry["message"])
}

func TestInitWriter_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "loud", "json")

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
