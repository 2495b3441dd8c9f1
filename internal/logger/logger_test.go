package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerEmitsStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "info", Output: &buf})

	log.LogVersionCreated("doc-1", "v-1", "1.0.0", 5*time.Millisecond)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "revstore", entry["service"])
	assert.Equal(t, "versionstore", entry["component"])
	assert.Equal(t, "doc-1", entry["document_id"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "Version created", entry["message"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "error", Output: &buf})

	log.Info("suppressed").Msg("not emitted")
	assert.Zero(t, buf.Len())

	log.Error("emitted").Msg("emitted")
	assert.NotZero(t, buf.Len())
}

func TestComponentLoggers(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "debug", Output: &buf})

	log.MergeLogger("compare").Info("comparing").Msg("done")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "merge", entry["component"])
	assert.Equal(t, "compare", entry["operation"])
}

func TestNopLoggerDiscards(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.LogPersistFailure("version", "v-1", assert.AnError)
		log.LogScorerDegraded("doc-1", nil)
	})
}
