package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "test")

	log.Info("queue built")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "queue built", entry["message"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestComponentAndDeal(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "test")

	log.Component("ingest").WithDeal("12345").Warn("unparseable close date")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "ingest", entry["module"])
	assert.Equal(t, "12345", entry["deal_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "test")

	log.WithFields(map[string]interface{}{
		"deals":    42,
		"pipeline": "sales",
	}).WithError(errors.New("hubspot: 502")).Error("sync failed")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, float64(42), entry["deals"])
	assert.Equal(t, "sales", entry["pipeline"])
	assert.Equal(t, "hubspot: 502", entry["error"])
}

func TestWithJob(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "test")

	log.WithJob("crm_sync").Debug("filtered by level")
	assert.Zero(t, buf.Len())

	log.WithJob("crm_sync").Info("Job started")
	entry := decodeEntry(t, &buf)
	assert.Equal(t, "crm_sync", entry["job"])
	assert.Equal(t, ServiceName, entry["service"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithDeal("1").Info("discarded")
	})
}
