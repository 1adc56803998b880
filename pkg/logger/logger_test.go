package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo)

	log.Info("award applied", String("user_id", "u1"), Int("amount", 25))

	entry := lastEntry(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "award applied", entry["message"])
	fields := entry["fields"].(map[string]any)
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, float64(25), fields["amount"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestLogger_ErrField(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo)

	log.Error("failed", Err(errors.New("boom")))

	fields := lastEntry(t, &buf)["fields"].(map[string]any)
	assert.Equal(t, "boom", fields["error"])
}

func TestLogger_WithBindsFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo).With(String("app", "hub"))

	log.Info("hello", String("extra", "x"))

	fields := lastEntry(t, &buf)["fields"].(map[string]any)
	assert.Equal(t, "hub", fields["app"])
	assert.Equal(t, "x", fields["extra"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}
