package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestWithContextCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug", true)
	t.Cleanup(func() { Init("info", false) })

	ctx := NewContext(context.Background(), "request_id", "r-1")
	ctx = NewContext(ctx, "player_id", "p-1")
	WithContext(ctx).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "r-1", line["request_id"])
	assert.Equal(t, "p-1", line["player_id"])
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", false)
	t.Cleanup(func() { Init("info", false) })

	Info("hidden")
	assert.Empty(t, buf.String())
	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
