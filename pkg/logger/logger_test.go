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
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Production: true, Level: "info", Output: &buf})

	log.Debug("hidden")
	log.Info("allocated", "code", "TH001")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "allocated", entry["msg"])
	assert.Equal(t, "TH001", entry["code"])
}

func TestNew_TextWithDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Debug: true, Output: &buf})

	log.Debug("sync stage", "stage", "rooms")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "stage=rooms")
}

func TestContext(t *testing.T) {
	l := Discard()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
