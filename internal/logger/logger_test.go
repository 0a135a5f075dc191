package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("WIB", 7*3600)

	log := NewWithWriter(&buf, loc, zapcore.InfoLevel)
	log.Info("document_uploaded", zap.String("user_id", "u-1"))
	log.Debug("hidden")
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "document_uploaded", entry["msg"])
	assert.Equal(t, "u-1", entry["user_id"])

	ts, err := time.Parse(time.RFC3339Nano, entry["ts"].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 7*3600, offset)
}

func TestNewWithWriter_NilLocation(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, nil, zapcore.InfoLevel)
	log.Warn("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Contains(t, entry["ts"], "Z")
}
