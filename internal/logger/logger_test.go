package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type testConfig struct {
	level, output, file string
}

func (c testConfig) GetLevel() string  { return c.level }
func (c testConfig) GetOutput() string { return c.output }
func (c testConfig) GetFile() string   { return c.file }

func TestNewWithWriterFormatsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", &buf)
	l.Info("takeover %s finalized", "abc")
	l.Debug("hidden")
	l.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "takeover abc finalized", entry["message"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry, "caller")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestInitRejectsBadOutput(t *testing.T) {
	assert.Error(t, Init(testConfig{level: "info", output: "syslog"}))
	assert.Error(t, Init(testConfig{level: "info", output: "file"}))
}

func TestInitFileOutput(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { SetDefaultLogger(prev) })

	path := t.TempDir() + "/app.log"
	require.NoError(t, Init(testConfig{level: "debug", output: "file", file: path}))
	Info("written to %s", "file")
	Sync()
}
