package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(component, levelStr string) (*DefaultLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	dl := &DefaultLogger{
		component: component,
		level:     parseLogLevel(levelStr),
		logger:    log.New(buf, "", 0),
	}
	return dl, buf
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarn,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"FATAL":   LevelFatal,
		"bogus":   LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), "input=%q", in)
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestDefaultLoggerFiltersBelowConfiguredLevel(t *testing.T) {
	dl, buf := newBufferedLogger("planner", "WARN")

	dl.Debug("should be filtered")
	dl.Info("should also be filtered")
	assert.Empty(t, buf.String())

	dl.Warn("visible warning")
	assert.Contains(t, buf.String(), "visible warning")
	assert.Contains(t, buf.String(), "] WARN [")
	assert.Contains(t, buf.String(), "[planner]")
}

func TestDefaultLoggerFormatsFieldsAsKeyValuePairs(t *testing.T) {
	dl, buf := newBufferedLogger("geocoder", "DEBUG")

	dl.Error("resolve failed", "address", "Hauptstraße 1", "attempt", 3)

	out := buf.String()
	assert.True(t, strings.Contains(out, "address=Hauptstraße 1"))
	assert.True(t, strings.Contains(out, "attempt=3"))
}

func TestDefaultLoggerIgnoresTrailingUnpairedField(t *testing.T) {
	dl, buf := newBufferedLogger("geocoder", "DEBUG")

	dl.Info("odd fields", "onlykey")

	assert.NotContains(t, buf.String(), "onlykey=")
}

func TestNoopLoggerDiscardsEverything(t *testing.T) {
	var n Noop
	assert.NotPanics(t, func() {
		n.Debug("x")
		n.Info("x")
		n.Warn("x")
		n.Error("x")
		n.Fatal("x")
	})
}
