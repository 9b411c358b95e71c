package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevelAndFallsBack(t *testing.T) {
	l := New(LoggingConfig{Level: "debug"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l = New(LoggingConfig{Level: "chatty"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := New(LoggingConfig{Level: "info", Format: "json", FilePath: path})
	defer l.Close()

	l.WithField("book_id", 7).Info("book issued")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"book_id":7`), "log file content: %s", data)
	assert.True(t, strings.Contains(string(data), "book issued"))
}

func TestDefaultCarriesComponent(t *testing.T) {
	l := NewDefault("issuance")
	entry := l.WithField("k", "v")
	assert.Equal(t, "issuance", entry.Data["component"])
	assert.Equal(t, "v", entry.Data["k"])
}

func TestWithContextAddsTraceID(t *testing.T) {
	l := NewDiscard()
	ctx := WithTraceID(context.Background(), "abc-123")

	assert.Equal(t, "abc-123", TraceID(ctx))
	assert.Equal(t, "abc-123", l.WithContext(ctx).Data["trace_id"])

	_, ok := l.WithContext(context.Background()).Data["trace_id"]
	assert.False(t, ok)
}
