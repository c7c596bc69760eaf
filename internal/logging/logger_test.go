package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected int
	}{
		{DebugLevel, 4},
		{InfoLevel, 3},
		{WarnLevel, 2},
		{ErrorLevel, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.level, &buf)

			logger.Debug("debug")
			logger.Info("info")
			logger.Warn("warn")
			logger.Error("error")

			assert.Len(t, decodeLines(t, &buf), tt.expected)
		})
	}
}

func TestLoggerJSONEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DebugLevel, &buf).
		WithField("run_id", "abc").
		WithError(errors.New("objective failed"))

	logger.Info("generation complete", map[string]interface{}{"generation": 3})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "generation complete", entry["message"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "objective failed", entry["error"])
	assert.Equal(t, float64(3), entry["generation"])
	assert.Contains(t, entry["caller"], "logging/logger_test.go")
	assert.NotEmpty(t, entry["timestamp"])
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormat(InfoLevel, TextFormat, &buf)

	logger.Warn("queue full", map[string]interface{}{"size": 4, "a": true})

	line := buf.String()
	assert.Contains(t, line, "WARN  queue full")
	assert.Contains(t, line, " a=true")
	assert.Contains(t, line, " size=4")
	assert.Less(t, strings.Index(line, " a=true"), strings.Index(line, " size=4"))
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestLoggerFatalExits(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf)
	code := -1
	logger.exit = func(c int) { code = c }

	logger.WithField("k", "v").Fatal("boom")

	assert.Equal(t, 1, code)
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "FATAL", entries[0]["level"])
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(InfoLevel, &buf).WithField("service", "firefly")
	_ = parent.WithField("run_id", "x")

	parent.Info("hello")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "run_id")
	assert.Equal(t, "firefly", entries[0]["service"])
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := NewLogger(&Config{Level: "warning", Format: "TEXT", Output: path})
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, logger.Level())
	assert.Equal(t, TextFormat, logger.format)

	logger, err = NewLogger(nil)
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, logger.Level())
	assert.Equal(t, JSONFormat, logger.format)

	_, err = NewLogger(&Config{Output: filepath.Join(t.TempDir(), "missing", "out.log")})
	assert.Error(t, err)

	assert.Equal(t, InfoLevel, parseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctxLogger := &CtxLogger{New(InfoLevel, &buf).WithField("request_id", "r1")}
	ctx := ctxLogger.WithContext(context.Background())

	FromContext(ctx).Info("from context")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "r1", entries[0]["request_id"])

	assert.NotNil(t, FromContext(context.Background()))
}

func TestZapLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(InfoLevel, &buf)).Named("firefly").With(zap.String("run_id", "r9"))

	zl.Debug("hidden")
	zl.Info("generation complete",
		zap.Int("generation", 4),
		zap.Float64("alpha", 0.125),
		zap.Bool("improved", true),
		zap.Float64s("best_position", []float64{1.5, -2}),
		zap.Error(errors.New("nope")),
	)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "generation complete", entry["message"])
	assert.Equal(t, "firefly", entry["logger"])
	assert.Equal(t, "r9", entry["run_id"])
	assert.Equal(t, float64(4), entry["generation"])
	assert.Equal(t, 0.125, entry["alpha"])
	assert.Equal(t, true, entry["improved"])
	assert.Equal(t, []interface{}{1.5, float64(-2)}, entry["best_position"])
	assert.Equal(t, "nope", entry["error"])
	assert.Contains(t, entry["caller"], "logging/logger_test.go")
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Middleware(logger))
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside handler")
		http.NotFound(w, r)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "inside handler", entries[0]["message"])
	assert.NotEmpty(t, entries[0]["request_id"])

	completed := entries[1]
	assert.Equal(t, "Request completed", completed["message"])
	assert.Equal(t, float64(http.StatusNotFound), completed["status"])
	assert.Equal(t, "Not Found", completed["error"])
	assert.Equal(t, "/missing", completed["path"])
}
