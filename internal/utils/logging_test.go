package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomHandler(t *testing.T) {
	color.NoColor = true

	var console, file bytes.Buffer
	logger := slog.New(NewCustomHandler(&console, &file, slog.LevelInfo))

	logger.With(slog.Int64("shift_id", 50)).Info("Cover request approved", slog.Int64("cover_request_id", 7))
	logger.Debug("hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &record))
	assert.Equal(t, "Cover request approved", record["msg"])
	assert.Equal(t, ServiceName, record["job"])
	assert.Equal(t, float64(50), record["shift_id"])
	assert.Equal(t, float64(7), record["cover_request_id"])
	assert.Contains(t, record, "timestamp")

	line := console.String()
	assert.Equal(t, 1, strings.Count(line, "\n"))
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "shift_id=50")
	assert.Contains(t, line, "cover_request_id=7")
	assert.NotContains(t, line, "hidden")
}

func TestSetupLoggerRequiresPath(t *testing.T) {
	_, err := SetupLogger("", slog.LevelInfo)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	var file bytes.Buffer
	logger := slog.New(NewCustomHandler(nil, &file, slog.LevelInfo))

	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &record))
	assert.Equal(t, "/health", record["path"])
	assert.Equal(t, float64(http.StatusTeapot), record["status"])
	assert.Equal(t, "unknown", record["request_id"])
}
