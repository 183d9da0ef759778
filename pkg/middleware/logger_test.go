package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStructuredLogger(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		level   string
		message string
	}{
		{"Success", http.StatusOK, "INFO", "request completed"},
		{"Client Error", http.StatusBadRequest, "WARN", "client error"},
		{"Server Error", http.StatusBadGateway, "ERROR", "server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			router := chi.NewRouter()
			router.Use(chimw.RequestID)
			router.Use(NewStructuredLogger(logger))
			router.Get("/state", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("ok"))
			})

			req := httptest.NewRequest(http.MethodGet, "/state?x=1", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.message, entry["msg"])

			request := entry["request"].(map[string]any)
			assert.Equal(t, "/state", request["path"])
			assert.Equal(t, "x=1", request["query"])
			assert.NotEmpty(t, request["id"])

			response := entry["response"].(map[string]any)
			assert.Equal(t, float64(tt.status), response["status"])
			assert.Equal(t, float64(2), response["bytes"])
		})
	}
}
