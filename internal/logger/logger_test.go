package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequests(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	handler := Requests(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, zerolog.Ctx(r.Context()))
		w.WriteHeader(http.StatusNotFound)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing.html", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "http request", entry["message"])
	require.Equal(t, "GET", entry["method"])
	require.Equal(t, "/missing.html", entry["path"])
	require.Equal(t, float64(http.StatusNotFound), entry["status"])
	require.Equal(t, "debug", entry["level"])
}

func TestRequests_serverError(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := Requests(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "error", entry["level"])
}

func TestSetup(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, Setup(false).GetLevel())
	require.Equal(t, zerolog.DebugLevel, Setup(true).GetLevel())
}
