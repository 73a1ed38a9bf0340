package chat

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatRouter(store Store) http.Handler {
	handler := NewHandler(slog.Default(), NewResponder(slog.Default(), store))
	r := chi.NewRouter()
	r.Route("/api", handler.MountRoutes)
	return r
}

func TestAskReturnsResponseAndData(t *testing.T) {
	store := &fakeStore{recent: []Row{{"id": int64(1), "customer": "Acme Travel"}}}
	router := newChatRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"jobs"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"response":"Found 1 recent job."`)
	assert.Contains(t, rec.Body.String(), "Acme Travel")
}

func TestAskRejectsEmptyMessage(t *testing.T) {
	router := newChatRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadBuildsCSV(t *testing.T) {
	router := newChatRouter(&fakeStore{})

	body := `{"query":"jobs","data":[{"id":1,"name":"Airport Run"},{"id":2,"name":"City Tour"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/download", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "query_")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name", lines[0])
	assert.Contains(t, lines[1], "Airport Run")
}

func TestDownloadRejectsEmptyData(t *testing.T) {
	router := newChatRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/download", strings.NewReader(`{"query":"jobs","data":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
