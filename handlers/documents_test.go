package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncpad/syncpad/internal/document"
	"github.com/syncpad/syncpad/internal/engine"
)

type nopSender struct{}

func (nopSender) Send(sessionID, event string, payload any) {}
func (nopSender) SendAll(event string, payload any)         {}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := document.NewStore("Welcome Document", "welcome")
	eng := engine.New(store, nopSender{}, engine.Options{SaveAckDelay: time.Minute})
	g := gin.New()
	RegisterDocumentRoutes(g, eng)
	return g
}

func TestCreateGetDeleteDocument(t *testing.T) {
	g := newTestRouter()

	// CREATE
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"title":"notes"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id, ok := created["id"].(string)
	require.True(t, ok)
	assert.Equal(t, "notes", created["title"])
	assert.Equal(t, float64(1), created["version"])

	// GET (single)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/documents/%s", id), nil)
	g.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// LIST contains default + created
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	g.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	// DELETE
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/documents/%s", id), nil)
	g.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/documents/%s", id), nil)
	g.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteDefaultDocumentForbidden(t *testing.T) {
	g := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/documents/default", nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	// still listed
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/documents/default", nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRenameDocumentTitle(t *testing.T) {
	g := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/documents/default/title", strings.NewReader(`{"title":"renamed"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/documents/default", nil)
	g.ServeHTTP(w, req)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "renamed", got["title"])

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/documents/missing/title", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUnknownDocument(t *testing.T) {
	g := newTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/documents/missing", nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
