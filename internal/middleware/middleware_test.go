package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartvoting/backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestWithSession(path string, s *session.Session) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	return r.WithContext(session.WithSession(r.Context(), s))
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAdmin(okHandler).ServeHTTP(w, requestWithSession("/admin/dashboard", &session.Session{ID: "s", Admin: true}))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("anonymous redirected", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAdmin(okHandler).ServeHTTP(w, requestWithSession("/admin/dashboard", &session.Session{ID: "s"}))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
	})

	t.Run("verified voter is not an admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAdmin(okHandler).ServeHTTP(w, requestWithSession("/admin/dashboard", &session.Session{ID: "s", VoterID: 3}))
		assert.Equal(t, http.StatusSeeOther, w.Code)
	})
}

func TestRequireVoter(t *testing.T) {
	t.Run("bound voter passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireVoter(okHandler).ServeHTTP(w, requestWithSession("/vote", &session.Session{ID: "s", VoterID: 3}))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no voter redirected", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireVoter(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vote", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/face_verify", w.Header().Get("Location"))
	})
}

func TestStaticFileServer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "card.png"), []byte("png"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	handler := StaticFileServer(dir)

	t.Run("existing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/card.png", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "png", w.Body.String())
	})

	t.Run("missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/other.png", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("directory", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nested", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSymbolFileServer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bjp.png"), []byte("lotus"), 0o644))
	handler := SymbolFileServer(dir)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bjp.png", nil))
	assert.Equal(t, "lotus", w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nota.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "<svg"))
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=(self)")
}

func TestMaxBody(t *testing.T) {
	var readErr error
	handler := MaxBody(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = r.Body.Read(make([]byte, 16))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("way too long")))
	assert.Error(t, readErr)
}
