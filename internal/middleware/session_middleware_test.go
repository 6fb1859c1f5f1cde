package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docecupcake/cupcake-backend/internal/cart"
	"github.com/docecupcake/cupcake-backend/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "cupcake_session"

func setupSessionTest() (*gin.Engine, *SessionMiddleware, *session.Registry) {
	gin.SetMode(gin.TestMode)
	registry := session.NewRegistry(time.Hour)
	store := NewCookieStore("test-session-secret-32-bytes-long!", 3600, false)
	sm := NewSessionMiddleware(store, testCookieName, registry)

	router := gin.New()
	router.Use(sm.Handle())
	router.GET("/add", func(c *gin.Context) {
		sess, _ := GetSession(c)
		_ = sess.Do(func(st *session.State) error {
			st.Cart.AddItem(cart.Product{ID: 1, Price: 12.90}, 1)
			return nil
		})
		c.JSON(http.StatusOK, gin.H{"id": sess.ID})
	})
	router.GET("/count", func(c *gin.Context) {
		sess, _ := GetSession(c)
		var n int
		_ = sess.Do(func(st *session.State) error {
			n = st.Cart.TotalItems()
			return nil
		})
		c.JSON(http.StatusOK, gin.H{"count": n})
	})
	router.DELETE("/session", func(c *gin.Context) {
		sm.End(c)
		c.Status(http.StatusNoContent)
	})
	return router, sm, registry
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == testCookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie set", testCookieName)
	return nil
}

func TestSessionMiddleware_PersistsAcrossRequests(t *testing.T) {
	router, _, registry := setupSessionTest()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/add", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/count", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Equal(t, 1, registry.Len())
}

func TestSessionMiddleware_TamperedCookieStartsFresh(t *testing.T) {
	router, _, registry := setupSessionTest()

	req := httptest.NewRequest(http.MethodGet, "/count", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "forged"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
	assert.Equal(t, 1, registry.Len())
}

func TestSessionMiddleware_End(t *testing.T) {
	router, _, registry := setupSessionTest()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/add", nil))
	cookie := sessionCookie(t, w)

	req := httptest.NewRequest(http.MethodDelete, "/session", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	// The middleware had already resolved the existing session; End removed it.
	assert.Equal(t, 0, registry.Len())

	req = httptest.NewRequest(http.MethodGet, "/count", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"count":0`, "old cookie no longer reaches the cart")
}

func TestSessionMiddleware_RefreshesCookieOnActivity(t *testing.T) {
	router, _, registry := setupSessionTest()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/add", nil))
	first := sessionCookie(t, w)
	assert.Equal(t, 3600, first.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/count", nil)
	req.AddCookie(first)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	refreshed := sessionCookie(t, w)
	assert.Equal(t, 3600, refreshed.MaxAge)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Equal(t, 1, registry.Len())

	// the re-issued cookie still names the same session
	req = httptest.NewRequest(http.MethodGet, "/count", nil)
	req.AddCookie(refreshed)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Equal(t, 1, registry.Len())
}
