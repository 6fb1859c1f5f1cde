package middleware

import (
	"net/http"

	"github.com/docecupcake/cupcake-backend/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	browsingSessionKey = "browsing_session"
	sessionIDValue     = "sid"
)

// SessionMiddleware resolves the browsing session named by the signed cookie,
// creating a fresh one when the cookie is missing, tampered with, or points
// at an ended session.
type SessionMiddleware struct {
	store    sessions.Store
	name     string
	registry *session.Registry
}

func NewSessionMiddleware(store sessions.Store, cookieName string, registry *session.Registry) *SessionMiddleware {
	return &SessionMiddleware{store: store, name: cookieName, registry: registry}
}

// NewCookieStore signs the cookie with secret.
func NewCookieStore(secret string, maxAgeSeconds int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		// A decode error still returns a usable new cookie session.
		cookie, err := m.store.Get(c.Request, m.name)
		if err != nil {
			log.Debug("Discarding unreadable session cookie", map[string]interface{}{
				"error": err.Error(),
			})
		}

		var sess *session.Session
		if id, ok := cookie.Values[sessionIDValue].(string); ok {
			sess, _ = m.registry.Get(id)
		}
		if sess == nil {
			sess = m.registry.Create()
			cookie.Values[sessionIDValue] = sess.ID
			log.Debug("Browsing session started", map[string]interface{}{
				"session_id": sess.ID,
			})
		}

		// Re-issued on every request so the cookie expiry follows the idle timeout.
		if err := cookie.Save(c.Request, c.Writer); err != nil {
			log.Error("Failed to write session cookie", err)
		}

		SetSession(c, sess)
		c.Next()
	}
}

// End destroys the current browsing session and expires its cookie.
func (m *SessionMiddleware) End(c *gin.Context) {
	if sess, ok := GetSession(c); ok {
		m.registry.Destroy(sess.ID)
	}
	cookie, _ := m.store.Get(c.Request, m.name)
	cookie.Options.MaxAge = -1
	delete(cookie.Values, sessionIDValue)
	if err := cookie.Save(c.Request, c.Writer); err != nil {
		GetLoggerFromContext(c).Error("Failed to expire session cookie", err)
	}
}

func SetSession(c *gin.Context, s *session.Session) {
	c.Set(browsingSessionKey, s)
}

func GetSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(browsingSessionKey)
	if !exists {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}
