package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
)

const (
	SessionCookie = "towtruck_session"
	XSRFCookie    = "XSRF-TOKEN"

	sessionKey  = "session"
	identityKey = "identity"
)

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// sessionState is the per-request view of the stored session. flash holds
// what the previous request left behind; anything written to sess.Flash is
// kept for the next one.
type sessionState struct {
	sess      *models.Session
	flash     models.Flash
	committed bool
}

func state(c *gin.Context) *sessionState {
	return c.MustGet(sessionKey).(*sessionState)
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func (h *Handler) newSession() *models.Session {
	return &models.Session{
		ID:        uuid.NewString(),
		CSRFToken: newToken(),
	}
}

func (h *Handler) lifetime(s *models.Session) time.Duration {
	if s.Remember {
		return h.opts.RememberLifetime
	}
	return h.opts.SessionLifetime
}

func (h *Handler) signSession(s *models.Session) (string, error) {
	claims := sessionClaims{
		SID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.opts.AppKey))
}

func (h *Handler) parseSession(raw string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(h.opts.AppKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.SID == "" {
		return "", errors.New("session claim missing")
	}
	return claims.SID, nil
}

func (h *Handler) loadSession(ctx context.Context, c *gin.Context) *models.Session {
	raw, err := c.Cookie(SessionCookie)
	if err != nil || raw == "" {
		return nil
	}
	sid, err := h.parseSession(raw)
	if err != nil {
		h.log.Debug("rejected session cookie", logger.Error(err))
		return nil
	}
	sess, err := h.sessions.Get(ctx, sid)
	if err != nil {
		h.log.Error("failed to load session", logger.Error(err))
		return nil
	}
	return sess
}

// sessionMiddleware attaches the caller's session, starting a new one when
// the cookie is missing, forged or expired.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := h.loadSession(c.Request.Context(), c)
		if sess == nil {
			sess = h.newSession()
		}

		st := &sessionState{sess: sess, flash: sess.Flash}
		sess.Flash = models.Flash{Intended: st.flash.Intended}
		c.Set(sessionKey, st)

		c.Next()
	}
}

// commit persists the session and (re)issues its cookies. It must run
// before the response is written.
func (h *Handler) commit(c *gin.Context) {
	st := state(c)
	if st.committed {
		return
	}
	st.committed = true

	life := h.lifetime(st.sess)
	st.sess.ExpiresAt = time.Now().Add(life)
	if err := h.sessions.Save(c.Request.Context(), st.sess); err != nil {
		h.log.Error("failed to save session", logger.Error(err))
		return
	}

	token, err := h.signSession(st.sess)
	if err != nil {
		h.log.Error("failed to sign session", logger.Error(err))
		return
	}
	maxAge := int(life.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", h.opts.SecureCookies, true)
	c.SetCookie(XSRFCookie, st.sess.CSRFToken, maxAge, "/", "", h.opts.SecureCookies, false)
}

// regenerate moves the session to a fresh id, keeping its contents.
func (h *Handler) regenerate(c *gin.Context) {
	st := state(c)
	old := st.sess.ID
	st.sess.ID = uuid.NewString()
	if err := h.sessions.Delete(c.Request.Context(), old); err != nil {
		h.log.Warning("failed to drop old session", logger.Error(err))
	}
}

// invalidate discards the session entirely and starts an anonymous one
// with a new CSRF token.
func (h *Handler) invalidate(c *gin.Context) {
	st := state(c)
	if err := h.sessions.Delete(c.Request.Context(), st.sess.ID); err != nil {
		h.log.Warning("failed to delete session", logger.Error(err))
	}
	st.sess = h.newSession()
	st.flash = models.Flash{}
}
