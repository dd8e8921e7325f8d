package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/service"
)

// methodOverride lets HTML forms reach PUT, PATCH and DELETE routes by
// posting a _method field or an X-HTTP-Method-Override header. It has to
// wrap the engine because gin matches routes before any middleware runs.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := r.Header.Get("X-HTTP-Method-Override")
			if m == "" && isForm(r) {
				m = r.PostFormValue("_method")
			}
			switch m = strings.ToUpper(m); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.log.Info("request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("ip", c.ClientIP()),
		)
	}
}

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics(namespace string) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(m.requests, m.latency)
	return m
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func csrfToken(c *gin.Context) string {
	for _, hdr := range []string{"X-CSRF-TOKEN", "X-XSRF-TOKEN"} {
		if v := c.GetHeader(hdr); v != "" {
			return v
		}
	}
	return c.PostForm("_token")
}

// verifyCSRF rejects state-changing requests whose token does not match
// the session's with 419.
func (h *Handler) verifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		want := state(c).sess.CSRFToken
		got := csrfToken(c)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			h.log.Warning("csrf token mismatch", logger.String("path", c.Request.URL.Path))
			h.commit(c)
			c.AbortWithStatusJSON(StatusPageExpired, gin.H{"message": "Page Expired"})
			return
		}
		c.Next()
	}
}

// authenticate admits requests whose session carries a live principal of
// guard g. Drivers are re-checked for approval on every request.
func (h *Handler) authenticate(g models.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := state(c)
		id := st.sess.Principal(g)
		if id == nil {
			if c.Request.Method == http.MethodGet {
				st.sess.Flash.Intended = c.Request.URL.RequestURI()
			}
			h.redirect(c, loginPath(g))
			c.Abort()
			return
		}

		ident, err := h.svc.Auth().Resolve(c.Request.Context(), g, *id)
		switch {
		case errors.Is(err, service.ErrPendingApproval), errors.Is(err, service.ErrNotFound):
			h.log.Info("dropping stale principal", logger.String("guard", string(g)), logger.Int64("id", *id))
			h.invalidate(c)
			if errors.Is(err, service.ErrPendingApproval) {
				state(c).sess.Flash.Errors = map[string]string{"email": service.MsgPendingApproval}
			}
			h.redirect(c, loginPath(g))
			c.Abort()
			return
		case err != nil:
			h.serverError(c, err)
			c.Abort()
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// guest keeps signed-in principals away from the login and register pages.
func (h *Handler) guest(g models.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if state(c).sess.Principal(g) != nil {
			h.redirect(c, dashboardPath(g))
			c.Abort()
			return
		}
		c.Next()
	}
}

func loginPath(g models.Guard) string     { return "/" + string(g) + "/login" }
func dashboardPath(g models.Guard) string { return "/" + string(g) + "/dashboard" }
