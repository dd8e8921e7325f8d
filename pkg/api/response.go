package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/service"
)

const StatusPageExpired = 419

// Page is the document every GET route answers with. A client-side router
// resolves Component to a view and hydrates it with Props.
type Page struct {
	Component string `json:"component"`
	Props     gin.H  `json:"props"`
	URL       string `json:"url"`
	Version   string `json:"version"`
}

func (h *Handler) shared(c *gin.Context) gin.H {
	st := state(c)

	errs := st.flash.Errors
	if errs == nil {
		errs = map[string]string{}
	}
	old := st.flash.Old
	if old == nil {
		old = map[string]string{}
	}

	var auth interface{}
	if v, ok := c.Get(identityKey); ok {
		ident := v.(models.Identity)
		auth = gin.H{"guard": ident.Guard(), "user": h.presentIdentity(ident)}
	}

	return gin.H{
		"auth": auth,
		"flash": gin.H{
			"success": nullable(st.flash.Success),
			"error":   nullable(st.flash.Error),
		},
		"errors":     errs,
		"old":        old,
		"csrf_token": st.sess.CSRFToken,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *Handler) render(c *gin.Context, component string, props gin.H) {
	all := h.shared(c)
	for k, v := range props {
		all[k] = v
	}

	h.commit(c)
	c.Header("Vary", "X-Inertia")
	if c.GetHeader("X-Inertia") != "" {
		c.Header("X-Inertia", "true")
	}
	c.JSON(http.StatusOK, Page{
		Component: component,
		Props:     all,
		URL:       c.Request.URL.RequestURI(),
		Version:   h.opts.AssetVersion,
	})
}

// redirect answers 303 so the follow-up request is always a GET.
func (h *Handler) redirect(c *gin.Context, to string) {
	h.commit(c)
	c.Redirect(http.StatusSeeOther, to)
}

// back redirects to the same-origin referer, or fallback.
func (h *Handler) back(c *gin.Context, fallback string) {
	h.redirect(c, backURL(c, fallback))
}

func backURL(c *gin.Context, fallback string) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

func (h *Handler) success(c *gin.Context, msg, fallback string) {
	state(c).sess.Flash.Success = msg
	h.back(c, fallback)
}

func wantsJSON(c *gin.Context) bool {
	return c.GetHeader("X-Inertia") == "" &&
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// invalid sends field errors back to the form. Secrets never travel back
// as old input.
func (h *Handler) invalid(c *gin.Context, fields map[string]string, input interface{}, fallback string) {
	if wantsJSON(c) {
		h.commit(c)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  fields,
		})
		return
	}

	st := state(c)
	st.sess.Flash.Errors = fields
	st.sess.Flash.Old = oldInput(input)
	h.back(c, fallback)
}

func oldInput(input interface{}) map[string]string {
	if input == nil {
		return nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	old := make(map[string]string, len(m))
	for k, v := range m {
		if strings.Contains(k, "password") || v == nil {
			continue
		}
		old[k] = cast.ToString(v)
	}
	return old
}

// fail maps a service error onto the response.
func (h *Handler) fail(c *gin.Context, err error, input interface{}, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.invalid(c, verr.Fields, input, fallback)
	case errors.Is(err, service.ErrNotFound):
		h.notFound(c)
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) notFound(c *gin.Context) {
	h.commit(c)
	c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.log.Error("request failed", logger.Error(err), logger.String("path", c.Request.URL.Path))
	h.commit(c)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
}

// bind decodes the request into req. On failure it answers with the
// translated field errors and reports false.
func (h *Handler) bind(c *gin.Context, req interface{}, fallback string) bool {
	err := c.ShouldBind(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		h.invalid(c, translate(verrs), req, fallback)
		return false
	}

	h.log.Debug("malformed request", logger.Error(err))
	state(c).sess.Flash.Error = "The given data was invalid."
	h.invalid(c, map[string]string{}, req, fallback)
	return false
}
