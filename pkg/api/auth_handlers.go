package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"towtruck/pkg/models"
	"towtruck/service"
)

func loginComponent(g models.Guard) string {
	if g == models.GuardAdmin {
		return "Admin/Login"
	}
	return "Driver/Login"
}

func (h *Handler) showLogin(g models.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, loginComponent(g), gin.H{})
	}
}

func (h *Handler) login(g models.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if !h.bind(c, &req, loginPath(g)) {
			return
		}

		var (
			ident models.Identity
			err   error
		)
		ctx := c.Request.Context()
		if g == models.GuardAdmin {
			var a *models.Admin
			if a, err = h.svc.Auth().AttemptAdmin(ctx, req.Email, req.Password); err == nil {
				ident = a
			}
		} else {
			var d *models.Driver
			if d, err = h.svc.Auth().AttemptDriver(ctx, req.Email, req.Password); err == nil {
				ident = d
			}
		}

		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.invalid(c, map[string]string{"email": service.MsgInvalidCredentials}, req, loginPath(g))
			return
		case errors.Is(err, service.ErrPendingApproval):
			h.invalidate(c)
			st := state(c)
			st.sess.Flash.Errors = map[string]string{"email": service.MsgPendingApproval}
			st.sess.Flash.Old = map[string]string{"email": req.Email}
			h.redirect(c, loginPath(g))
			return
		case err != nil:
			h.serverError(c, err)
			return
		}

		h.regenerate(c)
		st := state(c)
		id := ident.IdentityID()
		st.sess.SetPrincipal(g, &id)
		st.sess.Remember = st.sess.Remember || req.Remember

		to := dashboardPath(g)
		if intended := st.sess.Flash.Intended; strings.HasPrefix(intended, "/"+string(g)+"/") {
			to = intended
		}
		st.sess.Flash.Intended = ""
		h.redirect(c, to)
	}
}

func (h *Handler) logout(g models.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.invalidate(c)
		h.redirect(c, loginPath(g))
	}
}

func (h *Handler) showRegister(c *gin.Context) {
	areas, err := h.svc.ServiceAreas().Active(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, "Driver/Register", gin.H{"serviceAreas": areaOptions(areas)})
}

func (h *Handler) register(c *gin.Context) {
	var req models.RegisterDriverRequest
	if !h.bind(c, &req, "/driver/register") {
		return
	}

	if _, err := h.svc.Account().Register(c.Request.Context(), req); err != nil {
		h.fail(c, err, req, "/driver/register")
		return
	}

	state(c).sess.Flash.Success = "Registration successful! Please wait for admin approval."
	h.redirect(c, loginPath(models.GuardDriver))
}
