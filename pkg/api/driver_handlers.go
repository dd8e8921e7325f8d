package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"towtruck/pkg/models"
	"towtruck/service"
)

func (h *Handler) driverDashboard(c *gin.Context) {
	driver := identity[*models.Driver](c)

	areas, err := h.svc.ServiceAreas().Active(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, "Driver/Dashboard", gin.H{
		"driver":       h.presentOwnDriver(driver),
		"serviceAreas": areaOptions(areas),
	})
}

func (h *Handler) driverToggleOnline(c *gin.Context) {
	driver := identity[*models.Driver](c)

	if _, err := h.svc.Account().ToggleOnline(c.Request.Context(), driver.ID); err != nil {
		h.serverError(c, err)
		return
	}
	h.success(c, "Status updated successfully.", "/driver/dashboard")
}

func (h *Handler) driverUpdateProfile(c *gin.Context) {
	var req models.DriverProfileRequest
	if !h.bind(c, &req, "/driver/dashboard") {
		return
	}
	driver := identity[*models.Driver](c)

	var upload *service.Upload
	fh, err := c.FormFile("avatar")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			h.serverError(c, err)
			return
		}
		defer f.Close()
		upload = &service.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.invalid(c, map[string]string{"avatar": "The avatar failed to upload."}, req, "/driver/dashboard")
		return
	}

	if _, err := h.svc.Account().UpdateProfile(c.Request.Context(), driver.ID, req, upload); err != nil {
		h.fail(c, err, req, "/driver/dashboard")
		return
	}
	h.success(c, "Profile updated successfully.", "/driver/dashboard")
}

func (h *Handler) driverChangePassword(c *gin.Context) {
	var req models.PasswordChangeRequest
	if !h.bind(c, &req, "/driver/dashboard") {
		return
	}
	driver := identity[*models.Driver](c)

	if err := h.svc.Account().ChangeDriverPassword(c.Request.Context(), driver.ID, req); err != nil {
		h.fail(c, err, req, "/driver/dashboard")
		return
	}
	h.success(c, "Password changed successfully.", "/driver/dashboard")
}
