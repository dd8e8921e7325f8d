package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"towtruck/pkg/models"
	"towtruck/pkg/pagination"
	"towtruck/service"
)

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.notFound(c)
		return 0, false
	}
	return id, true
}

func (h *Handler) adminDashboard(c *gin.Context) {
	dash, err := h.svc.Drivers().Dashboard(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	recent := make([]gin.H, 0, len(dash.RecentDrivers))
	for _, d := range dash.RecentDrivers {
		recent = append(recent, h.presentAdminDriver(d))
	}
	h.render(c, "Admin/Dashboard", gin.H{
		"stats":         dash.Stats,
		"recentDrivers": recent,
	})
}

func (h *Handler) adminDrivers(c *gin.Context) {
	ctx := c.Request.Context()
	search, status := c.Query("search"), c.Query("status")

	list, err := h.svc.Drivers().List(ctx, service.DriverFilter{
		Search: search,
		Status: models.DriverStatus(status),
		Page:   pagination.ParsePage(c.Query("page")),
	})
	if err != nil {
		h.serverError(c, err)
		return
	}
	areas, err := h.svc.ServiceAreas().Active(ctx)
	if err != nil {
		h.serverError(c, err)
		return
	}

	page := pagination.New(list.Drivers, list.Total, list.Request, h.opts.AppURL+"/admin/drivers", c.Request.URL.Query())
	h.render(c, "Admin/Drivers/Index", gin.H{
		"drivers":      pagination.Map(page, func(d *models.Driver) gin.H { return h.presentAdminDriver(d) }),
		"serviceAreas": areaOptions(areas),
		"filters":      gin.H{"search": search, "status": status},
	})
}

func (h *Handler) adminCreateDriver(c *gin.Context) {
	var req models.AdminDriverRequest
	if !h.bind(c, &req, "/admin/drivers") {
		return
	}
	admin := identity[*models.Admin](c)

	if _, err := h.svc.Drivers().Create(c.Request.Context(), admin.ID, req); err != nil {
		h.fail(c, err, req, "/admin/drivers")
		return
	}
	h.success(c, "Driver created successfully.", "/admin/drivers")
}

func (h *Handler) adminUpdateDriver(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req models.AdminDriverRequest
	if !h.bind(c, &req, "/admin/drivers") {
		return
	}
	admin := identity[*models.Admin](c)

	if _, err := h.svc.Drivers().Update(c.Request.Context(), admin.ID, id, req); err != nil {
		h.fail(c, err, req, "/admin/drivers")
		return
	}
	h.success(c, "Driver updated successfully.", "/admin/drivers")
}

func (h *Handler) adminApproveDriver(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	admin := identity[*models.Admin](c)

	if _, err := h.svc.Drivers().Approve(c.Request.Context(), admin.ID, id); err != nil {
		h.fail(c, err, nil, "/admin/drivers")
		return
	}
	h.success(c, "Driver approved successfully.", "/admin/drivers")
}

func (h *Handler) adminDeleteDriver(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Drivers().Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, nil, "/admin/drivers")
		return
	}
	h.success(c, "Driver deleted successfully.", "/admin/drivers")
}

func (h *Handler) adminServiceAreas(c *gin.Context) {
	search := c.Query("search")

	list, err := h.svc.ServiceAreas().List(c.Request.Context(), search, pagination.ParsePage(c.Query("page")))
	if err != nil {
		h.serverError(c, err)
		return
	}

	page := pagination.New(list.Areas, list.Total, list.Request, h.opts.AppURL+"/admin/service-areas", c.Request.URL.Query())
	h.render(c, "Admin/ServiceAreas/Index", gin.H{
		"serviceAreas": pagination.Map(page, presentArea),
		"filters":      gin.H{"search": search},
	})
}

func (h *Handler) adminCreateServiceArea(c *gin.Context) {
	var req models.ServiceAreaRequest
	if !h.bind(c, &req, "/admin/service-areas") {
		return
	}
	if _, err := h.svc.ServiceAreas().Create(c.Request.Context(), req); err != nil {
		h.fail(c, err, req, "/admin/service-areas")
		return
	}
	h.success(c, "Service area created successfully.", "/admin/service-areas")
}

func (h *Handler) adminUpdateServiceArea(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req models.ServiceAreaRequest
	if !h.bind(c, &req, "/admin/service-areas") {
		return
	}
	if _, err := h.svc.ServiceAreas().Update(c.Request.Context(), id, req); err != nil {
		h.fail(c, err, req, "/admin/service-areas")
		return
	}
	h.success(c, "Service area updated successfully.", "/admin/service-areas")
}

func (h *Handler) adminDeleteServiceArea(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.ServiceAreas().Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, nil, "/admin/service-areas")
		return
	}
	h.success(c, "Service area removed successfully.", "/admin/service-areas")
}

func (h *Handler) adminProfile(c *gin.Context) {
	admin := identity[*models.Admin](c)
	h.render(c, "Admin/Profile", gin.H{
		"admin": gin.H{"id": admin.ID, "name": admin.Name, "email": admin.Email},
	})
}

func (h *Handler) adminUpdateProfile(c *gin.Context) {
	var req models.AdminProfileRequest
	if !h.bind(c, &req, "/admin/profile") {
		return
	}
	admin := identity[*models.Admin](c)

	if _, err := h.svc.Account().UpdateAdminProfile(c.Request.Context(), admin.ID, req); err != nil {
		h.fail(c, err, req, "/admin/profile")
		return
	}
	state(c).sess.Flash.Success = "Profile updated successfully."
	h.redirect(c, "/admin/profile")
}

func (h *Handler) adminChangePassword(c *gin.Context) {
	var req models.PasswordChangeRequest
	if !h.bind(c, &req, "/admin/profile") {
		return
	}
	admin := identity[*models.Admin](c)

	if err := h.svc.Account().ChangeAdminPassword(c.Request.Context(), admin.ID, req); err != nil {
		h.fail(c, err, req, "/admin/profile")
		return
	}
	h.success(c, "Password changed successfully.", "/admin/profile")
}
