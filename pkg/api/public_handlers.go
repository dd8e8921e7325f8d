package api

import (
	"github.com/gin-gonic/gin"

	"towtruck/pkg/models"
	"towtruck/pkg/pagination"
	"towtruck/service"
)

func (h *Handler) directory(c *gin.Context) {
	search := c.Query("search")
	area := c.DefaultQuery("area", service.AreaAll)
	if area == "" {
		area = service.AreaAll
	}

	res, err := h.svc.Directory().List(c.Request.Context(), service.DirectoryFilter{
		Search: search,
		Area:   area,
		Page:   pagination.ParsePage(c.Query("page")),
	})
	if err != nil {
		h.serverError(c, err)
		return
	}

	page := pagination.New(res.Drivers, res.Total, res.Request, h.opts.AppURL+"/", c.Request.URL.Query())
	h.render(c, "Public/Directory", gin.H{
		"drivers":      pagination.Map(page, func(d *models.Driver) gin.H { return h.presentPublicDriver(d) }),
		"serviceAreas": res.ServiceAreas,
		"stats":        res.Stats,
		"filters":      gin.H{"search": search, "area": area},
	})
}
