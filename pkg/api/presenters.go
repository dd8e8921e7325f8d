package api

import (
	"github.com/gin-gonic/gin"

	"towtruck/pkg/models"
)

const dateFormat = "Jan 02, 2006"

func (h *Handler) avatarURL(d *models.Driver) *string {
	if d.Avatar == nil || *d.Avatar == "" {
		return nil
	}
	u := h.svc.Files().URL(*d.Avatar)
	return &u
}

func (h *Handler) presentIdentity(ident models.Identity) gin.H {
	switch v := ident.(type) {
	case *models.Admin:
		return gin.H{"id": v.ID, "name": v.Name, "email": v.Email}
	case *models.Driver:
		return h.presentOwnDriver(v)
	}
	return gin.H{"id": ident.IdentityID(), "name": ident.DisplayName()}
}

// presentPublicDriver is what anonymous visitors may see.
func (h *Handler) presentPublicDriver(d *models.Driver) gin.H {
	return gin.H{
		"id":           d.ID,
		"name":         d.Name,
		"phone_number": d.PhoneNumber,
		"service_area": d.ServiceAreaName,
		"is_online":    d.IsOnline,
		"avatar":       d.Avatar,
		"avatar_url":   h.avatarURL(d),
	}
}

func (h *Handler) presentOwnDriver(d *models.Driver) gin.H {
	return gin.H{
		"id":              d.ID,
		"name":            d.Name,
		"email":           d.Email,
		"phone_number":    d.PhoneNumber,
		"service_area_id": d.ServiceAreaID,
		"service_area":    d.ServiceAreaName,
		"is_online":       d.IsOnline,
		"avatar":          d.Avatar,
		"avatar_url":      h.avatarURL(d),
	}
}

func (h *Handler) presentAdminDriver(d *models.Driver) gin.H {
	var approvedAt *string
	if d.ApprovedAt != nil {
		s := d.ApprovedAt.Format(dateFormat)
		approvedAt = &s
	}
	return gin.H{
		"id":              d.ID,
		"name":            d.Name,
		"email":           d.Email,
		"phone_number":    d.PhoneNumber,
		"service_area_id": d.ServiceAreaID,
		"service_area":    d.ServiceAreaName,
		"is_approved":     d.IsApproved,
		"is_online":       d.IsOnline,
		"avatar_url":      h.avatarURL(d),
		"approved_at":     approvedAt,
		"created_at":      d.CreatedAt.Format(dateFormat),
	}
}

func presentAreaOption(a *models.ServiceArea) gin.H {
	return gin.H{"id": a.ID, "name": a.Name}
}

func presentArea(a *models.ServiceArea) gin.H {
	return gin.H{
		"id":         a.ID,
		"name":       a.Name,
		"is_active":  a.IsActive,
		"sort_order": a.SortOrder,
	}
}

func areaOptions(areas []*models.ServiceArea) []gin.H {
	out := make([]gin.H, 0, len(areas))
	for _, a := range areas {
		out = append(out, presentAreaOption(a))
	}
	return out
}
