package models

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
	Remember bool   `form:"remember" json:"remember"`
}

type RegisterDriverRequest struct {
	Name                 string `form:"name" json:"name" binding:"required,max=255"`
	Email                string `form:"email" json:"email" binding:"required,email,max=255"`
	Password             string `form:"password" json:"password" binding:"required,min=8"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation"`
	PhoneNumber          string `form:"phone_number" json:"phone_number" binding:"required,max=20"`
	ServiceAreaID        int64  `form:"service_area_id" json:"service_area_id" binding:"required"`
}

type DriverProfileRequest struct {
	Name          string `form:"name" json:"name" binding:"required,max=255"`
	PhoneNumber   string `form:"phone_number" json:"phone_number" binding:"required,max=20"`
	ServiceAreaID int64  `form:"service_area_id" json:"service_area_id" binding:"required"`
}

// AdminDriverRequest is shared by create and update; Password is required
// on create only.
type AdminDriverRequest struct {
	Name          string `form:"name" json:"name" binding:"required,max=255"`
	Email         string `form:"email" json:"email" binding:"required,email,max=255"`
	PhoneNumber   string `form:"phone_number" json:"phone_number" binding:"required,max=20"`
	ServiceAreaID *int64 `form:"service_area_id" json:"service_area_id"`
	Password      string `form:"password" json:"password" binding:"omitempty,min=8"`
	IsApproved    bool   `form:"is_approved" json:"is_approved"`
}

type ServiceAreaRequest struct {
	Name      string `form:"name" json:"name" binding:"required,max=255"`
	IsActive  *bool  `form:"is_active" json:"is_active"`
	SortOrder *int   `form:"sort_order" json:"sort_order" binding:"omitempty,min=0"`
}

type PasswordChangeRequest struct {
	CurrentPassword      string `form:"current_password" json:"current_password" binding:"required"`
	Password             string `form:"password" json:"password" binding:"required,min=8"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation"`
}

type AdminProfileRequest struct {
	Name  string `form:"name" json:"name" binding:"required,max=255"`
	Email string `form:"email" json:"email" binding:"required,email,max=255"`
}
