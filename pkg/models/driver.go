package models

import "time"

type Driver struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Password        string     `json:"-"`
	PhoneNumber     string     `json:"phone_number"`
	Avatar          *string    `json:"avatar"`
	ServiceAreaID   *int64     `json:"service_area_id"`
	ServiceAreaName *string    `json:"service_area"`
	IsApproved      bool       `json:"is_approved"`
	IsOnline        bool       `json:"is_online"`
	ApprovedBy      *int64     `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (d *Driver) Guard() Guard        { return GuardDriver }
func (d *Driver) IdentityID() int64   { return d.ID }
func (d *Driver) DisplayName() string { return d.Name }

type DriverStatus string

const (
	DriverStatusApproved DriverStatus = "approved"
	DriverStatusPending  DriverStatus = "pending"
	DriverStatusOnline   DriverStatus = "online"
)

type DriverOrder int

const (
	// newest first
	DriverOrderLatest DriverOrder = iota
	// is_online DESC, name ASC
	DriverOrderOnlineFirst
)

// DriverQuery drives both the public directory and the admin listing.
type DriverQuery struct {
	ApprovedOnly bool
	Search       string
	// SearchEmail widens Search to the email column.
	SearchEmail bool
	AreaName    string
	Status      DriverStatus
	Order       DriverOrder
	Limit       int
	Offset      int
}

type DriverCountFilter struct {
	Approved *bool
	Online   *bool
}
