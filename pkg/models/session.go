package models

import "time"

type Session struct {
	ID        string `json:"id"`
	AdminID   *int64 `json:"admin_id"`
	DriverID  *int64 `json:"driver_id"`
	CSRFToken string `json:"csrf_token"`
	Flash     Flash  `json:"flash"`
	// Remember stretches the lifetime from minutes to days.
	Remember  bool      `json:"remember"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Flash holds data that survives exactly one subsequent page render.
type Flash struct {
	Success  string            `json:"success,omitempty"`
	Error    string            `json:"error,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Old      map[string]string `json:"old,omitempty"`
	Intended string            `json:"intended,omitempty"`
}

func (s *Session) Principal(g Guard) *int64 {
	switch g {
	case GuardAdmin:
		return s.AdminID
	case GuardDriver:
		return s.DriverID
	}
	return nil
}

func (s *Session) SetPrincipal(g Guard, id *int64) {
	switch g {
	case GuardAdmin:
		s.AdminID = id
	case GuardDriver:
		s.DriverID = id
	}
}
