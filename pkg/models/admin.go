package models

import "time"

type Admin struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Admin) Guard() Guard        { return GuardAdmin }
func (a *Admin) IdentityID() int64   { return a.ID }
func (a *Admin) DisplayName() string { return a.Name }
