package models

type Guard string

const (
	GuardAdmin  Guard = "admin"
	GuardDriver Guard = "driver"
)

// Identity is the signed-in principal of either guard.
type Identity interface {
	Guard() Guard
	IdentityID() int64
	DisplayName() string
}
