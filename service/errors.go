package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("account pending approval")
	ErrNotFound           = errors.New("not found")
)

const (
	MsgInvalidCredentials = "The provided credentials do not match our records."
	MsgPendingApproval    = "Your account is pending approval."
	MsgEmailTaken         = "The email has already been taken."
	MsgPasswordConfirm    = "The password field confirmation does not match."
	MsgPasswordRequired   = "The password field is required."
	MsgPasswordMin        = "The password field must be at least 8 characters."
	MsgAreaInvalid        = "The selected service area id is invalid."
	MsgCurrentPassword    = "The provided password does not match your current password."
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// required trims value and records a required-field message when nothing
// is left.
func (e *ValidationError) required(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		e.add(field, "The "+strings.ReplaceAll(field, "_", " ")+" field is required.")
	}
	return value
}

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
