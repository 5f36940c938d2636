package domain

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Lookup failures shared by every service. Handlers map these to 404.
var (
	ErrOrgNotFound        = errors.New("Organization not found")
	ErrMembershipNotFound = errors.New("Membership not found")
	ErrInviteNotFound     = errors.New("Invalid invitation token")
	ErrUserNotFound       = errors.New("User not found")
)

// ErrOrgFull is returned whenever an accepted membership would exceed MaxMembers.
var ErrOrgFull = errors.New("Organization has reached its member limit")

// IsDuplicateKey reports whether err is a unique constraint violation. Drivers
// opened with TranslateError return gorm.ErrDuplicatedKey; the message checks
// cover postgres (SQLSTATE 23505) and sqlite when translation is off.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "UNIQUE constraint failed")
}
