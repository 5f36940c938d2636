package invitations

import (
	"errors"
	"strings"
	"time"

	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/validation"
)

var (
	ErrNoInvitePermission   = errors.New("You do not have permission to invite members")
	ErrNoApprovalPermission = errors.New("You do not have permission to approve join requests")
	ErrNoSettingsPermission = errors.New("You do not have permission to change organization settings")

	ErrInviteEmailMismatch = errors.New("Invitation email does not match logged-in user")
	ErrInviteNoLongerValid = errors.New("Invitation is no longer valid")
)

// ValidateInvitePermission allows owner, moderator and manager.
func ValidateInvitePermission(role constants.Role) validation.Result {
	switch role {
	case constants.Owner, constants.Moderator, constants.Manager:
		return validation.Ok()
	}
	return validation.Fail(ErrNoInvitePermission)
}

// ValidateInviteApproval allows owner and moderator.
func ValidateInviteApproval(role constants.Role) validation.Result {
	switch role {
	case constants.Owner, constants.Moderator:
		return validation.Ok()
	}
	return validation.Fail(ErrNoApprovalPermission)
}

// ValidateOrganizationSettings allows owner and moderator.
func ValidateOrganizationSettings(role constants.Role) validation.Result {
	switch role {
	case constants.Owner, constants.Moderator:
		return validation.Ok()
	}
	return validation.Fail(ErrNoSettingsPermission)
}

// ValidateInviteAcceptance checks that userEmail may accept invite at now.
// Expiry is computed from CreatedAt so an invite past its window is invalid
// even if nobody has marked it expired yet.
func ValidateInviteAcceptance(invite *domain.Invite, userEmail string, now time.Time) validation.Result {
	if !strings.EqualFold(strings.TrimSpace(invite.Email), strings.TrimSpace(userEmail)) {
		return validation.Fail(ErrInviteEmailMismatch)
	}
	if invite.Status != constants.InvitePending {
		return validation.Fail(ErrInviteNoLongerValid)
	}
	return validation.ValidateInviteExpiration(invite.CreatedAt, now)
}
