package membership

import (
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/validation"
)

// ValidateMemberRemoval decides whether removerRole may remove a member holding
// targetRole. Leaving an organization is a separate flow and never comes here.
// Nobody removes the owner; ownership must be transferred first.
func ValidateMemberRemoval(removerRole, targetRole constants.Role) validation.Result {
	if !constants.IsValidRole(removerRole) {
		return validation.Fail(ErrNoPermissionToRemoveMembers)
	}
	if !constants.IsValidRole(targetRole) {
		return validation.Fail(ErrUnknownRole)
	}
	if targetRole == constants.Owner {
		return validation.Fail(ErrCannotRemoveOwner)
	}

	switch removerRole {
	case constants.Owner:
		return validation.Ok()
	case constants.Moderator:
		if isStaff(targetRole) {
			return validation.Fail(ErrModeratorCannotRemoveModerators)
		}
		return validation.Ok()
	case constants.Manager:
		if targetRole == constants.Pro || targetRole == constants.Ranked {
			return validation.Ok()
		}
		return validation.Fail(ErrManagerCanOnlyRemovePlayers)
	}
	return validation.Fail(ErrNoPermissionToRemoveMembers)
}
