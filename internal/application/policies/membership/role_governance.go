package membership

import (
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/validation"
)

// ValidateRoleChange decides whether changerRole may move a member from
// currentRole to newRole. Rules run in order and the first failure wins:
//
//  1. nobody changes their own role (checked whenever both ids are given)
//  2. an owner may change any role except the owner's
//  3. a moderator may only move members among manager, pro and ranked
//  4. nobody else may change roles
//
// Unknown roles fail closed.
func ValidateRoleChange(changerRole, currentRole, newRole constants.Role, targetUserID, changerUserID string) validation.Result {
	if targetUserID != "" && changerUserID != "" && targetUserID == changerUserID {
		return validation.Fail(ErrCannotChangeOwnRole)
	}
	if !constants.IsValidRole(changerRole) {
		return validation.Fail(ErrNoPermissionToChangeRoles)
	}
	if !constants.IsValidRole(currentRole) || !constants.IsValidRole(newRole) {
		return validation.Fail(ErrUnknownRole)
	}

	switch changerRole {
	case constants.Owner:
		if currentRole == constants.Owner {
			return validation.Fail(ErrOwnerRoleImmutable)
		}
		return validation.Ok()
	case constants.Moderator:
		if isStaff(currentRole) || isStaff(newRole) {
			return validation.Fail(ErrModeratorCannotTouchHigherRoles)
		}
		return validation.Ok()
	}
	return validation.Fail(ErrNoPermissionToChangeRoles)
}

func isStaff(r constants.Role) bool {
	return r == constants.Owner || r == constants.Moderator
}
