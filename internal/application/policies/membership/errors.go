package membership

import "errors"

var (
	ErrUnknownRole   = errors.New("Unknown role")
	ErrUnknownStatus = errors.New("Unknown membership status")

	ErrCannotChangeOwnRole             = errors.New("You cannot change your own role")
	ErrOwnerRoleImmutable              = errors.New("The owner role cannot be changed this way; use ownership transfer")
	ErrModeratorCannotTouchHigherRoles = errors.New("Moderators cannot assign or change owner or moderator roles")
	ErrNoPermissionToChangeRoles       = errors.New("You do not have permission to change roles")

	ErrCannotRemoveOwner               = errors.New("The owner cannot be removed from the organization")
	ErrModeratorCannotRemoveModerators = errors.New("Moderators cannot remove owners or moderators")
	ErrManagerCanOnlyRemovePlayers     = errors.New("Managers can only remove pro or ranked members")
	ErrNoPermissionToRemoveMembers     = errors.New("You do not have permission to remove members")

	ErrInvalidStatusTransition = errors.New("Invalid membership status transition")
	ErrStatusUnchanged         = errors.New("Membership already has this status")
)
