// Package httperr maps service and policy errors to HTTP responses.
package httperr

import (
	"errors"

	authsvc "codmsocial-backend/internal/application/auth"
	invsvc "codmsocial-backend/internal/application/invitations"
	membersvc "codmsocial-backend/internal/application/members"
	orgsvc "codmsocial-backend/internal/application/org"
	invpolicy "codmsocial-backend/internal/application/policies/invitations"
	"codmsocial-backend/internal/application/policies/membership"
	"codmsocial-backend/internal/application/presence"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/middleware"
	"codmsocial-backend/internal/pkg/response"
	"codmsocial-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var notFound = []error{
	domain.ErrOrgNotFound,
	domain.ErrMembershipNotFound,
	domain.ErrInviteNotFound,
	domain.ErrUserNotFound,
}

var unauthorized = []error{
	authsvc.ErrInvalidEmail,
	authsvc.ErrIncorrectPassword,
	authsvc.ErrNotAuthenticated,
}

// Permission gates and role/removal authority checks.
var forbidden = []error{
	invpolicy.ErrNoInvitePermission,
	invpolicy.ErrNoApprovalPermission,
	invpolicy.ErrNoSettingsPermission,
	invpolicy.ErrInviteEmailMismatch,
	membership.ErrCannotChangeOwnRole,
	membership.ErrOwnerRoleImmutable,
	membership.ErrModeratorCannotTouchHigherRoles,
	membership.ErrNoPermissionToChangeRoles,
	membership.ErrCannotRemoveOwner,
	membership.ErrModeratorCannotRemoveModerators,
	membership.ErrManagerCanOnlyRemovePlayers,
	membership.ErrNoPermissionToRemoveMembers,
	orgsvc.ErrNotOwner,
	membersvc.ErrNotAMember,
	membersvc.ErrJoinRequestsClosed,
}

var conflict = []error{
	orgsvc.ErrTagTaken,
	membersvc.ErrAlreadyMember,
	membersvc.ErrJoinRequestPending,
	invsvc.ErrInviteAlreadyPending,
	invsvc.ErrAlreadyMember,
	authsvc.ErrEmailTaken,
	authsvc.ErrUserNameTaken,
	domain.ErrOrgFull,
}

var badRequest = []error{
	validation.ErrInvalid,
	validation.ErrTagLength,
	validation.ErrTagCharset,
	validation.ErrOrgNameLength,
	validation.ErrDescriptionLength,
	validation.ErrInvalidVisibility,
	validation.ErrInvalidEmail,
	validation.ErrInviteExpired,
	membership.ErrUnknownRole,
	membership.ErrUnknownStatus,
	membership.ErrInvalidStatusTransition,
	membership.ErrStatusUnchanged,
	orgsvc.ErrNoUpdateFields,
	orgsvc.ErrInvalidMaxMembers,
	orgsvc.ErrMaxMembersBelowCount,
	orgsvc.ErrTransferToSelf,
	orgsvc.ErrTransferTargetNotMember,
	membersvc.ErrUseOwnershipTransfer,
	membersvc.ErrRoleUnchanged,
	membersvc.ErrUseLeave,
	membersvc.ErrOwnerCannotLeave,
	invsvc.ErrSelfInvite,
	invsvc.ErrMessageTooLong,
	invsvc.ErrTokenRequired,
	invsvc.ErrInviteNotPending,
	invpolicy.ErrInviteNoLongerValid,
	presence.ErrInvalidState,
	presence.ErrUserRequired,
	presence.ErrChatRequired,
	authsvc.ErrEmailPasswordRequired,
	authsvc.ErrUserNameRequired,
	authsvc.ErrInvalidEmailFormat,
	authsvc.ErrInvalidPassword,
	authsvc.ErrDisplayNameRequired,
	authsvc.ErrInvalidDisplayName,
}

func matches(err error, list []error) bool {
	for _, e := range list {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Status returns the HTTP status for err. Unknown errors are 500.
func Status(err error) int {
	switch {
	case matches(err, notFound):
		return fiber.StatusNotFound
	case matches(err, unauthorized):
		return fiber.StatusUnauthorized
	case matches(err, forbidden):
		return fiber.StatusForbidden
	case matches(err, conflict):
		return fiber.StatusConflict
	case matches(err, badRequest):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// Respond writes err in the standard error envelope. Messages of unknown
// errors are not exposed.
func Respond(c *fiber.Ctx, err error) error {
	code := Status(err)
	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("request failed")
		return response.Error(c, "Internal Server Error", code, nil)
	}
	return response.Error(c, err.Error(), code, nil)
}

// BadRequest writes a 400 with message.
func BadRequest(c *fiber.Ctx, message string) error {
	return response.Error(c, message, fiber.StatusBadRequest, nil)
}
