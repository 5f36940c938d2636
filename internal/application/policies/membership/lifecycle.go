package membership

import (
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/validation"
)

// Only pending memberships move, and only forward.
var allowedTransitions = map[constants.MembershipStatus][]constants.MembershipStatus{
	constants.StatusPending: {constants.StatusAccepted, constants.StatusRejected, constants.StatusWithdrawn},
}

// ValidateStatusTransition gates a membership status change.
func ValidateStatusTransition(from, to constants.MembershipStatus) validation.Result {
	if _, ok := constants.ParseMembershipStatus(string(from)); !ok {
		return validation.Fail(ErrUnknownStatus)
	}
	if _, ok := constants.ParseMembershipStatus(string(to)); !ok {
		return validation.Fail(ErrUnknownStatus)
	}
	if from == to {
		return validation.Fail(ErrStatusUnchanged)
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return validation.Ok()
		}
	}
	return validation.Fail(ErrInvalidStatusTransition)
}
