package constants

// MembershipStatus is the lifecycle state of a membership record.
type MembershipStatus string

const (
	StatusPending   MembershipStatus = "pending"
	StatusAccepted  MembershipStatus = "accepted"
	StatusRejected  MembershipStatus = "rejected"
	StatusWithdrawn MembershipStatus = "withdrawn"
)

// ParseMembershipStatus rejects anything outside the four known statuses.
func ParseMembershipStatus(s string) (MembershipStatus, bool) {
	switch st := MembershipStatus(s); st {
	case StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn:
		return st, true
	}
	return "", false
}

// InviteStatus values stored on invites.
const (
	InvitePending   = "pending"
	InviteAccepted  = "accepted"
	InviteCancelled = "cancelled"
	InviteExpired   = "expired"
)

// Organization visibility.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// IsValidVisibility returns true for public or private.
func IsValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}
