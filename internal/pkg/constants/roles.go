package constants

import "strings"

// Role is an organization membership role. The set is closed.
type Role string

const (
	Owner     Role = "owner"
	Moderator Role = "moderator"
	Manager   Role = "manager"
	Pro       Role = "pro"
	Ranked    Role = "ranked"
)

// ValidRoles lists every role, highest authority first.
var ValidRoles = []Role{Owner, Moderator, Manager, Pro, Ranked}

// DefaultMemberRole is assigned to members joining through a request or invite.
const DefaultMemberRole = Ranked

var roleRank = map[Role]int{
	Owner:     4,
	Moderator: 3,
	Manager:   2,
	Pro:       1,
	Ranked:    1,
}

// ParseRole converts untyped input (request bodies, stored rows) into a Role.
// Unknown values are rejected; surrounding whitespace and case are ignored.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return "", false
	}
	return r, true
}

// IsValidRole returns true if role is one of the enumerated roles.
func IsValidRole(role Role) bool {
	_, ok := roleRank[role]
	return ok
}

// Rank returns the authority level of role; unknown roles rank 0.
func (r Role) Rank() int {
	return roleRank[r]
}

// Outranks reports whether r has strictly more authority than other.
func (r Role) Outranks(other Role) bool {
	return r.Rank() > other.Rank()
}

func (r Role) String() string {
	return string(r)
}
