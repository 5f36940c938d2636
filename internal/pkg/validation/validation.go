package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"codmsocial-backend/internal/pkg/constants"
)

const (
	MinTagLength         = 2
	MaxTagLength         = 10
	MinOrgNameLength     = 3
	MaxOrgNameLength     = 50
	MaxDescriptionLength = 500

	// InviteLifetime is how long an invite stays acceptable after creation.
	InviteLifetime = 7 * 24 * time.Hour
)

// Tags are ASCII only. Unicode letters and digits are rejected on purpose.
var tagRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// fullnameRe: letters, spaces, hyphens, apostrophes.
var fullnameRe = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

// ValidateTagFormat checks length 2-10 and the [A-Za-z0-9_] charset.
func ValidateTagFormat(tag string) Result {
	n := utf8.RuneCountInString(tag)
	if n < MinTagLength || n > MaxTagLength {
		return Fail(ErrTagLength)
	}
	if !tagRe.MatchString(tag) {
		return Fail(ErrTagCharset)
	}
	return Ok()
}

// ValidateOrganizationName checks the trimmed name is 3-50 characters.
func ValidateOrganizationName(name string) Result {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinOrgNameLength || n > MaxOrgNameLength {
		return Fail(ErrOrgNameLength)
	}
	return Ok()
}

// ValidateDescription allows an empty description; otherwise at most 500 characters.
func ValidateDescription(desc string) Result {
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return Fail(ErrDescriptionLength)
	}
	return Ok()
}

// ValidateVisibility accepts public or private.
func ValidateVisibility(v string) Result {
	if !constants.IsValidVisibility(v) {
		return Fail(ErrInvalidVisibility)
	}
	return Ok()
}

// ValidateInviteEmail is a local@domain.tld shape check, not RFC 5322.
func ValidateInviteEmail(email string) Result {
	if !IsValidEmail(email) {
		return Fail(ErrInvalidEmail)
	}
	return Ok()
}

// ValidateInviteExpiration is valid while now <= createdAt + 7 days.
func ValidateInviteExpiration(createdAt, now time.Time) Result {
	if now.After(createdAt.Add(InviteLifetime)) {
		return Fail(ErrInviteExpired)
	}
	return Ok()
}

// OrganizationInput is the shape checked before an organization is created.
type OrganizationInput struct {
	Name        string
	Tag         string
	Description string
	Visibility  string
}

// ValidateOrganizationInput runs name, tag, description and visibility checks in order.
func ValidateOrganizationInput(in OrganizationInput) Result {
	for _, r := range []Result{
		ValidateOrganizationName(in.Name),
		ValidateTagFormat(in.Tag),
		ValidateDescription(in.Description),
		ValidateVisibility(in.Visibility),
	} {
		if !r.Valid {
			return r
		}
	}
	return Ok()
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least 8 characters with a letter, a digit and a
// special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidFullname(fullname string) bool {
	return fullname != "" && fullnameRe.MatchString(fullname)
}
