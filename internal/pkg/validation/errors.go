package validation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalid = errors.New("Invalid input")

	ErrTagLength  = fmt.Errorf("Tag must be between %d and %d characters", MinTagLength, MaxTagLength)
	ErrTagCharset = errors.New("Tag may only contain letters A-Z, digits and underscores")

	ErrOrgNameLength     = fmt.Errorf("Organization name must be between %d and %d characters", MinOrgNameLength, MaxOrgNameLength)
	ErrDescriptionLength = fmt.Errorf("Description must be at most %d characters", MaxDescriptionLength)
	ErrInvalidVisibility = errors.New("Visibility must be public or private")

	ErrInvalidEmail  = errors.New("Invalid email format")
	ErrInviteExpired = errors.New("Invitation has expired")
)
