package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrUserNameRequired      = errors.New("Username is required and must be a non-empty string")
	ErrInvalidEmailFormat    = errors.New("Invalid email format")
	ErrInvalidPassword       = errors.New("Password must be at least 8 characters and include a letter, a number and a special character")
	ErrDisplayNameRequired   = errors.New("Display name is required and must be a non-empty string")
	ErrInvalidDisplayName    = errors.New("Display name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	ErrEmailTaken            = errors.New("Email already registered")
	ErrUserNameTaken         = errors.New("Username already registered")
)
