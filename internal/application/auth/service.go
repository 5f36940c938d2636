package auth

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// RegisterInput is the /auth/register body.
type RegisterInput struct {
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// UserFinder abstracts user lookup by email+password (for production GORM or test doubles).
type UserFinder interface {
	FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error)
}

// Service is the local identity provider.
type Service struct {
	DB *gorm.DB
}

func (s *Service) FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error) {
	return s.Login(ctx, email, password)
}

// Register creates a user. The returned model never carries a usable password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		return nil, ErrUserNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmailFormat
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		return nil, ErrDisplayNameRequired
	}
	if !validation.IsValidFullname(displayName) {
		return nil, ErrInvalidDisplayName
	}

	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&domain.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}
	if err := db.Model(&domain.User{}).Where("LOWER(user_name) = ?", strings.ToLower(userName)).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrUserNameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  normalizeDisplayName(displayName),
	}
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// Login finds user by email and verifies password.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SessionShape is what gets written to the session for u.
func SessionShape(u *domain.User) SessionUserShape {
	return SessionUserShape{
		UserID:      u.UserID.String(),
		UserName:    u.UserName,
		DisplayName: u.DisplayName,
		Email:       u.Email,
	}
}

// VerifyUser validates session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:      userID,
		UserName:    str(m["user_name"]),
		DisplayName: str(m["display_name"]),
		Email:       str(m["email"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// normalizeDisplayName collapses whitespace and title-cases each word.
func normalizeDisplayName(s string) string {
	var b strings.Builder
	capitalize := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
