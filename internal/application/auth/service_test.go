package auth

import (
	"context"
	"testing"

	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_EmptyMap(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoUserID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"display_name": "Test",
		"email":        "a@b.com",
	})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id":      "550e8400-e29b-41d4-a716-446655440000",
		"user_name":    "ghost",
		"display_name": "Simon Riley",
		"email":        "ghost@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "ghost", u.UserName)
	assert.Equal(t, "Simon Riley", u.DisplayName)
	assert.Equal(t, "ghost@example.com", u.Email)
}

func newService(t *testing.T) *Service {
	return &Service{DB: database.NewTestDB(t)}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, RegisterInput{
		UserName: " ghost ", Email: " Ghost@Example.COM ", Password: "secret1!", DisplayName: "simon   riley",
	})
	require.NoError(t, err)
	assert.Equal(t, "ghost", u.UserName)
	assert.Equal(t, "ghost@example.com", u.Email)
	assert.Equal(t, "Simon Riley", u.DisplayName)
	assert.NotEqual(t, "secret1!", u.PasswordHash)

	got, err := s.Login(ctx, "GHOST@example.com", "secret1!")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, got.UserID)

	_, err = s.Login(ctx, "ghost@example.com", "wrong1!!")
	assert.ErrorIs(t, err, ErrIncorrectPassword)
	_, err = s.Login(ctx, "soap@example.com", "secret1!")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)

	found, err := s.FindByEmailAndPassword(ctx, "ghost@example.com", "secret1!")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, found.UserID)

	byID, err := s.GetUser(ctx, u.UserID.String())
	require.NoError(t, err)
	assert.Equal(t, "ghost", byID.UserName)
	_, err = s.GetUser(ctx, "550e8400-e29b-41d4-a716-446655440000")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	shape := SessionShape(u)
	assert.Equal(t, u.UserID.String(), shape.UserID)
	assert.Equal(t, "Simon Riley", shape.DisplayName)
}

func TestRegister_Rejections(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	_, err := s.Register(ctx, RegisterInput{UserName: "ghost", Email: "ghost@example.com", Password: "secret1!", DisplayName: "Ghost"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"blank username", RegisterInput{UserName: "  ", Email: "a@b.co", Password: "secret1!", DisplayName: "A"}, ErrUserNameRequired},
		{"bad email", RegisterInput{UserName: "a", Email: "nope", Password: "secret1!", DisplayName: "A"}, ErrInvalidEmailFormat},
		{"weak password", RegisterInput{UserName: "a", Email: "a@b.co", Password: "password", DisplayName: "A"}, ErrInvalidPassword},
		{"blank display name", RegisterInput{UserName: "a", Email: "a@b.co", Password: "secret1!", DisplayName: ""}, ErrDisplayNameRequired},
		{"digits in display name", RegisterInput{UserName: "a", Email: "a@b.co", Password: "secret1!", DisplayName: "A1"}, ErrInvalidDisplayName},
		{"email taken", RegisterInput{UserName: "soap", Email: "GHOST@example.com", Password: "secret1!", DisplayName: "Soap"}, ErrEmailTaken},
		{"username taken", RegisterInput{UserName: "Ghost", Email: "other@example.com", Password: "secret1!", DisplayName: "Soap"}, ErrUserNameTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
