package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	authsvc "codmsocial-backend/internal/application/auth"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/infrastructure/database"
	"codmsocial-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserFinder for tests: returns configured user or error.
type fakeUserFinder struct {
	user *domain.User
	err  error
}

func (f *fakeUserFinder) FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.Email == email && password == "password123" {
		return f.user, nil
	}
	if f.user != nil && f.user.Email == email {
		return nil, authsvc.ErrIncorrectPassword
	}
	return nil, authsvc.ErrInvalidEmail
}

func setupAuthHandlers(t *testing.T, finder authsvc.UserFinder) (*Handlers, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		UserFinder: finder,
		Rdb:        rdb,
		Config:     middleware.SessionConfig{},
	}
	return h, rdb
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*httpResponse, error) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest("POST", path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		return nil, err
	}
	b, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	_ = json.Unmarshal(b, &out)
	return &httpResponse{code: resp.StatusCode, body: out, cookies: resp.Header.Values("Set-Cookie")}, nil
}

type httpResponse struct {
	code    int
	body    map[string]interface{}
	cookies []string
}

func TestLogin_EmptyBody(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{user: &domain.User{}})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(t, app, "/login", nil)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.code)
}

func TestLogin_MissingCredentials(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(t, app, "/login", map[string]string{"email": "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.code)
}

func TestLogin_InvalidEmail(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(t, app, "/login", map[string]string{"email": "nonexistent@example.com", "password": "any"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.code)
}

func TestLogin_IncorrectPassword(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{user: &domain.User{UserID: uuid.New(), Email: "test@example.com", DisplayName: "Test User"}})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(t, app, "/login", map[string]string{"email": "test@example.com", "password": "wrong"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.code)
	assert.Equal(t, "Incorrect Password", resp.body["error"].(map[string]interface{})["message"])
}

func TestLogin_Success(t *testing.T) {
	uid := uuid.New()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: &domain.User{UserID: uid, UserName: "ghost", Email: "test@example.com", DisplayName: "Test User"}})
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/login", h.Login)

	resp, err := postJSON(t, app, "/login", map[string]string{"email": "test@example.com", "password": "password123"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.code)
	assert.Equal(t, "Login successful", resp.body["message"])
	data, _ := resp.body["data"].(map[string]interface{})
	user, _ := data["user"].(map[string]interface{})
	require.NotNil(t, user)
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "Test User", user["display_name"])
	assert.Equal(t, uid.String(), user["user_id"])

	require.NotEmpty(t, resp.cookies)
	assert.Contains(t, resp.cookies[0], "codm.sid=")

	members, err := rdb.SMembers(context.Background(), "user_sessions:"+uid.String()).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)
	exists, err := rdb.Exists(context.Background(), middleware.SessionRedisPrefix+members[0]).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists, "session is persisted")
}

func TestLogin_NilUserFinder(t *testing.T) {
	h, _ := setupAuthHandlers(t, nil)
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(t, app, "/login", map[string]string{"email": "a@b.com", "password": "pass"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.code)
}

func TestRegister(t *testing.T) {
	h, rdb := setupAuthHandlers(t, nil)
	h.Registrar = &authsvc.Service{DB: database.NewTestDB(t)}
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/register", h.Register)

	body := map[string]string{"user_name": "ghost", "email": "ghost@example.com", "password": "secret1!", "display_name": "Simon Riley"}
	resp, err := postJSON(t, app, "/register", body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.code)
	assert.NotEmpty(t, resp.cookies)
	user := resp.body["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "ghost", user["user_name"])
	assert.NotContains(t, user, "password_hash")

	resp, err = postJSON(t, app, "/register", body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.code)

	body["email"] = "soap@example.com"
	body["user_name"] = "soap"
	body["password"] = "short"
	resp, err = postJSON(t, app, "/register", body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.code)
}

func TestMe_NoSession(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Get("/me", h.Me)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_WithSessionUserInLocals(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":      "550e8400-e29b-41d4-a716-446655440000",
			"user_name":    "ghost",
			"display_name": "Test",
			"email":        "test@example.com",
		})
		return h.Me(c)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "Authenticated", out["message"])
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "ghost", user["user_name"])
}

func TestLogout_NoSession(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Delete("/logout", h.Logout)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Values("Set-Cookie"))
}

func TestLogout_ClearsSession(t *testing.T) {
	uid := uuid.New()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: &domain.User{UserID: uid, Email: "test@example.com"}})
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/login", h.Login)
	app.Delete("/logout", h.Logout)

	resp, err := postJSON(t, app, "/login", map[string]string{"email": "test@example.com", "password": "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.cookies)
	members, err := rdb.SMembers(context.Background(), "user_sessions:"+uid.String()).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)
	sid := members[0]

	req := httptest.NewRequest("DELETE", "/logout", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"=s:"+sid)
	out, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, out.StatusCode)

	n, err := rdb.Exists(context.Background(), middleware.SessionRedisPrefix+sid).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	left, err := rdb.SCard(context.Background(), "user_sessions:"+uid.String()).Result()
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestLogoutAll(t *testing.T) {
	uid := uuid.New()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: &domain.User{UserID: uid, Email: "test@example.com"}})
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/login", h.Login)
	app.Delete("/sessions", h.LogoutAll)

	for i := 0; i < 2; i++ {
		resp, err := postJSON(t, app, "/login", map[string]string{"email": "test@example.com", "password": "password123"})
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.code)
	}
	sids, err := rdb.SMembers(context.Background(), middleware.UserSessionsPrefix+uid.String()).Result()
	require.NoError(t, err)
	require.Len(t, sids, 2)

	out, err := app.Test(httptest.NewRequest("DELETE", "/sessions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, out.StatusCode)

	req := httptest.NewRequest("DELETE", "/sessions", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"=s:"+sids[0])
	out, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, out.StatusCode)

	for _, sid := range sids {
		n, err := rdb.Exists(context.Background(), middleware.SessionRedisPrefix+sid).Result()
		require.NoError(t, err)
		assert.Zero(t, n, "session %s survives", sid)
	}
	n, err := rdb.Exists(context.Background(), middleware.UserSessionsPrefix+uid.String()).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
