package auth

import (
	"context"
	"errors"

	authsvc "codmsocial-backend/internal/application/auth"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/interfaces/handlers/httperr"
	"codmsocial-backend/internal/middleware"
	"codmsocial-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*domain.User, error)
}

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Registrar  Registrar
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// LoginRequest body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register POST /api/v1/auth/register: create the account and log it in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	if h.Registrar == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(c, "Invalid request body")
	}
	user, err := h.Registrar.Register(c.UserContext(), req)
	if err != nil {
		return httperr.Respond(c, err)
	}
	if err := h.startSession(c, user); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Account created successfully", fiber.Map{"user": authsvc.SessionShape(user)}, nil)
}

// Login POST /api/v1/auth/login: authenticate, create session, SAdd user_sessions:user_id, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return httperr.Respond(c, err)
	}
	if err := h.startSession(c, user); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": authsvc.SessionShape(user)}, nil)
}

// startSession issues a fresh session id for user and sets the cookie.
func (h *Handlers) startSession(c *fiber.Ctx, user *domain.User) error {
	sessionID := middleware.RegenerateSessionID(c)
	shape := authsvc.SessionShape(user)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:      shape.UserID,
		UserName:    shape.UserName,
		DisplayName: shape.DisplayName,
		Email:       shape.Email,
	})
	if err := h.Rdb.SAdd(c.UserContext(), middleware.UserSessionsPrefix+shape.UserID, sessionID).Err(); err != nil {
		return err
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
	return nil
}

// Me GET /api/v1/auth/me: return current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	sessionUser := middleware.GetUser(c)
	user, err := authsvc.VerifyUser(sessionUser)
	if err != nil {
		if errors.Is(err, authsvc.ErrNotAuthenticated) {
			log.Debug().Str("path", "/auth/me").
				Bool("session_id_present", middleware.GetSessionID(c) != "").
				Msg("auth/me: no user in session")
		}
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout: SRem user_sessions:user_id, Del session key, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if userID := middleware.UserID(c); userID != "" && sessionID != "" {
		_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+userID, sessionID).Err()
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	h.clearCookie(c)
	return response.Success(c, "Logged out successfully", nil, nil)
}

// LogoutAll DELETE /api/v1/auth/sessions: end every session of the caller.
func (h *Handlers) LogoutAll(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthorized(c, "Not authenticated")
	}
	n, err := middleware.DestroyUserSessions(c.UserContext(), h.Rdb, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("destroy sessions failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	middleware.DestroySession(c)
	h.clearCookie(c)
	return response.Success(c, "Logged out of all sessions", fiber.Map{"sessions": n}, nil)
}

func (h *Handlers) clearCookie(c *fiber.Ctx) {
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)
}
