package presence

import (
	"strings"

	presencesvc "codmsocial-backend/internal/application/presence"
	"codmsocial-backend/internal/interfaces/handlers/httperr"
	"codmsocial-backend/internal/middleware"
	"codmsocial-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maxBatch caps GET /presence?ids=.
const maxBatch = 100

// Handlers bundles presence and typing handlers.
type Handlers struct {
	Service *presencesvc.Service
}

// HeartbeatRequest is the POST /presence/heartbeat body. The connection id may
// also come from the X-Connection-Id header.
type HeartbeatRequest struct {
	State        string `json:"state"`
	ConnectionID string `json:"connection_id"`
}

func connectionID(c *fiber.Ctx, body string) string {
	if body != "" {
		return body
	}
	return c.Get("X-Connection-Id")
}

// Heartbeat POST /api/v1/presence/heartbeat
func (h *Handlers) Heartbeat(c *fiber.Ctx) error {
	var body HeartbeatRequest
	if err := c.BodyParser(&body); err != nil {
		return httperr.BadRequest(c, "Invalid request body")
	}
	if body.State == "" {
		body.State = string(presencesvc.Online)
	}
	p, err := h.Service.Heartbeat(c.UserContext(), middleware.UserID(c), presencesvc.State(body.State), connectionID(c, body.ConnectionID))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Presence updated", p, nil)
}

// Disconnect POST /api/v1/presence/disconnect
func (h *Handlers) Disconnect(c *fiber.Ctx) error {
	var body HeartbeatRequest
	_ = c.BodyParser(&body)
	p, err := h.Service.Disconnect(c.UserContext(), middleware.UserID(c), connectionID(c, body.ConnectionID))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Presence updated", p, nil)
}

// GetPresence GET /api/v1/presence/:userID
func (h *Handlers) GetPresence(c *fiber.Ctx) error {
	p, err := h.Service.Get(c.UserContext(), c.Params("userID"))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Presence fetched", p, nil)
}

// ListPresence GET /api/v1/presence?ids=a,b,c
func (h *Handlers) ListPresence(c *fiber.Ctx) error {
	var ids []string
	for _, id := range strings.Split(c.Query("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return httperr.BadRequest(c, "ids is required")
	}
	if len(ids) > maxBatch {
		return httperr.BadRequest(c, "At most 100 ids per request")
	}
	list, err := h.Service.GetMany(c.UserContext(), ids)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.List(c, "Presence fetched", list)
}

// StartTyping POST /api/v1/chats/:chatID/typing
func (h *Handlers) StartTyping(c *fiber.Ctx) error {
	if err := h.Service.SetTyping(c.UserContext(), c.Params("chatID"), middleware.UserID(c)); err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Typing", nil, nil)
}

// StopTyping DELETE /api/v1/chats/:chatID/typing
func (h *Handlers) StopTyping(c *fiber.Ctx) error {
	if err := h.Service.ClearTyping(c.UserContext(), c.Params("chatID"), middleware.UserID(c)); err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Stopped typing", nil, nil)
}

// Typing GET /api/v1/chats/:chatID/typing
func (h *Handlers) Typing(c *fiber.Ctx) error {
	users, err := h.Service.Typing(c.UserContext(), c.Params("chatID"))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Typing users fetched", fiber.Map{"user_ids": users}, nil)
}
