package invitations

import (
	invsvc "codmsocial-backend/internal/application/invitations"
	"codmsocial-backend/internal/interfaces/handlers/httperr"
	"codmsocial-backend/internal/middleware"
	"codmsocial-backend/internal/pkg/response"
	"codmsocial-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles invitation handlers.
type Handlers struct {
	Service *invsvc.Service
}

// CreateInviteRequest is the POST /orgs/:orgID/invites body.
type CreateInviteRequest struct {
	Email   string `json:"email" validate:"required"`
	Message string `json:"message"`
}

// TokenRequest carries an invite token.
type TokenRequest struct {
	Token string `json:"token"`
}

// SendInvite POST /api/v1/orgs/:orgID/invites
func (h *Handlers) SendInvite(c *fiber.Ctx) error {
	orgID, err := uuid.Parse(c.Params("orgID"))
	if err != nil {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	var body CreateInviteRequest
	if err := c.BodyParser(&body); err != nil {
		return httperr.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(body); err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	inv, err := h.Service.CreateInvite(c.UserContext(), invsvc.CreateInviteInput{
		OrgID:        orgID,
		InviterID:    middleware.UserID(c),
		InviterRole:  middleware.ActorRole(c),
		InviterEmail: middleware.UserEmail(c),
		Email:        body.Email,
		Message:      body.Message,
	})
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.SuccessCreated(c, "Invitation sent successfully", inv, nil)
}

// ListInvites GET /api/v1/orgs/:orgID/invites?status=
func (h *Handlers) ListInvites(c *fiber.Ctx) error {
	orgID, err := uuid.Parse(c.Params("orgID"))
	if err != nil {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	list, err := h.Service.ListInvites(c.UserContext(), orgID, c.Query("status"))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.List(c, "Invitations fetched successfully", list)
}

// CancelInvite PATCH /api/v1/orgs/:orgID/invites/:inviteID/cancel
func (h *Handlers) CancelInvite(c *fiber.Ctx) error {
	orgID, err := uuid.Parse(c.Params("orgID"))
	if err != nil {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	inviteID, err := uuid.Parse(c.Params("inviteID"))
	if err != nil {
		return httperr.BadRequest(c, "Invalid invitation id")
	}
	inv, err := h.Service.CancelInvite(c.UserContext(), middleware.ActorRole(c), orgID, inviteID)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Invitation cancelled", inv, nil)
}

// AcceptInvite POST /api/v1/invitations/accept
func (h *Handlers) AcceptInvite(c *fiber.Ctx) error {
	var body TokenRequest
	if err := c.BodyParser(&body); err != nil {
		return httperr.BadRequest(c, invsvc.ErrTokenRequired.Error())
	}
	res, err := h.Service.AcceptInvite(c.UserContext(), body.Token, middleware.UserID(c), middleware.UserEmail(c))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Invitation accepted", res, nil)
}

// CheckToken POST /api/v1/invitations/public/check-token
func (h *Handlers) CheckToken(c *fiber.Ctx) error {
	var body TokenRequest
	if err := c.BodyParser(&body); err != nil {
		return httperr.BadRequest(c, invsvc.ErrTokenRequired.Error())
	}
	res, err := h.Service.CheckToken(c.UserContext(), body.Token)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Invitation checked", res, nil)
}
