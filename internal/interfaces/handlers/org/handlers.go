package org

import (
	"context"

	orgsvc "codmsocial-backend/internal/application/org"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/interfaces/handlers/httperr"
	"codmsocial-backend/internal/middleware"
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/response"
	"codmsocial-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MembershipFinder looks up a caller's membership for private-org checks.
type MembershipFinder interface {
	GetMembership(ctx context.Context, orgID uuid.UUID, userID string) (*domain.Membership, error)
}

// Handlers bundles org handlers with dependencies.
type Handlers struct {
	Service *orgsvc.Service
	Members MembershipFinder
}

// CreateOrg POST /api/v1/orgs
func (h *Handlers) CreateOrg(c *fiber.Ctx) error {
	var body orgsvc.CreateOrganizationInput
	if err := c.BodyParser(&body); err != nil {
		return httperr.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(body); err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	org, err := h.Service.CreateOrganization(c.UserContext(), middleware.UserID(c), body)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.SuccessCreated(c, "Organization created successfully", org, nil)
}

// ListOrgs GET /api/v1/orgs?game=&region=
func (h *Handlers) ListOrgs(c *fiber.Ctx) error {
	orgs, err := h.Service.ListPublic(c.UserContext(), orgsvc.ListFilter{
		Game:   c.Query("game"),
		Region: c.Query("region"),
	})
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.List(c, "Organizations fetched successfully", orgs)
}

// GetOrg GET /api/v1/orgs/:orgID
func (h *Handlers) GetOrg(c *fiber.Ctx) error {
	orgID, err := uuid.Parse(c.Params("orgID"))
	if err != nil {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	org, err := h.Service.GetOrganization(c.UserContext(), orgID)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return h.respondVisible(c, org)
}

// GetOrgBySlug GET /api/v1/orgs/slug/:slug
func (h *Handlers) GetOrgBySlug(c *fiber.Ctx) error {
	org, err := h.Service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return h.respondVisible(c, org)
}

// respondVisible hides private organizations from non-members.
func (h *Handlers) respondVisible(c *fiber.Ctx, org *domain.Organization) error {
	if org.Visibility == constants.VisibilityPrivate {
		if !h.isMember(c, org.OrgID) {
			return httperr.Respond(c, domain.ErrOrgNotFound)
		}
	}
	return response.Success(c, "Organization fetched successfully", org, nil)
}

func (h *Handlers) isMember(c *fiber.Ctx, orgID uuid.UUID) bool {
	userID := middleware.UserID(c)
	if userID == "" || h.Members == nil {
		return false
	}
	m, err := h.Members.GetMembership(c.UserContext(), orgID, userID)
	return err == nil && m.Status == constants.StatusAccepted
}

// UpdateSettings PATCH /api/v1/orgs/:orgID/settings
func (h *Handlers) UpdateSettings(c *fiber.Ctx) error {
	orgID, err := uuid.Parse(c.Params("orgID"))
	if err != nil {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	var body orgsvc.UpdateSettingsInput
	if err := c.BodyParser(&body); err != nil {
		return httperr.BadRequest(c, "No update fields provided")
	}
	org, err := h.Service.UpdateSettings(c.UserContext(), middleware.ActorRole(c), orgID, body)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Organization updated successfully", org, nil)
}

// TransferOwnershipRequest body.
type TransferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id" validate:"required"`
}

// TransferOwnership POST /api/v1/orgs/:orgID/transfer-ownership
func (h *Handlers) TransferOwnership(c *fiber.Ctx) error {
	orgID, err := uuid.Parse(c.Params("orgID"))
	if err != nil {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	var body TransferOwnershipRequest
	if err := c.BodyParser(&body); err != nil {
		return httperr.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(body); err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	org, err := h.Service.TransferOwnership(c.UserContext(), orgID, middleware.UserID(c), body.NewOwnerID)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Ownership transferred successfully", org, nil)
}
