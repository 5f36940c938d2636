package members

import (
	membersvc "codmsocial-backend/internal/application/members"
	invpolicy "codmsocial-backend/internal/application/policies/invitations"
	"codmsocial-backend/internal/application/policies/roles"
	"codmsocial-backend/internal/interfaces/handlers/httperr"
	"codmsocial-backend/internal/middleware"
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/response"
	"codmsocial-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles membership handlers.
type Handlers struct {
	Service *membersvc.Service
}

// TargetRequest names the member an action applies to.
type TargetRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// ChangeRoleRequest is the PATCH /members/role body.
type ChangeRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,org_role"`
	Reason string `json:"reason" validate:"max=200"`
}

func orgParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("orgID"))
	return id, err == nil
}

func parseTarget(c *fiber.Ctx) (string, error) {
	var body TargetRequest
	if err := c.BodyParser(&body); err != nil {
		return "", validation.ErrInvalid
	}
	if err := validation.Struct(body); err != nil {
		return "", err
	}
	return body.UserID, nil
}

// ListMembers GET /api/v1/orgs/:orgID/members?status=
// Non-accepted lists need the approval gate.
func (h *Handlers) ListMembers(c *fiber.Ctx) error {
	orgID, _ := orgParam(c)
	status := constants.StatusAccepted
	if s := c.Query("status"); s != "" {
		parsed, ok := constants.ParseMembershipStatus(s)
		if !ok {
			return httperr.BadRequest(c, "Unknown membership status")
		}
		status = parsed
	}
	if status != constants.StatusAccepted {
		if r := invpolicy.ValidateInviteApproval(middleware.ActorRole(c)); !r.Valid {
			return httperr.Respond(c, r.Err())
		}
	}
	list, err := h.Service.ListMembers(c.UserContext(), orgID, status)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.List(c, "Members fetched successfully", list)
}

// MyMembership GET /api/v1/orgs/:orgID/members/me: the caller's membership
// in any status, with the permission set of its role once accepted.
func (h *Handlers) MyMembership(c *fiber.Ctx) error {
	orgID, ok := orgParam(c)
	if !ok {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	m, err := h.Service.GetMembership(c.UserContext(), orgID, middleware.UserID(c))
	if err != nil {
		return httperr.Respond(c, err)
	}
	var perms roles.PermissionSet
	if m.Status == constants.StatusAccepted {
		perms = roles.GetRolePermissions(m.Role)
	}
	return response.Success(c, "Membership fetched successfully", fiber.Map{
		"membership":  m,
		"permissions": perms,
	}, nil)
}

// Join POST /api/v1/orgs/:orgID/join
func (h *Handlers) Join(c *fiber.Ctx) error {
	orgID, ok := orgParam(c)
	if !ok {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	m, err := h.Service.RequestJoin(c.UserContext(), orgID, middleware.UserID(c))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.SuccessCreated(c, "Join request sent", m, nil)
}

// Withdraw POST /api/v1/orgs/:orgID/withdraw
func (h *Handlers) Withdraw(c *fiber.Ctx) error {
	orgID, ok := orgParam(c)
	if !ok {
		return httperr.BadRequest(c, "Invalid organization id")
	}
	if err := h.Service.WithdrawJoin(c.UserContext(), orgID, middleware.UserID(c)); err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Join request withdrawn", nil, nil)
}

// Leave POST /api/v1/orgs/:orgID/leave
func (h *Handlers) Leave(c *fiber.Ctx) error {
	orgID, _ := orgParam(c)
	if err := h.Service.Leave(c.UserContext(), orgID, middleware.UserID(c)); err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "You have left the organization", nil, nil)
}

// Approve POST /api/v1/orgs/:orgID/members/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	orgID, _ := orgParam(c)
	target, err := parseTarget(c)
	if err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	m, err := h.Service.ApproveJoin(c.UserContext(), middleware.ActorRole(c), orgID, target)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Join request approved", m, nil)
}

// Reject POST /api/v1/orgs/:orgID/members/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	orgID, _ := orgParam(c)
	target, err := parseTarget(c)
	if err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if err := h.Service.RejectJoin(c.UserContext(), middleware.ActorRole(c), orgID, target); err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Join request rejected", nil, nil)
}

// ChangeRole PATCH /api/v1/orgs/:orgID/members/role
func (h *Handlers) ChangeRole(c *fiber.Ctx) error {
	orgID, _ := orgParam(c)
	var body ChangeRoleRequest
	if err := c.BodyParser(&body); err != nil {
		return httperr.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(body); err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	m, err := h.Service.ChangeRole(c.UserContext(), membersvc.ChangeRoleInput{
		OrgID:    orgID,
		ActorID:  middleware.UserID(c),
		TargetID: body.UserID,
		NewRole:  constants.Role(body.Role),
		Reason:   body.Reason,
	})
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Role updated successfully", m, nil)
}

// Remove DELETE /api/v1/orgs/:orgID/members
func (h *Handlers) Remove(c *fiber.Ctx) error {
	orgID, _ := orgParam(c)
	target, err := parseTarget(c)
	if err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if err := h.Service.RemoveMember(c.UserContext(), orgID, middleware.UserID(c), target); err != nil {
		return httperr.Respond(c, err)
	}
	return response.Success(c, "Member removed successfully", nil, nil)
}

// History GET /api/v1/orgs/:orgID/members/:userID/history
func (h *Handlers) History(c *fiber.Ctx) error {
	orgID, _ := orgParam(c)
	history, err := h.Service.RoleHistory(c.UserContext(), orgID, c.Params("userID"))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return response.List(c, "Role history fetched successfully", history)
}
