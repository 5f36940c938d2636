package members

import (
	"context"
	"errors"
	"sort"
	"time"

	invpolicy "codmsocial-backend/internal/application/policies/invitations"
	"codmsocial-backend/internal/application/policies/membership"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrJoinRequestsClosed   = errors.New("This organization is not accepting join requests")
	ErrAlreadyMember        = errors.New("You are already a member of this organization")
	ErrJoinRequestPending   = errors.New("You already have a pending join request")
	ErrNotAMember           = errors.New("You are not a member of this organization")
	ErrUseOwnershipTransfer = errors.New("Use ownership transfer to make someone the owner")
	ErrRoleUnchanged        = errors.New("Member already has this role")
	ErrUseLeave             = errors.New("You cannot remove yourself; leave the organization instead")
	ErrOwnerCannotLeave     = errors.New("The owner must transfer ownership before leaving")
)

// Service manages memberships: join requests, role changes, removal and leaving.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func loadOrg(tx *gorm.DB, orgID uuid.UUID) (*domain.Organization, error) {
	var org domain.Organization
	if err := tx.Where("org_id = ?", orgID).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrgNotFound
		}
		return nil, err
	}
	return &org, nil
}

// findMembership returns the live (not soft-deleted) membership of userID in
// orgID. A non-empty status narrows the lookup.
func findMembership(tx *gorm.DB, orgID uuid.UUID, userID string, status constants.MembershipStatus) (*domain.Membership, error) {
	q := tx.Where("org_id = ? AND user_id = ?", orgID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var m domain.Membership
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

// RequestJoin files a pending join request for userID.
func (s *Service) RequestJoin(ctx context.Context, orgID uuid.UUID, userID string) (*domain.Membership, error) {
	var m *domain.Membership
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := loadOrg(tx, orgID)
		if err != nil {
			return err
		}
		if org.Visibility != constants.VisibilityPublic || !org.Settings.Data().AllowJoinRequests {
			return ErrJoinRequestsClosed
		}
		existing, err := findMembership(tx, orgID, userID, "")
		switch {
		case err == nil && existing.Status == constants.StatusPending:
			return ErrJoinRequestPending
		case err == nil:
			return ErrAlreadyMember
		case !errors.Is(err, domain.ErrMembershipNotFound):
			return err
		}
		if org.IsFull() {
			return domain.ErrOrgFull
		}
		m = &domain.Membership{
			OrgID:  orgID,
			UserID: userID,
			Role:   constants.DefaultMemberRole,
			Status: constants.StatusPending,
		}
		if err := tx.Create(m).Error; err != nil {
			if domain.IsDuplicateKey(err) {
				return ErrAlreadyMember
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ApproveJoin accepts a pending request. actorRole must pass the approval gate.
func (s *Service) ApproveJoin(ctx context.Context, actorRole constants.Role, orgID uuid.UUID, userID string) (*domain.Membership, error) {
	if r := invpolicy.ValidateInviteApproval(actorRole); !r.Valid {
		return nil, r.Err()
	}
	now := s.now()
	var m *domain.Membership
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = findMembership(tx, orgID, userID, ""); err != nil {
			return err
		}
		if r := membership.ValidateStatusTransition(m.Status, constants.StatusAccepted); !r.Valid {
			return r.Err()
		}
		org, err := loadOrg(tx, orgID)
		if err != nil {
			return err
		}
		if org.IsFull() {
			return domain.ErrOrgFull
		}
		m.Status = constants.StatusAccepted
		m.JoinedAt = &now
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		return domain.ClaimSeat(tx, orgID)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RejectJoin rejects a pending request and soft-deletes it.
func (s *Service) RejectJoin(ctx context.Context, actorRole constants.Role, orgID uuid.UUID, userID string) error {
	if r := invpolicy.ValidateInviteApproval(actorRole); !r.Valid {
		return r.Err()
	}
	return s.closeRequest(ctx, orgID, userID, constants.StatusRejected)
}

// WithdrawJoin lets the applicant cancel their own pending request.
func (s *Service) WithdrawJoin(ctx context.Context, orgID uuid.UUID, userID string) error {
	return s.closeRequest(ctx, orgID, userID, constants.StatusWithdrawn)
}

func (s *Service) closeRequest(ctx context.Context, orgID uuid.UUID, userID string, to constants.MembershipStatus) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findMembership(tx, orgID, userID, "")
		if err != nil {
			return err
		}
		if r := membership.ValidateStatusTransition(m.Status, to); !r.Valid {
			return r.Err()
		}
		if err := tx.Model(m).Update("status", to).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
}

// ChangeRoleInput identifies the actor, the target and the requested role.
type ChangeRoleInput struct {
	OrgID    uuid.UUID
	ActorID  string
	TargetID string
	NewRole  constants.Role
	Reason   string
}

// ChangeRole changes the target's role after running the role-change rules
// with both user ids, then appends a history entry.
func (s *Service) ChangeRole(ctx context.Context, in ChangeRoleInput) (*domain.Membership, error) {
	now := s.now()
	var target *domain.Membership
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := findMembership(tx, in.OrgID, in.ActorID, constants.StatusAccepted)
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return ErrNotAMember
		}
		if err != nil {
			return err
		}
		if target, err = findMembership(tx, in.OrgID, in.TargetID, constants.StatusAccepted); err != nil {
			return err
		}
		if r := membership.ValidateRoleChange(actor.Role, target.Role, in.NewRole, in.TargetID, in.ActorID); !r.Valid {
			return r.Err()
		}
		if in.NewRole == constants.Owner {
			return ErrUseOwnershipTransfer
		}
		if in.NewRole == target.Role {
			return ErrRoleUnchanged
		}
		change := domain.RoleChange{
			MembershipID: target.MembershipID,
			PreviousRole: target.Role,
			NewRole:      in.NewRole,
			ChangedBy:    in.ActorID,
			Reason:       in.Reason,
			ChangedAt:    now,
		}
		if err := tx.Model(target).Update("role", in.NewRole).Error; err != nil {
			return err
		}
		target.Role = in.NewRole
		return tx.Create(&change).Error
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("org_id", in.OrgID.String()).Str("actor_id", in.ActorID).Str("target_id", in.TargetID).
		Str("role", in.NewRole.String()).Msg("member role changed")
	return target, nil
}

// RemoveMember removes targetID on behalf of actorID. Removing yourself goes
// through Leave.
func (s *Service) RemoveMember(ctx context.Context, orgID uuid.UUID, actorID, targetID string) error {
	if actorID == targetID {
		return ErrUseLeave
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := findMembership(tx, orgID, actorID, constants.StatusAccepted)
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return ErrNotAMember
		}
		if err != nil {
			return err
		}
		target, err := findMembership(tx, orgID, targetID, constants.StatusAccepted)
		if err != nil {
			return err
		}
		if r := membership.ValidateMemberRemoval(actor.Role, target.Role); !r.Valid {
			return r.Err()
		}
		if err := tx.Delete(target).Error; err != nil {
			return err
		}
		return domain.ReleaseSeat(tx, orgID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("org_id", orgID.String()).Str("actor_id", actorID).Str("target_id", targetID).Msg("member removed")
	return nil
}

// Leave removes the caller's own accepted membership.
func (s *Service) Leave(ctx context.Context, orgID uuid.UUID, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findMembership(tx, orgID, userID, constants.StatusAccepted)
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return ErrNotAMember
		}
		if err != nil {
			return err
		}
		if m.Role == constants.Owner {
			return ErrOwnerCannotLeave
		}
		if err := tx.Delete(m).Error; err != nil {
			return err
		}
		return domain.ReleaseSeat(tx, orgID)
	})
}

// ListMembers returns memberships in status (accepted when empty), highest
// role first and then by join order.
func (s *Service) ListMembers(ctx context.Context, orgID uuid.UUID, status constants.MembershipStatus) ([]domain.Membership, error) {
	if status == "" {
		status = constants.StatusAccepted
	}
	var list []domain.Membership
	if err := s.DB.WithContext(ctx).
		Where("org_id = ? AND status = ?", orgID, status).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Role.Rank() > list[j].Role.Rank()
	})
	return list, nil
}

// GetMembership returns userID's live membership in orgID, whatever its status.
func (s *Service) GetMembership(ctx context.Context, orgID uuid.UUID, userID string) (*domain.Membership, error) {
	return findMembership(s.DB.WithContext(ctx), orgID, userID, "")
}

// RoleHistory returns the role changes of userID's membership, oldest first.
func (s *Service) RoleHistory(ctx context.Context, orgID uuid.UUID, userID string) ([]domain.RoleChange, error) {
	m, err := findMembership(s.DB.WithContext(ctx), orgID, userID, "")
	if err != nil {
		return nil, err
	}
	var history []domain.RoleChange
	if err := s.DB.WithContext(ctx).
		Where("membership_id = ?", m.MembershipID).
		Order("changed_at ASC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
