package invitations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"codmsocial-backend/internal/application/emails"
	invpolicy "codmsocial-backend/internal/application/policies/invitations"
	"codmsocial-backend/internal/application/policies/membership"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const MaxMessageLength = 500

var (
	ErrSelfInvite           = errors.New("You cannot invite yourself")
	ErrInviteAlreadyPending = errors.New("A pending invitation already exists for this email")
	ErrAlreadyMember        = errors.New("This user is already a member of the organization")
	ErrMessageTooLong       = errors.New("Invitation message must be at most 500 characters")
	ErrTokenRequired        = errors.New("Invitation token is required")
	ErrInviteNotPending     = errors.New("Only pending invitations can be cancelled")
)

type Service struct {
	DB            *gorm.DB
	EmailSender   emails.Sender
	InviteBaseURL string
	Now           func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateInviteInput struct {
	OrgID        uuid.UUID
	InviterID    string
	InviterRole  constants.Role
	InviterEmail string
	Email        string
	Message      string
}

// CreateInvite stores a pending invite and emails the link. Email failures are
// logged and do not fail the call.
func (s *Service) CreateInvite(ctx context.Context, in CreateInviteInput) (*domain.Invite, error) {
	if r := invpolicy.ValidateInvitePermission(in.InviterRole); !r.Valid {
		return nil, r.Err()
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if r := validation.ValidateInviteEmail(email); !r.Valid {
		return nil, r.Err()
	}
	if strings.EqualFold(email, strings.TrimSpace(in.InviterEmail)) {
		return nil, ErrSelfInvite
	}
	if utf8.RuneCountInString(in.Message) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	token, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("invite token: %w", err)
	}
	now := s.now()
	inv := &domain.Invite{
		OrgID:       in.OrgID,
		Email:       email,
		InviterID:   in.InviterID,
		InviterRole: in.InviterRole,
		Message:     in.Message,
		Token:       token,
		Status:      constants.InvitePending,
		ExpiresAt:   now.Add(validation.InviteLifetime),
		CreatedAt:   now,
	}
	var org domain.Organization
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ?", in.OrgID).First(&org).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrgNotFound
			}
			return err
		}
		if org.IsFull() {
			return domain.ErrOrgFull
		}
		if err := expireStale(tx, in.OrgID, now); err != nil {
			return err
		}
		var pending int64
		if err := tx.Model(&domain.Invite{}).
			Where("org_id = ? AND email = ? AND status = ?", in.OrgID, email, constants.InvitePending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrInviteAlreadyPending
		}
		var members int64
		if err := tx.Model(&domain.Membership{}).
			Joins("JOIN users ON CAST(users.user_id AS TEXT) = memberships.user_id").
			Where("memberships.org_id = ? AND memberships.status = ? AND LOWER(users.email) = ?", in.OrgID, constants.StatusAccepted, email).
			Count(&members).Error; err != nil {
			return err
		}
		if members > 0 {
			return ErrAlreadyMember
		}
		return tx.Create(inv).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("org_id", in.OrgID.String()).Str("invite_id", inv.InviteID.String()).Str("inviter_id", in.InviterID).Msg("invite created")
	if s.EmailSender != nil {
		link := s.InviteLink(inv.Token)
		if err := s.EmailSender.SendInvite(ctx, email, link, org.Name, in.InviterRole.String(), in.Message); err != nil {
			log.Warn().Err(err).Str("invite_id", inv.InviteID.String()).Msg("invite email failed")
		}
	}
	return inv, nil
}

// InviteLink builds the frontend URL carrying token.
func (s *Service) InviteLink(token string) string {
	return strings.TrimRight(s.InviteBaseURL, "/") + "/invite?token=" + url.QueryEscape(token)
}

// expireStale marks pending invites of orgID older than the invite lifetime as expired.
func expireStale(tx *gorm.DB, orgID uuid.UUID, now time.Time) error {
	return tx.Model(&domain.Invite{}).
		Where("org_id = ? AND status = ? AND created_at < ?", orgID, constants.InvitePending, now.Add(-validation.InviteLifetime)).
		Update("status", constants.InviteExpired).Error
}

type AcceptInviteResult struct {
	OrgID   string         `json:"org_id"`
	OrgName string         `json:"org_name"`
	OrgSlug string         `json:"org_slug"`
	Role    constants.Role `json:"role"`
}

// AcceptInvite turns the invite into an accepted membership for userID. An
// expired invite is marked expired and refused.
func (s *Service) AcceptInvite(ctx context.Context, token, userID, userEmail string) (*AcceptInviteResult, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	inv, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if r := invpolicy.ValidateInviteAcceptance(inv, userEmail, now); !r.Valid {
		if errors.Is(r.Err(), validation.ErrInviteExpired) {
			s.markExpired(ctx, inv)
		}
		return nil, r.Err()
	}

	var result *AcceptInviteResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Invite{}).
			Where("invite_id = ? AND status = ?", inv.InviteID, constants.InvitePending).
			Update("status", constants.InviteAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invpolicy.ErrInviteNoLongerValid
		}

		var org domain.Organization
		if err := tx.Where("org_id = ?", inv.OrgID).First(&org).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrgNotFound
			}
			return err
		}
		if org.IsFull() {
			return domain.ErrOrgFull
		}

		invitedAt := inv.CreatedAt
		var m domain.Membership
		err := tx.Where("org_id = ? AND user_id = ?", inv.OrgID, userID).First(&m).Error
		switch {
		case err == nil && m.Status == constants.StatusAccepted:
			return ErrAlreadyMember
		case err == nil:
			// an open join request is satisfied by the invite
			if r := membership.ValidateStatusTransition(m.Status, constants.StatusAccepted); !r.Valid {
				return r.Err()
			}
			m.Status = constants.StatusAccepted
			m.InvitedBy = &inv.InviterID
			m.InvitedAt = &invitedAt
			m.JoinedAt = &now
			if err := tx.Save(&m).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			m = domain.Membership{
				OrgID:     inv.OrgID,
				UserID:    userID,
				Role:      constants.DefaultMemberRole,
				Status:    constants.StatusAccepted,
				InvitedBy: &inv.InviterID,
				InvitedAt: &invitedAt,
				JoinedAt:  &now,
			}
			if err := tx.Create(&m).Error; err != nil {
				if domain.IsDuplicateKey(err) {
					return ErrAlreadyMember
				}
				return err
			}
		default:
			return err
		}
		if err := domain.ClaimSeat(tx, org.OrgID); err != nil {
			return err
		}
		result = &AcceptInviteResult{OrgID: org.OrgID.String(), OrgName: org.Name, OrgSlug: org.Slug, Role: m.Role}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("org_id", result.OrgID).Str("user_id", userID).Str("invite_id", inv.InviteID.String()).Msg("invite accepted")
	return result, nil
}

func (s *Service) findByToken(ctx context.Context, token string) (*domain.Invite, error) {
	var inv domain.Invite
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Service) markExpired(ctx context.Context, inv *domain.Invite) {
	if inv.Status != constants.InvitePending {
		return
	}
	if err := s.DB.WithContext(ctx).Model(inv).Update("status", constants.InviteExpired).Error; err != nil {
		log.Warn().Err(err).Str("invite_id", inv.InviteID.String()).Msg("mark invite expired failed")
		return
	}
	inv.Status = constants.InviteExpired
}

// CancelInvite cancels a pending invite of orgID.
func (s *Service) CancelInvite(ctx context.Context, actorRole constants.Role, orgID, inviteID uuid.UUID) (*domain.Invite, error) {
	if r := invpolicy.ValidateInvitePermission(actorRole); !r.Valid {
		return nil, r.Err()
	}
	var inv domain.Invite
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invite_id = ? AND org_id = ?", inviteID, orgID).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrInviteNotFound
			}
			return err
		}
		if inv.Status != constants.InvitePending {
			return ErrInviteNotPending
		}
		inv.Status = constants.InviteCancelled
		return tx.Model(&inv).Update("status", constants.InviteCancelled).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvites returns orgID's invites, newest first. Stale pending invites are
// reported as expired.
func (s *Service) ListInvites(ctx context.Context, orgID uuid.UUID, status string) ([]domain.Invite, error) {
	db := s.DB.WithContext(ctx)
	if err := expireStale(db, orgID, s.now()); err != nil {
		return nil, err
	}
	q := db.Where("org_id = ?", orgID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []domain.Invite
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

type CheckTokenResult struct {
	Valid       bool           `json:"valid"`
	Reason      string         `json:"reason,omitempty"`
	Email       string         `json:"email"`
	OrgID       string         `json:"org_id"`
	OrgName     string         `json:"org_name"`
	OrgTag      string         `json:"org_tag"`
	InviterRole constants.Role `json:"inviter_role"`
	Message     string         `json:"message,omitempty"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// CheckToken previews an invite for the public accept page.
func (s *Service) CheckToken(ctx context.Context, token string) (*CheckTokenResult, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	inv, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	out := &CheckTokenResult{
		Valid:       true,
		Email:       inv.Email,
		OrgID:       inv.OrgID.String(),
		InviterRole: inv.InviterRole,
		Message:     inv.Message,
		ExpiresAt:   inv.ExpiresAt,
	}
	if inv.Status != constants.InvitePending {
		out.Valid, out.Reason = false, invpolicy.ErrInviteNoLongerValid.Error()
	} else if r := validation.ValidateInviteExpiration(inv.CreatedAt, s.now()); !r.Valid {
		s.markExpired(ctx, inv)
		out.Valid, out.Reason = false, r.Reason
	}

	var org domain.Organization
	if err := s.DB.WithContext(ctx).Where("org_id = ?", inv.OrgID).First(&org).Error; err == nil {
		out.OrgName = org.Name
		out.OrgTag = org.Tag
	}
	return out, nil
}

// tokenSource feeds invite tokens.
var tokenSource io.Reader = rand.Reader

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(tokenSource, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
