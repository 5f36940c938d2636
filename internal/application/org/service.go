package org

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"codmsocial-backend/internal/application/policies/invitations"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTagTaken                = errors.New("Tag is already in use")
	ErrNoUpdateFields          = errors.New("No update fields provided")
	ErrInvalidMaxMembers       = errors.New("Max members must be at least 1")
	ErrMaxMembersBelowCount    = errors.New("Max members cannot be lower than the current member count")
	ErrNotOwner                = errors.New("Only the owner can transfer ownership")
	ErrTransferToSelf          = errors.New("You already own this organization")
	ErrTransferTargetNotMember = errors.New("New owner must be an accepted member of the organization")
)

const fallbackMaxMembers = 50

// Service encapsulates organization operations.
type Service struct {
	DB                *gorm.DB
	DefaultMaxMembers int
	Now               func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateOrganizationInput is the create-org request body.
type CreateOrganizationInput struct {
	Name        string              `json:"name" validate:"required"`
	Tag         string              `json:"tag" validate:"required"`
	Description string              `json:"description"`
	Visibility  string              `json:"visibility"`
	Region      string              `json:"region" validate:"max=32"`
	Game        string              `json:"game" validate:"max=32"`
	MaxMembers  int                 `json:"max_members"`
	Settings    *domain.OrgSettings `json:"settings"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name, tag string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		s = strings.ToLower(tag)
	}
	return s
}

// TagKey is the case-folded tag stored under the unique index.
func TagKey(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// CreateOrganization creates the organization and the creator's accepted owner
// membership in one transaction.
func (s *Service) CreateOrganization(ctx context.Context, ownerID string, in CreateOrganizationInput) (*domain.Organization, error) {
	if in.Visibility == "" {
		in.Visibility = constants.VisibilityPublic
	}
	in.Tag = strings.TrimSpace(in.Tag)
	if r := validation.ValidateOrganizationInput(validation.OrganizationInput{
		Name:        in.Name,
		Tag:         in.Tag,
		Description: in.Description,
		Visibility:  in.Visibility,
	}); !r.Valid {
		return nil, r.Err()
	}

	maxMembers := in.MaxMembers
	if maxMembers == 0 {
		maxMembers = s.DefaultMaxMembers
	}
	if maxMembers == 0 {
		maxMembers = fallbackMaxMembers
	}
	if maxMembers < 1 {
		return nil, ErrInvalidMaxMembers
	}

	settings := domain.OrgSettings{AllowJoinRequests: true}
	if in.Settings != nil {
		settings = *in.Settings
	}

	now := s.now()
	org := &domain.Organization{
		Name:        strings.TrimSpace(in.Name),
		Tag:         in.Tag,
		TagKey:      TagKey(in.Tag),
		Description: in.Description,
		OwnerID:     ownerID,
		Visibility:  in.Visibility,
		MemberCount: 1,
		MaxMembers:  maxMembers,
		Region:      in.Region,
		Game:        in.Game,
		Settings:    datatypes.NewJSONType(settings),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Unscoped().Model(&domain.Organization{}).Where("tag_key = ?", org.TagKey).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrTagTaken
		}
		slug, err := uniqueSlug(tx, slugify(org.Name, org.Tag))
		if err != nil {
			return err
		}
		org.Slug = slug
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		owner := &domain.Membership{
			OrgID:    org.OrgID,
			UserID:   ownerID,
			Role:     constants.Owner,
			Status:   constants.StatusAccepted,
			JoinedAt: &now,
		}
		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("org_id", org.OrgID.String()).Str("owner_id", ownerID).Str("tag", org.Tag).Msg("organization created")
	return org, nil
}

// uniqueSlug appends -2, -3, ... until base is free. Soft-deleted rows still
// hold their slug.
func uniqueSlug(tx *gorm.DB, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		var n int64
		if err := tx.Unscoped().Model(&domain.Organization{}).Where("slug = ?", candidate).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// GetOrganization returns the organization by id.
func (s *Service) GetOrganization(ctx context.Context, orgID uuid.UUID) (*domain.Organization, error) {
	return s.find(ctx, "org_id = ?", orgID)
}

// GetBySlug returns the organization by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return s.find(ctx, "slug = ?", strings.ToLower(slug))
}

func (s *Service) find(ctx context.Context, query string, arg interface{}) (*domain.Organization, error) {
	var org domain.Organization
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrgNotFound
		}
		return nil, err
	}
	return &org, nil
}

// ListFilter narrows ListPublic. Empty fields match everything.
type ListFilter struct {
	Game   string
	Region string
}

// ListPublic returns public organizations, largest first.
func (s *Service) ListPublic(ctx context.Context, f ListFilter) ([]domain.Organization, error) {
	q := s.DB.WithContext(ctx).Where("visibility = ?", constants.VisibilityPublic)
	if f.Game != "" {
		q = q.Where("game = ?", f.Game)
	}
	if f.Region != "" {
		q = q.Where("region = ?", f.Region)
	}
	var orgs []domain.Organization
	if err := q.Order("member_count DESC").Order("created_at ASC").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// UpdateSettingsInput holds the optional settings fields. Nil means unchanged.
type UpdateSettingsInput struct {
	Description *string             `json:"description"`
	Visibility  *string             `json:"visibility"`
	MaxMembers  *int                `json:"max_members"`
	Region      *string             `json:"region"`
	Game        *string             `json:"game"`
	Settings    *domain.OrgSettings `json:"settings"`
}

func (in UpdateSettingsInput) empty() bool {
	return in.Description == nil && in.Visibility == nil && in.MaxMembers == nil &&
		in.Region == nil && in.Game == nil && in.Settings == nil
}

// UpdateSettings applies in for an actor holding actorRole in the organization.
func (s *Service) UpdateSettings(ctx context.Context, actorRole constants.Role, orgID uuid.UUID, in UpdateSettingsInput) (*domain.Organization, error) {
	if r := invitations.ValidateOrganizationSettings(actorRole); !r.Valid {
		return nil, r.Err()
	}
	if in.empty() {
		return nil, ErrNoUpdateFields
	}
	if in.Description != nil {
		if r := validation.ValidateDescription(*in.Description); !r.Valid {
			return nil, r.Err()
		}
	}
	if in.Visibility != nil {
		if r := validation.ValidateVisibility(*in.Visibility); !r.Valid {
			return nil, r.Err()
		}
	}
	if in.MaxMembers != nil && *in.MaxMembers < 1 {
		return nil, ErrInvalidMaxMembers
	}

	var org domain.Organization
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ?", orgID).First(&org).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrgNotFound
			}
			return err
		}
		if in.MaxMembers != nil {
			if *in.MaxMembers < org.MemberCount {
				return ErrMaxMembersBelowCount
			}
			org.MaxMembers = *in.MaxMembers
		}
		if in.Description != nil {
			org.Description = *in.Description
		}
		if in.Visibility != nil {
			org.Visibility = *in.Visibility
		}
		if in.Region != nil {
			org.Region = *in.Region
		}
		if in.Game != nil {
			org.Game = *in.Game
		}
		if in.Settings != nil {
			org.Settings = datatypes.NewJSONType(*in.Settings)
		}
		return tx.Save(&org).Error
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// TransferOwnership hands the owner role to newOwnerID and demotes the current
// owner to moderator. Both role changes are recorded in history.
func (s *Service) TransferOwnership(ctx context.Context, orgID uuid.UUID, currentOwnerID, newOwnerID string) (*domain.Organization, error) {
	if currentOwnerID == newOwnerID {
		return nil, ErrTransferToSelf
	}
	now := s.now()
	var org domain.Organization
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ?", orgID).First(&org).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrgNotFound
			}
			return err
		}
		if org.OwnerID != currentOwnerID {
			return ErrNotOwner
		}
		var from, to domain.Membership
		if err := tx.Where("org_id = ? AND user_id = ? AND status = ?", orgID, currentOwnerID, constants.StatusAccepted).First(&from).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotOwner
			}
			return err
		}
		if err := tx.Where("org_id = ? AND user_id = ? AND status = ?", orgID, newOwnerID, constants.StatusAccepted).First(&to).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransferTargetNotMember
			}
			return err
		}

		changes := []domain.RoleChange{
			{MembershipID: to.MembershipID, PreviousRole: to.Role, NewRole: constants.Owner, ChangedBy: currentOwnerID, Reason: "ownership transfer", ChangedAt: now},
			{MembershipID: from.MembershipID, PreviousRole: from.Role, NewRole: constants.Moderator, ChangedBy: currentOwnerID, Reason: "ownership transfer", ChangedAt: now},
		}
		if err := tx.Model(&to).Update("role", constants.Owner).Error; err != nil {
			return err
		}
		if err := tx.Model(&from).Update("role", constants.Moderator).Error; err != nil {
			return err
		}
		if err := tx.Create(&changes).Error; err != nil {
			return err
		}
		org.OwnerID = newOwnerID
		return tx.Model(&org).Update("owner_id", newOwnerID).Error
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("org_id", orgID.String()).Str("from", currentOwnerID).Str("to", newOwnerID).Msg("ownership transferred")
	return &org, nil
}
