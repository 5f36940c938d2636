package org

import (
	"context"
	"testing"
	"time"

	invpolicy "codmsocial-backend/internal/application/policies/invitations"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/infrastructure/database"
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *gorm.DB) {
	db := database.NewTestDB(t)
	return &Service{DB: db, DefaultMaxMembers: 50, Now: func() time.Time { return fixedNow }}, db
}

func createOrg(t *testing.T, s *Service, owner, name, tag string) *domain.Organization {
	t.Helper()
	org, err := s.CreateOrganization(context.Background(), owner, CreateOrganizationInput{Name: name, Tag: tag})
	require.NoError(t, err)
	return org
}

func addMember(t *testing.T, db *gorm.DB, orgID uuid.UUID, userID string, role constants.Role) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Membership{OrgID: orgID, UserID: userID, Role: role, Status: constants.StatusAccepted}).Error)
	require.NoError(t, db.Model(&domain.Organization{}).Where("org_id = ?", orgID).UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error)
}

func TestCreateOrganization(t *testing.T) {
	s, db := newService(t)
	org := createOrg(t, s, "owner-1", "Night Owls", "NOWL")

	assert.Equal(t, "night-owls", org.Slug)
	assert.Equal(t, "nowl", org.TagKey)
	assert.Equal(t, 1, org.MemberCount)
	assert.Equal(t, 50, org.MaxMembers)
	assert.Equal(t, constants.VisibilityPublic, org.Visibility)
	assert.True(t, org.Settings.Data().AllowJoinRequests)

	var m domain.Membership
	require.NoError(t, db.Where("org_id = ? AND user_id = ?", org.OrgID, "owner-1").First(&m).Error)
	assert.Equal(t, constants.Owner, m.Role)
	assert.Equal(t, constants.StatusAccepted, m.Status)
	require.NotNil(t, m.JoinedAt)
}

func TestCreateOrganization_TagUniqueIgnoringCase(t *testing.T) {
	s, db := newService(t)
	createOrg(t, s, "owner-1", "Night Owls", "NOWL")

	_, err := s.CreateOrganization(context.Background(), "owner-2", CreateOrganizationInput{Name: "Other", Tag: "nowl"})
	assert.ErrorIs(t, err, ErrTagTaken)

	var n int64
	db.Model(&domain.Membership{}).Where("user_id = ?", "owner-2").Count(&n)
	assert.Zero(t, n, "failed create must not leave a membership behind")
}

func TestCreateOrganization_SlugCollision(t *testing.T) {
	s, _ := newService(t)
	a := createOrg(t, s, "o1", "Night Owls", "NO1")
	b := createOrg(t, s, "o2", "Night  Owls!", "NO2")
	c := createOrg(t, s, "o3", "night owls", "NO3")
	assert.Equal(t, "night-owls", a.Slug)
	assert.Equal(t, "night-owls-2", b.Slug)
	assert.Equal(t, "night-owls-3", c.Slug)
}

func TestCreateOrganization_Validation(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.CreateOrganization(ctx, "o", CreateOrganizationInput{Name: "ab", Tag: "AB"})
	assert.ErrorIs(t, err, validation.ErrOrgNameLength)

	_, err = s.CreateOrganization(ctx, "o", CreateOrganizationInput{Name: "Valid", Tag: "ÁGUIA"})
	assert.ErrorIs(t, err, validation.ErrTagCharset)

	_, err = s.CreateOrganization(ctx, "o", CreateOrganizationInput{Name: "Valid", Tag: "VAL", Visibility: "hidden"})
	assert.ErrorIs(t, err, validation.ErrInvalidVisibility)

	_, err = s.CreateOrganization(ctx, "o", CreateOrganizationInput{Name: "Valid", Tag: "VAL", MaxMembers: -1})
	assert.ErrorIs(t, err, ErrInvalidMaxMembers)
}

func TestGetAndList(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()
	a := createOrg(t, s, "o1", "Alpha Squad", "ALPHA")
	b := createOrg(t, s, "o2", "Bravo Squad", "BRAVO")
	_, err := s.CreateOrganization(ctx, "o3", CreateOrganizationInput{Name: "Hidden", Tag: "HID", Visibility: constants.VisibilityPrivate})
	require.NoError(t, err)
	addMember(t, db, b.OrgID, "u1", constants.Ranked)

	got, err := s.GetOrganization(ctx, a.OrgID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha Squad", got.Name)

	got, err = s.GetBySlug(ctx, "BRAVO-SQUAD")
	require.NoError(t, err)
	assert.Equal(t, b.OrgID, got.OrgID)

	_, err = s.GetOrganization(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrOrgNotFound)

	list, err := s.ListPublic(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.OrgID, list[0].OrgID, "larger org first")
}

func TestUpdateSettings(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()
	org := createOrg(t, s, "o1", "Alpha Squad", "ALPHA")
	addMember(t, db, org.OrgID, "u1", constants.Ranked)
	addMember(t, db, org.OrgID, "u2", constants.Ranked)

	desc := "Top 100 clan"
	vis := constants.VisibilityPrivate
	updated, err := s.UpdateSettings(ctx, constants.Moderator, org.OrgID, UpdateSettingsInput{
		Description: &desc,
		Visibility:  &vis,
		Settings:    &domain.OrgSettings{AllowJoinRequests: false, Language: "en"},
	})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, vis, updated.Visibility)
	assert.False(t, updated.Settings.Data().AllowJoinRequests)

	_, err = s.UpdateSettings(ctx, constants.Manager, org.OrgID, UpdateSettingsInput{Description: &desc})
	assert.ErrorIs(t, err, invpolicy.ErrNoSettingsPermission)

	_, err = s.UpdateSettings(ctx, constants.Owner, org.OrgID, UpdateSettingsInput{})
	assert.ErrorIs(t, err, ErrNoUpdateFields)

	two := 2
	_, err = s.UpdateSettings(ctx, constants.Owner, org.OrgID, UpdateSettingsInput{MaxMembers: &two})
	assert.ErrorIs(t, err, ErrMaxMembersBelowCount)

	three := 3
	updated, err = s.UpdateSettings(ctx, constants.Owner, org.OrgID, UpdateSettingsInput{MaxMembers: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxMembers)
	assert.True(t, updated.IsFull())
}

func TestTransferOwnership(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()
	org := createOrg(t, s, "o1", "Alpha Squad", "ALPHA")
	addMember(t, db, org.OrgID, "u1", constants.Manager)

	_, err := s.TransferOwnership(ctx, org.OrgID, "u1", "o1")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = s.TransferOwnership(ctx, org.OrgID, "o1", "stranger")
	assert.ErrorIs(t, err, ErrTransferTargetNotMember)
	_, err = s.TransferOwnership(ctx, org.OrgID, "o1", "o1")
	assert.ErrorIs(t, err, ErrTransferToSelf)

	updated, err := s.TransferOwnership(ctx, org.OrgID, "o1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", updated.OwnerID)

	var oldOwner, newOwner domain.Membership
	require.NoError(t, db.Preload("RoleHistory").Where("org_id = ? AND user_id = ?", org.OrgID, "o1").First(&oldOwner).Error)
	require.NoError(t, db.Preload("RoleHistory").Where("org_id = ? AND user_id = ?", org.OrgID, "u1").First(&newOwner).Error)
	assert.Equal(t, constants.Moderator, oldOwner.Role)
	assert.Equal(t, constants.Owner, newOwner.Role)
	require.Len(t, newOwner.RoleHistory, 1)
	assert.Equal(t, constants.Manager, newOwner.RoleHistory[0].PreviousRole)
	require.Len(t, oldOwner.RoleHistory, 1)
	assert.Equal(t, constants.Owner, oldOwner.RoleHistory[0].PreviousRole)

	var owners int64
	db.Model(&domain.Membership{}).Where("org_id = ? AND role = ?", org.OrgID, constants.Owner).Count(&owners)
	assert.Equal(t, int64(1), owners)
}
