package members

import (
	"context"
	"testing"
	"time"

	invpolicy "codmsocial-backend/internal/application/policies/invitations"
	"codmsocial-backend/internal/application/policies/membership"
	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/infrastructure/database"
	"codmsocial-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	svc *Service
	db  *gorm.DB
	org *domain.Organization
}

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// newFixture creates an org owned by "owner" with the given extra accepted members.
func newFixture(t *testing.T, maxMembers int, members map[string]constants.Role) *fixture {
	t.Helper()
	db := database.NewTestDB(t)
	org := &domain.Organization{
		Name: "Night Owls", Tag: "NOWL", TagKey: "nowl", Slug: "night-owls",
		OwnerID: "owner", Visibility: constants.VisibilityPublic, MaxMembers: maxMembers,
		Settings: datatypes.NewJSONType(domain.OrgSettings{AllowJoinRequests: true}),
	}
	require.NoError(t, db.Create(org).Error)
	all := map[string]constants.Role{"owner": constants.Owner}
	for id, r := range members {
		all[id] = r
	}
	for id, r := range all {
		require.NoError(t, db.Create(&domain.Membership{OrgID: org.OrgID, UserID: id, Role: r, Status: constants.StatusAccepted}).Error)
	}
	require.NoError(t, db.Model(org).UpdateColumn("member_count", len(all)).Error)
	return &fixture{svc: &Service{DB: db, Now: func() time.Time { return testNow }}, db: db, org: org}
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()
	var o domain.Organization
	require.NoError(t, f.db.First(&o, "org_id = ?", f.org.OrgID).Error)
	return o.MemberCount
}

func TestJoinRequestLifecycle(t *testing.T) {
	f := newFixture(t, 10, map[string]constants.Role{"mod": constants.Moderator, "mgr": constants.Manager})
	ctx := context.Background()

	m, err := f.svc.RequestJoin(ctx, f.org.OrgID, "applicant")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPending, m.Status)
	assert.Equal(t, constants.Ranked, m.Role)
	assert.Equal(t, 3, f.count(t), "pending requests do not count")

	_, err = f.svc.RequestJoin(ctx, f.org.OrgID, "applicant")
	assert.ErrorIs(t, err, ErrJoinRequestPending)
	_, err = f.svc.RequestJoin(ctx, f.org.OrgID, "mod")
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = f.svc.ApproveJoin(ctx, constants.Manager, f.org.OrgID, "applicant")
	assert.ErrorIs(t, err, invpolicy.ErrNoApprovalPermission)

	m, err = f.svc.ApproveJoin(ctx, constants.Moderator, f.org.OrgID, "applicant")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusAccepted, m.Status)
	require.NotNil(t, m.JoinedAt)
	assert.True(t, m.JoinedAt.Equal(testNow))
	assert.Equal(t, 4, f.count(t))

	_, err = f.svc.ApproveJoin(ctx, constants.Owner, f.org.OrgID, "applicant")
	assert.ErrorIs(t, err, membership.ErrStatusUnchanged)
}

func TestRejectAndWithdraw(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()

	_, err := f.svc.RequestJoin(ctx, f.org.OrgID, "a")
	require.NoError(t, err)
	require.NoError(t, f.svc.RejectJoin(ctx, constants.Owner, f.org.OrgID, "a"))

	_, err = f.svc.GetMembership(ctx, f.org.OrgID, "a")
	assert.ErrorIs(t, err, domain.ErrMembershipNotFound)

	var rejected domain.Membership
	require.NoError(t, f.db.Unscoped().Where("org_id = ? AND user_id = ?", f.org.OrgID, "a").First(&rejected).Error)
	assert.Equal(t, constants.StatusRejected, rejected.Status)
	assert.True(t, rejected.DeletedAt.Valid)

	// a rejected applicant may ask again
	_, err = f.svc.RequestJoin(ctx, f.org.OrgID, "a")
	require.NoError(t, err)
	require.NoError(t, f.svc.WithdrawJoin(ctx, f.org.OrgID, "a"))
	assert.ErrorIs(t, f.svc.WithdrawJoin(ctx, f.org.OrgID, "a"), domain.ErrMembershipNotFound)

	assert.ErrorIs(t, f.svc.WithdrawJoin(ctx, f.org.OrgID, "owner"), membership.ErrInvalidStatusTransition)
	assert.Equal(t, 1, f.count(t))
}

func TestRequestJoin_Closed(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()

	require.NoError(t, f.db.Model(f.org).Update("settings", datatypes.NewJSONType(domain.OrgSettings{AllowJoinRequests: false})).Error)
	_, err := f.svc.RequestJoin(ctx, f.org.OrgID, "a")
	assert.ErrorIs(t, err, ErrJoinRequestsClosed)

	_, err = f.svc.RequestJoin(ctx, uuid.New(), "a")
	assert.ErrorIs(t, err, domain.ErrOrgNotFound)
}

func TestApproveJoin_Capacity(t *testing.T) {
	f := newFixture(t, 2, nil)
	ctx := context.Background()

	_, err := f.svc.RequestJoin(ctx, f.org.OrgID, "a")
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(ctx, f.org.OrgID, "b")
	require.NoError(t, err)

	_, err = f.svc.ApproveJoin(ctx, constants.Owner, f.org.OrgID, "a")
	require.NoError(t, err)
	_, err = f.svc.ApproveJoin(ctx, constants.Owner, f.org.OrgID, "b")
	assert.ErrorIs(t, err, domain.ErrOrgFull)
	assert.Equal(t, 2, f.count(t))

	_, err = f.svc.RequestJoin(ctx, f.org.OrgID, "c")
	assert.ErrorIs(t, err, domain.ErrOrgFull)
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t, 10, map[string]constants.Role{
		"mod": constants.Moderator, "mgr": constants.Manager, "pro": constants.Pro, "r": constants.Ranked,
	})
	ctx := context.Background()
	change := func(actor, target string, role constants.Role) error {
		_, err := f.svc.ChangeRole(ctx, ChangeRoleInput{OrgID: f.org.OrgID, ActorID: actor, TargetID: target, NewRole: role, Reason: "scrims"})
		return err
	}

	require.NoError(t, change("owner", "r", constants.Manager))
	require.NoError(t, change("mod", "pro", constants.Manager))

	assert.ErrorIs(t, change("mod", "mod", constants.Pro), membership.ErrCannotChangeOwnRole)
	assert.ErrorIs(t, change("owner", "owner", constants.Moderator), membership.ErrCannotChangeOwnRole)
	assert.ErrorIs(t, change("mod", "owner", constants.Pro), membership.ErrModeratorCannotTouchHigherRoles)
	assert.ErrorIs(t, change("mod", "mgr", constants.Moderator), membership.ErrModeratorCannotTouchHigherRoles)
	assert.ErrorIs(t, change("mgr", "r", constants.Pro), membership.ErrNoPermissionToChangeRoles)
	assert.ErrorIs(t, change("owner", "mod", constants.Owner), ErrUseOwnershipTransfer)
	assert.ErrorIs(t, change("owner", "mgr", constants.Manager), ErrRoleUnchanged)
	assert.ErrorIs(t, change("owner", "mgr", "admin"), membership.ErrUnknownRole)
	assert.ErrorIs(t, change("stranger", "mgr", constants.Pro), ErrNotAMember)
	assert.ErrorIs(t, change("owner", "stranger", constants.Pro), domain.ErrMembershipNotFound)

	history, err := f.svc.RoleHistory(ctx, f.org.OrgID, "r")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, constants.Ranked, history[0].PreviousRole)
	assert.Equal(t, constants.Manager, history[0].NewRole)
	assert.Equal(t, "owner", history[0].ChangedBy)
	assert.Equal(t, "scrims", history[0].Reason)
	assert.True(t, history[0].ChangedAt.Equal(testNow))

	m, err := f.svc.GetMembership(ctx, f.org.OrgID, "pro")
	require.NoError(t, err)
	assert.Equal(t, constants.Manager, m.Role)
}

func TestRemoveMemberAndLeave(t *testing.T) {
	f := newFixture(t, 10, map[string]constants.Role{
		"mod": constants.Moderator, "mod2": constants.Moderator, "mgr": constants.Manager,
		"pro": constants.Pro, "r": constants.Ranked,
	})
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.RemoveMember(ctx, f.org.OrgID, "mod", "mod"), ErrUseLeave)
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, f.org.OrgID, "mod", "owner"), membership.ErrCannotRemoveOwner)
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, f.org.OrgID, "mod", "mod2"), membership.ErrModeratorCannotRemoveModerators)
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, f.org.OrgID, "mgr", "mod"), membership.ErrManagerCanOnlyRemovePlayers)
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, f.org.OrgID, "pro", "r"), membership.ErrNoPermissionToRemoveMembers)
	assert.Equal(t, 6, f.count(t))

	require.NoError(t, f.svc.RemoveMember(ctx, f.org.OrgID, "mgr", "pro"))
	require.NoError(t, f.svc.RemoveMember(ctx, f.org.OrgID, "owner", "mod2"))
	assert.Equal(t, 4, f.count(t))
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, f.org.OrgID, "owner", "pro"), domain.ErrMembershipNotFound)

	assert.ErrorIs(t, f.svc.Leave(ctx, f.org.OrgID, "owner"), ErrOwnerCannotLeave)
	require.NoError(t, f.svc.Leave(ctx, f.org.OrgID, "r"))
	assert.ErrorIs(t, f.svc.Leave(ctx, f.org.OrgID, "r"), ErrNotAMember)
	assert.Equal(t, 3, f.count(t))
}

func TestListMembers_OrderedByRole(t *testing.T) {
	f := newFixture(t, 10, map[string]constants.Role{"r": constants.Ranked, "mgr": constants.Manager, "mod": constants.Moderator})
	ctx := context.Background()
	_, err := f.svc.RequestJoin(ctx, f.org.OrgID, "applicant")
	require.NoError(t, err)

	list, err := f.svc.ListMembers(ctx, f.org.OrgID, "")
	require.NoError(t, err)
	require.Len(t, list, 4)
	roles := []constants.Role{list[0].Role, list[1].Role, list[2].Role, list[3].Role}
	assert.Equal(t, []constants.Role{constants.Owner, constants.Moderator, constants.Manager, constants.Ranked}, roles)

	pending, err := f.svc.ListMembers(ctx, f.org.OrgID, constants.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "applicant", pending[0].UserID)
}
