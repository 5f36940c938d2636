package domain

import (
	"time"

	"codmsocial-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership links a user to an organization. User ids come from the identity
// provider and are opaque strings here. At most one live (not soft-deleted)
// row exists per org and user.
type Membership struct {
	MembershipID uuid.UUID                  `gorm:"column:membership_id;type:uuid;primaryKey" json:"membership_id"`
	OrgID        uuid.UUID                  `gorm:"column:org_id;type:uuid;not null;index;index:idx_membership_org_user,unique,priority:1,where:deleted_at IS NULL" json:"org_id"`
	UserID       string                     `gorm:"column:user_id;not null;index;index:idx_membership_org_user,unique,priority:2,where:deleted_at IS NULL" json:"user_id"`
	Role         constants.Role             `gorm:"column:role;type:varchar(20);not null" json:"role"`
	Status       constants.MembershipStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	InvitedBy    *string                    `gorm:"column:invited_by" json:"invited_by"`
	InvitedAt    *time.Time                 `gorm:"column:invited_at" json:"invited_at"`
	JoinedAt     *time.Time                 `gorm:"column:joined_at" json:"joined_at"`
	RoleHistory  []RoleChange               `gorm:"foreignKey:MembershipID;references:MembershipID" json:"role_history,omitempty"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt             `gorm:"index" json:"-"`
}

func (Membership) TableName() string {
	return "memberships"
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.MembershipID == uuid.Nil {
		m.MembershipID = uuid.New()
	}
	return nil
}

// RoleChange is one entry of a membership's role history.
type RoleChange struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MembershipID uuid.UUID      `gorm:"column:membership_id;type:uuid;not null;index" json:"membership_id"`
	PreviousRole constants.Role `gorm:"column:previous_role;type:varchar(20);not null" json:"previous_role"`
	NewRole      constants.Role `gorm:"column:new_role;type:varchar(20);not null" json:"new_role"`
	ChangedBy    string         `gorm:"column:changed_by;not null" json:"changed_by"`
	Reason       string         `gorm:"column:reason" json:"reason"`
	ChangedAt    time.Time      `gorm:"column:changed_at;not null" json:"changed_at"`
}

func (RoleChange) TableName() string {
	return "membership_role_changes"
}

func (r *RoleChange) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
