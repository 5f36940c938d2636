package domain

import (
	"time"

	"codmsocial-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invite is a time-limited offer for an email address to join an organization.
type Invite struct {
	InviteID    uuid.UUID      `gorm:"column:invite_id;type:uuid;primaryKey" json:"invite_id"`
	OrgID       uuid.UUID      `gorm:"column:org_id;type:uuid;not null;index" json:"org_id"`
	Email       string         `gorm:"column:email;not null;index" json:"email"`
	InviterID   string         `gorm:"column:inviter_id;not null" json:"inviter_id"`
	InviterRole constants.Role `gorm:"column:inviter_role;type:varchar(20);not null" json:"inviter_role"`
	Message     string         `gorm:"column:message" json:"message"`
	Token       string         `gorm:"column:token;not null;uniqueIndex" json:"-"`
	Status      string         `gorm:"column:status;not null;default:'pending'" json:"status"`
	ExpiresAt   time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Invite) TableName() string {
	return "invites"
}

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.InviteID == uuid.Nil {
		i.InviteID = uuid.New()
	}
	return nil
}
