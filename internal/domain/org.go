package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrgSettings is stored as JSON on the organization row.
type OrgSettings struct {
	AllowJoinRequests  bool   `json:"allow_join_requests"`
	RecruitmentMessage string `json:"recruitment_message,omitempty"`
	Language           string `json:"language,omitempty"`
	DiscordURL         string `json:"discord_url,omitempty"`
}

// Organization is a clan/team. TagKey is the lowercased tag and carries the
// uniqueness constraint so tags are unique regardless of case.
type Organization struct {
	OrgID       uuid.UUID                       `gorm:"column:org_id;type:uuid;primaryKey" json:"org_id"`
	Name        string                          `gorm:"column:name;not null" json:"name"`
	Tag         string                          `gorm:"column:tag;type:varchar(10);not null" json:"tag"`
	TagKey      string                          `gorm:"column:tag_key;type:varchar(10);not null;uniqueIndex" json:"-"`
	Slug        string                          `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description string                          `gorm:"column:description" json:"description"`
	OwnerID     string                          `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Visibility  string                          `gorm:"column:visibility;not null;default:'public'" json:"visibility"`
	MemberCount int                             `gorm:"column:member_count;not null;default:0" json:"member_count"`
	MaxMembers  int                             `gorm:"column:max_members;not null" json:"max_members"`
	Region      string                          `gorm:"column:region" json:"region"`
	Game        string                          `gorm:"column:game" json:"game"`
	Settings    datatypes.JSONType[OrgSettings] `gorm:"column:settings" json:"settings"`
	CreatedAt   time.Time                       `json:"createdAt"`
	UpdatedAt   time.Time                       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt                  `gorm:"index" json:"-"`
}

func (Organization) TableName() string {
	return "organizations"
}

// IsFull reports whether another accepted member would exceed MaxMembers.
func (o *Organization) IsFull() bool {
	return o.MaxMembers > 0 && o.MemberCount >= o.MaxMembers
}

// ClaimSeat increments orgID's member count inside tx only while it is below
// MaxMembers (0 means unlimited). The check and the increment are one
// statement, so concurrent claims cannot overshoot the limit.
func ClaimSeat(tx *gorm.DB, orgID uuid.UUID) error {
	res := tx.Model(&Organization{}).
		Where("org_id = ? AND (max_members = 0 OR member_count < max_members)", orgID).
		UpdateColumn("member_count", gorm.Expr("member_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrgFull
	}
	return nil
}

// ReleaseSeat decrements orgID's member count, never below zero.
func ReleaseSeat(tx *gorm.DB, orgID uuid.UUID) error {
	return tx.Model(&Organization{}).
		Where("org_id = ? AND member_count > 0", orgID).
		UpdateColumn("member_count", gorm.Expr("member_count - 1")).Error
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.OrgID == uuid.Nil {
		o.OrgID = uuid.New()
	}
	return nil
}
