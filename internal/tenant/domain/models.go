package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// IsolationPolicy decides how member shop affiliation is matched against
// the request's shop. Legacy shops accept pre-migration members that carry
// no shop code at all.
type IsolationPolicy string

const (
	IsolationStrict         IsolationPolicy = "strict"
	IsolationLegacyNullable IsolationPolicy = "legacy_nullable"
)

// PIN roles a shop issues.
const (
	PINRoleStaff = "staff"
	PINRoleAdmin = "admin"
)

// Shop is a tenant: one coffee shop with its loyalty configuration.
type Shop struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code            string            `gorm:"uniqueIndex;not null" json:"code"`
	Name            string            `gorm:"not null" json:"name"`
	Theme           datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"theme,omitempty"`
	Features        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"features,omitempty"`
	RewardThreshold int               `gorm:"not null;default:7" json:"reward_threshold"`
	IsolationPolicy IsolationPolicy   `gorm:"type:text;not null;default:'strict'" json:"isolation_policy"`

	// Point floors for derived member levels.
	SilverFloor int64 `gorm:"not null;default:500" json:"silver_floor"`
	GoldFloor   int64 `gorm:"not null;default:1500" json:"gold_floor"`

	// ReferralBonus is awarded to the referrer when a referral completes.
	ReferralBonus int64 `gorm:"not null;default:100" json:"referral_bonus"`

	StaffPINHash string `gorm:"not null;default:''" json:"-"`
	AdminPINHash string `gorm:"not null;default:''" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Shop) TableName() string { return "shops" }

// Level returns the derived member tier for a point balance.
func (s Shop) Level(points int64) string {
	switch {
	case s.GoldFloor > 0 && points >= s.GoldFloor:
		return "gold"
	case s.SilverFloor > 0 && points >= s.SilverFloor:
		return "silver"
	default:
		return "bronze"
	}
}
