package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Campaign lifecycle states. Email campaigns move draft to sent or
// failed; promo campaigns toggle between active and inactive.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusActive    = "active"
	StatusInactive  = "inactive"
)

// Audience filters.
const (
	AudienceAll       = "all"
	AudienceLevel     = "level"
	AudienceMinPoints = "min_points"
)

type Campaign struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopCode string       `gorm:"not null;index" json:"shop_code"`
	Title    string       `gorm:"not null" json:"title"`
	Subject  string       `gorm:"not null;default:''" json:"subject"`
	BodyHTML string       `gorm:"not null;default:''" json:"body_html"`

	Audience          string `gorm:"not null;default:'all'" json:"audience"`
	AudienceLevel     string `gorm:"not null;default:''" json:"audience_level,omitempty"`
	AudienceMinPoints int64  `gorm:"not null;default:0" json:"audience_min_points,omitempty"`

	Status      string `gorm:"not null;default:'draft'" json:"status"`
	SentCount   int    `gorm:"not null;default:0" json:"sent_count"`
	FailedCount int    `gorm:"not null;default:0" json:"failed_count"`
	OpenCount   int    `gorm:"not null;default:0" json:"open_count"`
	ClickCount  int    `gorm:"not null;default:0" json:"click_count"`

	// PromoPoints awarded on promo QR redemption; zero disables the flow.
	PromoPoints int64 `gorm:"not null;default:0" json:"promo_points"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	SentAt    *time.Time        `json:"sent_at,omitempty"`
}

// TableName sets the database table name.
func (Campaign) TableName() string { return "campaigns" }

// PromoRedemption pins each member to one redemption per campaign via
// the unique (campaign, member) index.
type PromoRedemption struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopCode   string       `gorm:"not null;index" json:"shop_code"`
	CampaignID snowflake.ID `gorm:"not null;uniqueIndex:ux_promo_redemptions_campaign_member,priority:1" json:"campaign_id"`
	MemberID   snowflake.ID `gorm:"not null;uniqueIndex:ux_promo_redemptions_campaign_member,priority:2" json:"member_id"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PromoRedemption) TableName() string { return "promo_redemptions" }
