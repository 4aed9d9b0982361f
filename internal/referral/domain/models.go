package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LinkStatus tracks a referral's lifecycle. Links start pending and
// complete on the referee's first qualifying purchase.
type LinkStatus string

const (
	LinkStatusPending   LinkStatus = "pending"
	LinkStatusCompleted LinkStatus = "completed"
)

// CodeLength is the length of generated referral codes.
const CodeLength = 8

// ReferralCode is a member's shareable code, one per (shop, member).
// Codes are generated once and never reassigned within a shop.
type ReferralCode struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopCode  string       `gorm:"not null;uniqueIndex:ux_referral_codes_shop_member,priority:1;uniqueIndex:ux_referral_codes_shop_code,priority:1" json:"shop_code"`
	MemberID  snowflake.ID `gorm:"not null;uniqueIndex:ux_referral_codes_shop_member,priority:2" json:"member_id"`
	Code      string       `gorm:"not null;uniqueIndex:ux_referral_codes_shop_code,priority:2" json:"code"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ReferralCode) TableName() string { return "referral_codes" }

// ReferralLink records that referee was referred by referrer within a
// shop. The (shop, referee) unique index enforces at most one link per
// referee even under racing applies.
type ReferralLink struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopCode    string       `gorm:"not null;uniqueIndex:ux_referral_links_shop_referee,priority:1" json:"shop_code"`
	ReferrerID  snowflake.ID `gorm:"not null;index" json:"referrer_id"`
	RefereeID   snowflake.ID `gorm:"not null;uniqueIndex:ux_referral_links_shop_referee,priority:2" json:"referee_id"`
	Status      LinkStatus   `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// TableName sets the database table name.
func (ReferralLink) TableName() string { return "referral_links" }
