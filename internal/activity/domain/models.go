package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EntryType enumerates the loyalty events the log records.
type EntryType string

const (
	TypeAddStamp     EntryType = "add_stamp"
	TypeRedeemReward EntryType = "redeem_reward"
	TypePurchase     EntryType = "purchase"
	TypeEarnPoints   EntryType = "earn_points"
	TypeRedemption   EntryType = "redemption"
	TypePromoRedeem  EntryType = "promo_redeem"
)

// LogEntry is one immutable row of the activity trail. Entries are only
// ever inserted; the feed and all metrics read from here.
type LogEntry struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	ShopCode    string            `gorm:"not null;index:idx_activity_shop_created" json:"shop_code"`
	MemberID    snowflake.ID      `gorm:"not null;index" json:"member_id"`
	ActorID     *snowflake.ID     `json:"actor_id,omitempty"`
	Type        EntryType         `gorm:"type:text;not null;index" json:"type"`
	Description string            `gorm:"not null;default:''" json:"description"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_activity_shop_created" json:"created_at"`
}

// TableName sets the database table name.
func (LogEntry) TableName() string { return "activity_log" }
