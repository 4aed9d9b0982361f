package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// StampCounter tracks one member's progress toward a shop's free reward.
// Count only moves through the ledger's grant/redeem operations, both of
// which are single conditional updates.
type StampCounter struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopCode    string       `gorm:"not null;uniqueIndex:ux_stamp_counters_shop_member,priority:1" json:"shop_code"`
	MemberID    snowflake.ID `gorm:"not null;uniqueIndex:ux_stamp_counters_shop_member,priority:2" json:"member_id"`
	Count       int          `gorm:"not null;default:0" json:"count"`
	LastStampAt *time.Time   `json:"last_stamp_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (StampCounter) TableName() string { return "stamp_counters" }
