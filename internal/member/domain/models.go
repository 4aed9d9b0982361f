package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Roles a member can hold.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// Member is one authenticated principal. ShopCode is nullable: accounts
// created before the multi-shop migration carry no affiliation and are
// claimed by legacy shops (see the guard package).
type Member struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email        string            `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string            `gorm:"not null" json:"-"`
	Role         string            `gorm:"not null;default:'customer'" json:"role"`
	ShopCode     *string           `gorm:"index" json:"shop_code,omitempty"`
	DisplayName  string            `gorm:"not null;default:''" json:"display_name"`
	Points       int64             `gorm:"not null;default:0" json:"points"`
	Level        string            `gorm:"not null;default:'bronze'" json:"level"`
	Preferences  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"preferences,omitempty"`
	ReferredBy   *snowflake.ID     `json:"referred_by,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "members" }
