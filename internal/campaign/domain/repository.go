package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Recipient is the slice of a member the send loop needs.
type Recipient struct {
	ID    snowflake.ID
	Email string
}

// AudienceFilter narrows the recipient query.
type AudienceFilter struct {
	ShopCode  string
	Level     string
	MinPoints int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	Update(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	Delete(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (*Campaign, error)
	List(ctx context.Context, db *gorm.DB, shopCode string) ([]Campaign, error)

	ListRecipients(ctx context.Context, db *gorm.DB, filter AudienceFilter) ([]Recipient, error)

	// MarkSent persists send counters and the final status atomically.
	MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sent, failed int, status string, at time.Time) error

	InsertRedemption(ctx context.Context, db *gorm.DB, redemption *PromoRedemption) error
}
