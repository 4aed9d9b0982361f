package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindCodeByMember(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID) (*ReferralCode, error)
	FindCodeByValue(ctx context.Context, db *gorm.DB, shopCode, code string) (*ReferralCode, error)
	InsertCode(ctx context.Context, db *gorm.DB, code *ReferralCode) error

	FindLinkByReferee(ctx context.Context, db *gorm.DB, shopCode string, refereeID snowflake.ID) (*ReferralLink, error)
	InsertLink(ctx context.Context, db *gorm.DB, link *ReferralLink) error

	// CompleteLink flips a pending link to completed. Returns rows affected.
	CompleteLink(ctx context.Context, db *gorm.DB, linkID snowflake.ID, at time.Time) (int64, error)

	// SetReferredBy records the back-reference on the referee's profile.
	SetReferredBy(ctx context.Context, db *gorm.DB, refereeID, referrerID snowflake.ID) error
}
