package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository exposes the ledger's row operations. All mutations are
// conditional single-statement updates so concurrent calls cannot lose
// increments.
type Repository interface {
	// EnsureCounter inserts a zero counter if none exists for the pair.
	EnsureCounter(ctx context.Context, db *gorm.DB, counter *StampCounter) error
	FindCounter(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID) (*StampCounter, error)

	// IncrementStamp adds one stamp if the cooldown allows it (cutoff is
	// ignored when force is set). Returns the rows affected.
	IncrementStamp(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID, force bool, cutoff, now time.Time) (int64, error)

	// ResetCounter zeroes the counter only while count >= threshold.
	// Returns the rows affected.
	ResetCounter(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID, threshold int, now time.Time) (int64, error)

	// AddPoints adds amount to the member's balance. Returns rows affected.
	AddPoints(ctx context.Context, db *gorm.DB, memberID snowflake.ID, amount int64, now time.Time) (int64, error)

	// SpendPoints deducts cost only while the balance covers it. Returns
	// rows affected.
	SpendPoints(ctx context.Context, db *gorm.DB, memberID snowflake.ID, cost int64, now time.Time) (int64, error)

	MemberBalance(ctx context.Context, db *gorm.DB, memberID snowflake.ID) (int64, bool, error)
	SetMemberLevel(ctx context.Context, db *gorm.DB, memberID snowflake.ID, level string) error
}
