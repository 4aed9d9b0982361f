package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	ShopCode string
	MemberID snowflake.ID
	Type     string
	StartAt  *time.Time
	EndAt    *time.Time
	Cursor   *ListCursor
	Limit    int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *LogEntry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*LogEntry, error)
	LastOfType(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID, entryType EntryType) (*LogEntry, error)
}
