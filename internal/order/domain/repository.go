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
	MemberID *snowflake.ID
	Cursor   *ListCursor
	Limit    int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Order, error)
	CountByMember(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID) (int64, error)
}
