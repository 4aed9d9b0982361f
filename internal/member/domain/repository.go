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
	Role     string
	Cursor   *ListCursor
	Limit    int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Member, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Member, error)
	Update(ctx context.Context, db *gorm.DB, member *Member) error
}
