package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertCategory(ctx context.Context, db *gorm.DB, category *Category) error
	UpdateCategory(ctx context.Context, db *gorm.DB, category *Category) error
	DeleteCategory(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (int64, error)
	FindCategory(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (*Category, error)
	ListCategories(ctx context.Context, db *gorm.DB, shopCode string, activeOnly bool) ([]Category, error)
	CountProductsInCategory(ctx context.Context, db *gorm.DB, shopCode string, categoryID snowflake.ID) (int64, error)

	InsertProduct(ctx context.Context, db *gorm.DB, product *Product) error
	UpdateProduct(ctx context.Context, db *gorm.DB, product *Product) error
	DeleteProduct(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (int64, error)
	FindProduct(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (*Product, error)
	ListProducts(ctx context.Context, db *gorm.DB, shopCode string, categoryID *snowflake.ID, activeOnly bool) ([]Product, error)
}
