package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateCategoryRequest struct {
	ShopCode  string
	Name      string
	SortOrder int
}

type UpdateCategoryRequest struct {
	ShopCode  string
	ID        snowflake.ID
	Name      *string
	SortOrder *int
	IsActive  *bool
}

type CreateProductRequest struct {
	ShopCode    string
	CategoryID  snowflake.ID
	Name        string
	Description string
	Price       string
	ImageURL    string
	SortOrder   int
	Variants    []VariantInput
	Addons      []AddonInput
}

type VariantInput struct {
	Name       string `json:"name"`
	PriceDelta string `json:"price_delta"`
	SortOrder  int    `json:"sort_order"`
}

type AddonInput struct {
	Name       string `json:"name"`
	PriceDelta string `json:"price_delta"`
	SortOrder  int    `json:"sort_order"`
}

type UpdateProductRequest struct {
	ShopCode    string
	ID          snowflake.ID
	CategoryID  *snowflake.ID
	Name        *string
	Description *string
	Price       *string
	ImageURL    *string
	SortOrder   *int
	IsActive    *bool
}

type Service interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (Category, error)
	UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (Category, error)
	DeleteCategory(ctx context.Context, shopCode string, id snowflake.ID) error
	ListCategories(ctx context.Context, shopCode string) ([]Category, error)

	CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error)
	UpdateProduct(ctx context.Context, req UpdateProductRequest) (Product, error)
	DeleteProduct(ctx context.Context, shopCode string, id snowflake.ID) error
	GetProduct(ctx context.Context, shopCode string, id snowflake.ID) (Product, error)
	ListProducts(ctx context.Context, shopCode string, categoryID *snowflake.ID) ([]Product, error)

	// Menu returns active categories with their active products, ordered
	// for display. The public storefront endpoint serves this unchanged.
	Menu(ctx context.Context, shopCode string) ([]MenuCategory, error)
}

var (
	ErrInvalidShop      = errors.New("invalid_shop")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidCategory  = errors.New("invalid_category")
	ErrNotFound         = errors.New("not_found")
	ErrCategoryNotEmpty = errors.New("category_not_empty")
)
