package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category groups products on the menu. SortOrder controls display
// position; inactive categories stay out of the public menu.
type Category struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopCode  string       `gorm:"not null;index" json:"shop_code"`
	Name      string       `gorm:"not null" json:"name"`
	SortOrder int          `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Category) TableName() string { return "catalog_categories" }

// Product is one sellable item. Price is a decimal string; arithmetic
// on order totals happens in cents at the order layer.
type Product struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopCode    string       `gorm:"not null;index" json:"shop_code"`
	CategoryID  snowflake.ID `gorm:"not null;index" json:"category_id"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `gorm:"not null;default:''" json:"description"`
	Price       string       `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	ImageURL    string       `gorm:"not null;default:''" json:"image_url"`
	SortOrder   int          `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Variants []Variant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Addons   []Addon   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"addons,omitempty"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "catalog_products" }

// Variant is a size or preparation choice. PriceDelta adjusts the base
// product price.
type Variant struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ProductID  snowflake.ID `gorm:"not null;index" json:"product_id"`
	Name       string       `gorm:"not null" json:"name"`
	PriceDelta string       `gorm:"type:numeric(12,2);not null;default:0" json:"price_delta"`
	SortOrder  int          `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Variant) TableName() string { return "catalog_variants" }

// Addon is an optional extra priced on top of the line.
type Addon struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ProductID  snowflake.ID `gorm:"not null;index" json:"product_id"`
	Name       string       `gorm:"not null" json:"name"`
	PriceDelta string       `gorm:"type:numeric(12,2);not null;default:0" json:"price_delta"`
	SortOrder  int          `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Addon) TableName() string { return "catalog_addons" }

// MenuCategory is one section of the public menu response.
type MenuCategory struct {
	Category
	Products []Product `json:"products"`
}
