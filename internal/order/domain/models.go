package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Order states. POS orders complete at the counter; cancelled exists
// for voided tickets.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order is one point-of-sale ticket. MemberID is nullable: walk-in
// customers get no loyalty accrual. OrderNumber is the human-visible
// ULID printed on receipts.
type Order struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	ShopCode    string        `gorm:"not null;index" json:"shop_code"`
	OrderNumber string        `gorm:"uniqueIndex;not null" json:"order_number"`
	MemberID    *snowflake.ID `gorm:"index" json:"member_id,omitempty"`
	ActorID     snowflake.ID  `gorm:"not null" json:"actor_id"`
	Status      string        `gorm:"not null;default:'completed'" json:"status"`
	TotalAmount string        `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderItem snapshots the product at sale time so later catalog edits
// do not rewrite history.
type OrderItem struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrderID     snowflake.ID      `gorm:"not null;index" json:"order_id"`
	ProductID   snowflake.ID      `gorm:"not null" json:"product_id"`
	ProductName string            `gorm:"not null" json:"product_name"`
	VariantName string            `gorm:"not null;default:''" json:"variant_name,omitempty"`
	Addons      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"addons,omitempty"`
	Quantity    int               `gorm:"not null" json:"quantity"`
	UnitPrice   string            `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal   string            `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }
