package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"github.com/brewpass/brewpass/pkg/db/pagination"
)

type OrderItemInput struct {
	ProductID snowflake.ID   `json:"product_id"`
	VariantID *snowflake.ID  `json:"variant_id,omitempty"`
	AddonIDs  []snowflake.ID `json:"addon_ids,omitempty"`
	Quantity  int            `json:"quantity"`
}

type CreateOrderRequest struct {
	Shop     tenantdomain.Shop
	MemberID *snowflake.ID
	ActorID  snowflake.ID
	Items    []OrderItemInput
}

type CreateOrderResponse struct {
	Order         Order `json:"order"`
	PointsAwarded int64 `json:"points_awarded"`
}

type ListOrderRequest struct {
	pagination.Pagination
	ShopCode string
	MemberID *snowflake.ID
}

type ListOrderResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type Service interface {
	// Create records the ticket, logs the purchase, awards points when a
	// member is attached, and completes the member's pending referral on
	// their first order.
	Create(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error)
	GetByID(ctx context.Context, shopCode string, id snowflake.ID) (Order, error)
	List(ctx context.Context, req ListOrderRequest) (ListOrderResponse, error)
}

var (
	ErrInvalidShop      = errors.New("invalid_shop")
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrEmptyOrder       = errors.New("empty_order")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrUnknownProduct   = errors.New("unknown_product")
	ErrUnknownVariant   = errors.New("unknown_variant")
	ErrUnknownAddon     = errors.New("unknown_addon")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
