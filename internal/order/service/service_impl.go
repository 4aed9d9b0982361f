package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	catalogdomain "github.com/brewpass/brewpass/internal/catalog/domain"
	"github.com/brewpass/brewpass/internal/clock"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	orderdomain "github.com/brewpass/brewpass/internal/order/domain"
	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
	"github.com/brewpass/brewpass/pkg/db/pagination"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        orderdomain.Repository
	CatalogSvc  catalogdomain.Service
	LoyaltySvc  loyaltydomain.Service
	ReferralSvc referraldomain.Service
	ActivitySvc activitydomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     orderdomain.Repository
	catalog  catalogdomain.Service
	loyalty  loyaltydomain.Service
	referral referraldomain.Service
	activity activitydomain.Service
}

func New(p Params) orderdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("order.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		catalog:  p.CatalogSvc,
		loyalty:  p.LoyaltySvc,
		referral: p.ReferralSvc,
		activity: p.ActivitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateOrderRequest) (orderdomain.CreateOrderResponse, error) {
	if req.Shop.Code == "" {
		return orderdomain.CreateOrderResponse{}, orderdomain.ErrInvalidShop
	}
	if req.ActorID == 0 {
		return orderdomain.CreateOrderResponse{}, orderdomain.ErrInvalidActor
	}
	if len(req.Items) == 0 {
		return orderdomain.CreateOrderResponse{}, orderdomain.ErrEmptyOrder
	}

	now := s.clock.Now()
	order := orderdomain.Order{
		ID:          s.genID.Generate(),
		ShopCode:    req.Shop.Code,
		OrderNumber: newOrderNumber(now),
		MemberID:    req.MemberID,
		ActorID:     req.ActorID,
		Status:      orderdomain.StatusCompleted,
		CreatedAt:   now,
	}

	var totalCents int64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return orderdomain.CreateOrderResponse{}, orderdomain.ErrInvalidQuantity
		}

		product, err := s.catalog.GetProduct(ctx, req.Shop.Code, item.ProductID)
		if err != nil {
			if err == catalogdomain.ErrNotFound {
				return orderdomain.CreateOrderResponse{}, orderdomain.ErrUnknownProduct
			}
			return orderdomain.CreateOrderResponse{}, err
		}

		unitCents, err := parseCents(product.Price)
		if err != nil {
			return orderdomain.CreateOrderResponse{}, err
		}

		variantName := ""
		if item.VariantID != nil {
			variant := findVariant(product.Variants, *item.VariantID)
			if variant == nil {
				return orderdomain.CreateOrderResponse{}, orderdomain.ErrUnknownVariant
			}
			delta, err := parseCents(variant.PriceDelta)
			if err != nil {
				return orderdomain.CreateOrderResponse{}, err
			}
			unitCents += delta
			variantName = variant.Name
		}

		addonNames := datatypes.JSONMap{}
		for _, addonID := range item.AddonIDs {
			addon := findAddon(product.Addons, addonID)
			if addon == nil {
				return orderdomain.CreateOrderResponse{}, orderdomain.ErrUnknownAddon
			}
			delta, err := parseCents(addon.PriceDelta)
			if err != nil {
				return orderdomain.CreateOrderResponse{}, err
			}
			unitCents += delta
			addonNames[addon.Name] = addon.PriceDelta
		}

		lineCents := unitCents * int64(item.Quantity)
		totalCents += lineCents

		order.Items = append(order.Items, orderdomain.OrderItem{
			ID:          s.genID.Generate(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			VariantName: variantName,
			Addons:      addonNames,
			Quantity:    item.Quantity,
			UnitPrice:   formatCents(unitCents),
			LineTotal:   formatCents(lineCents),
		})
	}
	order.TotalAmount = formatCents(totalCents)

	firstOrder := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.MemberID != nil {
			prior, err := s.repo.CountByMember(ctx, tx, req.Shop.Code, *req.MemberID)
			if err != nil {
				return err
			}
			firstOrder = prior == 0
		}
		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return err
		}
		if req.MemberID != nil {
			actor := req.ActorID
			return s.activity.Append(ctx, tx, activitydomain.AppendRequest{
				ShopCode:    req.Shop.Code,
				MemberID:    *req.MemberID,
				ActorID:     &actor,
				Type:        activitydomain.TypePurchase,
				Description: "Order " + order.OrderNumber,
				Metadata: map[string]any{
					"order_id":     order.ID.String(),
					"order_number": order.OrderNumber,
					"total":        order.TotalAmount,
				},
			})
		}
		return nil
	})
	if err != nil {
		return orderdomain.CreateOrderResponse{}, err
	}

	resp := orderdomain.CreateOrderResponse{Order: order}
	if req.MemberID == nil {
		return resp, nil
	}

	// Accrual runs after the ticket commits. One point per whole
	// currency unit spent.
	points := totalCents / 100
	if points > 0 {
		actor := req.ActorID
		awarded, err := s.loyalty.AwardPoints(ctx, loyaltydomain.AwardPointsRequest{
			Shop:     req.Shop,
			MemberID: *req.MemberID,
			ActorID:  &actor,
			Amount:   points,
			Source:   "purchase",
		})
		if err != nil {
			s.log.Warn("order points accrual failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		} else {
			resp.PointsAwarded = points
			_ = awarded
		}
	}

	if firstOrder {
		if err := s.referral.MarkCompleted(ctx, req.Shop, *req.MemberID); err != nil {
			s.log.Warn("referral completion failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		}
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, shopCode string, id snowflake.ID) (orderdomain.Order, error) {
	if shopCode == "" {
		return orderdomain.Order{}, orderdomain.ErrInvalidShop
	}
	order, err := s.repo.FindByID(ctx, s.db, shopCode, id)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if order == nil {
		return orderdomain.Order{}, orderdomain.ErrNotFound
	}
	return *order, nil
}

func (s *Service) List(ctx context.Context, req orderdomain.ListOrderRequest) (orderdomain.ListOrderResponse, error) {
	if req.ShopCode == "" {
		return orderdomain.ListOrderResponse{}, orderdomain.ErrInvalidShop
	}

	var cursor *orderdomain.ListCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return orderdomain.ListOrderResponse{}, orderdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return orderdomain.ListOrderResponse{}, orderdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return orderdomain.ListOrderResponse{}, orderdomain.ErrInvalidPageToken
		}
		cursor = &orderdomain.ListCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, orderdomain.ListFilter{
		ShopCode: req.ShopCode,
		MemberID: req.MemberID,
		Cursor:   cursor,
		Limit:    pageSize,
	})
	if err != nil {
		return orderdomain.ListOrderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *orderdomain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	orders := make([]orderdomain.Order, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	resp := orderdomain.ListOrderResponse{Orders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func newOrderNumber(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

func findVariant(variants []catalogdomain.Variant, id snowflake.ID) *catalogdomain.Variant {
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i]
		}
	}
	return nil
}

func findAddon(addons []catalogdomain.Addon, id snowflake.ID) *catalogdomain.Addon {
	for i := range addons {
		if addons[i].ID == id {
			return &addons[i]
		}
	}
	return nil
}

func parseCents(price string) (int64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", price, err)
	}
	return int64(value*100 + 0.5), nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
