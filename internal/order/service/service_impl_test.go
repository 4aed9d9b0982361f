package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	activityrepo "github.com/brewpass/brewpass/internal/activity/repository"
	activityservice "github.com/brewpass/brewpass/internal/activity/service"
	catalogdomain "github.com/brewpass/brewpass/internal/catalog/domain"
	catalogrepo "github.com/brewpass/brewpass/internal/catalog/repository"
	catalogservice "github.com/brewpass/brewpass/internal/catalog/service"
	"github.com/brewpass/brewpass/internal/clock"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	loyaltyrepo "github.com/brewpass/brewpass/internal/loyalty/repository"
	loyaltyservice "github.com/brewpass/brewpass/internal/loyalty/service"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	orderdomain "github.com/brewpass/brewpass/internal/order/domain"
	orderrepo "github.com/brewpass/brewpass/internal/order/repository"
	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
	referralrepo "github.com/brewpass/brewpass/internal/referral/repository"
	referralservice "github.com/brewpass/brewpass/internal/referral/service"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"github.com/brewpass/brewpass/pkg/db/pagination"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      orderdomain.Service
	catalog  catalogdomain.Service
	referral referraldomain.Service
	clock    *clock.FakeClock
	genID    *snowflake.Node
	shop     tenantdomain.Shop

	latte  catalogdomain.Product
	staff  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&catalogdomain.Variant{},
		&catalogdomain.Addon{},
		&loyaltydomain.StampCounter{},
		&memberdomain.Member{},
		&activitydomain.LogEntry{},
		&referraldomain.ReferralCode{},
		&referraldomain.ReferralLink{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	activitySvc := activityservice.New(activityservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  activityrepo.Provide(),
	})
	loyaltySvc := loyaltyservice.New(loyaltyservice.Params{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        loyaltyrepo.Provide(),
		ActivitySvc: activitySvc,
	})
	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: fakeClock,
		Repo:  catalogrepo.Provide(),
	})
	referralSvc := referralservice.New(referralservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: fakeClock,
		Repo:  referralrepo.Provide(),
		Hook:  referralservice.NewBonusHook(loyaltySvc, logger),
	})

	svc := New(Params{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        orderrepo.Provide(),
		CatalogSvc:  catalogSvc,
		LoyaltySvc:  loyaltySvc,
		ReferralSvc: referralSvc,
		ActivitySvc: activitySvc,
	})

	shop := tenantdomain.Shop{
		ID:            node.Generate(),
		Code:          "perk",
		Name:          "Perk Coffee",
		ReferralBonus: 100,
	}

	ctx := context.Background()
	category, err := catalogSvc.CreateCategory(ctx, catalogdomain.CreateCategoryRequest{
		ShopCode: shop.Code, Name: "Drinks",
	})
	require.NoError(t, err)
	latte, err := catalogSvc.CreateProduct(ctx, catalogdomain.CreateProductRequest{
		ShopCode:   shop.Code,
		CategoryID: category.ID,
		Name:       "Latte",
		Price:      "4.50",
		Variants:   []catalogdomain.VariantInput{{Name: "Large", PriceDelta: "0.75"}},
		Addons:     []catalogdomain.AddonInput{{Name: "Extra shot", PriceDelta: "1.00"}},
	})
	require.NoError(t, err)

	return &fixture{
		db:       db,
		svc:      svc,
		catalog:  catalogSvc,
		referral: referralSvc,
		clock:    fakeClock,
		genID:    node,
		shop:     shop,
		latte:    latte,
		staff:    node.Generate(),
	}
}

func (f *fixture) newMember(t *testing.T) memberdomain.Member {
	t.Helper()
	code := f.shop.Code
	member := memberdomain.Member{
		ID:           f.genID.Generate(),
		Email:        f.genID.Generate().String() + "@example.com",
		PasswordHash: "x",
		Role:         memberdomain.RoleCustomer,
		ShopCode:     &code,
		Level:        "bronze",
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&member).Error)
	return member
}

func TestCreateOrder_TotalsAndSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t)
	memberID := member.ID

	variantID := f.latte.Variants[0].ID
	addonID := f.latte.Addons[0].ID
	resp, err := f.svc.Create(ctx, orderdomain.CreateOrderRequest{
		Shop:     f.shop,
		MemberID: &memberID,
		ActorID:  f.staff,
		Items: []orderdomain.OrderItemInput{
			{ProductID: f.latte.ID, VariantID: &variantID, AddonIDs: []snowflake.ID{addonID}, Quantity: 2},
		},
	})
	require.NoError(t, err)

	// (4.50 + 0.75 + 1.00) * 2.
	assert.Equal(t, "12.50", resp.Order.TotalAmount)
	assert.Len(t, resp.Order.OrderNumber, 26)
	require.Len(t, resp.Order.Items, 1)
	item := resp.Order.Items[0]
	assert.Equal(t, "Latte", item.ProductName)
	assert.Equal(t, "Large", item.VariantName)
	assert.Equal(t, "6.25", item.UnitPrice)
	assert.Equal(t, "12.50", item.LineTotal)

	// One point per currency unit.
	assert.Equal(t, int64(12), resp.PointsAwarded)
	var got memberdomain.Member
	require.NoError(t, f.db.Where("id = ?", member.ID).First(&got).Error)
	assert.Equal(t, int64(12), got.Points)

	var purchaseLogs int64
	require.NoError(t, f.db.Model(&activitydomain.LogEntry{}).
		Where("member_id = ? AND type = ?", member.ID, activitydomain.TypePurchase).
		Count(&purchaseLogs).Error)
	assert.Equal(t, int64(1), purchaseLogs)
}

func TestCreateOrder_WalkInSkipsAccrual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, orderdomain.CreateOrderRequest{
		Shop:    f.shop,
		ActorID: f.staff,
		Items:   []orderdomain.OrderItemInput{{ProductID: f.latte.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Zero(t, resp.PointsAwarded)

	var logs int64
	require.NoError(t, f.db.Model(&activitydomain.LogEntry{}).Count(&logs).Error)
	assert.Zero(t, logs)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, orderdomain.CreateOrderRequest{
		Shop: f.shop, ActorID: f.staff,
	})
	assert.ErrorIs(t, err, orderdomain.ErrEmptyOrder)

	_, err = f.svc.Create(ctx, orderdomain.CreateOrderRequest{
		Shop: f.shop, ActorID: f.staff,
		Items: []orderdomain.OrderItemInput{{ProductID: f.latte.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, orderdomain.ErrInvalidQuantity)

	_, err = f.svc.Create(ctx, orderdomain.CreateOrderRequest{
		Shop: f.shop, ActorID: f.staff,
		Items: []orderdomain.OrderItemInput{{ProductID: f.genID.Generate(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, orderdomain.ErrUnknownProduct)
}

func TestCreateOrder_FirstOrderCompletesReferral(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrer := f.newMember(t)
	referee := f.newMember(t)
	refereeID := referee.ID

	code, err := f.referral.GetOrCreateCode(ctx, f.shop, referrer.ID)
	require.NoError(t, err)
	_, err = f.referral.ApplyReferral(ctx, referraldomain.ApplyReferralRequest{
		Shop: f.shop, RefereeID: referee.ID, Code: code.Code,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, orderdomain.CreateOrderRequest{
		Shop:     f.shop,
		MemberID: &refereeID,
		ActorID:  f.staff,
		Items:    []orderdomain.OrderItemInput{{ProductID: f.latte.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	var link referraldomain.ReferralLink
	require.NoError(t, f.db.Where("referee_id = ?", referee.ID).First(&link).Error)
	assert.Equal(t, referraldomain.LinkStatusCompleted, link.Status)

	// Referrer got the shop's bonus through the completion hook.
	var got memberdomain.Member
	require.NoError(t, f.db.Where("id = ?", referrer.ID).First(&got).Error)
	assert.Equal(t, f.shop.ReferralBonus, got.Points)

	// A second order does not award the bonus again.
	_, err = f.svc.Create(ctx, orderdomain.CreateOrderRequest{
		Shop:     f.shop,
		MemberID: &refereeID,
		ActorID:  f.staff,
		Items:    []orderdomain.OrderItemInput{{ProductID: f.latte.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Where("id = ?", referrer.ID).First(&got).Error)
	assert.Equal(t, f.shop.ReferralBonus, got.Points)
}

func TestListOrders_CursorPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(ctx, orderdomain.CreateOrderRequest{
			Shop:    f.shop,
			ActorID: f.staff,
			Items:   []orderdomain.OrderItemInput{{ProductID: f.latte.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	first, err := f.svc.List(ctx, orderdomain.ListOrderRequest{ShopCode: f.shop.Code})
	require.NoError(t, err)
	assert.Len(t, first.Orders, 5)
	assert.False(t, first.HasMore)

	paged, err := f.svc.List(ctx, orderdomain.ListOrderRequest{
		Pagination: pagination.Pagination{PageSize: 2},
		ShopCode:   f.shop.Code,
	})
	require.NoError(t, err)
	assert.Len(t, paged.Orders, 2)
	assert.True(t, paged.HasMore)

	rest, err := f.svc.List(ctx, orderdomain.ListOrderRequest{
		Pagination: pagination.Pagination{PageSize: 10, PageToken: paged.NextPageToken},
		ShopCode:   f.shop.Code,
	})
	require.NoError(t, err)
	assert.Len(t, rest.Orders, 3)
	assert.False(t, rest.HasMore)
}
