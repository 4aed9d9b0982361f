package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	activityrepo "github.com/brewpass/brewpass/internal/activity/repository"
	activityservice "github.com/brewpass/brewpass/internal/activity/service"
	campaigndomain "github.com/brewpass/brewpass/internal/campaign/domain"
	campaignrepo "github.com/brewpass/brewpass/internal/campaign/repository"
	"github.com/brewpass/brewpass/internal/clock"
	"github.com/brewpass/brewpass/internal/config"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	loyaltyrepo "github.com/brewpass/brewpass/internal/loyalty/repository"
	loyaltyservice "github.com/brewpass/brewpass/internal/loyalty/service"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeEmail struct {
	sent   []string
	failTo map[string]bool
}

func (f *fakeEmail) Send(_ context.Context, to, _, _ string) error {
	if f.failTo[to] {
		return errors.New("smtp refused")
	}
	f.sent = append(f.sent, to)
	return nil
}

type fixture struct {
	db    *gorm.DB
	svc   campaigndomain.Service
	email *fakeEmail
	clock *clock.FakeClock
	genID *snowflake.Node
	shop  tenantdomain.Shop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&campaigndomain.Campaign{},
		&campaigndomain.PromoRedemption{},
		&memberdomain.Member{},
		&loyaltydomain.StampCounter{},
		&activitydomain.LogEntry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	mail := &fakeEmail{failTo: map[string]bool{}}

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

	svc := New(Params{
		Config:      config.Config{CampaignSendDelayMs: 0},
		DB:          db,
		Log:         logger,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        campaignrepo.Provide(),
		Email:       mail,
		LoyaltySvc:  loyaltySvc,
		ActivitySvc: activitySvc,
	})

	return &fixture{
		db:    db,
		svc:   svc,
		email: mail,
		clock: fakeClock,
		genID: node,
		shop: tenantdomain.Shop{
			ID:   node.Generate(),
			Code: "perk",
			Name: "Perk Coffee",
		},
	}
}

func (f *fixture) newMember(t *testing.T, email, level string, points int64) memberdomain.Member {
	t.Helper()
	code := f.shop.Code
	member := memberdomain.Member{
		ID:           f.genID.Generate(),
		Email:        email,
		PasswordHash: "x",
		Role:         memberdomain.RoleCustomer,
		ShopCode:     &code,
		Points:       points,
		Level:        level,
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&member).Error)
	return member
}

func (f *fixture) newCampaign(t *testing.T, req campaigndomain.CreateCampaignRequest) campaigndomain.Campaign {
	t.Helper()
	req.ShopCode = f.shop.Code
	campaign, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	return campaign
}

func TestSend_AllAudience(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.newMember(t, "a@example.com", "bronze", 0)
	f.newMember(t, "b@example.com", "silver", 600)
	campaign := f.newCampaign(t, campaigndomain.CreateCampaignRequest{
		Title:   "June promo",
		Subject: "Free pastry week",
	})

	result, err := f.svc.Send(ctx, f.shop.Code, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recipients)
	assert.Equal(t, 2, result.Sent)
	assert.Zero(t, result.Failed)
	assert.Equal(t, campaigndomain.StatusSent, result.Status)
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, f.email.sent)

	got, err := f.svc.GetByID(ctx, f.shop.Code, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaigndomain.StatusSent, got.Status)
	assert.Equal(t, 2, got.SentCount)
	require.NotNil(t, got.SentAt)

	_, err = f.svc.Send(ctx, f.shop.Code, campaign.ID)
	assert.ErrorIs(t, err, campaigndomain.ErrAlreadySent)
}

func TestSend_AudienceFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.newMember(t, "bronze@example.com", "bronze", 50)
	f.newMember(t, "gold@example.com", "gold", 2000)

	byLevel := f.newCampaign(t, campaigndomain.CreateCampaignRequest{
		Title:         "Gold perks",
		Audience:      campaigndomain.AudienceLevel,
		AudienceLevel: "gold",
	})
	result, err := f.svc.Send(ctx, f.shop.Code, byLevel.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"gold@example.com"}, f.email.sent)
	assert.Equal(t, 1, result.Sent)

	f.email.sent = nil
	byPoints := f.newCampaign(t, campaigndomain.CreateCampaignRequest{
		Title:             "Big spenders",
		Audience:          campaigndomain.AudienceMinPoints,
		AudienceMinPoints: 1000,
	})
	result, err = f.svc.Send(ctx, f.shop.Code, byPoints.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"gold@example.com"}, f.email.sent)
	assert.Equal(t, 1, result.Sent)
}

func TestSend_PartialFailureStillSent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.newMember(t, "ok@example.com", "bronze", 0)
	f.newMember(t, "bad@example.com", "bronze", 0)
	f.email.failTo["bad@example.com"] = true

	campaign := f.newCampaign(t, campaigndomain.CreateCampaignRequest{Title: "Promo"})
	result, err := f.svc.Send(ctx, f.shop.Code, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, campaigndomain.StatusSent, result.Status)
}

func TestSend_AllFailuresMarksFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.newMember(t, "bad@example.com", "bronze", 0)
	f.email.failTo["bad@example.com"] = true

	campaign := f.newCampaign(t, campaigndomain.CreateCampaignRequest{Title: "Promo"})
	result, err := f.svc.Send(ctx, f.shop.Code, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaigndomain.StatusFailed, result.Status)

	got, err := f.svc.GetByID(ctx, f.shop.Code, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaigndomain.StatusFailed, got.Status)
}

func TestSend_NoRecipients(t *testing.T) {
	f := newFixture(t)
	campaign := f.newCampaign(t, campaigndomain.CreateCampaignRequest{Title: "Promo"})

	_, err := f.svc.Send(context.Background(), f.shop.Code, campaign.ID)
	assert.ErrorIs(t, err, campaigndomain.ErrNoRecipients)
}

func TestToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := f.newCampaign(t, campaigndomain.CreateCampaignRequest{Title: "Promo", PromoPoints: 50})

	toggled, err := f.svc.Toggle(ctx, f.shop.Code, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaigndomain.StatusActive, toggled.Status)

	toggled, err = f.svc.Toggle(ctx, f.shop.Code, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaigndomain.StatusInactive, toggled.Status)
}

func TestRedeemPromo_OncePerMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, "a@example.com", "bronze", 0)
	campaign := f.newCampaign(t, campaigndomain.CreateCampaignRequest{Title: "Promo", PromoPoints: 50})

	_, err := f.svc.Toggle(ctx, f.shop.Code, campaign.ID)
	require.NoError(t, err)

	resp, err := f.svc.RedeemPromo(ctx, campaigndomain.RedeemPromoRequest{
		Shop: f.shop, CampaignID: campaign.ID, MemberID: member.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), resp.PointsAwarded)

	var got memberdomain.Member
	require.NoError(t, f.db.Where("id = ?", member.ID).First(&got).Error)
	assert.Equal(t, int64(50), got.Points)

	var entry activitydomain.LogEntry
	require.NoError(t, f.db.Where("member_id = ? AND type = ?", member.ID, activitydomain.TypePromoRedeem).First(&entry).Error)

	_, err = f.svc.RedeemPromo(ctx, campaigndomain.RedeemPromoRequest{
		Shop: f.shop, CampaignID: campaign.ID, MemberID: member.ID,
	})
	assert.ErrorIs(t, err, campaigndomain.ErrAlreadyRedeemed)

	require.NoError(t, f.db.Where("id = ?", member.ID).First(&got).Error)
	assert.Equal(t, int64(50), got.Points)
}

func TestRedeemPromo_InactiveCampaign(t *testing.T) {
	f := newFixture(t)
	member := f.newMember(t, "a@example.com", "bronze", 0)
	campaign := f.newCampaign(t, campaigndomain.CreateCampaignRequest{Title: "Promo", PromoPoints: 50})

	_, err := f.svc.RedeemPromo(context.Background(), campaigndomain.RedeemPromoRequest{
		Shop: f.shop, CampaignID: campaign.ID, MemberID: member.ID,
	})
	assert.ErrorIs(t, err, campaigndomain.ErrCampaignInactive)
}
