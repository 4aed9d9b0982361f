package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	activityrepo "github.com/brewpass/brewpass/internal/activity/repository"
	activityservice "github.com/brewpass/brewpass/internal/activity/service"
	"github.com/brewpass/brewpass/internal/clock"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	loyaltyrepo "github.com/brewpass/brewpass/internal/loyalty/repository"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   loyaltydomain.Service
	clock *clock.FakeClock
	genID *snowflake.Node
	shop  tenantdomain.Shop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&loyaltydomain.StampCounter{},
		&memberdomain.Member{},
		&activitydomain.LogEntry{},
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

	svc := New(Params{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        loyaltyrepo.Provide(),
		ActivitySvc: activitySvc,
	})

	return &fixture{
		db:    db,
		svc:   svc,
		clock: fakeClock,
		genID: node,
		shop: tenantdomain.Shop{
			ID:              node.Generate(),
			Code:            "perk",
			Name:            "Perk Coffee",
			RewardThreshold: 7,
			SilverFloor:     500,
			GoldFloor:       1500,
		},
	}
}

func (f *fixture) newMember(t *testing.T, points int64) memberdomain.Member {
	t.Helper()
	code := f.shop.Code
	member := memberdomain.Member{
		ID:           f.genID.Generate(),
		Email:        f.genID.Generate().String() + "@example.com",
		PasswordHash: "x",
		Role:         memberdomain.RoleCustomer,
		ShopCode:     &code,
		Points:       points,
		Level:        "bronze",
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&member).Error)
	return member
}

func (f *fixture) lastLogEntry(t *testing.T, memberID snowflake.ID) *activitydomain.LogEntry {
	t.Helper()
	var entry activitydomain.LogEntry
	err := f.db.Where("member_id = ?", memberID).Order("created_at desc, id desc").First(&entry).Error
	if err != nil {
		return nil
	}
	return &entry
}

func TestGrantStamp_CooldownBlocksSecondStamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, 0)

	first, err := f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)
	assert.False(t, first.RewardReady)

	f.clock.Advance(1 * time.Hour)
	_, err = f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID})
	assert.ErrorIs(t, err, loyaltydomain.ErrCooldownActive)

	counter, err := f.svc.GetCounter(ctx, f.shop, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counter.Count)
}

func TestGrantStamp_ForceBypassesCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, 0)

	_, err := f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID})
	require.NoError(t, err)

	resp, err := f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
}

func TestGrantStamp_AllowedAfterCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, 0)

	_, err := f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID})
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)
	resp, err := f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
}

func TestRedeemReward_ThresholdGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, 0)

	// Stamp up to threshold-1 with the cooldown expiring between grants.
	for i := 0; i < f.shop.RewardThreshold-1; i++ {
		_, err := f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID})
		require.NoError(t, err)
		f.clock.Advance(25 * time.Hour)
	}

	err := f.svc.RedeemReward(ctx, loyaltydomain.RedeemRewardRequest{Shop: f.shop, MemberID: member.ID})
	assert.ErrorIs(t, err, loyaltydomain.ErrInsufficientStamps)

	counter, err := f.svc.GetCounter(ctx, f.shop, member.ID)
	require.NoError(t, err)
	assert.Equal(t, f.shop.RewardThreshold-1, counter.Count)
}

func TestGrantRedeemScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, 0)
	staff := f.genID.Generate()

	// Member sits at 6 of 7 stamps, last stamp 25 hours ago.
	for i := 0; i < 6; i++ {
		_, err := f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID})
		require.NoError(t, err)
		f.clock.Advance(25 * time.Hour)
	}

	resp, err := f.svc.GrantStamp(ctx, loyaltydomain.GrantStampRequest{Shop: f.shop, MemberID: member.ID, ActorID: &staff})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Count)
	assert.True(t, resp.RewardReady)

	entry := f.lastLogEntry(t, member.ID)
	require.NotNil(t, entry)
	assert.Equal(t, activitydomain.TypeAddStamp, entry.Type)

	err = f.svc.RedeemReward(ctx, loyaltydomain.RedeemRewardRequest{Shop: f.shop, MemberID: member.ID, ActorID: &staff})
	require.NoError(t, err)

	counter, err := f.svc.GetCounter(ctx, f.shop, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, counter.Count)

	entry = f.lastLogEntry(t, member.ID)
	require.NotNil(t, entry)
	assert.Equal(t, activitydomain.TypeRedeemReward, entry.Type)

	err = f.svc.RedeemReward(ctx, loyaltydomain.RedeemRewardRequest{Shop: f.shop, MemberID: member.ID, ActorID: &staff})
	assert.ErrorIs(t, err, loyaltydomain.ErrInsufficientStamps)

	counter, err = f.svc.GetCounter(ctx, f.shop, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, counter.Count)
}

func TestAwardPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, 0)

	resp, err := f.svc.AwardPoints(ctx, loyaltydomain.AwardPointsRequest{
		Shop: f.shop, MemberID: member.ID, Amount: 600, Source: "purchase",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600), resp.Balance)
	assert.Equal(t, "silver", resp.Level)

	entry := f.lastLogEntry(t, member.ID)
	require.NotNil(t, entry)
	assert.Equal(t, activitydomain.TypeEarnPoints, entry.Type)

	_, err = f.svc.AwardPoints(ctx, loyaltydomain.AwardPointsRequest{
		Shop: f.shop, MemberID: member.ID, Amount: 0, Source: "purchase",
	})
	assert.ErrorIs(t, err, loyaltydomain.ErrInvalidAmount)

	_, err = f.svc.AwardPoints(ctx, loyaltydomain.AwardPointsRequest{
		Shop: f.shop, MemberID: f.genID.Generate(), Amount: 10, Source: "purchase",
	})
	assert.ErrorIs(t, err, loyaltydomain.ErrMemberNotFound)
}

func TestRedeemPointsReward_BalanceNeverNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, 100)

	_, err := f.svc.RedeemPointsReward(ctx, loyaltydomain.RedeemPointsRequest{
		Shop: f.shop, MemberID: member.ID, Cost: 150, Description: "Free latte",
	})
	assert.ErrorIs(t, err, loyaltydomain.ErrInsufficientPoints)

	var got memberdomain.Member
	require.NoError(t, f.db.Where("id = ?", member.ID).First(&got).Error)
	assert.Equal(t, int64(100), got.Points)

	resp, err := f.svc.RedeemPointsReward(ctx, loyaltydomain.RedeemPointsRequest{
		Shop: f.shop, MemberID: member.ID, Cost: 100, Description: "Free latte",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Balance)

	entry := f.lastLogEntry(t, member.ID)
	require.NotNil(t, entry)
	assert.Equal(t, activitydomain.TypeRedemption, entry.Type)
}

func TestGetCounter_LazyCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newMember(t, 0)

	counter, err := f.svc.GetCounter(ctx, f.shop, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, counter.Count)
	assert.Nil(t, counter.LastStampAt)
}
