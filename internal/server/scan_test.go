package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	campaigndomain "github.com/brewpass/brewpass/internal/campaign/domain"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

type fakeLoyaltyService struct {
	grantCalls  int
	redeemCalls int
	lastGrant   loyaltydomain.GrantStampRequest
}

func (f *fakeLoyaltyService) GetCounter(ctx context.Context, shop tenantdomain.Shop, memberID snowflake.ID) (loyaltydomain.StampCounter, error) {
	_ = ctx
	_ = shop
	_ = memberID
	return loyaltydomain.StampCounter{}, nil
}

func (f *fakeLoyaltyService) GrantStamp(ctx context.Context, req loyaltydomain.GrantStampRequest) (loyaltydomain.GrantStampResponse, error) {
	f.grantCalls++
	f.lastGrant = req
	_ = ctx
	return loyaltydomain.GrantStampResponse{Count: 3}, nil
}

func (f *fakeLoyaltyService) RedeemReward(ctx context.Context, req loyaltydomain.RedeemRewardRequest) error {
	f.redeemCalls++
	_ = ctx
	_ = req
	return nil
}

func (f *fakeLoyaltyService) AwardPoints(ctx context.Context, req loyaltydomain.AwardPointsRequest) (loyaltydomain.AwardPointsResponse, error) {
	_ = ctx
	_ = req
	return loyaltydomain.AwardPointsResponse{}, nil
}

func (f *fakeLoyaltyService) RedeemPointsReward(ctx context.Context, req loyaltydomain.RedeemPointsRequest) (loyaltydomain.RedeemPointsResponse, error) {
	_ = ctx
	_ = req
	return loyaltydomain.RedeemPointsResponse{}, nil
}

type fakeCampaignService struct {
	redeemPromoCalls int
	lastPromo        campaigndomain.RedeemPromoRequest
}

func (f *fakeCampaignService) Create(ctx context.Context, req campaigndomain.CreateCampaignRequest) (campaigndomain.Campaign, error) {
	_ = ctx
	_ = req
	return campaigndomain.Campaign{}, nil
}

func (f *fakeCampaignService) Update(ctx context.Context, req campaigndomain.UpdateCampaignRequest) (campaigndomain.Campaign, error) {
	_ = ctx
	_ = req
	return campaigndomain.Campaign{}, nil
}

func (f *fakeCampaignService) Delete(ctx context.Context, shopCode string, id snowflake.ID) error {
	_ = ctx
	_ = shopCode
	_ = id
	return nil
}

func (f *fakeCampaignService) GetByID(ctx context.Context, shopCode string, id snowflake.ID) (campaigndomain.Campaign, error) {
	_ = ctx
	_ = shopCode
	_ = id
	return campaigndomain.Campaign{}, nil
}

func (f *fakeCampaignService) List(ctx context.Context, shopCode string) ([]campaigndomain.Campaign, error) {
	_ = ctx
	_ = shopCode
	return nil, nil
}

func (f *fakeCampaignService) Send(ctx context.Context, shopCode string, id snowflake.ID) (campaigndomain.SendResult, error) {
	_ = ctx
	_ = shopCode
	_ = id
	return campaigndomain.SendResult{}, nil
}

func (f *fakeCampaignService) Toggle(ctx context.Context, shopCode string, id snowflake.ID) (campaigndomain.Campaign, error) {
	_ = ctx
	_ = shopCode
	_ = id
	return campaigndomain.Campaign{}, nil
}

func (f *fakeCampaignService) RedeemPromo(ctx context.Context, req campaigndomain.RedeemPromoRequest) (campaigndomain.RedeemPromoResponse, error) {
	f.redeemPromoCalls++
	f.lastPromo = req
	_ = ctx
	return campaigndomain.RedeemPromoResponse{PointsAwarded: 50}, nil
}

type fakeTenantService struct {
	pinValid bool
	pinRole  string
}

func (f *fakeTenantService) GetByCode(ctx context.Context, code string) (tenantdomain.Shop, error) {
	_ = ctx
	return tenantdomain.Shop{Code: code}, nil
}

func (f *fakeTenantService) UpdateSettings(ctx context.Context, req tenantdomain.UpdateSettingsRequest) (tenantdomain.Shop, error) {
	_ = ctx
	_ = req
	return tenantdomain.Shop{}, nil
}

func (f *fakeTenantService) VerifyPIN(ctx context.Context, req tenantdomain.VerifyPINRequest) (tenantdomain.VerifyPINResponse, error) {
	_ = ctx
	_ = req
	return tenantdomain.VerifyPINResponse{Valid: f.pinValid, Role: f.pinRole}, nil
}

func (f *fakeTenantService) UpdatePIN(ctx context.Context, req tenantdomain.UpdatePINRequest) error {
	_ = ctx
	_ = req
	return nil
}

func newScanRouter(srv *Server, shop tenantdomain.Shop, actor memberdomain.Member) *gin.Engine {
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Use(func(c *gin.Context) {
		c.Set(contextShopKey, shop)
		c.Set(contextMemberKey, actor)
		c.Next()
	})
	router.POST("/api/loyalty/scan", srv.Scan)
	return router
}

func postScan(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/loyalty/scan", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestScanHandlerGrantsStamp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	loyaltySvc := &fakeLoyaltyService{}
	srv := &Server{loyaltySvc: loyaltySvc, campaignSvc: &fakeCampaignService{}}

	shop := tenantdomain.Shop{Code: "perk"}
	actor := memberdomain.Member{ID: snowflake.ID(7), Role: memberdomain.RoleStaff}
	router := newScanRouter(srv, shop, actor)

	resp := postScan(router, `{"payload": "{\"uid\": \"1234\", \"action\": \"scan\", \"shop\": \"perk\"}"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if loyaltySvc.grantCalls != 1 {
		t.Fatalf("expected one stamp grant, got %d", loyaltySvc.grantCalls)
	}
	if loyaltySvc.lastGrant.MemberID != snowflake.ID(1234) {
		t.Fatalf("unexpected member id %d", loyaltySvc.lastGrant.MemberID)
	}
	if loyaltySvc.lastGrant.Force {
		t.Fatal("expected a plain grant, got a forced one")
	}
}

func TestScanHandlerRedeemAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	loyaltySvc := &fakeLoyaltyService{}
	srv := &Server{loyaltySvc: loyaltySvc, campaignSvc: &fakeCampaignService{}}

	router := newScanRouter(srv, tenantdomain.Shop{Code: "perk"}, memberdomain.Member{ID: snowflake.ID(7), Role: memberdomain.RoleStaff})
	resp := postScan(router, `{"payload": "{\"uid\": \"1234\", \"action\": \"redeem\"}"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if loyaltySvc.redeemCalls != 1 {
		t.Fatalf("expected one redeem, got %d", loyaltySvc.redeemCalls)
	}
	if loyaltySvc.grantCalls != 0 {
		t.Fatal("redeem payload must not grant a stamp")
	}
}

func TestScanHandlerPromoPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	campaignSvc := &fakeCampaignService{}
	srv := &Server{loyaltySvc: &fakeLoyaltyService{}, campaignSvc: campaignSvc}

	router := newScanRouter(srv, tenantdomain.Shop{Code: "perk"}, memberdomain.Member{ID: snowflake.ID(7), Role: memberdomain.RoleStaff})
	resp := postScan(router, `{"payload": "{\"type\": \"promo\", \"campaignId\": \"42\", \"user\": \"1234\"}"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if campaignSvc.redeemPromoCalls != 1 {
		t.Fatalf("expected one promo redemption, got %d", campaignSvc.redeemPromoCalls)
	}
	if campaignSvc.lastPromo.CampaignID != snowflake.ID(42) {
		t.Fatalf("unexpected campaign id %d", campaignSvc.lastPromo.CampaignID)
	}
}

func TestScanHandlerForceNeedsAdminPIN(t *testing.T) {
	gin.SetMode(gin.TestMode)

	loyaltySvc := &fakeLoyaltyService{}
	srv := &Server{
		loyaltySvc:  loyaltySvc,
		campaignSvc: &fakeCampaignService{},
		tenantSvc:   &fakeTenantService{pinValid: true, pinRole: tenantdomain.PINRoleStaff},
	}

	router := newScanRouter(srv, tenantdomain.Shop{Code: "perk"}, memberdomain.Member{ID: snowflake.ID(7), Role: memberdomain.RoleStaff})
	resp := postScan(router, `{"payload": "1234", "force": true, "pin": "0000"}`)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", resp.Code, resp.Body.String())
	}
	if loyaltySvc.grantCalls != 0 {
		t.Fatal("a staff PIN must not authorize a forced grant")
	}
}

func TestScanHandlerForceWithAdminPIN(t *testing.T) {
	gin.SetMode(gin.TestMode)

	loyaltySvc := &fakeLoyaltyService{}
	srv := &Server{
		loyaltySvc:  loyaltySvc,
		campaignSvc: &fakeCampaignService{},
		tenantSvc:   &fakeTenantService{pinValid: true, pinRole: tenantdomain.PINRoleAdmin},
	}

	router := newScanRouter(srv, tenantdomain.Shop{Code: "perk"}, memberdomain.Member{ID: snowflake.ID(7), Role: memberdomain.RoleStaff})
	resp := postScan(router, `{"payload": "1234", "force": true, "pin": "4242"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if loyaltySvc.grantCalls != 1 {
		t.Fatalf("expected one forced grant, got %d", loyaltySvc.grantCalls)
	}
	if !loyaltySvc.lastGrant.Force {
		t.Fatal("expected the grant to carry force")
	}
}

func TestScanHandlerRejectsGarbagePayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{loyaltySvc: &fakeLoyaltyService{}, campaignSvc: &fakeCampaignService{}}
	router := newScanRouter(srv, tenantdomain.Shop{Code: "perk"}, memberdomain.Member{ID: snowflake.ID(7), Role: memberdomain.RoleStaff})

	resp := postScan(router, `{"payload": "not-a-card"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
}
