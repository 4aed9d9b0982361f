package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brewpass/brewpass/internal/activity"
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	"github.com/brewpass/brewpass/internal/campaign"
	campaigndomain "github.com/brewpass/brewpass/internal/campaign/domain"
	"github.com/brewpass/brewpass/internal/catalog"
	catalogdomain "github.com/brewpass/brewpass/internal/catalog/domain"
	"github.com/brewpass/brewpass/internal/clock"
	"github.com/brewpass/brewpass/internal/config"
	"github.com/brewpass/brewpass/internal/loyalty"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	"github.com/brewpass/brewpass/internal/member"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	obslogger "github.com/brewpass/brewpass/internal/observability/logger"
	obsmetrics "github.com/brewpass/brewpass/internal/observability/metrics"
	"github.com/brewpass/brewpass/internal/order"
	orderdomain "github.com/brewpass/brewpass/internal/order/domain"
	"github.com/brewpass/brewpass/internal/providers/email"
	"github.com/brewpass/brewpass/internal/referral"
	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
	"github.com/brewpass/brewpass/internal/tenant"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

var Module = fx.Module("http.server",
	tenant.Module,
	member.Module,
	activity.Module,
	loyalty.Module,
	referral.Module,
	catalog.Module,
	order.Module,
	campaign.Module,
	email.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(metrics))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", HeaderShopCode},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	return r
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	tokens *tokenManager

	tenantSvc   tenantdomain.Service
	memberSvc   memberdomain.Service
	loyaltySvc  loyaltydomain.Service
	referralSvc referraldomain.Service
	catalogSvc  catalogdomain.Service
	orderSvc    orderdomain.Service
	campaignSvc campaigndomain.Service
	activitySvc activitydomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	TenantSvc   tenantdomain.Service
	MemberSvc   memberdomain.Service
	LoyaltySvc  loyaltydomain.Service
	ReferralSvc referraldomain.Service
	CatalogSvc  catalogdomain.Service
	OrderSvc    orderdomain.Service
	CampaignSvc campaigndomain.Service
	ActivitySvc activitydomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		log:         p.Log.Named("http.server"),
		genID:       p.GenID,
		clock:       p.Clock,
		tokens:      newTokenManager(p.Cfg.AuthJWTSecret),
		tenantSvc:   p.TenantSvc,
		memberSvc:   p.MemberSvc,
		loyaltySvc:  p.LoyaltySvc,
		referralSvc: p.ReferralSvc,
		catalogSvc:  p.CatalogSvc,
		orderSvc:    p.OrderSvc,
		campaignSvc: p.CampaignSvc,
		activitySvc: p.ActivitySvc,
	}

	s.registerAuthRoutes()
	s.registerPublicRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/pin/verify", s.AuthRequired(), s.ShopContext(), s.VerifyPIN)
	auth.PUT("/pin", s.AuthRequired(), s.ShopContext(), s.UpdatePIN)
}

func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.GET("/shops/:code", s.GetShop)
	api.GET("/catalog/menu", s.ShopContext(), s.GetMenu)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired(), s.ShopContext())

	staff := s.RequireRole(memberdomain.RoleStaff, memberdomain.RoleAdmin)
	admin := s.RequireRole(memberdomain.RoleAdmin)

	api.POST("/loyalty/scan", staff, s.Scan)
	api.POST("/loyalty/stamps", staff, s.GrantStamp)
	api.POST("/loyalty/redeem", staff, s.RedeemReward)
	api.POST("/loyalty/points", staff, s.AwardPoints)
	api.POST("/loyalty/points/redeem", staff, s.RedeemPointsReward)

	api.GET("/members/me", s.GetCurrentMember)
	api.GET("/members/me/stamps", s.GetMyStamps)
	api.PATCH("/members/me/preferences", s.UpdatePreferences)
	api.GET("/members", staff, s.ListMembers)

	api.GET("/referrals/code", s.GetReferralCode)
	api.POST("/referrals/apply", s.ApplyReferral)

	api.GET("/catalog/categories", s.ListCategories)
	api.POST("/catalog/categories", admin, s.CreateCategory)
	api.PUT("/catalog/categories/:id", admin, s.UpdateCategory)
	api.DELETE("/catalog/categories/:id", admin, s.DeleteCategory)
	api.GET("/catalog/products", s.ListProducts)
	api.GET("/catalog/products/:id", s.GetProduct)
	api.POST("/catalog/products", admin, s.CreateProduct)
	api.PUT("/catalog/products/:id", admin, s.UpdateProduct)
	api.DELETE("/catalog/products/:id", admin, s.DeleteProduct)

	api.POST("/orders", staff, s.CreateOrder)
	api.GET("/orders", staff, s.ListOrders)
	api.GET("/orders/:id", staff, s.GetOrder)

	api.GET("/campaigns", admin, s.ListCampaigns)
	api.POST("/campaigns", admin, s.CreateCampaign)
	api.GET("/campaigns/:id", admin, s.GetCampaign)
	api.PUT("/campaigns/:id", admin, s.UpdateCampaign)
	api.DELETE("/campaigns/:id", admin, s.DeleteCampaign)
	api.POST("/campaigns/:id/send", admin, s.SendCampaign)
	api.POST("/campaigns/:id/toggle", admin, s.ToggleCampaign)

	api.GET("/activity", s.ListActivity)

	api.PUT("/shops/:code/settings", admin, s.UpdateShopSettings)
}

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.Engine(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
