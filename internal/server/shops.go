package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

// GetShop serves the public branding surface consumed before login.
func (s *Server) GetShop(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	shop, err := s.tenantSvc.GetByCode(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"code":             shop.Code,
		"name":             shop.Name,
		"theme":            shop.Theme,
		"features":         shop.Features,
		"reward_threshold": shop.RewardThreshold,
	}})
}

type updateShopSettingsRequest struct {
	Name            string         `json:"name"`
	Theme           map[string]any `json:"theme"`
	Features        map[string]any `json:"features"`
	RewardThreshold *int           `json:"reward_threshold"`
	IsolationPolicy string         `json:"isolation_policy"`
	SilverFloor     *int64         `json:"silver_floor"`
	GoldFloor       *int64         `json:"gold_floor"`
	ReferralBonus   *int64         `json:"referral_bonus"`
}

func (s *Server) UpdateShopSettings(c *gin.Context) {
	var req updateShopSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, err := s.tenantSvc.UpdateSettings(c.Request.Context(), tenantdomain.UpdateSettingsRequest{
		Code:            strings.TrimSpace(c.Param("code")),
		Name:            strings.TrimSpace(req.Name),
		Theme:           req.Theme,
		Features:        req.Features,
		RewardThreshold: req.RewardThreshold,
		IsolationPolicy: strings.TrimSpace(req.IsolationPolicy),
		SilverFloor:     req.SilverFloor,
		GoldFloor:       req.GoldFloor,
		ReferralBonus:   req.ReferralBonus,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": shop})
}
