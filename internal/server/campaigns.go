package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	campaigndomain "github.com/brewpass/brewpass/internal/campaign/domain"
)

func (s *Server) ListCampaigns(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	campaigns, err := s.campaignSvc.List(c.Request.Context(), shop.Code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": campaigns})
}

type createCampaignRequest struct {
	Title             string         `json:"title"`
	Subject           string         `json:"subject"`
	BodyHTML          string         `json:"body_html"`
	Audience          string         `json:"audience"`
	AudienceLevel     string         `json:"audience_level"`
	AudienceMinPoints int64          `json:"audience_min_points"`
	PromoPoints       int64          `json:"promo_points"`
	Metadata          map[string]any `json:"metadata"`
}

func (s *Server) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	campaign, err := s.campaignSvc.Create(c.Request.Context(), campaigndomain.CreateCampaignRequest{
		ShopCode:          shop.Code,
		Title:             req.Title,
		Subject:           req.Subject,
		BodyHTML:          req.BodyHTML,
		Audience:          req.Audience,
		AudienceLevel:     req.AudienceLevel,
		AudienceMinPoints: req.AudienceMinPoints,
		PromoPoints:       req.PromoPoints,
		Metadata:          req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": campaign})
}

func (s *Server) GetCampaign(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	campaign, err := s.campaignSvc.GetByID(c.Request.Context(), shop.Code, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": campaign})
}

type updateCampaignRequest struct {
	Title             *string `json:"title"`
	Subject           *string `json:"subject"`
	BodyHTML          *string `json:"body_html"`
	Audience          *string `json:"audience"`
	AudienceLevel     *string `json:"audience_level"`
	AudienceMinPoints *int64  `json:"audience_min_points"`
	PromoPoints       *int64  `json:"promo_points"`
}

func (s *Server) UpdateCampaign(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	campaign, err := s.campaignSvc.Update(c.Request.Context(), campaigndomain.UpdateCampaignRequest{
		ShopCode:          shop.Code,
		ID:                id,
		Title:             req.Title,
		Subject:           req.Subject,
		BodyHTML:          req.BodyHTML,
		Audience:          req.Audience,
		AudienceLevel:     req.AudienceLevel,
		AudienceMinPoints: req.AudienceMinPoints,
		PromoPoints:       req.PromoPoints,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": campaign})
}

func (s *Server) DeleteCampaign(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.campaignSvc.Delete(c.Request.Context(), shop.Code, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) SendCampaign(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	result, err := s.campaignSvc.Send(c.Request.Context(), shop.Code, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ToggleCampaign(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	campaign, err := s.campaignSvc.Toggle(c.Request.Context(), shop.Code, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": campaign})
}
