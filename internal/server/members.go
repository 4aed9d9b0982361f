package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	"github.com/brewpass/brewpass/pkg/db/pagination"
)

func (s *Server) GetCurrentMember(c *gin.Context) {
	member, ok := currentMember(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": member})
}

// GetMyStamps is the client poll target: the customer card refreshes
// from it after each scan.
func (s *Server) GetMyStamps(c *gin.Context) {
	member, ok := currentMember(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	counter, err := s.loyaltySvc.GetCounter(c.Request.Context(), shop, member.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"count":            counter.Count,
		"last_stamp_at":    counter.LastStampAt,
		"reward_threshold": shop.RewardThreshold,
		"reward_ready":     counter.Count >= shop.RewardThreshold,
	}})
}

type updatePreferencesRequest struct {
	Preferences map[string]any `json:"preferences"`
}

func (s *Server) UpdatePreferences(c *gin.Context) {
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	member, ok := currentMember(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	updated, err := s.memberSvc.UpdatePreferences(c.Request.Context(), memberdomain.UpdatePreferencesRequest{
		MemberID:    member.ID,
		Preferences: req.Preferences,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) ListMembers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Role string `form:"role"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.memberSvc.List(c.Request.Context(), memberdomain.ListMemberRequest{
		Pagination: query.Pagination,
		ShopCode:   shop.Code,
		Role:       strings.TrimSpace(query.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
