package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
)

func (s *Server) GetReferralCode(c *gin.Context) {
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

	code, err := s.referralSvc.GetOrCreateCode(c.Request.Context(), shop, member.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": code})
}

type applyReferralRequest struct {
	Code string `json:"code"`
}

func (s *Server) ApplyReferral(c *gin.Context) {
	var req applyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

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

	link, err := s.referralSvc.ApplyReferral(c.Request.Context(), referraldomain.ApplyReferralRequest{
		Shop:      shop,
		RefereeID: member.ID,
		Code:      req.Code,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": link})
}
