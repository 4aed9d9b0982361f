package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	campaigndomain "github.com/brewpass/brewpass/internal/campaign/domain"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	"github.com/brewpass/brewpass/internal/qr"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

type scanRequest struct {
	Payload string `json:"payload"`
	Force   bool   `json:"force"`
	PIN     string `json:"pin"`
}

// Scan decodes a QR payload and dispatches on its kind: a member scan
// grants a stamp, a redeem payload redeems the stamp reward, a promo
// payload redeems the campaign promo.
func (s *Server) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payload, err := qr.Decode(req.Payload)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	actor, _ := currentMember(c)

	memberID, err := s.resolveScanMember(payload.MemberUID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	switch payload.Kind {
	case qr.KindScan:
		force := req.Force
		if force {
			if err := s.verifyAdminPIN(c, shop, req.PIN); err != nil {
				AbortWithError(c, err)
				return
			}
		}
		resp, err := s.loyaltySvc.GrantStamp(c.Request.Context(), loyaltydomain.GrantStampRequest{
			Shop:     shop,
			MemberID: memberID,
			ActorID:  &actor.ID,
			Force:    force,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"kind": payload.Kind, "result": resp}})

	case qr.KindRedeem:
		err := s.loyaltySvc.RedeemReward(c.Request.Context(), loyaltydomain.RedeemRewardRequest{
			Shop:     shop,
			MemberID: memberID,
			ActorID:  &actor.ID,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"kind": payload.Kind, "redeemed": true}})

	case qr.KindPromo:
		campaignID, err := snowflake.ParseString(payload.CampaignID)
		if err != nil {
			AbortWithError(c, qr.ErrInvalidPayload)
			return
		}
		resp, err := s.campaignSvc.RedeemPromo(c.Request.Context(), campaigndomain.RedeemPromoRequest{
			Shop:       shop,
			CampaignID: campaignID,
			MemberID:   memberID,
			ActorID:    &actor.ID,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"kind": payload.Kind, "result": resp}})

	default:
		AbortWithError(c, qr.ErrInvalidPayload)
	}
}

type grantStampRequest struct {
	MemberID string `json:"member_id"`
	Force    bool   `json:"force"`
	PIN      string `json:"pin"`
}

func (s *Server) GrantStamp(c *gin.Context) {
	var req grantStampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, _ := currentShop(c)
	actor, _ := currentMember(c)
	memberID, err := parseMemberID(req.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Force {
		if err := s.verifyAdminPIN(c, shop, req.PIN); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	resp, err := s.loyaltySvc.GrantStamp(c.Request.Context(), loyaltydomain.GrantStampRequest{
		Shop:     shop,
		MemberID: memberID,
		ActorID:  &actor.ID,
		Force:    req.Force,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type redeemRewardRequest struct {
	MemberID string `json:"member_id"`
}

func (s *Server) RedeemReward(c *gin.Context) {
	var req redeemRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, _ := currentShop(c)
	actor, _ := currentMember(c)
	memberID, err := parseMemberID(req.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.loyaltySvc.RedeemReward(c.Request.Context(), loyaltydomain.RedeemRewardRequest{
		Shop:     shop,
		MemberID: memberID,
		ActorID:  &actor.ID,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"redeemed": true}})
}

type awardPointsRequest struct {
	MemberID string `json:"member_id"`
	Amount   int64  `json:"amount"`
	Source   string `json:"source"`
}

func (s *Server) AwardPoints(c *gin.Context) {
	var req awardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, _ := currentShop(c)
	actor, _ := currentMember(c)
	memberID, err := parseMemberID(req.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "manual"
	}

	resp, err := s.loyaltySvc.AwardPoints(c.Request.Context(), loyaltydomain.AwardPointsRequest{
		Shop:     shop,
		MemberID: memberID,
		ActorID:  &actor.ID,
		Amount:   req.Amount,
		Source:   source,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type redeemPointsRequest struct {
	MemberID    string `json:"member_id"`
	Cost        int64  `json:"cost"`
	Description string `json:"description"`
}

func (s *Server) RedeemPointsReward(c *gin.Context) {
	var req redeemPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, _ := currentShop(c)
	actor, _ := currentMember(c)
	memberID, err := parseMemberID(req.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.loyaltySvc.RedeemPointsReward(c.Request.Context(), loyaltydomain.RedeemPointsRequest{
		Shop:        shop,
		MemberID:    memberID,
		ActorID:     &actor.ID,
		Cost:        req.Cost,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) verifyAdminPIN(c *gin.Context, shop tenantdomain.Shop, pin string) error {
	verified, err := s.tenantSvc.VerifyPIN(c.Request.Context(), tenantdomain.VerifyPINRequest{
		Code: shop.Code,
		PIN:  pin,
	})
	if err != nil {
		return err
	}
	if !verified.Valid || verified.Role != tenantdomain.PINRoleAdmin {
		return ErrUnauthorized
	}
	return nil
}

// resolveScanMember maps a QR member identifier to a member row.
func (s *Server) resolveScanMember(uid string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(uid))
	if err != nil || id == 0 {
		return 0, memberdomain.ErrNotFound
	}
	return id, nil
}

func parseMemberID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, memberdomain.ErrInvalidID
	}
	return id, nil
}
