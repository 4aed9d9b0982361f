package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

type signupRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`
	ShopCode     string `json:"shop_code"`
	ReferralCode string `json:"referral_code"`
}

func (s *Server) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shopCode := strings.TrimSpace(req.ShopCode)
	if shopCode == "" {
		shopCode = s.cfg.DefaultShopCode
	}
	shop, err := s.tenantSvc.GetByCode(c.Request.Context(), shopCode)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	member, err := s.memberSvc.Signup(c.Request.Context(), memberdomain.SignupRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		ShopCode:    shop.Code,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// A bad referral code must not sink the signup.
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		if _, err := s.referralSvc.ApplyReferral(c.Request.Context(), referraldomain.ApplyReferralRequest{
			Shop:      shop,
			RefereeID: member.ID,
			Code:      code,
		}); err != nil {
			s.log.Warn("signup referral rejected",
				zap.String("member_id", member.ID.String()),
				zap.Error(err))
		}
	}

	token, err := s.tokens.Issue(member.ID, member.Role, shop.Code, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"member": member, "token": token}})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	member, err := s.memberSvc.Authenticate(c.Request.Context(), memberdomain.AuthenticateRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shopCode := ""
	if member.ShopCode != nil {
		shopCode = *member.ShopCode
	}
	token, err := s.tokens.Issue(member.ID, member.Role, shopCode, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"member": member, "token": token}})
}

type verifyPINRequest struct {
	PIN string `json:"pin"`
}

func (s *Server) VerifyPIN(c *gin.Context) {
	var req verifyPINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.tenantSvc.VerifyPIN(c.Request.Context(), tenantdomain.VerifyPINRequest{
		Code: shop.Code,
		PIN:  req.PIN,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePINRequest struct {
	Role     string `json:"role"`
	NewPIN   string `json:"new_pin"`
	AdminPIN string `json:"admin_pin"`
}

func (s *Server) UpdatePIN(c *gin.Context) {
	var req updatePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	// Changing either PIN requires the current admin PIN.
	verified, err := s.tenantSvc.VerifyPIN(c.Request.Context(), tenantdomain.VerifyPINRequest{
		Code: shop.Code,
		PIN:  req.AdminPIN,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !verified.Valid || verified.Role != tenantdomain.PINRoleAdmin {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.tenantSvc.UpdatePIN(c.Request.Context(), tenantdomain.UpdatePINRequest{
		Code:   shop.Code,
		Role:   req.Role,
		NewPIN: req.NewPIN,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": true}})
}
