package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	orderdomain "github.com/brewpass/brewpass/internal/order/domain"
	"github.com/brewpass/brewpass/pkg/db/pagination"
)

type createOrderRequest struct {
	MemberID string                       `json:"member_id"`
	Items    []orderdomain.OrderItemInput `json:"items"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Walk-in tickets carry no member.
	var memberID *snowflake.ID
	if req.MemberID != "" {
		id, err := parseMemberID(req.MemberID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		memberID = &id
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	actor, ok := currentMember(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		Shop:     shop,
		MemberID: memberID,
		ActorID:  actor.ID,
		Items:    req.Items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type listOrdersQuery struct {
	pagination.Pagination
	MemberID string `form:"member_id"`
}

func (s *Server) ListOrders(c *gin.Context) {
	var query listOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var memberID *snowflake.ID
	if query.MemberID != "" {
		id, err := parseMemberID(query.MemberID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		memberID = &id
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrderRequest{
		Pagination: query.Pagination,
		ShopCode:   shop.Code,
		MemberID:   memberID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
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
	order, err := s.orderSvc.GetByID(c.Request.Context(), shop.Code, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
