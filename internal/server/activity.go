package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	"github.com/brewpass/brewpass/pkg/db/pagination"
)

type listActivityQuery struct {
	pagination.Pagination
	MemberID string `form:"member_id"`
	Type     string `form:"type"`
	StartAt  string `form:"start_at"`
	EndAt    string `form:"end_at"`
}

// ListActivity serves a member's history feed. Customers only ever see
// their own; staff may ask for any member of the shop.
func (s *Server) ListActivity(c *gin.Context) {
	var query listActivityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, ok := currentMember(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	memberID := actor.ID
	if query.MemberID != "" && query.MemberID != actor.ID.String() {
		if actor.Role == memberdomain.RoleCustomer {
			AbortWithError(c, ErrForbidden)
			return
		}
		id, err := parseMemberID(query.MemberID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		memberID = id
	}

	startAt, err := parseTimeQuery(query.StartAt)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	endAt, err := parseTimeQuery(query.EndAt)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	resp, err := s.activitySvc.List(c.Request.Context(), activitydomain.ListRequest{
		Pagination: query.Pagination,
		ShopCode:   shop.Code,
		MemberID:   memberID,
		Type:       query.Type,
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
