package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	"github.com/brewpass/brewpass/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  activitydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  activitydomain.Repository
}

func New(p Params) activitydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Append(ctx context.Context, tx *gorm.DB, req activitydomain.AppendRequest) error {
	shopCode := strings.TrimSpace(req.ShopCode)
	if shopCode == "" {
		return activitydomain.ErrInvalidShop
	}
	if req.MemberID == 0 {
		return activitydomain.ErrInvalidMember
	}
	switch req.Type {
	case activitydomain.TypeAddStamp,
		activitydomain.TypeRedeemReward,
		activitydomain.TypePurchase,
		activitydomain.TypeEarnPoints,
		activitydomain.TypeRedemption,
		activitydomain.TypePromoRedeem:
	default:
		return activitydomain.ErrInvalidType
	}

	if tx == nil {
		tx = s.db
	}

	payload := map[string]any{}
	for key, value := range req.Metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := activitydomain.LogEntry{
		ID:          s.genID.Generate(),
		ShopCode:    shopCode,
		MemberID:    req.MemberID,
		ActorID:     req.ActorID,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
		Metadata:    datatypes.JSONMap(payload),
		CreatedAt:   time.Now().UTC(),
	}

	return s.repo.Insert(ctx, tx, &entry)
}

func (s *Service) List(ctx context.Context, req activitydomain.ListRequest) (activitydomain.ListResponse, error) {
	shopCode := strings.TrimSpace(req.ShopCode)
	if shopCode == "" {
		return activitydomain.ListResponse{}, activitydomain.ErrInvalidShop
	}
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return activitydomain.ListResponse{}, activitydomain.ErrInvalidTimeRange
	}

	var cursor *activitydomain.ListCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return activitydomain.ListResponse{}, activitydomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return activitydomain.ListResponse{}, activitydomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return activitydomain.ListResponse{}, activitydomain.ErrInvalidPageToken
		}
		cursor = &activitydomain.ListCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, activitydomain.ListFilter{
		ShopCode: shopCode,
		MemberID: req.MemberID,
		Type:     strings.TrimSpace(req.Type),
		StartAt:  req.StartAt,
		EndAt:    req.EndAt,
		Cursor:   cursor,
		Limit:    pageSize,
	})
	if err != nil {
		return activitydomain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *activitydomain.LogEntry) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	entries := make([]activitydomain.LogEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}

	resp := activitydomain.ListResponse{Entries: entries}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
