package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/pkg/db/pagination"
	"gorm.io/gorm"
)

type AppendRequest struct {
	ShopCode    string
	MemberID    snowflake.ID
	ActorID     *snowflake.ID
	Type        EntryType
	Description string
	Metadata    map[string]any
}

type ListRequest struct {
	pagination.Pagination
	ShopCode string
	MemberID snowflake.ID
	Type     string
	StartAt  *time.Time
	EndAt    *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Entries []LogEntry `json:"entries"`
}

type Service interface {
	// Append writes one log row using tx so the entry commits or rolls
	// back together with the mutation it records.
	Append(ctx context.Context, tx *gorm.DB, req AppendRequest) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidShop      = errors.New("invalid_shop")
	ErrInvalidMember    = errors.New("invalid_member")
	ErrInvalidType      = errors.New("invalid_type")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
