package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/pkg/db/pagination"
)

type SignupRequest struct {
	Email       string
	Password    string
	DisplayName string
	ShopCode    string
	Role        string
}

type AuthenticateRequest struct {
	Email    string
	Password string
}

type ListMemberRequest struct {
	pagination.Pagination
	ShopCode string
	Role     string
}

type ListMemberResponse struct {
	pagination.PageInfo
	Members []Member `json:"members"`
}

type UpdatePreferencesRequest struct {
	MemberID    snowflake.ID
	Preferences map[string]any
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (Member, error)
	Authenticate(ctx context.Context, req AuthenticateRequest) (Member, error)
	GetByID(ctx context.Context, id snowflake.ID) (Member, error)
	GetByEmail(ctx context.Context, email string) (Member, error)
	List(ctx context.Context, req ListMemberRequest) (ListMemberResponse, error)
	UpdatePreferences(ctx context.Context, req UpdatePreferencesRequest) (Member, error)
}

var (
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidPageToken   = errors.New("invalid_page_token")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNotFound           = errors.New("not_found")
)
