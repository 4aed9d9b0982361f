package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	"github.com/brewpass/brewpass/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  memberdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  memberdomain.Repository
}

func New(p Params) memberdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("member.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Signup(ctx context.Context, req memberdomain.SignupRequest) (memberdomain.Member, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return memberdomain.Member{}, memberdomain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return memberdomain.Member{}, memberdomain.ErrInvalidPassword
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = memberdomain.RoleCustomer
	}
	switch role {
	case memberdomain.RoleCustomer, memberdomain.RoleStaff, memberdomain.RoleAdmin:
	default:
		return memberdomain.Member{}, memberdomain.ErrInvalidRole
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return memberdomain.Member{}, err
	}
	if existing != nil {
		return memberdomain.Member{}, memberdomain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return memberdomain.Member{}, err
	}

	now := time.Now().UTC()
	member := memberdomain.Member{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Level:        "bronze",
		Preferences:  datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if code := strings.TrimSpace(req.ShopCode); code != "" {
		member.ShopCode = &code
	}

	if err := s.repo.Insert(ctx, s.db, &member); err != nil {
		return memberdomain.Member{}, err
	}
	return member, nil
}

func (s *Service) Authenticate(ctx context.Context, req memberdomain.AuthenticateRequest) (memberdomain.Member, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return memberdomain.Member{}, memberdomain.ErrInvalidCredentials
	}

	member, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return memberdomain.Member{}, err
	}
	if member == nil {
		return memberdomain.Member{}, memberdomain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)) != nil {
		return memberdomain.Member{}, memberdomain.ErrInvalidCredentials
	}
	return *member, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (memberdomain.Member, error) {
	if id == 0 {
		return memberdomain.Member{}, memberdomain.ErrInvalidID
	}

	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return memberdomain.Member{}, err
	}
	if member == nil {
		return memberdomain.Member{}, memberdomain.ErrNotFound
	}
	return *member, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (memberdomain.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return memberdomain.Member{}, memberdomain.ErrInvalidEmail
	}

	member, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return memberdomain.Member{}, err
	}
	if member == nil {
		return memberdomain.Member{}, memberdomain.ErrNotFound
	}
	return *member, nil
}

func (s *Service) List(ctx context.Context, req memberdomain.ListMemberRequest) (memberdomain.ListMemberResponse, error) {
	var cursor *memberdomain.ListCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return memberdomain.ListMemberResponse{}, memberdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return memberdomain.ListMemberResponse{}, memberdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return memberdomain.ListMemberResponse{}, memberdomain.ErrInvalidPageToken
		}
		cursor = &memberdomain.ListCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, memberdomain.ListFilter{
		ShopCode: strings.TrimSpace(req.ShopCode),
		Role:     strings.TrimSpace(req.Role),
		Cursor:   cursor,
		Limit:    pageSize,
	})
	if err != nil {
		return memberdomain.ListMemberResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *memberdomain.Member) string {
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

	members := make([]memberdomain.Member, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		members = append(members, *item)
	}

	resp := memberdomain.ListMemberResponse{Members: members}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, req memberdomain.UpdatePreferencesRequest) (memberdomain.Member, error) {
	member, err := s.GetByID(ctx, req.MemberID)
	if err != nil {
		return memberdomain.Member{}, err
	}

	if member.Preferences == nil {
		member.Preferences = datatypes.JSONMap{}
	}
	for key, value := range req.Preferences {
		if key == "" {
			continue
		}
		if value == nil {
			delete(member.Preferences, key)
			continue
		}
		member.Preferences[key] = value
	}
	member.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &member); err != nil {
		return memberdomain.Member{}, err
	}
	return member, nil
}
