package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	"github.com/brewpass/brewpass/internal/member/repository"
	"github.com/brewpass/brewpass/pkg/db/pagination"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) memberdomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&memberdomain.Member{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestSignup(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	member, err := svc.Signup(ctx, memberdomain.SignupRequest{
		Email:       "  Alice@Example.COM ",
		Password:    "espresso-machine",
		DisplayName: "Alice",
		ShopCode:    "perk",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", member.Email)
	assert.Equal(t, memberdomain.RoleCustomer, member.Role)
	assert.Equal(t, "bronze", member.Level)
	require.NotNil(t, member.ShopCode)
	assert.Equal(t, "perk", *member.ShopCode)
	assert.NotEqual(t, "espresso-machine", member.PasswordHash)

	_, err = svc.Signup(ctx, memberdomain.SignupRequest{
		Email:    "alice@example.com",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, memberdomain.ErrEmailTaken)
}

func TestSignup_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, memberdomain.SignupRequest{Email: "no-at-sign", Password: "espresso-machine"})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidEmail)

	_, err = svc.Signup(ctx, memberdomain.SignupRequest{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidPassword)

	_, err = svc.Signup(ctx, memberdomain.SignupRequest{Email: "a@b.com", Password: "espresso-machine", Role: "barista"})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidRole)
}

func TestAuthenticate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, memberdomain.SignupRequest{
		Email:    "bob@example.com",
		Password: "flat-white-please",
	})
	require.NoError(t, err)

	member, err := svc.Authenticate(ctx, memberdomain.AuthenticateRequest{
		Email:    "BOB@example.com",
		Password: "flat-white-please",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, member.ID)

	_, err = svc.Authenticate(ctx, memberdomain.AuthenticateRequest{
		Email:    "bob@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, memberdomain.AuthenticateRequest{
		Email:    "nobody@example.com",
		Password: "flat-white-please",
	})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidCredentials)
}

func TestUpdatePreferences(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	member, err := svc.Signup(ctx, memberdomain.SignupRequest{
		Email:    "carol@example.com",
		Password: "oat-milk-latte",
	})
	require.NoError(t, err)

	updated, err := svc.UpdatePreferences(ctx, memberdomain.UpdatePreferencesRequest{
		MemberID: member.ID,
		Preferences: map[string]any{
			"favorite_drink": "cortado",
			"email_opt_in":   true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cortado", updated.Preferences["favorite_drink"])
	assert.Equal(t, true, updated.Preferences["email_opt_in"])

	// A nil value removes the key.
	updated, err = svc.UpdatePreferences(ctx, memberdomain.UpdatePreferencesRequest{
		MemberID:    member.ID,
		Preferences: map[string]any{"favorite_drink": nil},
	})
	require.NoError(t, err)
	_, ok := updated.Preferences["favorite_drink"]
	assert.False(t, ok)
	assert.Equal(t, true, updated.Preferences["email_opt_in"])
}

func TestListMembers_CursorPagination(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Signup(ctx, memberdomain.SignupRequest{
			Email:    email,
			Password: "espresso-machine",
			ShopCode: "perk",
		})
		require.NoError(t, err)
	}
	_, err := svc.Signup(ctx, memberdomain.SignupRequest{
		Email:    "elsewhere@example.com",
		Password: "espresso-machine",
		ShopCode: "other",
	})
	require.NoError(t, err)

	page, err := svc.List(ctx, memberdomain.ListMemberRequest{
		Pagination: paginationOf(2, ""),
		ShopCode:   "perk",
	})
	require.NoError(t, err)
	require.Len(t, page.Members, 2)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextPageToken)

	rest, err := svc.List(ctx, memberdomain.ListMemberRequest{
		Pagination: paginationOf(10, page.NextPageToken),
		ShopCode:   "perk",
	})
	require.NoError(t, err)
	require.Len(t, rest.Members, 1)
	assert.False(t, rest.HasMore)

	_, err = svc.List(ctx, memberdomain.ListMemberRequest{
		Pagination: paginationOf(10, "!!not-base64!!"),
	})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidPageToken)
}

func paginationOf(size int, token string) pagination.Pagination {
	return pagination.Pagination{PageSize: size, PageToken: token}
}
