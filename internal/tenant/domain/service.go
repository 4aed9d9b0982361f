package domain

import (
	"context"
	"errors"
)

type UpdateSettingsRequest struct {
	Code            string
	Name            string
	Theme           map[string]any
	Features        map[string]any
	RewardThreshold *int
	IsolationPolicy string
	SilverFloor     *int64
	GoldFloor       *int64
	ReferralBonus   *int64
}

type VerifyPINRequest struct {
	Code string
	PIN  string
}

type VerifyPINResponse struct {
	Valid bool   `json:"valid"`
	Role  string `json:"role,omitempty"`
}

type UpdatePINRequest struct {
	Code   string
	Role   string
	NewPIN string
}

type Service interface {
	GetByCode(ctx context.Context, code string) (Shop, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (Shop, error)

	// VerifyPIN and UpdatePIN are the shop's guarded server-side surface;
	// hashes never leave this package.
	VerifyPIN(ctx context.Context, req VerifyPINRequest) (VerifyPINResponse, error)
	UpdatePIN(ctx context.Context, req UpdatePINRequest) error
}

var (
	ErrNotFound         = errors.New("not_found")
	ErrInvalidCode      = errors.New("invalid_code")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidThreshold = errors.New("invalid_threshold")
	ErrInvalidPolicy    = errors.New("invalid_policy")
	ErrInvalidPIN       = errors.New("invalid_pin")
	ErrInvalidRole      = errors.New("invalid_role")
)
