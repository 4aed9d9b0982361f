package qr

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Kind discriminates the decoded payload. Consumers dispatch on it
// instead of sniffing fields.
type Kind string

const (
	KindScan   Kind = "scan"
	KindRedeem Kind = "redeem"
	KindPromo  Kind = "promo"
)

// Payload is the decoded QR content. MemberUID identifies the customer
// (the member snowflake ID, or a legacy UUID for pre-migration cards).
type Payload struct {
	Kind       Kind   `json:"kind"`
	MemberUID  string `json:"member_uid,omitempty"`
	ShopCode   string `json:"shop_code,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

var (
	ErrEmptyPayload   = errors.New("empty_payload")
	ErrInvalidPayload = errors.New("invalid_payload")
	ErrUnknownAction  = errors.New("unknown_action")
)

// envelope covers every wire shape; Decode picks fields by Type/Action.
type envelope struct {
	Type       string `json:"type"`
	UID        string `json:"uid"`
	Action     string `json:"action"`
	Shop       string `json:"shop"`
	CampaignID string `json:"campaignId"`
	User       string `json:"user"`
	Timestamp  int64  `json:"timestamp"`
}

// isBareMemberUID accepts the two bare card formats: a numeric member
// ID, or a UUID printed on pre-migration cards.
func isBareMemberUID(raw string) bool {
	if _, err := snowflake.ParseString(raw); err == nil {
		return true
	}
	_, err := uuid.Parse(raw)
	return err == nil
}

// Decode parses raw QR content. Three shapes are accepted: the member
// card `{uid, action, shop}`, the promo card `{type: "promo",
// campaignId, user, timestamp}`, and a bare member ID or legacy UUID,
// which decodes as an implicit scan.
func Decode(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, ErrEmptyPayload
	}

	if !strings.HasPrefix(raw, "{") {
		if !isBareMemberUID(raw) {
			return Payload{}, ErrInvalidPayload
		}
		return Payload{Kind: KindScan, MemberUID: raw}, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Payload{}, ErrInvalidPayload
	}

	if env.Type == "promo" {
		if env.CampaignID == "" || env.User == "" {
			return Payload{}, ErrInvalidPayload
		}
		return Payload{
			Kind:       KindPromo,
			MemberUID:  env.User,
			CampaignID: env.CampaignID,
			Timestamp:  env.Timestamp,
		}, nil
	}

	if env.UID == "" {
		return Payload{}, ErrInvalidPayload
	}
	switch env.Action {
	case "", "scan":
		return Payload{Kind: KindScan, MemberUID: env.UID, ShopCode: env.Shop}, nil
	case "redeem":
		return Payload{Kind: KindRedeem, MemberUID: env.UID, ShopCode: env.Shop}, nil
	default:
		return Payload{}, ErrUnknownAction
	}
}
