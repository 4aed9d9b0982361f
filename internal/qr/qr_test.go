package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    Payload
		wantErr error
	}{
		{
			name: "member scan",
			raw:  `{"uid": "1234", "action": "scan", "shop": "perk"}`,
			want: Payload{Kind: KindScan, MemberUID: "1234", ShopCode: "perk"},
		},
		{
			name: "member redeem",
			raw:  `{"uid": "1234", "action": "redeem", "shop": "perk"}`,
			want: Payload{Kind: KindRedeem, MemberUID: "1234", ShopCode: "perk"},
		},
		{
			name: "missing action defaults to scan",
			raw:  `{"uid": "1234", "shop": "perk"}`,
			want: Payload{Kind: KindScan, MemberUID: "1234", ShopCode: "perk"},
		},
		{
			name: "promo",
			raw:  `{"type": "promo", "campaignId": "42", "user": "1234", "timestamp": 1748768400000}`,
			want: Payload{Kind: KindPromo, MemberUID: "1234", CampaignID: "42", Timestamp: 1748768400000},
		},
		{
			name: "bare member id",
			raw:  "1923387465812410368",
			want: Payload{Kind: KindScan, MemberUID: "1923387465812410368"},
		},
		{
			name: "legacy bare uuid",
			raw:  "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			want: Payload{Kind: KindScan, MemberUID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		},
		{
			name:    "empty",
			raw:     "   ",
			wantErr: ErrEmptyPayload,
		},
		{
			name:    "garbage",
			raw:     "not-a-uuid",
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "malformed json",
			raw:     `{"uid": `,
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "unknown action",
			raw:     `{"uid": "1234", "action": "steal"}`,
			wantErr: ErrUnknownAction,
		},
		{
			name:    "promo without campaign",
			raw:     `{"type": "promo", "user": "1234"}`,
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "member payload without uid",
			raw:     `{"action": "scan", "shop": "perk"}`,
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.raw)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
