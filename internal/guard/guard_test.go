package guard

import (
	"testing"

	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestAuthorize(t *testing.T) {
	strict := tenantdomain.Shop{Code: "perk", IsolationPolicy: tenantdomain.IsolationStrict}
	legacy := tenantdomain.Shop{Code: "motherland", IsolationPolicy: tenantdomain.IsolationLegacyNullable}

	tests := []struct {
		name    string
		member  memberdomain.Member
		shop    tenantdomain.Shop
		wantErr error
	}{
		{
			name:   "matching code passes strict shop",
			member: memberdomain.Member{Role: memberdomain.RoleCustomer, ShopCode: strptr("perk")},
			shop:   strict,
		},
		{
			name:    "other shop's member rejected by strict shop",
			member:  memberdomain.Member{Role: memberdomain.RoleCustomer, ShopCode: strptr("motherland")},
			shop:    strict,
			wantErr: ErrWrongShop,
		},
		{
			name:    "null affiliation rejected by strict shop",
			member:  memberdomain.Member{Role: memberdomain.RoleCustomer},
			shop:    strict,
			wantErr: ErrWrongShop,
		},
		{
			name:   "null affiliation accepted by legacy shop",
			member: memberdomain.Member{Role: memberdomain.RoleCustomer},
			shop:   legacy,
		},
		{
			name:   "matching code passes legacy shop",
			member: memberdomain.Member{Role: memberdomain.RoleCustomer, ShopCode: strptr("motherland")},
			shop:   legacy,
		},
		{
			name:    "foreign code rejected by legacy shop",
			member:  memberdomain.Member{Role: memberdomain.RoleCustomer, ShopCode: strptr("perk")},
			shop:    legacy,
			wantErr: ErrWrongShop,
		},
		{
			name:   "admin bypasses strict shop",
			member: memberdomain.Member{Role: memberdomain.RoleAdmin, ShopCode: strptr("elsewhere")},
			shop:   strict,
		},
		{
			name:   "admin with no affiliation bypasses strict shop",
			member: memberdomain.Member{Role: memberdomain.RoleAdmin},
			shop:   strict,
		},
		{
			name:    "staff does not bypass",
			member:  memberdomain.Member{Role: memberdomain.RoleStaff, ShopCode: strptr("elsewhere")},
			shop:    strict,
			wantErr: ErrWrongShop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.member, tt.shop)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
