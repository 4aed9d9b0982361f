package guard

import (
	"errors"

	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

// ErrWrongShop reports that the member does not belong to the shop it is
// operating against. The HTTP layer turns this into a forced logout; the
// taxonomy deliberately does not distinguish it from unauthenticated.
var ErrWrongShop = errors.New("unauthorized")

// Authorize checks that member may act within shop.
//
// Admins bypass the check unconditionally. For everyone else the shop's
// isolation policy decides: strict shops require an exact affiliation match,
// legacy shops also claim members that carry no shop code at all
// (pre-migration accounts).
func Authorize(member memberdomain.Member, shop tenantdomain.Shop) error {
	if member.Role == memberdomain.RoleAdmin {
		return nil
	}

	if member.ShopCode != nil && *member.ShopCode == shop.Code {
		return nil
	}

	if shop.IsolationPolicy == tenantdomain.IsolationLegacyNullable && member.ShopCode == nil {
		return nil
	}

	return ErrWrongShop
}
