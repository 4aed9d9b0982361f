package server

import (
	"errors"
	"net/http"

	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	campaigndomain "github.com/brewpass/brewpass/internal/campaign/domain"
	catalogdomain "github.com/brewpass/brewpass/internal/catalog/domain"
	"github.com/brewpass/brewpass/internal/guard"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	orderdomain "github.com/brewpass/brewpass/internal/order/domain"
	"github.com/brewpass/brewpass/internal/qr"
	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"github.com/gin-gonic/gin"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	}

	switch {
	// Wrong-tenant access reads as a dead session on purpose: the client
	// wipes credentials and sends the user back to login.
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, guard.ErrWrongShop),
		errors.Is(err, memberdomain.ErrInvalidCredentials),
		errors.Is(err, tenantdomain.ErrInvalidPIN):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, memberdomain.ErrEmailTaken),
		errors.Is(err, referraldomain.ErrAlreadyReferred),
		errors.Is(err, campaigndomain.ErrAlreadyRedeemed),
		errors.Is(err, campaigndomain.ErrAlreadySent):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isConflictStateError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_state",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, qr.ErrEmptyPayload),
		errors.Is(err, qr.ErrInvalidPayload),
		errors.Is(err, qr.ErrUnknownAction):
		return true
	case isTenantValidationError(err),
		isMemberValidationError(err),
		isLoyaltyValidationError(err),
		isReferralValidationError(err),
		isCatalogValidationError(err),
		isOrderValidationError(err),
		isCampaignValidationError(err),
		isActivityValidationError(err):
		return true
	default:
		return false
	}
}

// isConflictStateError covers business rules that reject an otherwise
// well-formed request because of current state.
func isConflictStateError(err error) bool {
	switch {
	case errors.Is(err, loyaltydomain.ErrCooldownActive),
		errors.Is(err, loyaltydomain.ErrInsufficientStamps),
		errors.Is(err, loyaltydomain.ErrInsufficientPoints),
		errors.Is(err, referraldomain.ErrSelfReferral),
		errors.Is(err, catalogdomain.ErrCategoryNotEmpty),
		errors.Is(err, campaigndomain.ErrCampaignInactive),
		errors.Is(err, campaigndomain.ErrNoRecipients),
		errors.Is(err, campaigndomain.ErrNoPromoPoints),
		errors.Is(err, campaigndomain.ErrNotToggleable):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, memberdomain.ErrNotFound),
		errors.Is(err, loyaltydomain.ErrMemberNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, campaigndomain.ErrNotFound):
		return true
	default:
		return false
	}
}

func isTenantValidationError(err error) bool {
	switch err {
	case tenantdomain.ErrInvalidCode,
		tenantdomain.ErrInvalidName,
		tenantdomain.ErrInvalidThreshold,
		tenantdomain.ErrInvalidPolicy,
		tenantdomain.ErrInvalidRole:
		return true
	default:
		return false
	}
}

func isMemberValidationError(err error) bool {
	switch err {
	case memberdomain.ErrInvalidEmail,
		memberdomain.ErrInvalidPassword,
		memberdomain.ErrInvalidRole,
		memberdomain.ErrInvalidID,
		memberdomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}

func isLoyaltyValidationError(err error) bool {
	switch err {
	case loyaltydomain.ErrInvalidShop,
		loyaltydomain.ErrInvalidMember,
		loyaltydomain.ErrInvalidAmount:
		return true
	default:
		return false
	}
}

func isReferralValidationError(err error) bool {
	switch err {
	case referraldomain.ErrInvalidShop,
		referraldomain.ErrInvalidMember,
		referraldomain.ErrInvalidCode:
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch err {
	case catalogdomain.ErrInvalidShop,
		catalogdomain.ErrInvalidName,
		catalogdomain.ErrInvalidPrice,
		catalogdomain.ErrInvalidCategory:
		return true
	default:
		return false
	}
}

func isOrderValidationError(err error) bool {
	switch err {
	case orderdomain.ErrInvalidShop,
		orderdomain.ErrInvalidActor,
		orderdomain.ErrEmptyOrder,
		orderdomain.ErrInvalidQuantity,
		orderdomain.ErrUnknownProduct,
		orderdomain.ErrUnknownVariant,
		orderdomain.ErrUnknownAddon,
		orderdomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}

func isCampaignValidationError(err error) bool {
	switch err {
	case campaigndomain.ErrInvalidShop,
		campaigndomain.ErrInvalidTitle,
		campaigndomain.ErrInvalidAudience:
		return true
	default:
		return false
	}
}

func isActivityValidationError(err error) bool {
	switch err {
	case activitydomain.ErrInvalidShop,
		activitydomain.ErrInvalidMember,
		activitydomain.ErrInvalidType,
		activitydomain.ErrInvalidTimeRange,
		activitydomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}
