package coupon

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
)

var (
	hundred  = decimal.NewFromInt(100)
	minorPer = decimal.NewFromInt(100)
)

// NormalizeCode trims surrounding whitespace from a coupon code.
// Codes are otherwise matched exactly.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}

// Applies reports whether a coupon may discount the given product.
// A coupon only covers products of its issuing shop, and when it names a
// selected product, only that product.
func Applies(c *models.Coupon, p models.Product) bool {
	if c == nil || p.ShopID != c.ShopID {
		return false
	}
	if c.SelectedProduct != "" && c.SelectedProduct != p.ID {
		return false
	}
	return true
}

// MeetsMinimum reports whether amount satisfies the coupon's minimum purchase.
// Coupons without a minimum always pass.
func MeetsMinimum(c *models.Coupon, amount decimal.Decimal) bool {
	if c.MinAmount == nil {
		return true
	}
	return !amount.LessThan(*c.MinAmount)
}

// Verify previews a coupon against a bill total. It fails with
// InvalidRequest when the bill is below the coupon minimum.
func Verify(c *models.Coupon, totalBill decimal.Decimal) error {
	if !MeetsMinimum(c, totalBill) {
		return apperr.Newf(apperr.KindInvalidRequest,
			"Purchase should be equal or more than %s", FormatPrice(*c.MinAmount))
	}
	return nil
}

// ValidateNew checks a coupon creation request.
func ValidateNew(req models.CreateCouponRequest) error {
	if NormalizeCode(req.Name) == "" {
		return apperr.InvalidRequest("Coupon name is required")
	}
	if req.Value.IsNegative() || req.Value.GreaterThan(hundred) {
		return apperr.InvalidRequest("Coupon value must be between 0 and 100")
	}
	if req.MinAmount != nil && req.MinAmount.IsNegative() {
		return apperr.InvalidRequest("Coupon minimum amount cannot be negative")
	}
	return nil
}

// FormatPrice renders a minor-unit amount as rupees, e.g. 150000 -> ₹1500.00.
func FormatPrice(minor decimal.Decimal) string {
	return fmt.Sprintf("₹%s", minor.Div(minorPer).StringFixed(2))
}
