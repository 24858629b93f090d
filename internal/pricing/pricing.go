package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"rentkart-backend/internal/domain"
)

// LinePrice is the outcome of pricing a single cart line.
type LinePrice struct {
	UnitPaise  int64
	TotalPaise int64
	RentalDays int32 // 0 for SALE lines
}

// QuotationTotals aggregates the monetary results of pricing a cart.
type QuotationTotals struct {
	SubtotalPaise int64
	TaxPaise      int64
	TotalPaise    int64
}

const day = 24 * time.Hour

// RentalDays returns the billable day count for a window: the elapsed
// duration rounded up at day granularity, minimum 1. A window spanning
// exactly 24 hours bills as one day.
func RentalDays(w domain.RentalWindow) (int32, error) {
	if w.End.Before(w.Start) {
		return 0, domain.ErrInvalidWindow
	}
	elapsed := w.End.Sub(w.Start)
	days := int32(elapsed / day)
	if elapsed%day > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days, nil
}

// dayTier picks the tier to bill rentals against: the DAY tier when one
// is configured, otherwise the first tier.
func dayTier(p *domain.Product) *domain.RentalTier {
	for i := range p.Tiers {
		if p.Tiers[i].Unit == domain.RentalUnitDay {
			return &p.Tiers[i]
		}
	}
	if len(p.Tiers) > 0 {
		return &p.Tiers[0]
	}
	return nil
}

// PriceLine computes the captured unit price and line total for a cart
// line. SALE lines bill the sale price once per unit; RENTAL lines bill
// the tier price per unit per billable day of the window.
func PriceLine(p *domain.Product, quantity int32, lineType domain.LineType, window *domain.RentalWindow) (LinePrice, error) {
	if quantity <= 0 {
		return LinePrice{}, domain.ErrInvalidQuantity
	}

	switch lineType {
	case domain.LineTypeSale:
		if p.SalePricePaise <= 0 {
			return LinePrice{}, domain.ErrInvalidProduct
		}
		return LinePrice{
			UnitPaise:  p.SalePricePaise,
			TotalPaise: p.SalePricePaise * int64(quantity),
		}, nil

	case domain.LineTypeRental:
		if window == nil {
			return LinePrice{}, domain.ErrInvalidWindow
		}
		days, err := RentalDays(*window)
		if err != nil {
			return LinePrice{}, err
		}
		tier := dayTier(p)
		if tier == nil {
			return LinePrice{}, domain.ErrNoPricingTier
		}
		return LinePrice{
			UnitPaise:  tier.PricePaise,
			TotalPaise: tier.PricePaise * int64(quantity) * int64(days),
			RentalDays: days,
		}, nil
	}

	return LinePrice{}, &domain.ValidationError{Reason: "unknown line type: " + string(lineType)}
}

// Percent applies an integer percentage to a paise amount, rounding
// half-up at paise precision.
func Percent(amountPaise int64, percent int64) int64 {
	return decimal.NewFromInt(amountPaise).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// Totals recomputes subtotal, tax and total over the given lines.
// Idempotent: pricing the same lines twice yields the same result.
func Totals(lines []domain.QuotationLine, taxRatePercent int64) QuotationTotals {
	var subtotal int64
	for i := range lines {
		subtotal += lines[i].TotalPaise
	}
	tax := Percent(subtotal, taxRatePercent)
	return QuotationTotals{
		SubtotalPaise: subtotal,
		TaxPaise:      tax,
		TotalPaise:    subtotal + tax,
	}
}
