package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"rentkart-backend/internal/domain"
)

// FeeAssessment is the outcome of computing return-time surcharges.
type FeeAssessment struct {
	LateDays       int32
	LateFeePaise   int64
	DamageFeePaise int64
}

func (f FeeAssessment) SubtotalPaise() int64 { return f.LateFeePaise + f.DamageFeePaise }

// DailyRate derives the contracted per-day rate from an order subtotal
// and its rental day count, rounding half-up at paise precision. The
// result is snapshotted on the order at confirmation time.
func DailyRate(subtotalPaise int64, rentalDays int32) int64 {
	if rentalDays <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotalPaise).
		Div(decimal.NewFromInt(int64(rentalDays))).
		Round(0).
		IntPart()
}

// LateDays counts whole days of overrun past the rental end, rounding
// partial days up. Returns 0 when the return is on time.
func LateDays(rentalEnd, returnedOn time.Time) int32 {
	if !returnedOn.After(rentalEnd) {
		return 0
	}
	overrun := returnedOn.Sub(rentalEnd)
	days := int32(overrun / day)
	if overrun%day > 0 {
		days++
	}
	return days
}

// LateFee bills the configured fraction of the contracted daily rate
// for every late day.
func LateFee(lateDays int32, dailyRatePaise int64, lateFeePercent int64) int64 {
	if lateDays <= 0 {
		return 0
	}
	return Percent(int64(lateDays)*dailyRatePaise, lateFeePercent)
}

// DamageFee bills the configured fraction of each damaged line's total.
func DamageFee(damagedLineTotalsPaise []int64, damageFeePercent int64) int64 {
	var fee int64
	for _, total := range damagedLineTotalsPaise {
		fee += Percent(total, damageFeePercent)
	}
	return fee
}

// AssessReturnFees computes both surcharges for a return processed at
// returnedOn against an order's contracted window and daily rate.
func AssessReturnFees(order *domain.Order, returnedOn time.Time, damagedLineTotalsPaise []int64, lateFeePercent, damageFeePercent int64) FeeAssessment {
	var lateDays int32
	if order.Window != nil {
		lateDays = LateDays(order.Window.End, returnedOn)
	}
	return FeeAssessment{
		LateDays:       lateDays,
		LateFeePaise:   LateFee(lateDays, order.DailyRatePaise, lateFeePercent),
		DamageFeePaise: DamageFee(damagedLineTotalsPaise, damageFeePercent),
	}
}
