// Package pricing computes rental totals. It is pure: the result depends only
// on the date range, the per-day rate and the insurance tier, and it is
// recomputed at every mutation site that changes one of those inputs. Client
// supplied totals are never trusted.
package pricing

import (
	"errors"
	"math"
	"time"

	"rental-service/internal/module/booking/models/entity"
)

var ErrInvalidRange = errors.New("invalid date range")

const (
	basicInsurancePerDay   = 10
	premiumInsurancePerDay = 20
)

// Nights counts the billable nights of the half-open interval [start,end),
// rounding partial days up.
func Nights(startDate, endDate time.Time) int {
	return int(math.Ceil(endDate.Sub(startDate).Hours() / 24))
}

func InsuranceRate(tier entity.InsuranceType) float64 {
	switch tier {
	case entity.InsuranceTypeBasic:
		return basicInsurancePerDay
	case entity.InsuranceTypePremium:
		return premiumInsurancePerDay
	default:
		return 0
	}
}

// Total returns pricePerDay*nights + insuranceRate(tier)*nights, or
// ErrInvalidRange when the range yields no billable nights.
func Total(pricePerDay float64, startDate, endDate time.Time, tier entity.InsuranceType) (float64, error) {
	nights := Nights(startDate, endDate)
	if nights <= 0 {
		return 0, ErrInvalidRange
	}
	return pricePerDay*float64(nights) + InsuranceRate(tier)*float64(nights), nil
}
