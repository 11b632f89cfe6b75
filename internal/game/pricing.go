package game

import (
	"math"
	"math/bits"

	"kushklicker/internal/domain"
)

const secondsPerHour = 3600

// float64(math.MaxInt64) rounds up to 2^63, so anything at or above it overflows.
const maxInt64Float = float64(math.MaxInt64)

// UnitCost is the price of the unit bought when k units are already owned:
// floor(baseCost * (costMultiplier/100)^k).
func UnitCost(u *domain.Upgrade, k int64) int64 {
	multiplier := math.Pow(float64(u.CostMultiplier)/100, float64(k))
	price := math.Floor(float64(u.BaseCost) * multiplier)
	if math.IsNaN(price) || price >= maxInt64Float {
		return math.MaxInt64
	}
	if price < 0 {
		return 0
	}
	return int64(price)
}

// Cost is the total price of buying quantity units on top of owned ones.
// Every unit is floored on its own before summing, so buying q units costs
// exactly as much as q single purchases.
func Cost(u *domain.Upgrade, owned, quantity int64) int64 {
	var total int64
	for k := owned; k < owned+quantity; k++ {
		total = addSat(total, UnitCost(u, k))
		if total == math.MaxInt64 {
			break
		}
	}
	return total
}

// PassiveIncome is floor(perHour * elapsedSeconds / 3600), computed without
// intermediate overflow.
func PassiveIncome(perHour, elapsedSeconds int64) int64 {
	if perHour <= 0 || elapsedSeconds <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(perHour), uint64(elapsedSeconds))
	if hi >= secondsPerHour {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, secondsPerHour)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}

// addSat adds two non-negative values, saturating at MaxInt64.
func addSat(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// mulSat multiplies two non-negative values, saturating at MaxInt64.
func mulSat(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(lo)
}
