package oddsmath

import "math"

// ImpliedProbability converts American odds to the probability the price
// implies, vig included. +150 → 0.40, -110 → 0.5238.
func ImpliedProbability(american float64) float64 {
	if american >= 0 {
		return 100.0 / (american + 100.0)
	}
	return math.Abs(american) / (math.Abs(american) + 100.0)
}

// ToDecimal converts American odds to decimal odds. +150 → 2.50, -150 → 1.67.
func ToDecimal(american float64) float64 {
	if american >= 0 {
		return american/100.0 + 1.0
	}
	return 100.0/math.Abs(american) + 1.0
}

// Edge is the gap between an estimated win probability and the implied
// probability of the offered price. Positive means the price is beatable.
func Edge(estimatedProb, american float64) float64 {
	return estimatedProb - ImpliedProbability(american)
}
