// pkg/utils/math.go
package utils

// Abs returns the absolute value of x.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// MidpointToward returns the integer midpoint of a and b, rounding toward
// sign when the true midpoint falls between two integers. Used to place
// gap-fill rows on the side's outward half of the gap.
func MidpointToward(a, b, sign int) int {
	sum := a + b
	if sum%2 == 0 {
		return sum / 2
	}
	// Go truncates toward zero; nudge the odd sum toward the requested side.
	if sign > 0 {
		return (sum + 1) / 2
	}
	return (sum - 1) / 2
}
