package mathx

import "golang.org/x/exp/constraints"

// AddMod returns (a + b) mod m without overflowing the operand type.
// m == 0 yields 0.
func AddMod[T constraints.Unsigned](a, b, m T) T {
	if m == 0 {
		return 0
	}
	a %= m
	b %= m
	if a >= m-b {
		return a - (m - b)
	}
	return a + b
}

// PercentOf scales v in [0, full] to 0..100 with rounding.
func PercentOf[T constraints.Unsigned](v, full T) T {
	if full == 0 {
		return 0
	}
	if v > full {
		v = full
	}
	return T((uint64(v)*100 + uint64(full)/2) / uint64(full))
}
