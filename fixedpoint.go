package vrt

import "math"

// Fixed-point conversions between IEEE 754 floats and VRT's signed and
// unsigned fixed-point integers at a given radix (the number of bits below
// the binary point). Follows the IntFloat/Correction/TimeInterval
// radix-scaling pattern in ptp/protocol/types.go, generalized to five
// concrete (width, signedness) combinations and to round-half-to-even with
// saturation instead of PTP's truncate-and-clamp.
//
// Radixes used elsewhere in this package: 5 (position, m), 6 (temperature,
// degrees C), 7 (gain/reference level, dB), 16 (velocity, m/s), 20
// (frequency, Hz), 22 (angle, degrees).

func scale(radix uint) float64 {
	return float64(int64(1) << radix)
}

func clampRound(v float64, min, max float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v <= min {
		return min
	}
	if v >= max {
		return max
	}
	return math.RoundToEven(v)
}

// Int16ToFloat converts a 16-bit signed fixed-point value at radix R to float64.
func Int16ToFloat(x int16, radix uint) float64 {
	return float64(x) / scale(radix)
}

// Int16FromFloat converts v to a 16-bit signed fixed-point value at radix R,
// rounding half to even and saturating at the representable range.
func Int16FromFloat(v float64, radix uint) int16 {
	return int16(clampRound(v*scale(radix), math.MinInt16, math.MaxInt16))
}

// Int32ToFloat converts a 32-bit signed fixed-point value at radix R to float64.
func Int32ToFloat(x int32, radix uint) float64 {
	return float64(x) / scale(radix)
}

// Int32FromFloat converts v to a 32-bit signed fixed-point value at radix R,
// rounding half to even and saturating at the representable range.
func Int32FromFloat(v float64, radix uint) int32 {
	return int32(clampRound(v*scale(radix), math.MinInt32, math.MaxInt32))
}

// Uint32ToFloat converts a 32-bit unsigned fixed-point value at radix R to float64.
func Uint32ToFloat(x uint32, radix uint) float64 {
	return float64(x) / scale(radix)
}

// Uint32FromFloat converts v to a 32-bit unsigned fixed-point value at radix
// R, rounding half to even and saturating at the representable range.
func Uint32FromFloat(v float64, radix uint) uint32 {
	return uint32(clampRound(v*scale(radix), 0, math.MaxUint32))
}

// Int64ToFloat converts a 64-bit signed fixed-point value at radix R to float64.
func Int64ToFloat(x int64, radix uint) float64 {
	return float64(x) / scale(radix)
}

// int64 bounds usable directly as float64 clamp limits: math.MaxInt64 itself
// is not exactly representable as a float64 (it rounds up to 2**63, which
// overflows on conversion back), so the upper bound is nudged down to the
// nearest float64 value that still converts back to a valid int64.
const (
	maxInt64AsFloat = float64(1<<63 - 1024)
	minInt64AsFloat = float64(-1 << 63)
)

// Int64FromFloat converts v to a 64-bit signed fixed-point value at radix R,
// rounding half to even and saturating at the representable range.
func Int64FromFloat(v float64, radix uint) int64 {
	return int64(clampRound(v*scale(radix), minInt64AsFloat, maxInt64AsFloat))
}

// Uint64ToFloat converts a 64-bit unsigned fixed-point value at radix R to float64.
func Uint64ToFloat(x uint64, radix uint) float64 {
	return float64(x) / scale(radix)
}

// maxUint64AsFloat mirrors maxInt64AsFloat: math.MaxUint64 itself rounds up
// to 2**64 as a float64, which overflows on conversion back.
const maxUint64AsFloat = float64(1<<64 - 2048)

// Uint64FromFloat converts v to a 64-bit unsigned fixed-point value at radix
// R, rounding half to even and saturating at the representable range.
func Uint64FromFloat(v float64, radix uint) uint64 {
	return uint64(clampRound(v*scale(radix), 0, maxUint64AsFloat))
}
