// math32 is a stand-in for the built-in math package, but the functions take float32s instead of float64s.
// The renderer's vectors and matrices are float32-based, so this saves casting back and forth everywhere.
package math32

import "math"

const (
	Pi         = float32(math.Pi)
	MaxFloat32 = float32(math.MaxFloat32)
)

// ToRadians is a helper function to easily convert degrees to radians.
func ToRadians(degrees float32) float32 {
	return Pi * degrees / 180
}

// ToDegrees is a helper function to easily convert radians to degrees for human readability.
func ToDegrees(radians float32) float32 {
	return radians / Pi * 180
}

// Min returns the minimum value out of two provided values.
func Min[number float32 | float64 | int | int32 | int64](x, y number) number {
	if x < y {
		return x
	}
	return y
}

// Max returns the maximum value out of two provided values.
func Max[number float32 | float64 | int | int32 | int64](x, y number) number {
	if x > y {
		return x
	}
	return y
}

// Clamp clamps a value to the minimum and maximum values provided.
func Clamp[number float32 | float64 | int | int32 | int64](value, min, max number) number {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}

// Lerp linearly interpolates from start towards end by the percentage given.
func Lerp(start, end, percentage float32) float32 {
	return start + (end-start)*percentage
}

// Pow returns x**y, the base-x exponential of y.
func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// Sqrt returns the square root of x.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Sin returns the sine of the radian argument x.
func Sin(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

// Cos returns the cosine of the radian argument x.
func Cos(x float32) float32 {
	return float32(math.Cos(float64(x)))
}

// Tan returns the tangent of the radian argument x.
func Tan(x float32) float32 {
	return float32(math.Tan(float64(x)))
}

// Acos returns the arccosine, in radians, of x.
func Acos(x float32) float32 {
	return float32(math.Acos(float64(x)))
}

// Atan2 returns the arc tangent of y/x, using the signs of the two to determine the quadrant of the return value.
func Atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// Abs returns the absolute value of x.
func Abs(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

// Floor returns the greatest integer value less than or equal to x.
func Floor(x float32) float32 {
	return float32(math.Floor(float64(x)))
}

// Mod returns the floating-point remainder of x/y. Unlike math.Mod, the result always carries the sign of y,
// the way GLSL's mod() does.
func Mod(x, y float32) float32 {
	return x - y*Floor(x/y)
}

// Fract returns the fractional part of x (x - floor(x)).
func Fract(x float32) float32 {
	return x - Floor(x)
}

// IsNaN returns if the provided float32 is a NaN.
func IsNaN(x float32) bool {
	return math.IsNaN(float64(x))
}
