package amd

import (
	"math"
)

const (
	deg2rad = math.Pi / 180
	// StandardGravity is the gravitational acceleration at sea level in m/s^2.
	StandardGravity = 9.80665
)

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// maxAbs returns the index and the value of the largest component in absolute value.
func maxAbs(v []float64) (int, float64) {
	idx, largest := 0, 0.0
	for i, val := range v {
		if math.Abs(val) > math.Abs(largest) {
			idx, largest = i, val
		}
	}
	return idx, largest
}

// clip bounds a value.
func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// filled returns a slice of n copies of v.
func filled(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Deg2rad converts degrees to radians.
func Deg2rad(a float64) float64 {
	return a * deg2rad
}

// Rad2deg converts radians to degrees.
func Rad2deg(a float64) float64 {
	return a / deg2rad
}

// Float64 returns a pointer to the provided value, for optional boundary conditions.
func Float64(v float64) *float64 {
	return &v
}
