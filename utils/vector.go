package utils

import (
	"gonum.org/v1/gonum/floats"
)

// Small-vector helpers for element geometry. All return newly allocated slices.

func VecSub(a, b []float64) (r []float64) {
	r = make([]float64, len(a))
	floats.SubTo(r, a, b)
	return
}

func VecAdd(a, b []float64) (r []float64) {
	r = make([]float64, len(a))
	floats.AddTo(r, a, b)
	return
}

func VecScale(a float64, v []float64) (r []float64) {
	r = make([]float64, len(v))
	floats.ScaleTo(r, a, v)
	return
}

func VecDot(a, b []float64) float64 { return floats.Dot(a, b) }

func VecNorm(a []float64) float64 { return floats.Norm(a, 2) }

// VecCross is the 3D cross product; 2D inputs are treated as lying in the z = 0 plane
func VecCross(a, b []float64) (r []float64) {
	var (
		a3, b3 = pad3(a), pad3(b)
	)
	r = []float64{
		a3[1]*b3[2] - a3[2]*b3[1],
		a3[2]*b3[0] - a3[0]*b3[2],
		a3[0]*b3[1] - a3[1]*b3[0],
	}
	return
}

// VecTrim returns the first dim components of a 3 vector, used to return cross products into 2D meshes
func VecTrim(v []float64, dim int) []float64 {
	if dim >= len(v) {
		return v
	}
	return v[:dim]
}

func pad3(v []float64) (r [3]float64) {
	copy(r[:], v)
	return
}
