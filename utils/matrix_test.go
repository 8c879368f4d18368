package utils

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gofunctional/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func almostEqual(a, b float64, tolI ...float64) bool {
	tol := 1.e-12
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(b))
}

func TestMatrix(t *testing.T) {
	{ // Column accumulation in a dim x nv force matrix
		F := NewMatrix(3, 2)
		F.AddToCol(1, 2, []float64{1, 2, 3})
		F.AddToCol(1, -1, []float64{1, 0, 0})
		assert.Equal(t, []float64{1, 4, 6}, F.Col(1))
		assert.Equal(t, []float64{0, 0, 0}, F.Col(0))
	}
	{
		A := NewMatrix(2, 2, []float64{4, 7, 2, 6})
		Ainv, err := A.Inverse()
		require.NoError(t, err)
		I := A.Mul(Ainv)
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.True(t, almostEqual(NewIdentity(2).At(i, j), I.At(i, j)))
			}
		}
		assert.Equal(t, 10., A.Trace())
		X, err := A.Solve(NewMatrix(2, 1, []float64{1, 2}))
		require.NoError(t, err)
		assert.True(t, almostEqual(-0.8, X.At(0, 0)))
		assert.True(t, almostEqual(0.6, X.At(1, 0)))
	}
	{
		S := NewMatrix(2, 2, []float64{1, 2, 2, 4})
		_, err := S.Inverse()
		assert.True(t, errors.Is(err, types.ErrSingularSystem))
		_, err = NewMatrix(2, 3).Inverse()
		assert.True(t, errors.Is(err, types.ErrNotSquare))
		_, err = S.Solve(NewMatrix(3, 1))
		assert.True(t, errors.Is(err, types.ErrIncompatibleDimensions))
	}
	{
		R := NewMatrix(1, 2)
		R.SetReadOnly("R")
		assert.Panics(t, func() { R.Set(0, 0, 1) })
		E := NewMatrix(1, 0)
		r, c := E.Dims()
		assert.Equal(t, 0, r*c)
	}
	{
		M := NewMatrixFromColumns([][]float64{{1, 2}, {3, 4}, {5, 6}})
		r, c := M.Dims()
		assert.Equal(t, 2, r)
		assert.Equal(t, 3, c)
		assert.Equal(t, 6., M.At(1, 2))
		C := M.Copy().Scale(2).Subtract(M)
		assert.Equal(t, M.Data(), C.Data())
	}
}

func TestVector(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 1}, VecCross([]float64{1, 0, 0}, []float64{0, 1, 0}))
	assert.Equal(t, []float64{0, 0, -2}, VecCross([]float64{0, 2}, []float64{1, 0}))
	assert.Equal(t, []float64{1, -1}, VecSub([]float64{2, 1}, []float64{1, 2}))
	assert.Equal(t, 5., VecNorm([]float64{3, 4}))
	assert.Equal(t, 11., VecDot([]float64{1, 2}, []float64{3, 4}))
	assert.Equal(t, []float64{1, 2}, VecTrim([]float64{1, 2, 0}, 2))
}

func TestKahanSum(t *testing.T) {
	var (
		k     KahanSum
		naive float64
		n     = 10000000
	)
	k.Add(1)
	naive = 1
	for i := 0; i < n; i++ {
		k.Add(1.e-16)
		naive += 1.e-16
	}
	exact := 1 + float64(n)*1.e-16
	assert.True(t, almostEqual(exact, k.Sum(), 1.e-15))
	assert.Equal(t, 1., naive)
	assert.Equal(t, 4., POW(2, 2))
	assert.Equal(t, 0.125, POW(2, -3))
}
