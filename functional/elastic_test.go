package functional

import (
	"errors"
	"testing"

	"github.com/notargets/gofunctional/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearElasticity(t *testing.T) {
	var (
		ref = newMesh(t, 2, [][]float64{{0, 0}, {1, 0}, {0, 1}}, types.Area, [][]int{{0, 1, 2}})
		def = ref.Clone()
	)
	le, err := NewLinearElasticity(ref)
	require.NoError(t, err)
	assert.Equal(t, types.Area, le.Grade())
	{
		total, err := Total(le, def, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, total, 1.e-15)
		frc, err := Gradient(le, def, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, make([]float64, 6), frc.Data(), 1.e-5)
	}
	{ // stretch along x by 10%
		for v := 0; v < def.NVertices(); v++ {
			*def.CoordinateRef(v, 0) *= 1.1
		}
		var (
			nu     = 0.3
			mu     = 0.5 / (1 + nu)
			lambda = nu / (1 + nu) / (1 - 2*nu)
			tr     = 0.5 * (1.21 - 1)
		)
		total, err := Total(le, def, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.5*(mu*tr*tr+0.5*lambda*tr*tr), total, 1.e-14)
		frc, err := Gradient(le, def, nil)
		require.NoError(t, err)
		// the restoring force pulls vertex 1 back
		assert.Greater(t, frc.At(0, 1), 0.)
		for _, s := range colSum(frc) {
			assert.InDelta(t, 0, s, 1.e-5)
		}
	}
	{
		_, err := NewLinearElasticity(nil)
		assert.True(t, errors.Is(err, types.ErrInvalidArgs))
		_, err = NewLinearElasticity(ref, types.Vertex)
		assert.True(t, errors.Is(err, types.ErrInvalidArgs))
		other := newMesh(t, 2, [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, types.Area, [][]int{{0, 1, 2}})
		_, err = Total(le, other, nil)
		assert.True(t, errors.Is(err, types.ErrIncompatibleDimensions))
	}
}

func TestEquiElement(t *testing.T) {
	m := unitSquare(t)
	eq := NewEquiElement(types.Area)
	{
		total, err := Total(eq, m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, total, 1.e-15)
		deps, err := eq.Dependencies(m, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 2, 3}, deps)
	}
	{ // the second triangle grows to area 1.5
		m.SetVertexPosition(3, []float64{2, 2})
		R, err := Integrand(eq, m, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0, 0.5, 0.5, 0}, R.Data(), 1.e-14)
		frc, err := Gradient(eq, m, nil)
		require.NoError(t, err)
		// shrinking the large triangle evens the sizes out
		assert.Greater(t, frc.At(0, 3), 0.)
	}
	{ // weights rescale the target sizes
		weighted := NewEquiElement(types.Area, []float64{3, 1})
		total, err := Total(weighted, m, nil)
		require.NoError(t, err)
		// mean size 1, weight mean 2: (1 - 3*0.5/2)^2 + (1 - 1*1.5/2)^2 per shared vertex
		assert.InDelta(t, 2*(0.0625+0.0625), total, 1.e-14)
	}
	{ // an invalid grade falls back to the highest grade of the mesh
		total, err := Total(NewEquiElement(types.Vertex), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1, total, 1.e-14)
	}
}
