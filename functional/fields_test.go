package functional

import (
	"errors"
	"testing"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vertexField(t *testing.T, m *mesh.Mesh, psize int, fn func(x []float64) []float64) (f *mesh.Field) {
	var err error
	f, err = mesh.NewVertexField(m, psize, fn)
	require.NoError(t, err)
	return
}

func TestGradSqAndNormSq(t *testing.T) {
	m := unitSquare(t)
	{
		q := vertexField(t, m, 1, func(x []float64) []float64 { return []float64{x[0] + 2*x[1]} })
		total, err := Total(NewGradSq(q), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 5, total, 1.e-13)
		grad, err := FieldGradient(NewGradSq(q), m, nil, nil)
		require.NoError(t, err)
		assert.True(t, grad.Compatible(q))
		// adding a constant to q changes nothing
		var sum float64
		for _, d := range grad.Data {
			sum += d
		}
		assert.InDelta(t, 0, sum, 1.e-4)
		// q is unchanged after differentiation
		assert.Equal(t, []float64{0, 1, 2, 3}, q.Data)
	}
	{
		q := vertexField(t, m, 2, func(x []float64) []float64 { return []float64{x[0], x[1]} })
		total, err := Total(NewNormSq(q), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 4, total, 1.e-15)
		grad, err := FieldGradient(NewNormSq(q), m, q, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0, 0, 2, 0, 0, 2, 2, 2}, grad.Data, 1.e-5)
		sel := mesh.NewSelection(m)
		require.NoError(t, sel.Select(types.Vertex, 3))
		grad, err = FieldGradient(NewNormSq(q), m, q, sel)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0, 0, 0, 0, 0, 0, 2, 2}, grad.Data, 1.e-5)
	}
	{ // dofs on faces reach the integrand through the face to vertex connectivity
		q, err := mesh.NewField(m, 1, 1, 0, 1)
		require.NoError(t, err)
		copy(q.Data, []float64{1, 1, 1, 1, 7, 7})
		grad, err := FieldGradient(NewNormSq(q), m, q, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{2, 2, 2, 2, 0, 0}, grad.Data, 1.e-5)
	}
	{
		other := unitSquare(t)
		q := vertexField(t, other, 1, func(x []float64) []float64 { return []float64{1} })
		_, err := Total(NewGradSq(q), m, nil)
		assert.True(t, errors.Is(err, types.ErrInvalidArgs))
		_, err = Total(NewGradSq(nil), m, nil)
		assert.True(t, errors.Is(err, types.ErrEvaluatorFailed))
	}
}

func TestNematic(t *testing.T) {
	m := unitSquare(t)
	uniform := vertexField(t, m, 3, func(x []float64) []float64 { return []float64{1, 0, 0} })
	{
		total, err := Total(NewNematic(uniform), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, total, 1.e-15)
		// a uniform director pays the cholesteric penalty 0.5 KTwist q^2 per unit area
		total, err = Total(NewNematic(uniform).SetPitch(2), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 2, total, 1.e-13)
	}
	{ // pure splay: n = (x, 0, 0) has div n = 1 and no curl
		splay := vertexField(t, m, 3, func(x []float64) []float64 { return []float64{x[0], 0, 0} })
		nem := NewNematic(splay)
		nem.KSplay = 3
		total, err := Total(nem, m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, total, 1.e-13)
		grad, err := FieldGradient(nem, m, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, splay.Size(), grad.Size())
	}
	{
		e := vertexField(t, m, 1, func(x []float64) []float64 { return []float64{2 * x[0]} })
		total, err := Total(NewNematicElectric(uniform, e), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 4, total, 1.e-13)
		total, err = Total(NewNematicElectricUniform(uniform, []float64{2, 0, 0}), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 4, total, 1.e-13)
		// a director normal to the field has no coupling
		total, err = Total(NewNematicElectricUniform(uniform, []float64{0, 3, 0}), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, total, 1.e-15)
		assert.Len(t, NewNematicElectric(uniform, e).Fields(), 2)
		_, err = Total(NewNematicElectric(uniform, nil), m, nil)
		assert.True(t, errors.Is(err, types.ErrInvalidArgs))
	}
}

func TestIntegrals(t *testing.T) {
	m := unitSquare(t)
	{
		one := func(x, tn []float64, q [][]float64) (float64, error) { return 1, nil }
		li, err := NewLineIntegral(one)
		require.NoError(t, err)
		total, err := Total(li, m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 4, total, 1.e-14)
		ai, err := NewAreaIntegral(func(x, tn []float64, q [][]float64) (float64, error) { return x[0] * x[1], nil })
		require.NoError(t, err)
		total, err = Total(ai, m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, total, 1.e-14)
	}
	{ // the tangent follows each line
		li, err := NewLineIntegral(func(x, tn []float64, q [][]float64) (float64, error) { return tn[0], nil })
		require.NoError(t, err)
		R, err := Integrand(li, m, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1, 0, -1, 0}, R.Data(), 1.e-14)
	}
	{ // fields are interpolated linearly along the element
		q := vertexField(t, m, 1, func(x []float64) []float64 { return []float64{x[0]} })
		li, err := NewLineIntegral(func(x, tn []float64, q [][]float64) (float64, error) { return q[0][0] * q[0][0], nil }, q)
		require.NoError(t, err)
		R, err := Integrand(li, m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1./3, R.At(0, 0), 1.e-14)
		grad, err := FieldGradient(li, m, nil, nil)
		require.NoError(t, err)
		// d/dq_v of sum over lines of the integral of q^2
		assert.InDeltaSlice(t, []float64{1./3, 5./3, 1./3, 5./3}, grad.Data, 1.e-4)
	}
	{
		tm := newMesh(t, 3, [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, types.Volume, [][]int{{0, 1, 2, 3}})
		vi, err := NewVolumeIntegral(func(x, tn []float64, q [][]float64) (float64, error) { return 1 + x[2], nil })
		require.NoError(t, err)
		total, err := Total(vi, tm, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1./6+1./24, total, 1.e-14)
		_, err = NewVolumeIntegral(nil)
		assert.True(t, errors.Is(err, types.ErrInvalidArgs))
	}
}
