package functional

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMesh(t *testing.T, dim int, coords [][]float64, g types.Grade, elems [][]int) (m *mesh.Mesh) {
	var err error
	m, err = mesh.NewMesh(dim, coords)
	require.NoError(t, err)
	if len(elems) != 0 {
		require.NoError(t, m.AddElements(g, elems))
	}
	return
}

// unit square split into two triangles, with its four boundary lines
func unitSquare(t *testing.T) (m *mesh.Mesh) {
	m = newMesh(t, 2, [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		types.Area, [][]int{{0, 1, 2}, {1, 3, 2}})
	require.NoError(t, m.AddElements(types.Line, [][]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}}))
	return
}

func colSum(frc utils.Matrix) (sum []float64) {
	nr, nc := frc.Dims()
	sum = make([]float64, nr)
	for j := 0; j < nc; j++ {
		for i := range sum {
			sum[i] += frc.At(i, j)
		}
	}
	return
}

func TestGeometryTotals(t *testing.T) {
	{ // triangle (0,0,0), (1,0,0), (0,1,0)
		m := newMesh(t, 3, [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, types.Area, [][]int{{0, 1, 2}})
		total, err := Total(NewArea(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, total, 1.e-15)
		frc, err := Gradient(NewArea(), m, nil)
		require.NoError(t, err)
		for _, s := range colSum(frc) {
			assert.InDelta(t, 0, s, 1.e-14)
		}
		// moving vertex 0 away from the opposite side grows the area
		assert.InDelta(t, -0.5, frc.At(0, 0), 1.e-14)
		assert.InDelta(t, -0.5, frc.At(1, 0), 1.e-14)
	}
	{ // tetrahedron (0,0,0),(1,0,0),(0,1,0),(0,0,1)
		m := newMesh(t, 3, [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
			types.Volume, [][]int{{0, 1, 2, 3}})
		total, err := Total(NewVolume(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1./6, total, 1.e-15)
		frc, err := Gradient(NewVolume(), m, nil)
		require.NoError(t, err)
		for _, s := range colSum(frc) {
			assert.InDelta(t, 0, s, 1.e-14)
		}
		require.NoError(t, m.AddGrade(types.Area))
		total, err = Total(NewVolumeEnclosed(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1./6, total, 1.e-15)
	}
	{
		m := unitSquare(t)
		total, err := Total(NewLength(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 4, total, 1.e-15)
		total, err = Total(NewAreaEnclosed(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1, total, 1.e-15)
		total, err = Total(NewArea(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1, total, 1.e-15)
		R, err := Integrand(NewLength(), m, nil)
		require.NoError(t, err)
		nr, nc := R.Dims()
		assert.Equal(t, 1, nr)
		assert.Equal(t, 4, nc)
		assert.Equal(t, []float64{1, 1, 1, 1}, R.Data())
	}
}

func perturbed(rnd *rand.Rand, coords [][]float64) [][]float64 {
	for _, x := range coords {
		for i := range x {
			x[i] += 0.1 * (rnd.Float64() - 0.5)
		}
	}
	return coords
}

func TestAnalyticMatchesNumerical(t *testing.T) {
	var (
		rnd = rand.New(rand.NewSource(17))
		// central differences with a 1e-10 step leave roundoff of order 1e-6
		tol = 1.e-5
	)
	type tcase struct {
		name   string
		f      Functional
		g      types.Grade
		coords [][]float64
		elems  [][]int
	}
	for trial := 0; trial < 5; trial++ {
		cases := []tcase{
			{"Length", NewLength(), types.Line,
				[][]float64{{0, 0, 0}, {1, 0.2, 0.1}, {1.5, 1, 0.3}}, [][]int{{0, 1}, {1, 2}}},
			{"AreaEnclosed", NewAreaEnclosed(), types.Line,
				[][]float64{{1, 0.5, 0}, {0.2, 1, 0.4}}, [][]int{{0, 1}}},
			{"Area", NewArea(), types.Area,
				[][]float64{{0, 0, 0}, {1, 0, 0.1}, {0, 1, 0.2}, {1, 1, 0.5}}, [][]int{{0, 1, 2}, {1, 3, 2}}},
			{"VolumeEnclosed", NewVolumeEnclosed(), types.Area,
				[][]float64{{1, 0.2, 0.3}, {0.1, 1, 0.2}, {0.3, 0.1, 1}}, [][]int{{0, 1, 2}}},
			{"Volume", NewVolume(), types.Volume,
				[][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}}, [][]int{{0, 1, 2, 3}, {1, 2, 3, 4}}},
		}
		for _, tc := range cases {
			m := newMesh(t, 3, perturbed(rnd, tc.coords), tc.g, tc.elems)
			analytic, err := Gradient(tc.f, m, nil)
			require.NoError(t, err, tc.name)
			numerical, err := NumericalGradient(tc.f, m, nil)
			require.NoError(t, err, tc.name)
			nr, nc := analytic.Dims()
			for i := 0; i < nr; i++ {
				for j := 0; j < nc; j++ {
					assert.InDeltaf(t, numerical.At(i, j), analytic.At(i, j), tol, "%s (%d,%d)", tc.name, i, j)
				}
			}
		}
	}
	{ // 2D meshes take the in plane part of the cross products
		m := newMesh(t, 2, [][]float64{{0, 0}, {1, 0.1}, {0.2, 1}}, types.Area, [][]int{{0, 1, 2}})
		analytic, err := Gradient(NewArea(), m, nil)
		require.NoError(t, err)
		numerical, err := NumericalGradient(NewArea(), m, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, numerical.Data(), analytic.Data(), tol)
	}
}

// four vertices on a circle of length 3, vertex 3 sits on vertex 0
func periodicLine(t *testing.T) (m *mesh.Mesh) {
	m = newMesh(t, 1, [][]float64{{0}, {1}, {2}, {3}}, types.Line, [][]int{{0, 1}, {1, 2}, {2, 3}})
	require.NoError(t, m.AddSymmetry(types.Vertex, 0, 3))
	return
}

func TestSymmetry(t *testing.T) {
	m := periodicLine(t)
	{
		total, err := Total(NewLength(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 3, total, 1.e-15)
		frc, err := Gradient(NewLength(), m, nil)
		require.NoError(t, err)
		assert.Equal(t, frc.Col(0), frc.Col(3))
		assert.InDeltaSlice(t, []float64{0, 0, 0, 0}, frc.Data(), 1.e-15)
		num, err := NumericalGradient(NewLength(), m, nil)
		require.NoError(t, err)
		assert.Equal(t, num.Col(0), num.Col(3))
		assert.InDeltaSlice(t, []float64{0, 0, 0, 0}, num.Data(), 1.e-5)
	}
	{ // the image vertex is not visited
		sp, err := NewScalarPotential(func(x []float64) (float64, error) { return x[0] + 1, nil })
		require.NoError(t, err)
		total, err := Total(sp, m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 6, total, 1.e-15)
		R, err := Integrand(sp, m, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3, 0}, R.Data())
		frc, err := Gradient(sp, m, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1, 1, 1, 1}, frc.Data(), 1.e-5)
	}
	{ // image lines are skipped once derived
		require.NoError(t, m.AddElements(types.Line, [][]int{{0, 1}}))
		require.NoError(t, m.DeriveSymmetry(types.Line))
		total, err := Total(NewLength(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 3, total, 1.e-15)
	}
}

func TestSelection(t *testing.T) {
	m := unitSquare(t)
	{
		sel := mesh.NewSelection(m)
		require.NoError(t, sel.Select(types.Line, 2))
		total, err := Total(NewLength(), m, sel)
		require.NoError(t, err)
		assert.InDelta(t, 1, total, 1.e-15)
		R, err := Integrand(NewLength(), m, sel)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 1, 0}, R.Data())
		frc, err := Gradient(NewLength(), m, sel)
		require.NoError(t, err)
		// line 2 runs from vertex 3 to vertex 2
		assert.Equal(t, []float64{1, 0}, frc.Col(3))
		assert.Equal(t, []float64{-1, 0}, frc.Col(2))
		assert.Equal(t, []float64{0, 0}, frc.Col(0))
	}
	{
		sel := mesh.NewSelection(m)
		total, err := Total(NewLength(), m, sel)
		require.NoError(t, err)
		assert.Equal(t, 0., total)
	}
}

// probe fails as soon as vertex 0 moves
type probe struct{ base }

func (p *probe) Integrand(m *mesh.Mesh, id int, vid []int) (float64, error) {
	if x := m.VertexPosition(0); x[0] != 0 {
		return 0, errors.New("vertex 0 moved")
	}
	return 1, nil
}

func TestEvaluatorFailure(t *testing.T) {
	{
		m := newMesh(t, 2, [][]float64{{0, 0}, {1, 1}, {1, 1}}, types.Line, [][]int{{0, 1}, {1, 2}})
		total, err := Total(NewLength(), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, math.Sqrt2, total, 1.e-15)
		frc, err := Gradient(NewLength(), m, nil)
		assert.True(t, errors.Is(err, types.ErrEvaluatorFailed))
		assert.True(t, frc.IsEmpty())
	}
	{ // perturbed coordinates are restored when the integrand fails
		m := unitSquare(t)
		frc, err := NumericalGradient(&probe{newBase(types.Line)}, m, nil)
		assert.True(t, errors.Is(err, types.ErrEvaluatorFailed))
		assert.True(t, frc.IsEmpty())
		assert.Equal(t, []float64{0, 0}, m.VertexPosition(0))
		total, err := Total(&probe{newBase(types.Line)}, m, nil)
		require.NoError(t, err)
		assert.Equal(t, 4., total)
	}
	{
		m := unitSquare(t)
		_, err := NewMapInfo(&probe{newBase(types.Line)}, m, nil).MapGradient()
		assert.True(t, errors.Is(err, types.ErrInvalidArgs))
		_, err = FieldGradient(NewLength(), m, nil, nil)
		assert.True(t, errors.Is(err, types.ErrInvalidArgs))
	}
}

func TestScalarPotential(t *testing.T) {
	m := unitSquare(t)
	var (
		fn   = func(x []float64) (float64, error) { return x[0]*x[0] + 3*x[1], nil }
		grad = func(x []float64) ([]float64, error) { return []float64{2 * x[0], 3}, nil }
	)
	analytic, err := NewScalarPotential(fn, grad)
	require.NoError(t, err)
	numerical, err := NewScalarPotential(fn)
	require.NoError(t, err)
	total, err := Total(analytic, m, nil)
	require.NoError(t, err)
	assert.InDelta(t, 8, total, 1.e-15)
	ga, err := Gradient(analytic, m, nil)
	require.NoError(t, err)
	gn, err := Gradient(numerical, m, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, ga.Col(3))
	assert.InDeltaSlice(t, ga.Data(), gn.Data(), 1.e-5)
	_, err = NewScalarPotential(nil)
	assert.True(t, errors.Is(err, types.ErrInvalidArgs))
	bad, _ := NewScalarPotential(fn, func(x []float64) ([]float64, error) { return []float64{1}, nil })
	_, err = Gradient(bad, m, nil)
	assert.True(t, errors.Is(err, types.ErrEvaluatorFailed))
	assert.True(t, errors.Is(err, types.ErrIncompatibleDimensions))
}

func TestTotalCompensated(t *testing.T) {
	const n = 1000000
	coords := make([][]float64, n+1)
	for i := range coords {
		coords[i] = []float64{float64(i)}
	}
	m := newMesh(t, 1, coords, types.Vertex, nil)
	f, err := NewScalarPotential(func(x []float64) (float64, error) {
		if x[0] == 0 {
			return 1.e8, nil
		}
		return 1.e-8, nil
	})
	require.NoError(t, err)
	total, err := Total(f, m, nil)
	require.NoError(t, err)
	var naive float64
	for i := 0; i <= n; i++ {
		v, _ := f.Fn(coords[i])
		naive += v
	}
	exact := 1.e8 + 0.01
	assert.InDelta(t, exact, total, 2.e-8)
	assert.Less(t, math.Abs(total-exact), math.Abs(naive-exact))
}
