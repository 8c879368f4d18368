package functional

import (
	"math"
	"testing"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ring of n vertices on the unit circle in the z = 0 plane
func ring(t *testing.T, n int) *mesh.Mesh {
	var (
		coords = make([][]float64, n)
		lines  = make([][]int, n)
	)
	for i := range coords {
		th := 2 * math.Pi * float64(i) / float64(n)
		coords[i] = []float64{math.Cos(th), math.Sin(th), 0}
		lines[i] = []int{i, (i + 1) % n}
	}
	return newMesh(t, 3, coords, types.Line, lines)
}

func TestLineCurvatureSq(t *testing.T) {
	var (
		n    = 12
		m    = ring(t, n)
		turn = 2 * math.Pi / float64(n)
		side = 2 * math.Sin(math.Pi/float64(n))
	)
	{
		total, err := Total(NewLineCurvatureSq(false), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, float64(n)*turn*turn/side, total, 1.e-9)
		R, err := Integrand(NewLineCurvatureSq(true), m, nil)
		require.NoError(t, err)
		for _, k := range R.Data() {
			assert.InDelta(t, turn*turn/side/side, k, 1.e-9)
		}
	}
	{ // the ring is a stationary shape up to scaling: forces point radially inward or outward
		frc, err := Gradient(NewLineCurvatureSq(false), m, nil)
		require.NoError(t, err)
		for v := 0; v < n; v++ {
			var (
				x = m.VertexPosition(v)
				f = frc.Col(v)
			)
			assert.InDelta(t, 0, x[0]*f[1]-x[1]*f[0], 1.e-4)
		}
	}
	{ // a straight open line has no curvature and the end points have a single neighbor
		m := newMesh(t, 2, [][]float64{{0, 0}, {1, 0}, {2, 0}}, types.Line, [][]int{{0, 1}, {1, 2}})
		total, err := Total(NewLineCurvatureSq(false), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, total, 1.e-15)
		deps, err := NewLineCurvatureSq(false).Dependencies(m, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 2}, deps)
	}
	{ // the turn across a periodic join is seen through the synonym
		m := newMesh(t, 2, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, types.Line, [][]int{{0, 1}, {1, 2}, {2, 3}})
		require.NoError(t, m.AddSymmetry(types.Vertex, 0, 3))
		R, err := Integrand(NewLineCurvatureSq(false), m, nil)
		require.NoError(t, err)
		assert.Greater(t, R.At(0, 0), 0.)
		assert.Equal(t, 0., R.At(0, 3))
	}
}

func TestLineTorsionSq(t *testing.T) {
	{ // planar curves are torsion free
		total, err := Total(NewLineTorsionSq(), ring(t, 8), nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, total, 1.e-12)
	}
	{ // a helix is not
		var (
			coords [][]float64
			lines  [][]int
		)
		for i := 0; i < 10; i++ {
			th := 0.5 * float64(i)
			coords = append(coords, []float64{math.Cos(th), math.Sin(th), 0.3 * th})
			if i > 0 {
				lines = append(lines, []int{i - 1, i})
			}
		}
		m := newMesh(t, 3, coords, types.Line, lines)
		R, err := Integrand(NewLineTorsionSq(), m, nil)
		require.NoError(t, err)
		assert.Equal(t, 0., R.At(0, 0))
		assert.Greater(t, R.At(0, 4), 0.)
		deps, err := NewLineTorsionSq().Dependencies(m, 4)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 4, 5, 6}, deps)
		_, err = Gradient(NewLineTorsionSq(), m, nil)
		require.NoError(t, err)
	}
}

// surface of the unit tetrahedron
func tetSurface(t *testing.T) *mesh.Mesh {
	return newMesh(t, 3, [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		types.Area, [][]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}})
}

func TestSurfaceCurvature(t *testing.T) {
	{ // Gauss-Bonnet on a closed surface of genus zero
		total, err := Total(NewGaussCurvature(false), tetSurface(t), nil)
		require.NoError(t, err)
		assert.InDelta(t, 4*math.Pi, total, 1.e-12)
	}
	{ // the center of a flat fan is neither curved nor bent
		m := newMesh(t, 3, [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {0.5, 0.5, 0}},
			types.Area, [][]int{{0, 1, 4}, {1, 3, 4}, {3, 2, 4}, {2, 0, 4}})
		R, err := Integrand(NewMeanCurvatureSq(false), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, R.At(0, 4), 1.e-12)
		assert.Greater(t, R.At(0, 0), 0.)
		G, err := Integrand(NewGaussCurvature(true), m, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, G.At(0, 4), 1.e-12)
		deps, err := NewMeanCurvatureSq(false).Dependencies(m, 4)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3}, deps)
	}
	{
		m := tetSurface(t)
		total, err := Total(NewMeanCurvatureSq(false), m, nil)
		require.NoError(t, err)
		assert.Greater(t, total, 0.)
		_, err = Gradient(NewMeanCurvatureSq(false), m, nil)
		require.NoError(t, err)
	}
}
