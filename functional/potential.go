package functional

import (
	"fmt"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// PotentialFunc evaluates a scalar at a point
type PotentialFunc func(x []float64) (float64, error)

// PotentialGradFunc evaluates the gradient of a PotentialFunc; the result has one entry per coordinate
type PotentialGradFunc func(x []float64) ([]float64, error)

// ScalarPotential sums a potential over the vertices of the mesh
type ScalarPotential struct {
	base
	Fn     PotentialFunc
	GradFn PotentialGradFunc
}

// NewScalarPotential takes the potential and optionally its gradient. Without a gradient, Gradient
// differentiates fn by central differences.
func NewScalarPotential(fn PotentialFunc, grad ...PotentialGradFunc) (f *ScalarPotential, err error) {
	if fn == nil {
		err = fmt.Errorf("%w: scalar potential needs a function", types.ErrInvalidArgs)
		return
	}
	f = &ScalarPotential{base: newBase(types.Vertex), Fn: fn}
	if len(grad) != 0 {
		f.GradFn = grad[0]
	}
	return
}

func (f *ScalarPotential) Integrand(m *mesh.Mesh, id int, vid []int) (float64, error) {
	return f.Fn(m.VertexPosition(id))
}

func (f *ScalarPotential) Gradient(m *mesh.Mesh, id int, vid []int, frc utils.Matrix) (err error) {
	if f.GradFn == nil {
		for i := 0; i < m.Dim; i++ {
			var d float64
			d, err = centralDifference(m.CoordinateRef(id, i), func() (float64, error) {
				return f.Integrand(m, id, vid)
			})
			if err != nil {
				return
			}
			frc.Set(i, id, frc.At(i, id)+d)
		}
		return
	}
	var g []float64
	if g, err = f.GradFn(m.VertexPosition(id)); err != nil {
		return
	}
	if len(g) != m.Dim {
		return fmt.Errorf("%w: potential gradient has %d components, mesh dimension is %d",
			types.ErrIncompatibleDimensions, len(g), m.Dim)
	}
	frc.AddToCol(id, 1, g)
	return
}
