package functional

import (
	"fmt"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// Total sums the integrand over the mesh, or over the selected elements when sel is not nil
func Total(f Functional, m *mesh.Mesh, sel *mesh.Selection) (float64, error) {
	return NewMapInfo(f, m, sel).SumIntegrand()
}

// Integrand returns the per element integrand as a 1 x n row
func Integrand(f Functional, m *mesh.Mesh, sel *mesh.Selection) (utils.Matrix, error) {
	return NewMapInfo(f, m, sel).MapIntegrand()
}

// Gradient returns the Dim x NVertices gradient with respect to vertex positions, analytic when the
// functional provides one
func Gradient(f Functional, m *mesh.Mesh, sel *mesh.Selection) (utils.Matrix, error) {
	info := NewMapInfo(f, m, sel)
	if _, ok := f.(Differentiable); ok {
		return info.MapGradient()
	}
	return info.MapNumericalGradient()
}

// NumericalGradient always differentiates by central differences
func NumericalGradient(f Functional, m *mesh.Mesh, sel *mesh.Selection) (utils.Matrix, error) {
	return NewMapInfo(f, m, sel).MapNumericalGradient()
}

// FieldGradient differentiates with respect to the degrees of freedom of field, which must be a field the
// functional reads. A nil field selects the functional's first field.
func FieldGradient(f Functional, m *mesh.Mesh, field *mesh.Field, sel *mesh.Selection) (*mesh.Field, error) {
	if field == nil {
		if fd, ok := f.(FieldDependent); ok && len(fd.Fields()) != 0 {
			field = fd.Fields()[0]
		}
	}
	if field == nil {
		return nil, fmt.Errorf("%w: functional reads no field", types.ErrInvalidArgs)
	}
	info := NewMapInfo(f, m, sel)
	info.Field = field
	return info.MapNumericalFieldGradient()
}
