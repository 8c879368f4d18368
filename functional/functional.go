/*
Package functional evaluates scalar functionals over the elements of a mesh and their gradients with respect to
vertex positions and field degrees of freedom.

A Functional supplies the integrand for one element. The map routines enumerate elements, skipping symmetry
images and honoring an optional selection, and either sum the integrand, collect it per element, or
differentiate it. Functionals that implement Differentiable are differentiated analytically, all others by
central differences on the vertex coordinates the element depends on.
*/
package functional

import (
	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// Functional evaluates its integrand on element id of grade Grade(); vid are the element's vertex ids and
// are []int{id} for grade 0. vid aliases mesh storage and must not be modified.
type Functional interface {
	Grade() types.Grade
	Integrand(m *mesh.Mesh, id int, vid []int) (float64, error)
	Symmetry() types.SymmetryMode
}

// Differentiable functionals accumulate the analytic gradient of one element into frc, a Dim x NVertices
// matrix with one column per vertex
type Differentiable interface {
	Gradient(m *mesh.Mesh, id int, vid []int, frc utils.Matrix) error
}

// Dependent functionals read vertices beyond those of the element itself
type Dependent interface {
	Dependencies(m *mesh.Mesh, id int) ([]int, error)
}

// FieldDependent functionals read one or more fields; the first is differentiated by FieldGradient
type FieldDependent interface {
	Fields() []*mesh.Field
}

type base struct {
	grade types.Grade
	sym   types.SymmetryMode
}

func (b base) Grade() types.Grade           { return b.grade }
func (b base) Symmetry() types.SymmetryMode { return b.sym }

func newBase(g types.Grade) base { return base{grade: g, sym: types.SymmetryAdd} }

// positions copies the coordinates of the listed vertices
func positions(m *mesh.Mesh, vid []int) (x [][]float64) {
	x = make([][]float64, len(vid))
	for i, v := range vid {
		x[i] = m.VertexPosition(v)
	}
	return
}
