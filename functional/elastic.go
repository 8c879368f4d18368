package functional

import (
	"fmt"
	"math"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// LinearElasticity is the linear elastic energy of each element relative to the same element in a
// reference mesh with identical connectivity and vertex numbering
type LinearElasticity struct {
	base
	Reference *mesh.Mesh
	Poisson   float64
	lambda    float64 // Lame coefficients
	mu        float64
}

// NewLinearElasticity acts on the highest grade of ref unless a grade is given. Poisson's ratio is 0.3.
func NewLinearElasticity(ref *mesh.Mesh, grade ...types.Grade) (f *LinearElasticity, err error) {
	if ref == nil {
		err = fmt.Errorf("%w: linear elasticity needs a reference mesh", types.ErrInvalidArgs)
		return
	}
	g := ref.MaxGrade()
	if len(grade) != 0 {
		g = grade[0]
	}
	if g == types.Vertex || !g.Valid() {
		err = fmt.Errorf("%w: linear elasticity on grade %v", types.ErrInvalidArgs, g)
		return
	}
	f = &LinearElasticity{base: newBase(g), Reference: ref}
	f.SetPoisson(0.3)
	return
}

func (f *LinearElasticity) SetPoisson(nu float64) {
	f.Poisson = nu
	f.mu = 0.5 / (1 + nu)
	f.lambda = nu / (1 + nu) / (1 - 2*nu)
}

// gram returns the matrix of inner products of the element sides x_i - x_0
func gram(x [][]float64) (G utils.Matrix) {
	var (
		n = len(x) - 1
		s = make([][]float64, n)
	)
	for i := range s {
		s[i] = utils.VecSub(x[i+1], x[0])
	}
	G = utils.NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			G.Set(i, j, utils.VecDot(s[i], s[j]))
		}
	}
	return
}

func (f *LinearElasticity) Integrand(m *mesh.Mesh, id int, vid []int) (energy float64, err error) {
	if f.Reference.NVertices() != m.NVertices() {
		err = fmt.Errorf("%w: reference mesh has %d vertices, mesh has %d",
			types.ErrIncompatibleDimensions, f.Reference.NVertices(), m.NVertices())
		return
	}
	var (
		xRef   = positions(f.Reference, vid)
		gRef   = gram(xRef)
		gDef   = gram(positions(m, vid))
		q      utils.Matrix
		weight float64
	)
	if q, err = gRef.Inverse(); err != nil {
		return
	}
	n, _ := gRef.Dims()
	// Cauchy-Green strain
	cg := utils.NewIdentity(n).Scale(-0.5).Add(gDef.Mul(q).Scale(0.5))
	var (
		tr   = cg.Trace()
		trSq = cg.Mul(cg).Trace()
	)
	if weight, err = elementSize(f.grade, xRef); err != nil {
		return
	}
	energy = weight * (f.mu*trSq + 0.5*f.lambda*tr*tr)
	return
}

// EquiElement is evaluated on vertices and penalizes the spread in size of the elements of Grade around
// each vertex: sum over incident elements of (1 - size/mean)^2. Optional per element weights rescale the
// target sizes.
type EquiElement struct {
	base
	Target  types.Grade
	Weights []float64
	wMean   float64
}

// NewEquiElement equalizes elements of grade g; an invalid g selects the mesh's highest grade at evaluation
func NewEquiElement(g types.Grade, weights ...[]float64) (f *EquiElement) {
	f = &EquiElement{base: newBase(types.Vertex), Target: g}
	if len(weights) != 0 && len(weights[0]) != 0 {
		f.Weights = weights[0]
		var sum utils.KahanSum
		for _, w := range f.Weights {
			sum.Add(w)
		}
		f.wMean = sum.Sum() / float64(len(f.Weights))
	}
	return
}

func (f *EquiElement) target(m *mesh.Mesh) types.Grade {
	if f.Target == types.Vertex || f.Target > m.MaxGrade() {
		return m.MaxGrade()
	}
	return f.Target
}

// Dependencies are the vertices of the elements incident on vertex id
func (f *EquiElement) Dependencies(m *mesh.Mesh, id int) (deps []int, err error) {
	var (
		g     = f.target(m)
		found = make(map[int]struct{})
		conn  []int
	)
	if conn, err = m.Neighbors(types.Vertex, id, g); err != nil {
		return
	}
	for _, el := range conn {
		var vid []int
		if vid, err = m.ElementVertices(g, el); err != nil {
			return
		}
		for _, v := range vid {
			if v != id {
				found[v] = struct{}{}
			}
		}
	}
	return keys(found), nil
}

func (f *EquiElement) Integrand(m *mesh.Mesh, id int, vid []int) (total float64, err error) {
	var (
		g    = f.target(m)
		conn []int
	)
	if conn, err = m.Neighbors(types.Vertex, id, g); err != nil {
		return
	}
	if len(conn) < 2 {
		return
	}
	var (
		size = make([]float64, len(conn))
		mean float64
	)
	for i, el := range conn {
		var ev []int
		if ev, err = m.ElementVertices(g, el); err != nil {
			return
		}
		if size[i], err = elementSize(g, positions(m, ev)); err != nil {
			return
		}
		mean += size[i]
	}
	mean /= float64(len(conn))
	if math.Abs(mean) < utils.EPS {
		err = fmt.Errorf("vertex %d: incident elements have zero mean size", id)
		return
	}
	if f.Weights == nil || math.Abs(f.wMean) < utils.EPS {
		for _, s := range size {
			total += utils.POW(1-s/mean, 2)
		}
		return
	}
	var (
		weight = make([]float64, len(conn))
		wMean  float64
	)
	for i, el := range conn {
		weight[i] = 1
		if el < len(f.Weights) {
			weight[i] = f.Weights[el]
		}
		wMean += weight[i]
	}
	wMean /= float64(len(conn))
	if math.Abs(wMean) < utils.EPS {
		wMean = 1
	}
	for i, s := range size {
		total += utils.POW(1-weight[i]*s/mean/wMean, 2)
	}
	return
}
