package functional

import (
	"fmt"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// centralDifference perturbs *slot by +-utils.DiffEps around its value and returns the difference quotient of
// eval. The slot is restored on every return path.
func centralDifference(slot *float64, eval func() (float64, error)) (d float64, err error) {
	var (
		x0     = *slot
		fp, fm float64
	)
	defer func() { *slot = x0 }()
	*slot = x0 + utils.DiffEps
	if fp, err = eval(); err != nil {
		return
	}
	*slot = x0 - utils.DiffEps
	if fm, err = eval(); err != nil {
		return
	}
	d = (fp - fm) / (2 * utils.DiffEps)
	return
}

// vertexDerivative differentiates the integrand of element (id, vid) with respect to every coordinate of
// vertex v, adding the result into column v of frc
func (info *MapInfo) vertexDerivative(id int, vid []int, v int, frc utils.Matrix) (err error) {
	var (
		m = info.Mesh
	)
	for i := 0; i < m.Dim; i++ {
		var d float64
		d, err = centralDifference(m.CoordinateRef(v, i), func() (float64, error) {
			return info.Functional.Integrand(m, id, vid)
		})
		if err != nil {
			return
		}
		frc.Set(i, v, frc.At(i, v)+d)
	}
	return
}

// MapNumericalGradient differentiates the integrand of each enumerated element with respect to its own
// vertices and, for Dependent functionals, the additional vertices it reads
func (info *MapInfo) MapNumericalGradient() (frc utils.Matrix, err error) {
	var (
		m          = info.Mesh
		dep, isDep = info.Functional.(Dependent)
	)
	frc = utils.NewMatrix(m.Dim, m.NVertices())
	err = info.forEach(func(id int, vid []int) (err error) {
		local := make(map[int]struct{}, len(vid))
		for _, v := range vid {
			local[v] = struct{}{}
			if err = info.vertexDerivative(id, vid, v, frc); err != nil {
				return info.evaluatorFailed(id, err)
			}
		}
		if !isDep {
			return
		}
		var deps []int
		if deps, err = dep.Dependencies(m, id); err != nil {
			return info.evaluatorFailed(id, err)
		}
		for _, v := range deps {
			if _, ok := local[v]; ok {
				continue
			}
			local[v] = struct{}{}
			if err = info.vertexDerivative(id, vid, v, frc); err != nil {
				return info.evaluatorFailed(id, err)
			}
		}
		return
	})
	if err != nil {
		return utils.Matrix{}, err
	}
	info.symmetrize(frc)
	return
}

// MapNumericalFieldGradient differentiates the summed integrand with respect to every degree of freedom of
// info.Field. A dof on an element of grade g affects the elements of the functional's grade related to that
// element through the mesh connectivity.
func (info *MapInfo) MapNumericalFieldGradient() (grad *mesh.Field, err error) {
	var (
		m     = info.Mesh
		field = info.Field
	)
	if field == nil {
		err = fmt.Errorf("%w: no field to differentiate", types.ErrInvalidArgs)
		return
	}
	var (
		images   = make(map[int]struct{})
		affected []int
	)
	for _, id := range m.ImageList(info.Grade, false) {
		images[id] = struct{}{}
	}
	grad = field.Clone()
	grad.Zero()
	for g := types.Vertex; g <= types.MaxGrade; g++ {
		if field.Dof[g] == 0 {
			continue
		}
		nPer := field.Psize * field.Dof[g]
		for id := 0; id < m.ElementCount(g); id++ {
			if affected, err = info.affectedBy(g, id); err != nil {
				return nil, err
			}
			for _, el := range affected {
				if info.Selection != nil && !info.Selection.IsSelected(info.Grade, el) {
					continue
				}
				if _, skip := images[el]; skip {
					continue
				}
				var vid []int
				if vid, err = m.ElementVertices(info.Grade, el); err != nil {
					return nil, err
				}
				for j := 0; j < nPer; j++ {
					k := field.Index(g, id, j)
					var d float64
					d, err = centralDifference(field.DofRef(k), func() (float64, error) {
						return info.Functional.Integrand(m, el, vid)
					})
					if err != nil {
						return nil, info.evaluatorFailed(el, err)
					}
					grad.Data[k] += d
				}
			}
		}
	}
	return
}

// affectedBy lists the elements of the functional's grade touched by element id of grade g
func (info *MapInfo) affectedBy(g types.Grade, id int) (ids []int, err error) {
	if g == info.Grade {
		return []int{id}, nil
	}
	var S *utils.Sparse
	if S, err = info.Mesh.Connectivity(info.Grade, g); err != nil {
		return
	}
	return S.RowIndices(id)
}
