package functional

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// curvature functionals return the curvature integrated over the dual cell of a vertex, or the bare
// curvature when IntegrandOnly is set
type curvature struct {
	base
	IntegrandOnly bool
}

// LineCurvatureSq is the squared curvature of a curve, evaluated at vertices from the turning angle between
// the two incident lines
type LineCurvatureSq struct{ curvature }

func NewLineCurvatureSq(integrandOnly bool) *LineCurvatureSq {
	return &LineCurvatureSq{curvature{newBase(types.Vertex), integrandOnly}}
}

// LineTorsionSq is the squared torsion of a curve, evaluated on lines from the line and its two neighbors
type LineTorsionSq struct{ curvature }

func NewLineTorsionSq() *LineTorsionSq {
	return &LineTorsionSq{curvature{base: newBase(types.Line)}}
}

// MeanCurvatureSq is the squared mean curvature of a triangulated surface at each vertex
type MeanCurvatureSq struct{ curvature }

func NewMeanCurvatureSq(integrandOnly bool) *MeanCurvatureSq {
	return &MeanCurvatureSq{curvature{newBase(types.Vertex), integrandOnly}}
}

// GaussCurvature is the angle deficit of a triangulated surface at each vertex
type GaussCurvature struct{ curvature }

func NewGaussCurvature(integrandOnly bool) *GaussCurvature {
	return &GaussCurvature{curvature{newBase(types.Vertex), integrandOnly}}
}

// synonymSet is v together with every vertex identified with it by symmetry
func synonymSet(m *mesh.Mesh, v int) (set map[int]struct{}) {
	set = map[int]struct{}{v: {}}
	for _, s := range m.Synonyms(types.Vertex, v) {
		set[s] = struct{}{}
	}
	return
}

// incident lists the elements of grade g containing vertex v or one of its synonyms, ascending
func incident(m *mesh.Mesh, g types.Grade, v int) (ids []int, err error) {
	found := make(map[int]struct{})
	for s := range synonymSet(m, v) {
		var nbrs []int
		if nbrs, err = m.Neighbors(types.Vertex, s, g); err != nil {
			return
		}
		for _, n := range nbrs {
			found[n] = struct{}{}
		}
	}
	return keys(found), nil
}

// incidentVertices lists the vertices other than v of the elements of grade g incident on v
func incidentVertices(m *mesh.Mesh, g types.Grade, v int) (deps []int, err error) {
	var (
		nbrs  []int
		found = make(map[int]struct{})
	)
	if nbrs, err = incident(m, g, v); err != nil {
		return
	}
	for _, el := range nbrs {
		var vid []int
		if vid, err = m.ElementVertices(g, el); err != nil {
			return
		}
		for _, w := range vid {
			if w != v {
				found[w] = struct{}{}
			}
		}
	}
	return keys(found), nil
}

func keys(set map[int]struct{}) (k []int) {
	k = make([]int, 0, len(set))
	for v := range set {
		k = append(k, v)
	}
	sort.Ints(k)
	return
}

func (f *LineCurvatureSq) Dependencies(m *mesh.Mesh, id int) ([]int, error) {
	return incidentVertices(m, types.Line, id)
}

func (f *LineCurvatureSq) Integrand(m *mesh.Mesh, id int, vid []int) (result float64, err error) {
	var (
		nbrs []int
		syn  = synonymSet(m, id)
		s    [2][]float64
		sgn  = -1.
	)
	if nbrs, err = incident(m, types.Line, id); err != nil {
		return
	}
	if len(nbrs) < 2 {
		return
	}
	for i := 0; i < 2; i++ {
		var ev []int
		if ev, err = m.ElementVertices(types.Line, nbrs[i]); err != nil {
			return
		}
		s[i] = utils.VecSub(m.VertexPosition(ev[0]), m.VertexPosition(ev[1]))
		if _, ok := syn[ev[0]]; !ok {
			sgn *= -1
		}
	}
	var (
		n0 = utils.VecNorm(s[0])
		n1 = utils.VecNorm(s[1])
	)
	if n0 < utils.EPS || n1 < utils.EPS {
		return 0, errDegenerate
	}
	var (
		u   = sgn * utils.VecDot(s[0], s[1]) / n0 / n1
		ell = 0.5 * (n0 + n1)
	)
	if u < 1 {
		u = math.Acos(math.Max(u, -1))
	} else {
		u = 0
	}
	result = u * u / ell
	if f.IntegrandOnly {
		result /= ell
	}
	return
}

// lineNeighbors lists the lines sharing a vertex, up to symmetry, with line id
func lineNeighbors(m *mesh.Mesh, id int, vid []int) (nbrs []int, err error) {
	found := make(map[int]struct{})
	for _, v := range vid {
		var inc []int
		if inc, err = incident(m, types.Line, v); err != nil {
			return
		}
		for _, l := range inc {
			found[l] = struct{}{}
		}
	}
	delete(found, id)
	return keys(found), nil
}

func (f *LineTorsionSq) Dependencies(m *mesh.Mesh, id int) (deps []int, err error) {
	var (
		vid, nbrs []int
		found     = make(map[int]struct{})
	)
	if vid, err = m.ElementVertices(types.Line, id); err != nil {
		return
	}
	if nbrs, err = lineNeighbors(m, id, vid); err != nil {
		return
	}
	for _, l := range nbrs {
		var ev []int
		if ev, err = m.ElementVertices(types.Line, l); err != nil {
			return
		}
		for _, v := range ev {
			found[v] = struct{}{}
		}
	}
	return keys(found), nil
}

func (f *LineTorsionSq) Integrand(m *mesh.Mesh, id int, vid []int) (result float64, err error) {
	var (
		nbrs []int
		// 0 --- 1/2 --- 3/4 --- 5, with 2,3 the element itself; 1/2 and 3/4 are the same vertex up to symmetry
		vlist [6]int
		kind  = [6]int{-1, -1, -1, -1, -1, -1}
	)
	if nbrs, err = lineNeighbors(m, id, vid); err != nil {
		return
	}
	if len(nbrs) < 2 {
		return
	}
	vlist[2], vlist[3] = vid[0], vid[1]
	for i := 0; i < 2; i++ {
		var ev []int
		if ev, err = m.ElementVertices(types.Line, nbrs[i]); err != nil {
			return
		}
		vlist[4*i], vlist[4*i+1] = ev[0], ev[1]
	}
	for i := 0; i < 2; i++ {
		syn := synonymSet(m, vid[i])
		for j := range vlist {
			if _, ok := syn[vlist[j]]; ok {
				kind[j] = i
			}
		}
	}
	swap := func(i, j int) {
		vlist[i], vlist[j] = vlist[j], vlist[i]
		kind[i], kind[j] = kind[j], kind[i]
	}
	if kind[0] == 1 || kind[1] == 1 {
		swap(0, 4)
		swap(1, 5)
	}
	if kind[1] == -1 {
		swap(0, 1)
	}
	if kind[4] == -1 {
		swap(4, 5)
	}
	var x [6][]float64
	for i, v := range vlist {
		x[i] = pad(m.VertexPosition(v))
	}
	var (
		A      = utils.VecSub(x[1], x[0])
		B      = utils.VecSub(x[3], x[2])
		C      = utils.VecSub(x[5], x[4])
		normB  = utils.VecNorm(B)
		normAB = utils.VecNorm(utils.VecCross(A, B))
		normBC = utils.VecNorm(utils.VecCross(B, C))
		S      = utils.VecDot(A, utils.VecCross(B, C)) * normB
	)
	if normB < utils.EPS {
		return 0, errDegenerate
	}
	if normAB > utils.EPS {
		S /= normAB
	}
	if normBC > utils.EPS {
		S /= normBC
	}
	S = math.Asin(math.Max(-1, math.Min(1, S)))
	result = S * S / normB
	return
}

// orderedTriangle copies vid with a vertex from syn moved to the front
func orderedTriangle(syn map[int]struct{}, vid []int) (ordered []int, err error) {
	ordered = append([]int(nil), vid...)
	for i, v := range ordered {
		if _, ok := syn[v]; ok {
			ordered[0], ordered[i] = ordered[i], ordered[0]
			return
		}
	}
	return nil, fmt.Errorf("%w: triangle %v does not contain the vertex", types.ErrInvalidIndices, vid)
}

func (f *MeanCurvatureSq) Dependencies(m *mesh.Mesh, id int) ([]int, error) {
	return incidentVertices(m, types.Area, id)
}

func (f *MeanCurvatureSq) Integrand(m *mesh.Mesh, id int, vid []int) (result float64, err error) {
	var (
		nbrs    []int
		syn     = synonymSet(m, id)
		frc     = make([]float64, 3)
		areaSum float64
	)
	if nbrs, err = incident(m, types.Area, id); err != nil {
		return
	}
	if len(nbrs) == 0 {
		return
	}
	for _, tri := range nbrs {
		var ev []int
		if ev, err = m.ElementVertices(types.Area, tri); err != nil {
			return
		}
		if ev, err = orderedTriangle(syn, ev); err != nil {
			return
		}
		var (
			x    = positions(m, ev)
			s0   = utils.VecSub(x[1], x[0])
			s1   = utils.VecSub(x[2], x[1])
			s01  = utils.VecCross(s0, s1)
			norm = utils.VecNorm(s01)
		)
		if norm < utils.EPS {
			return 0, errDegenerate
		}
		areaSum += norm / 2
		frc = utils.VecAdd(frc, utils.VecScale(0.5/norm, utils.VecCross(s1, s01)))
	}
	result = utils.VecDot(frc, frc) / (areaSum / 3) / 4
	if f.IntegrandOnly {
		result /= areaSum / 3
	}
	return
}

func (f *GaussCurvature) Dependencies(m *mesh.Mesh, id int) ([]int, error) {
	return incidentVertices(m, types.Area, id)
}

func (f *GaussCurvature) Integrand(m *mesh.Mesh, id int, vid []int) (result float64, err error) {
	var (
		nbrs              []int
		syn               = synonymSet(m, id)
		angleSum, areaSum float64
	)
	if nbrs, err = incident(m, types.Area, id); err != nil {
		return
	}
	for _, tri := range nbrs {
		var ev []int
		if ev, err = m.ElementVertices(types.Area, tri); err != nil {
			return
		}
		if ev, err = orderedTriangle(syn, ev); err != nil {
			return
		}
		var (
			x    = positions(m, ev)
			s0   = utils.VecSub(x[1], x[0])
			s1   = utils.VecSub(x[2], x[0])
			area = utils.VecNorm(utils.VecCross(s0, s1))
		)
		angleSum += math.Atan2(area, utils.VecDot(s0, s1))
		areaSum += area / 2
	}
	result = 2*math.Pi - angleSum
	if f.IntegrandOnly {
		if areaSum < utils.EPS {
			return 0, errDegenerate
		}
		result /= areaSum / 3
	}
	return
}
