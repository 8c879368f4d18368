package mesh

import (
	"fmt"

	"github.com/notargets/gofunctional/types"
)

// Selection is a per grade set of element ids, enumerated in the order they were selected
type Selection struct {
	mesh *Mesh
	ids  [types.MaxGrade + 1][]int
	set  [types.MaxGrade + 1]map[int]struct{}
}

func NewSelection(m *Mesh) (s *Selection) {
	s = &Selection{mesh: m}
	for g := range s.set {
		s.set[g] = make(map[int]struct{})
	}
	return
}

func (s *Selection) Select(g types.Grade, ids ...int) (err error) {
	if !g.Valid() {
		err = fmt.Errorf("%w: grade %v", types.ErrInvalidIndices, g)
		return
	}
	n := s.mesh.ElementCount(g)
	for _, id := range ids {
		if id < 0 || id >= n {
			err = fmt.Errorf("%w: element %d of grade %v, mesh has %d", types.ErrInvalidIndices, id, g, n)
			return
		}
		if _, ok := s.set[g][id]; ok {
			continue
		}
		s.set[g][id] = struct{}{}
		s.ids[g] = append(s.ids[g], id)
	}
	return
}

func (s *Selection) IsSelected(g types.Grade, id int) bool {
	if !g.Valid() {
		return false
	}
	_, ok := s.set[g][id]
	return ok
}

// IDs returns the selected ids of grade g in selection order
func (s *Selection) IDs(g types.Grade) []int {
	if !g.Valid() {
		return nil
	}
	return s.ids[g]
}

func (s *Selection) Count(g types.Grade) int { return len(s.IDs(g)) }

// SelectVertices selects every vertex whose position satisfies fn
func (s *Selection) SelectVertices(fn func(x []float64) bool) {
	for v := 0; v < s.mesh.NVertices(); v++ {
		if fn(s.mesh.VertexPosition(v)) {
			_ = s.Select(types.Vertex, v)
		}
	}
}

// AddGrade selects every element of grade g whose vertices are all selected
func (s *Selection) AddGrade(g types.Grade) (err error) {
	if g == types.Vertex {
		return
	}
	for id := 0; id < s.mesh.ElementCount(g); id++ {
		var vids []int
		if vids, err = s.mesh.ElementVertices(g, id); err != nil {
			return
		}
		all := true
		for _, v := range vids {
			if !s.IsSelected(types.Vertex, v) {
				all = false
				break
			}
		}
		if all {
			if err = s.Select(g, id); err != nil {
				return
			}
		}
	}
	return
}
