package mesh

import (
	"fmt"

	"github.com/notargets/gofunctional/types"
)

// AddGrade creates the elements of grade g implied by the next higher grade: the edges of every triangle or
// the faces of every tetrahedron. Elements already present are not duplicated.
func (m *Mesh) AddGrade(g types.Grade) (err error) {
	var (
		parent  = g + 1
		nParent = m.ElementCount(parent)
		added   [][]int
	)
	if g < types.Line || parent > types.MaxGrade {
		err = fmt.Errorf("%w: cannot derive grade %v", types.ErrInvalidIndices, g)
		return
	}
	if nParent == 0 {
		err = fmt.Errorf("%w: no elements of grade %v to derive %v from", types.ErrElementNotFound, parent, g)
		return
	}
	switch g {
	case types.Line:
		have := make(map[types.EdgeKey]struct{})
		for _, el := range m.elements[types.Line] {
			have[types.NewEdgeKey([2]int{el[0], el[1]})] = struct{}{}
		}
		for id := 0; id < nParent; id++ {
			var vids []int
			if vids, err = m.ElementVertices(parent, id); err != nil {
				return
			}
			for i := range vids {
				edge := [2]int{vids[i], vids[(i+1)%3]}
				ek := types.NewEdgeKey(edge)
				if _, ok := have[ek]; ok {
					continue
				}
				have[ek] = struct{}{}
				added = append(added, edge[:])
			}
		}
	case types.Area:
		have := make(map[types.FaceKey]struct{})
		for _, el := range m.elements[types.Area] {
			have[types.NewFaceKey([3]int{el[0], el[1], el[2]})] = struct{}{}
		}
		for id := 0; id < nParent; id++ {
			var vids []int
			if vids, err = m.ElementVertices(parent, id); err != nil {
				return
			}
			for skip := range vids {
				var face [3]int
				n := 0
				for i, v := range vids {
					if i != skip {
						face[n] = v
						n++
					}
				}
				fk := types.NewFaceKey(face)
				if _, ok := have[fk]; ok {
					continue
				}
				have[fk] = struct{}{}
				added = append(added, face[:])
			}
		}
	}
	if len(added) == 0 {
		return
	}
	return m.AddElements(g, added)
}
