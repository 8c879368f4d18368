package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// AddSymmetry records element image of grade g as a periodic copy of element canonical
func (m *Mesh) AddSymmetry(g types.Grade, canonical, image int) (err error) {
	var (
		n  = m.ElementCount(g)
		S  *utils.Sparse
		k  = connKey{g, g}
		ok bool
	)
	if !g.Valid() {
		err = fmt.Errorf("%w: grade %v", types.ErrInvalidIndices, g)
		return
	}
	if canonical < 0 || canonical >= n || image < 0 || image >= n || canonical == image {
		err = fmt.Errorf("%w: symmetry %d -> %d of grade %v with %d elements",
			types.ErrInvalidIndices, canonical, image, g, n)
		return
	}
	if S, ok = m.conn[k]; !ok {
		S = utils.NewSparse(fmt.Sprintf("symmetry(%d)", g))
		m.conn[k] = S
	}
	if err = S.Insert(canonical, image, 1); err != nil {
		return
	}
	if nr, nc := S.Dims(); nr < n || nc < n {
		err = S.SetDimensions(n, n)
	}
	return
}

func (m *Mesh) symmetry(g types.Grade) (S *utils.Sparse) {
	return m.conn[connKey{g, g}]
}

// HasSymmetry reports whether any symmetry pairs are recorded for grade g
func (m *Mesh) HasSymmetry(g types.Grade) bool {
	S := m.symmetry(g)
	return S != nil && S.Count() != 0
}

// Synonyms lists the elements identified with id: its images, its canonical element and the canonical
// element's other images
func (m *Mesh) Synonyms(g types.Grade, id int) (syn []int) {
	var (
		S         = m.symmetry(g)
		found     = make(map[int]struct{})
		canonical []int
	)
	if S == nil {
		return
	}
	S.DOK().Keys(func(row, col int, val float64) {
		switch id {
		case row:
			found[col] = struct{}{}
		case col:
			found[row] = struct{}{}
			canonical = append(canonical, row)
		}
	})
	if len(canonical) != 0 {
		S.DOK().Keys(func(row, col int, val float64) {
			for _, c := range canonical {
				if row == c {
					found[col] = struct{}{}
				}
			}
		})
	}
	delete(found, id)
	return sortedKeys(found)
}

// ImageList lists every element of grade g recorded as an image, without duplicates, in insertion order or
// ascending when sorted is set
func (m *Mesh) ImageList(g types.Grade, sorted bool) (images []int) {
	var (
		S    = m.symmetry(g)
		seen = make(map[int]struct{})
	)
	if S == nil {
		return
	}
	S.DOK().Keys(func(row, col int, val float64) {
		if _, dup := seen[col]; !dup {
			seen[col] = struct{}{}
			images = append(images, col)
		}
	})
	if sorted {
		sort.Ints(images)
	}
	return
}

// canonicalVertex follows vertex symmetries back to the element that is not itself an image
func (m *Mesh) canonicalVertex(v int) int {
	S := m.symmetry(types.Vertex)
	if S == nil {
		return v
	}
	for hops := 0; hops <= S.Count(); hops++ {
		next := -1
		S.DOK().Keys(func(row, col int, val float64) {
			if col == v && next < 0 {
				next = row
			}
		})
		if next < 0 {
			break
		}
		v = next
	}
	return v
}

// DeriveSymmetry finds elements of grade g whose vertices map onto another element's vertices under the vertex
// symmetries and records them as images of the first such element
func (m *Mesh) DeriveSymmetry(g types.Grade) (err error) {
	var (
		first = make(map[string]int)
		n     = m.ElementCount(g)
	)
	if g == types.Vertex {
		return
	}
	for id := 0; id < n; id++ {
		var vids []int
		if vids, err = m.ElementVertices(g, id); err != nil {
			return
		}
		mapped := make([]int, len(vids))
		for i, v := range vids {
			mapped[i] = m.canonicalVertex(v)
		}
		sort.Ints(mapped)
		key := fmt.Sprint(mapped)
		if c, ok := first[key]; ok {
			if err = m.AddSymmetry(g, c, id); err != nil {
				return
			}
			continue
		}
		first[key] = id
	}
	return
}

func sortedKeys(set map[int]struct{}) (keys []int) {
	if len(set) == 0 {
		return
	}
	keys = make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return
}

// isSubset reports whether every entry of small appears in large
func isSubset(small, large []int) bool {
	for _, s := range small {
		found := false
		for _, l := range large {
			if s == l {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
