package mesh

import (
	"fmt"

	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

type connKey struct {
	row, col types.Grade
}

// Mesh holds vertex positions, one vertex per column of a Dim x NVertices matrix, and a registry of
// connectivity matrices. Connectivity(row, col) has one column per element of grade col listing the related
// elements of grade row. Matrices are built on first use and cached. Connectivity(g, g) holds symmetry pairs:
// entry (i, j) marks element j as an image of element i.
type Mesh struct {
	Dim      int
	Vert     utils.Matrix
	elements map[types.Grade][][]int
	conn     map[connKey]*utils.Sparse
}

// NewMesh takes vertex coordinates, one slice of length dim per vertex
func NewMesh(dim int, coords [][]float64) (m *Mesh, err error) {
	if dim < 1 || dim > 3 {
		err = fmt.Errorf("%w: mesh dimension %d", types.ErrIncompatibleDimensions, dim)
		return
	}
	for i, x := range coords {
		if len(x) != dim {
			err = fmt.Errorf("%w: vertex %d has %d coordinates, mesh dimension is %d",
				types.ErrIncompatibleDimensions, i, len(x), dim)
			return
		}
	}
	m = &Mesh{
		Dim:      dim,
		Vert:     utils.NewMatrixFromColumns(coords),
		elements: make(map[types.Grade][][]int),
		conn:     make(map[connKey]*utils.Sparse),
	}
	if len(coords) == 0 {
		m.Vert = utils.NewMatrix(dim, 0)
	}
	return
}

func (m *Mesh) NVertices() (nv int) {
	_, nv = m.Vert.Dims()
	return
}

// VertexPosition returns a copy of the coordinates of vertex id
func (m *Mesh) VertexPosition(id int) []float64 { return m.Vert.Col(id) }

func (m *Mesh) SetVertexPosition(id int, x []float64) { m.Vert.SetCol(id, x) }

// CoordinateRef addresses one coordinate of a vertex in place
func (m *Mesh) CoordinateRef(id, i int) *float64 {
	raw := m.Vert.RawMatrix()
	return &raw.Data[i*raw.Stride+id]
}

// AddElements appends elements of grade g, each given by its vertex ids in orientation order
func (m *Mesh) AddElements(g types.Grade, elems [][]int) (err error) {
	var (
		nv = m.NVertices()
	)
	if g < types.Line || g > types.MaxGrade {
		err = fmt.Errorf("%w: cannot add elements of grade %v", types.ErrInvalidIndices, g)
		return
	}
	for k, el := range elems {
		if len(el) != g.NVertices() {
			err = fmt.Errorf("%w: element %d of grade %v has %d vertices",
				types.ErrIncompatibleDimensions, k, g, len(el))
			return
		}
		for _, v := range el {
			if v < 0 || v >= nv {
				err = fmt.Errorf("%w: vertex %d of element %d, mesh has %d vertices",
					types.ErrInvalidIndices, v, k, nv)
				return
			}
		}
	}
	for _, el := range elems {
		vids := make([]int, len(el))
		copy(vids, el)
		m.elements[g] = append(m.elements[g], vids)
	}
	m.invalidate(g)
	return m.buildDefinition(g)
}

// buildDefinition stores the vertex lists of grade g as Connectivity(0, g), keeping each column in definition
// order so that element orientation survives
func (m *Mesh) buildDefinition(g types.Grade) (err error) {
	var (
		S     = utils.NewSparse(fmt.Sprintf("connectivity(0,%d)", g))
		elems = m.elements[g]
	)
	for id, el := range elems {
		for _, v := range el {
			if err = S.Insert(v, id, 1); err != nil {
				return
			}
		}
	}
	if err = S.SetDimensions(m.NVertices(), len(elems)); err != nil {
		return
	}
	if err = S.CheckFormat(utils.FormatCCS, true, false); err != nil {
		return
	}
	for id, el := range elems {
		if err = S.CCS().SetRowIndices(id, el); err != nil {
			return
		}
	}
	m.conn[connKey{types.Vertex, g}] = S
	return
}

// invalidate drops derived connectivity involving grade g; element definitions and symmetries are kept
func (m *Mesh) invalidate(g types.Grade) {
	for k := range m.conn {
		if k.row == k.col {
			continue
		}
		if k.row == g || k.col == g {
			if k.row == types.Vertex && k.col == g {
				continue
			}
			delete(m.conn, k)
		}
	}
}

// ElementCount is the number of elements of grade g; for grade 0 the number of vertices
func (m *Mesh) ElementCount(g types.Grade) int {
	if g == types.Vertex {
		return m.NVertices()
	}
	return len(m.elements[g])
}

func (m *Mesh) MaxGrade() (g types.Grade) {
	for gg := types.Line; gg <= types.MaxGrade; gg++ {
		if len(m.elements[gg]) != 0 {
			g = gg
		}
	}
	return
}

// ElementVertices returns the vertex ids of an element. A vertex is its own single element list.
func (m *Mesh) ElementVertices(g types.Grade, id int) (vids []int, err error) {
	if g == types.Vertex {
		if id < 0 || id >= m.NVertices() {
			err = fmt.Errorf("%w: vertex %d", types.ErrInvalidIndices, id)
			return
		}
		return []int{id}, nil
	}
	var S *utils.Sparse
	if S, err = m.Connectivity(types.Vertex, g); err != nil {
		return
	}
	return S.RowIndices(id)
}

// Connectivity returns the matrix relating elements of grade col (columns) to elements of grade row (rows),
// building it if needed
func (m *Mesh) Connectivity(row, col types.Grade) (S *utils.Sparse, err error) {
	var (
		ok  bool
		key = connKey{row, col}
	)
	if !row.Valid() || !col.Valid() {
		err = fmt.Errorf("%w: connectivity (%v, %v)", types.ErrInvalidIndices, row, col)
		return
	}
	if S, ok = m.conn[key]; ok {
		return
	}
	switch {
	case row == col:
		err = fmt.Errorf("%w: no symmetry recorded for grade %v", types.ErrElementNotFound, row)
		return
	case row == types.Vertex:
		err = fmt.Errorf("%w: %v", types.ErrElementNotFound, col)
		return
	case col == types.Vertex:
		var def *utils.Sparse
		if def, err = m.Connectivity(types.Vertex, row); err != nil {
			return
		}
		if S, err = utils.SparseTranspose(def); err != nil {
			return
		}
	default:
		if S, err = m.buildContainment(row, col); err != nil {
			return
		}
	}
	m.conn[key] = S
	return
}

// buildContainment relates two grades above zero by vertex set inclusion: the faces of a volume, the volumes
// containing a face, and so on
func (m *Mesh) buildContainment(row, col types.Grade) (S *utils.Sparse, err error) {
	var (
		rowOfVertex *utils.Sparse
		nCol        = m.ElementCount(col)
		nRow        = m.ElementCount(row)
	)
	if nCol == 0 || nRow == 0 {
		err = fmt.Errorf("%w: connectivity (%v, %v)", types.ErrElementNotFound, row, col)
		return
	}
	if rowOfVertex, err = m.Connectivity(row, types.Vertex); err != nil {
		return
	}
	S = utils.NewSparse(fmt.Sprintf("connectivity(%d,%d)", row, col))
	for id := 0; id < nCol; id++ {
		var (
			cverts     []int
			candidates = make(map[int]struct{})
		)
		if cverts, err = m.ElementVertices(col, id); err != nil {
			return
		}
		for _, v := range cverts {
			var rows []int
			if rows, err = rowOfVertex.RowIndices(v); err != nil {
				return
			}
			for _, r := range rows {
				candidates[r] = struct{}{}
			}
		}
		for _, r := range sortedKeys(candidates) {
			var rverts []int
			if rverts, err = m.ElementVertices(row, r); err != nil {
				return
			}
			small, large := rverts, cverts
			if row > col {
				small, large = cverts, rverts
			}
			if isSubset(small, large) {
				if err = S.Insert(r, id, 1); err != nil {
					return
				}
			}
		}
	}
	if err = S.SetDimensions(nRow, nCol); err != nil {
		return
	}
	err = S.CheckFormat(utils.FormatCCS, true, false)
	return
}

// FindNeighbors collects the elements of grade into that share an element of grade through with the anchor
// element. The anchor itself is excluded when into equals anchorGrade. Results are unique and ascending.
func (m *Mesh) FindNeighbors(anchorGrade types.Grade, id int, through, into types.Grade) (nbrs []int, err error) {
	var (
		bridge []int
		found  = make(map[int]struct{})
	)
	if bridge, err = m.related(through, anchorGrade, id); err != nil {
		return
	}
	for _, b := range bridge {
		var rel []int
		if rel, err = m.related(into, through, b); err != nil {
			return
		}
		for _, r := range rel {
			found[r] = struct{}{}
		}
	}
	if into == anchorGrade {
		delete(found, id)
	}
	nbrs = sortedKeys(found)
	return
}

// Neighbors finds elements of grade into sharing a vertex with the anchor element
func (m *Mesh) Neighbors(anchorGrade types.Grade, id int, into types.Grade) ([]int, error) {
	return m.FindNeighbors(anchorGrade, id, types.Vertex, into)
}

func (m *Mesh) related(row, col types.Grade, id int) (ids []int, err error) {
	if row == col {
		return []int{id}, nil
	}
	if row == types.Vertex {
		return m.ElementVertices(col, id)
	}
	var S *utils.Sparse
	if S, err = m.Connectivity(row, col); err != nil {
		return
	}
	return S.RowIndices(id)
}

// Clone copies vertex positions and element definitions; symmetries are copied, derived connectivity is not
func (m *Mesh) Clone() (R *Mesh) {
	R = &Mesh{
		Dim:      m.Dim,
		Vert:     m.Vert.Copy(),
		elements: make(map[types.Grade][][]int),
		conn:     make(map[connKey]*utils.Sparse),
	}
	for g, elems := range m.elements {
		cp := make([][]int, len(elems))
		for i, el := range elems {
			cp[i] = append([]int(nil), el...)
		}
		R.elements[g] = cp
	}
	for k, S := range m.conn {
		if k.row == k.col || k.row == types.Vertex {
			R.conn[k] = S.Clone()
		}
	}
	return
}
