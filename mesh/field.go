package mesh

import (
	"fmt"

	"github.com/notargets/gofunctional/types"
)

// Field stores degrees of freedom attached to mesh elements. Each dof is a prototype of Psize components;
// elements of grade g carry Dof[g] of them. Data is laid out grade by grade, element by element.
type Field struct {
	Mesh   *Mesh
	Psize  int
	Dof    [types.MaxGrade + 1]int
	offset [types.MaxGrade + 2]int
	Data   []float64
}

// NewField allocates a zeroed field. dof lists the number of dofs per element for grades 0, 1, ...; with no
// dof given a single dof per vertex is used.
func NewField(m *Mesh, psize int, dof ...int) (f *Field, err error) {
	if psize < 1 {
		err = fmt.Errorf("%w: field prototype size %d", types.ErrIncompatibleDimensions, psize)
		return
	}
	if len(dof) > int(types.MaxGrade)+1 {
		err = fmt.Errorf("%w: %d dof grades", types.ErrIncompatibleDimensions, len(dof))
		return
	}
	f = &Field{Mesh: m, Psize: psize}
	if len(dof) == 0 {
		f.Dof[types.Vertex] = 1
	}
	copy(f.Dof[:], dof)
	for g := types.Vertex; g <= types.MaxGrade; g++ {
		if f.Dof[g] < 0 {
			err = fmt.Errorf("%w: negative dof count for grade %v", types.ErrIncompatibleDimensions, g)
			return nil, err
		}
		f.offset[g+1] = f.offset[g] + m.ElementCount(g)*psize*f.Dof[g]
	}
	f.Data = make([]float64, f.offset[types.MaxGrade+1])
	return
}

// NewVertexField is a field with one prototype per vertex, initialized by fn from the vertex position
func NewVertexField(m *Mesh, psize int, fn func(x []float64) []float64) (f *Field, err error) {
	if f, err = NewField(m, psize); err != nil {
		return
	}
	for v := 0; v < m.NVertices(); v++ {
		val := fn(m.VertexPosition(v))
		if len(val) != psize {
			err = fmt.Errorf("%w: vertex %d initializer returned %d components, want %d",
				types.ErrIncompatibleDimensions, v, len(val), psize)
			return nil, err
		}
		copy(f.Element(types.Vertex, v), val)
	}
	return
}

func (f *Field) Size() int { return len(f.Data) }

// Offset is the start of grade g in Data
func (f *Field) Offset(g types.Grade) int { return f.offset[g] }

// Index locates entry j (0 <= j < Psize*Dof[g]) of element id of grade g in Data
func (f *Field) Index(g types.Grade, id, j int) int {
	return f.offset[g] + id*f.Psize*f.Dof[g] + j
}

// Element returns the storage of element id of grade g, Psize*Dof[g] entries, aliasing Data
func (f *Field) Element(g types.Grade, id int) []float64 {
	k := f.Index(g, id, 0)
	return f.Data[k : k+f.Psize*f.Dof[g]]
}

// DofRef addresses one entry of Data in place
func (f *Field) DofRef(k int) *float64 { return &f.Data[k] }

func (f *Field) Zero() {
	for i := range f.Data {
		f.Data[i] = 0
	}
}

func (f *Field) Clone() (R *Field) {
	R = &Field{
		Mesh:   f.Mesh,
		Psize:  f.Psize,
		Dof:    f.Dof,
		offset: f.offset,
		Data:   make([]float64, len(f.Data)),
	}
	copy(R.Data, f.Data)
	return
}

// Compatible reports whether g has the same shape as f
func (f *Field) Compatible(g *Field) bool {
	return g != nil && f.Psize == g.Psize && f.Dof == g.Dof && len(f.Data) == len(g.Data)
}
