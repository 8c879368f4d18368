package types

import (
	"fmt"
	"math"
	"sort"
)

// Grade is the dimension of a mesh element: vertices, lines, areas and volumes
type Grade int

const (
	Vertex Grade = iota
	Line
	Area
	Volume
)

// MaxGrade is the highest element grade a mesh can carry
const MaxGrade = Volume

var gradeNames = []string{"vertex", "line", "area", "volume"}

func (g Grade) String() string {
	if g < Vertex || g > MaxGrade {
		return fmt.Sprintf("grade(%d)", int(g))
	}
	return gradeNames[g]
}

func (g Grade) Valid() bool { return g >= Vertex && g <= MaxGrade }

// NVertices returns the number of vertices defining a simplex of this grade
func (g Grade) NVertices() int { return int(g) + 1 }

var GradeNameMap = map[string]Grade{
	"vertex":   Vertex,
	"vertices": Vertex,
	"line":     Line,
	"lines":    Line,
	"edges":    Line,
	"area":     Area,
	"faces":    Area,
	"volume":   Volume,
	"volumes":  Volume,
}

// SymmetryMode tells the gradient maps how to treat forces on vertices that are images of one another
type SymmetryMode uint8

const (
	SymmetryNone SymmetryMode = iota
	SymmetryAdd
)

func (s SymmetryMode) String() string {
	switch s {
	case SymmetryAdd:
		return "AddToSynonyms"
	default:
		return "None"
	}
}

/*
EdgeKey is an always positive number that stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// This packs two index coordinates into two 32 bit unsigned integers to act as a hash and an indirect access method
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeKey
	)
	enTmp = ek >> 32
	verts[1] = int(enTmp)
	verts[0] = int(ek - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

// FaceKey identifies a triangle independent of its vertex ordering
type FaceKey [3]int

func NewFaceKey(verts [3]int) (fk FaceKey) {
	fk = FaceKey(verts)
	sort.Ints(fk[:])
	return
}
