package readfiles

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
	ELType_Tetrahedral   SU2ElementType = 10
)

func (et SU2ElementType) Grade() (g types.Grade, err error) {
	switch et {
	case ELType_LINE:
		g = types.Line
	case ELType_Triangle:
		g = types.Area
	case ELType_Tetrahedral:
		g = types.Volume
	default:
		err = fmt.Errorf("unsupported SU2 element type %d, only simplices are allowed", et)
	}
	return
}

// ReadSU2 builds a mesh from the simplices of an SU2 file. Marker edges become line elements; the returned map
// gives the line ids of each marker.
func ReadSU2(reader *bufio.Reader) (m *mesh.Mesh, markers map[string][]int, err error) {
	var (
		dim      int
		elements map[types.Grade][][]int
		coords   [][]float64
	)
	if dim, err = readNumber(reader); err != nil {
		return
	}
	if elements, err = readElements(reader); err != nil {
		return
	}
	if coords, err = readVertices(reader, dim); err != nil {
		return
	}
	if m, err = mesh.NewMesh(dim, coords); err != nil {
		return
	}
	for g := types.Line; g <= types.MaxGrade; g++ {
		if len(elements[g]) == 0 {
			continue
		}
		if err = m.AddElements(g, elements[g]); err != nil {
			return
		}
	}
	markers, err = readMarkers(reader, m)
	return
}

func readElements(reader *bufio.Reader) (elements map[types.Grade][][]int, err error) {
	var (
		K int
	)
	if K, err = readNumber(reader); err != nil {
		return
	}
	elements = make(map[types.Grade][][]int)
	for k := 0; k < K; k++ {
		var (
			line   string
			g      types.Grade
			fields []string
			nType  int
		)
		if line, err = getLineNoComments(reader, "%"); err != nil {
			return
		}
		fields = strings.Fields(line)
		if len(fields) == 0 {
			err = fmt.Errorf("empty element line %d", k)
			return
		}
		if _, err = fmt.Sscanf(fields[0], "%d", &nType); err != nil {
			return
		}
		if g, err = SU2ElementType(nType).Grade(); err != nil {
			return
		}
		nv := g.NVertices()
		if len(fields) < nv+1 {
			err = fmt.Errorf("element %d: expected %d vertices in [%s]", k, nv, line)
			return
		}
		vids := make([]int, nv)
		for i := range vids {
			if _, err = fmt.Sscanf(fields[i+1], "%d", &vids[i]); err != nil {
				return
			}
		}
		elements[g] = append(elements[g], vids)
	}
	return
}

func readVertices(reader *bufio.Reader, dim int) (coords [][]float64, err error) {
	var (
		Nv int
	)
	if Nv, err = readNumber(reader); err != nil {
		return
	}
	coords = make([][]float64, Nv)
	for i := 0; i < Nv; i++ {
		var (
			line   string
			fields []string
		)
		if line, err = getLineNoComments(reader, "%"); err != nil {
			return
		}
		if fields = strings.Fields(line); len(fields) < dim {
			err = fmt.Errorf("unable to read coordinates of vertex %d from [%s]", i, line)
			return
		}
		coords[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			if _, err = fmt.Sscanf(fields[j], "%g", &coords[i][j]); err != nil {
				return
			}
		}
	}
	return
}

func readMarkers(reader *bufio.Reader, m *mesh.Mesh) (markers map[string][]int, err error) {
	var (
		nMarkers int
		first    = m.ElementCount(types.Line)
	)
	if nMarkers, err = readNumber(reader); err != nil {
		return
	}
	markers = make(map[string][]int, nMarkers)
	var edges [][]int
	for n := 0; n < nMarkers; n++ {
		var (
			label  string
			nEdges int
		)
		if label, err = readLabel(reader); err != nil {
			return
		}
		if _, ok := markers[label]; ok {
			err = fmt.Errorf("duplicate marker found with label: [%s]", label)
			return
		}
		if nEdges, err = readNumber(reader); err != nil {
			return
		}
		for i := 0; i < nEdges; i++ {
			var (
				line          string
				nType, v1, v2 int
			)
			if line, err = getLineNoComments(reader, "%"); err != nil {
				return
			}
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				return
			}
			if SU2ElementType(nType) != ELType_LINE {
				err = fmt.Errorf("marker %s should only contain line elements", label)
				return
			}
			markers[label] = append(markers[label], first+len(edges))
			edges = append(edges, []int{v1, v2})
		}
	}
	if len(edges) != 0 {
		err = m.AddElements(types.Line, edges)
	}
	return
}

func getToken(reader *bufio.Reader) (token string, err error) {
	var (
		line string
	)
	if line, err = getLineNoComments(reader, "%"); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("badly formed input line [%s], should have an =", line)
		return
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string, err error) {
	var (
		token string
	)
	if token, err = getToken(reader); err != nil {
		return
	}
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		err = fmt.Errorf("unable to read label from token: [%s]", token)
	}
	label = strings.TrimSpace(label)
	return
}

func readNumber(reader *bufio.Reader) (num int, err error) {
	var (
		token string
	)
	if token, err = getToken(reader); err != nil {
		return
	}
	if _, err = fmt.Sscanf(strings.TrimSpace(token), "%d", &num); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
	}
	return
}
