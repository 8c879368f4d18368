package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
)

var morphoSections = map[string]types.Grade{
	"vertices": types.Vertex,
	"edges":    types.Line,
	"faces":    types.Area,
	"volumes":  types.Volume,
}

/*
ReadMorphoMesh reads the plain text section format:

	vertices

	1 0 0 0
	2 1 0 0
	3 0 1 0

	edges

	1 1 2

	faces

	1 1 2 3

Every data line starts with an id. Vertex lines carry the coordinates and element lines the ids of their
vertices; vertex ids need not be contiguous and are numbered from 0 in file order. The mesh dimension is taken
from the first vertex line.
*/
func ReadMorphoMesh(reader *bufio.Reader) (m *mesh.Mesh, err error) {
	var (
		section  = types.Grade(-1)
		dim      int
		coords   [][]float64
		vertexID = make(map[int]int)
		elements = make(map[types.Grade][][]int)
		lineNum  int
	)
	for {
		var line string
		line, err = reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("line %d: %w", lineNum+1, err)
		}
		eof := err == io.EOF
		err = nil
		if eof && len(line) == 0 {
			break
		}
		lineNum++
		line = strings.TrimSpace(line)
		if len(line) == 0 || strings.HasPrefix(line, "//") {
			if eof {
				break
			}
			continue
		}
		fields := strings.Fields(line)
		if g, ok := morphoSections[strings.ToLower(fields[0])]; ok {
			section = g
		} else if err = morphoDataLine(section, fields, &dim, &coords, vertexID, elements); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if eof {
			break
		}
	}
	if dim == 0 {
		return nil, fmt.Errorf("no vertices found")
	}
	if m, err = mesh.NewMesh(dim, coords); err != nil {
		return
	}
	for g := types.Line; g <= types.MaxGrade; g++ {
		if len(elements[g]) == 0 {
			continue
		}
		if err = m.AddElements(g, elements[g]); err != nil {
			return nil, err
		}
	}
	return
}

// morphoDataLine stores one vertex or element line. Vertex file ids are mapped to 0-based indices in the
// order the vertices appear; element lines are resolved through that map.
func morphoDataLine(section types.Grade, fields []string, dim *int, coords *[][]float64,
	vertexID map[int]int, elements map[types.Grade][][]int) (err error) {
	if section < 0 {
		return fmt.Errorf("data before any section header")
	}
	var id int
	if id, err = strconv.Atoi(fields[0]); err != nil {
		return
	}
	if section == types.Vertex {
		if *dim == 0 {
			*dim = len(fields) - 1
		}
		if len(fields)-1 != *dim || *dim < 1 {
			return fmt.Errorf("vertex has %d coordinates, expected %d", len(fields)-1, *dim)
		}
		if _, dup := vertexID[id]; dup {
			return fmt.Errorf("%w: duplicate vertex id %d", types.ErrInvalidIndices, id)
		}
		x := make([]float64, *dim)
		for i := range x {
			if x[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
				return
			}
		}
		vertexID[id] = len(*coords)
		*coords = append(*coords, x)
		return
	}
	nv := section.NVertices()
	if len(fields)-1 != nv {
		return fmt.Errorf("%v element needs %d vertices", section, nv)
	}
	vids := make([]int, nv)
	for i := range vids {
		var v int
		if v, err = strconv.Atoi(fields[i+1]); err != nil {
			return
		}
		var ok bool
		if vids[i], ok = vertexID[v]; !ok {
			return fmt.Errorf("%w: %v element %d references unknown vertex %d", types.ErrInvalidIndices, section, id, v)
		}
	}
	elements[section] = append(elements[section], vids)
	return
}
