package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
)

// Gmsh 2.2 element type numbers of the linear simplices
var gmshSimplex = map[int]types.Grade{
	1: types.Line,
	2: types.Area,
	4: types.Volume,
}

// ReadGmsh reads an ASCII Gmsh 2.2 file. Points and non simplex elements are skipped. The mesh is two
// dimensional when it has no tetrahedra and every z coordinate is zero. The returned map gives the sorted
// vertex ids of the elements carrying each physical tag.
func ReadGmsh(reader io.Reader) (m *mesh.Mesh, physical map[int][]int, err error) {
	var (
		scanner  = bufio.NewScanner(reader)
		coords   [][]float64
		nodeIdx  = make(map[int]int)
		elements = make(map[types.Grade][][]int)
		groups   = make(map[int]map[int]struct{})
		version  string
	)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "$MeshFormat":
			if !scanner.Scan() {
				return nil, nil, fmt.Errorf("truncated $MeshFormat")
			}
			// version-number file-type data-size
			parts := strings.Fields(scanner.Text())
			if len(parts) != 0 {
				version = parts[0]
			}
			if !strings.HasPrefix(version, "2.") {
				return nil, nil, fmt.Errorf("unsupported Gmsh format version: %q", version)
			}
			if len(parts) > 1 && parts[1] != "0" {
				return nil, nil, fmt.Errorf("binary Gmsh files are not supported")
			}
		case "$Nodes":
			if coords, err = readGmshNodes(scanner, nodeIdx); err != nil {
				return
			}
		case "$Elements":
			if err = readGmshElements(scanner, nodeIdx, elements, groups); err != nil {
				return
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	if len(version) == 0 {
		return nil, nil, fmt.Errorf("could not find $MeshFormat section")
	}
	dim := 3
	if len(elements[types.Volume]) == 0 {
		dim = 2
		for _, x := range coords {
			if x[2] != 0 {
				dim = 3
				break
			}
		}
	}
	for i := range coords {
		coords[i] = coords[i][:dim]
	}
	if m, err = mesh.NewMesh(dim, coords); err != nil {
		return
	}
	for g := types.Line; g <= types.MaxGrade; g++ {
		if len(elements[g]) == 0 {
			continue
		}
		if err = m.AddElements(g, elements[g]); err != nil {
			return nil, nil, err
		}
	}
	physical = make(map[int][]int, len(groups))
	for tag, set := range groups {
		vids := make([]int, 0, len(set))
		for v := range set {
			vids = append(vids, v)
		}
		sort.Ints(vids)
		physical[tag] = vids
	}
	return
}

func scanCount(scanner *bufio.Scanner, section string) (n int, err error) {
	if !scanner.Scan() {
		err = fmt.Errorf("truncated %s section", section)
		return
	}
	if n, err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
		err = fmt.Errorf("%s count: %w", section, err)
	}
	return
}

// readGmshNodes maps the file's node ids, which need not be contiguous, to 0-based vertex ids
func readGmshNodes(scanner *bufio.Scanner, nodeIdx map[int]int) (coords [][]float64, err error) {
	var numNodes int
	if numNodes, err = scanCount(scanner, "$Nodes"); err != nil {
		return
	}
	coords = make([][]float64, numNodes)
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("expected %d nodes, read %d", numNodes, i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("node line %d has %d fields, want 4", i+1, len(fields))
		}
		var id int
		if id, err = strconv.Atoi(fields[0]); err != nil {
			return
		}
		x := make([]float64, 3)
		for j := range x {
			if x[j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
				return
			}
		}
		nodeIdx[id] = i
		coords[i] = x
	}
	return
}

func readGmshElements(scanner *bufio.Scanner, nodeIdx map[int]int, elements map[types.Grade][][]int,
	groups map[int]map[int]struct{}) (err error) {
	var numElems int
	if numElems, err = scanCount(scanner, "$Elements"); err != nil {
		return
	}
	for i := 0; i < numElems; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("expected %d elements, read %d", numElems, i)
		}
		var (
			fields = strings.Fields(scanner.Text())
			vals   = make([]int, len(fields))
		)
		for j, f := range fields {
			if vals[j], err = strconv.Atoi(f); err != nil {
				return fmt.Errorf("element line %d: %w", i+1, err)
			}
		}
		// elm-number elm-type number-of-tags < tag > ... node-number-list
		if len(vals) < 3 || len(vals) < 3+vals[2] {
			return fmt.Errorf("element line %d is too short", i+1)
		}
		g, ok := gmshSimplex[vals[1]]
		if !ok {
			continue
		}
		var (
			tags  = vals[3 : 3+vals[2]]
			nodes = vals[3+vals[2]:]
		)
		if len(nodes) != g.NVertices() {
			return fmt.Errorf("element line %d: %d nodes for a %v", i+1, len(nodes), g)
		}
		vids := make([]int, len(nodes))
		for j, n := range nodes {
			if vids[j], ok = nodeIdx[n]; !ok {
				return fmt.Errorf("%w: element line %d references unknown node %d", types.ErrInvalidIndices, i+1, n)
			}
		}
		elements[g] = append(elements[g], vids)
		if len(tags) != 0 && tags[0] > 0 {
			set, ok := groups[tags[0]]
			if !ok {
				set = make(map[int]struct{})
				groups[tags[0]] = set
			}
			for _, v := range vids {
				set[v] = struct{}{}
			}
		}
	}
	return
}
