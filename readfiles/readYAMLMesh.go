package readfiles

import (
	"fmt"

	"github.com/ghodss/yaml"
	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
)

// YAMLMesh is the YAML mesh description. Element vertex ids are 0-based. Symmetries maps a grade name
// ("vertex", "line", ...) to [canonical, image] pairs.
type YAMLMesh struct {
	Dimension  int                 `json:"Dimension"`
	Vertices   [][]float64         `json:"Vertices"`
	Lines      [][]int             `json:"Lines"`
	Faces      [][]int             `json:"Faces"`
	Volumes    [][]int             `json:"Volumes"`
	Symmetries map[string][][2]int `json:"Symmetries"`
	// DeriveSymmetry lists grades whose symmetries are inferred from the vertex symmetries
	DeriveSymmetry []string `json:"DeriveSymmetry"`
}

func (ym *YAMLMesh) Parse(data []byte) error {
	return yaml.Unmarshal(data, ym)
}

func ReadYAMLMesh(data []byte) (m *mesh.Mesh, err error) {
	var (
		ym YAMLMesh
	)
	if err = ym.Parse(data); err != nil {
		return
	}
	return ym.Build()
}

func (ym *YAMLMesh) Build() (m *mesh.Mesh, err error) {
	dim := ym.Dimension
	if dim == 0 && len(ym.Vertices) != 0 {
		dim = len(ym.Vertices[0])
	}
	if m, err = mesh.NewMesh(dim, ym.Vertices); err != nil {
		return
	}
	for g, elems := range [][][]int{nil, ym.Lines, ym.Faces, ym.Volumes} {
		if len(elems) == 0 {
			continue
		}
		if err = m.AddElements(types.Grade(g), elems); err != nil {
			return nil, err
		}
	}
	// vertex symmetries go first so derived symmetries can use them
	for _, name := range []string{"vertex", "vertices", "line", "lines", "edges", "area", "faces", "volume", "volumes"} {
		pairs, ok := ym.Symmetries[name]
		if !ok {
			continue
		}
		g := types.GradeNameMap[name]
		for _, p := range pairs {
			if err = m.AddSymmetry(g, p[0], p[1]); err != nil {
				return nil, err
			}
		}
	}
	for _, name := range ym.DeriveSymmetry {
		g, ok := types.GradeNameMap[name]
		if !ok {
			return nil, fmt.Errorf("unknown grade %q in DeriveSymmetry", name)
		}
		if err = m.DeriveSymmetry(g); err != nil {
			return nil, err
		}
	}
	return
}
