package functional

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// MapInfo carries everything one map call needs. It lives for the duration of the call.
type MapInfo struct {
	Mesh       *mesh.Mesh
	Selection  *mesh.Selection
	Field      *mesh.Field
	Grade      types.Grade
	Functional Functional
	Symmetry   types.SymmetryMode
}

func NewMapInfo(f Functional, m *mesh.Mesh, sel *mesh.Selection) (info *MapInfo) {
	info = &MapInfo{
		Mesh:       m,
		Selection:  sel,
		Grade:      f.Grade(),
		Functional: f,
		Symmetry:   f.Symmetry(),
	}
	return
}

func (info *MapInfo) elementCount() int { return info.Mesh.ElementCount(info.Grade) }

// forEach visits the elements to evaluate: the selected ids of the grade in selection order, or every id in
// ascending order, skipping elements recorded as symmetry images
func (info *MapInfo) forEach(fn func(id int, vid []int) error) (err error) {
	var (
		m      = info.Mesh
		images = m.ImageList(info.Grade, true)
		vid    []int
	)
	visit := func(id int) error {
		if vid, err = m.ElementVertices(info.Grade, id); err != nil {
			return err
		}
		return fn(id, vid)
	}
	if info.Selection != nil {
		for _, id := range info.Selection.IDs(info.Grade) {
			if k := sort.SearchInts(images, id); k < len(images) && images[k] == id {
				continue
			}
			if err = visit(id); err != nil {
				return
			}
		}
		return
	}
	var cursor int
	for id := 0; id < info.elementCount(); id++ {
		if cursor < len(images) && images[cursor] == id {
			cursor++
			continue
		}
		if err = visit(id); err != nil {
			return
		}
	}
	return
}

func (info *MapInfo) evaluate(id int, vid []int) (val float64, err error) {
	if val, err = info.Functional.Integrand(info.Mesh, id, vid); err != nil {
		err = info.evaluatorFailed(id, err)
	}
	return
}

func (info *MapInfo) evaluatorFailed(id int, err error) error {
	slog.Debug("functional map aborted", "grade", info.Grade, "element", id, "err", err)
	return fmt.Errorf("%w: %v element %d: %w", types.ErrEvaluatorFailed, info.Grade, id, err)
}

// SumIntegrand adds the integrand over the enumerated elements with compensated summation
func (info *MapInfo) SumIntegrand() (total float64, err error) {
	var (
		sum utils.KahanSum
	)
	err = info.forEach(func(id int, vid []int) (err error) {
		var val float64
		if val, err = info.evaluate(id, vid); err != nil {
			return
		}
		sum.Add(val)
		return
	})
	if err != nil {
		return 0, err
	}
	return sum.Sum(), nil
}

// MapIntegrand returns a 1 x n row with the integrand of every enumerated element; other entries are zero
func (info *MapInfo) MapIntegrand() (R utils.Matrix, err error) {
	R = utils.NewMatrix(1, info.elementCount())
	err = info.forEach(func(id int, vid []int) (err error) {
		var val float64
		if val, err = info.evaluate(id, vid); err != nil {
			return
		}
		R.Set(0, id, val)
		return
	})
	if err != nil {
		return utils.Matrix{}, err
	}
	return
}

// MapGradient accumulates the analytic gradient of the enumerated elements into a Dim x NVertices matrix
func (info *MapInfo) MapGradient() (frc utils.Matrix, err error) {
	var (
		m = info.Mesh
	)
	df, ok := info.Functional.(Differentiable)
	if !ok {
		err = fmt.Errorf("%w: functional has no analytic gradient", types.ErrInvalidArgs)
		return
	}
	frc = utils.NewMatrix(m.Dim, m.NVertices())
	err = info.forEach(func(id int, vid []int) (err error) {
		if err = df.Gradient(m, id, vid, frc); err != nil {
			err = info.evaluatorFailed(id, err)
		}
		return
	})
	if err != nil {
		return utils.Matrix{}, err
	}
	info.symmetrize(frc)
	return
}

// symmetrize makes every vertex in a symmetry group carry the summed force of the group
func (info *MapInfo) symmetrize(frc utils.Matrix) {
	if info.Symmetry != types.SymmetryAdd || !info.Mesh.HasSymmetry(types.Vertex) {
		return
	}
	S, err := info.Mesh.Connectivity(types.Vertex, types.Vertex)
	if err != nil {
		return
	}
	var (
		groups = make(map[int][]int)
		order  []int
	)
	S.DOK().Keys(func(canonical, image int, val float64) {
		if _, ok := groups[canonical]; !ok {
			groups[canonical] = []int{canonical}
			order = append(order, canonical)
		}
		groups[canonical] = append(groups[canonical], image)
	})
	for _, c := range order {
		var (
			members = groups[c]
			total   = make([]float64, info.Mesh.Dim)
		)
		for _, v := range members {
			for i, val := range frc.Col(v) {
				total[i] += val
			}
		}
		for _, v := range members {
			frc.SetCol(v, total)
		}
	}
}
