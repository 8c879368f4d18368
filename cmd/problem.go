package cmd

import (
	"fmt"
	"sort"

	"github.com/notargets/gofunctional/InputParameters"
	"github.com/notargets/gofunctional/functional"
	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// Problem is a parsed problem file bound to its meshes
type Problem struct {
	Params      *InputParameters.FunctionalParameters
	Mesh        *mesh.Mesh
	Reference   *mesh.Mesh
	Fields      map[string]*mesh.Field
	Selection   *mesh.Selection
	Functionals []NamedFunctional
}

type NamedFunctional struct {
	Name string
	functional.Functional
}

// NewProblem builds the fields, selection and functionals named in ip on m. ref is the undeformed mesh used
// by LinearElasticity and may be nil, in which case a copy of m is used.
func NewProblem(ip *InputParameters.FunctionalParameters, m, ref *mesh.Mesh) (p *Problem, err error) {
	p = &Problem{
		Params:    ip,
		Mesh:      m,
		Reference: ref,
		Fields:    make(map[string]*mesh.Field),
	}
	if p.Reference == nil {
		p.Reference = m.Clone()
	}
	names := make([]string, 0, len(ip.Fields))
	for name := range ip.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if p.Fields[name], err = newField(m, ip.Fields[name]); err != nil {
			err = fmt.Errorf("field %s: %w", name, err)
			return nil, err
		}
	}
	if ip.Selection != nil {
		if p.Selection, err = newSelection(m, ip.Selection); err != nil {
			return nil, err
		}
	}
	for i, fs := range ip.Functionals {
		var f functional.Functional
		if f, err = p.newFunctional(fs); err != nil {
			err = fmt.Errorf("functional %d (%s): %w", i, fs.Type, err)
			return nil, err
		}
		p.Functionals = append(p.Functionals, NamedFunctional{Name: fs.Type, Functional: f})
	}
	return
}

func newField(m *mesh.Mesh, fs InputParameters.FieldSpec) (f *mesh.Field, err error) {
	psize := fs.Components
	if psize == 0 {
		psize = len(fs.Constant)
	}
	if len(fs.Values) != 0 {
		if len(fs.Values) != m.NVertices() {
			err = fmt.Errorf("%w: %d values for %d vertices",
				types.ErrIncompatibleDimensions, len(fs.Values), m.NVertices())
			return
		}
		if psize == 0 {
			psize = len(fs.Values[0])
		}
		if f, err = mesh.NewField(m, psize); err != nil {
			return
		}
		for v, val := range fs.Values {
			if len(val) != psize {
				err = fmt.Errorf("%w: vertex %d has %d components, want %d",
					types.ErrIncompatibleDimensions, v, len(val), psize)
				return nil, err
			}
			copy(f.Element(types.Vertex, v), val)
		}
		return
	}
	if len(fs.Constant) != 0 && len(fs.Constant) != psize {
		err = fmt.Errorf("%w: constant has %d components, want %d",
			types.ErrIncompatibleDimensions, len(fs.Constant), psize)
		return
	}
	return mesh.NewVertexField(m, psize, func(x []float64) []float64 {
		val := make([]float64, psize)
		copy(val, fs.Constant)
		return val
	})
}

func newSelection(m *mesh.Mesh, ss *InputParameters.SelectionSpec) (sel *mesh.Selection, err error) {
	sel = mesh.NewSelection(m)
	if len(ss.IDs) != 0 {
		g := types.Vertex
		if len(ss.Grade) != 0 {
			var ok bool
			if g, ok = types.GradeNameMap[ss.Grade]; !ok {
				err = fmt.Errorf("%w: unknown selection grade %q", types.ErrInvalidArgs, ss.Grade)
				return nil, err
			}
		}
		if err = sel.Select(g, ss.IDs...); err != nil {
			return nil, err
		}
	}
	if len(ss.BoxMin) != 0 {
		if len(ss.BoxMin) != m.Dim || len(ss.BoxMax) != m.Dim {
			err = fmt.Errorf("%w: selection box in %d dimensions on a %d dimensional mesh",
				types.ErrIncompatibleDimensions, len(ss.BoxMin), m.Dim)
			return nil, err
		}
		sel.SelectVertices(func(x []float64) bool {
			for i := range x {
				if x[i] < ss.BoxMin[i] || x[i] > ss.BoxMax[i] {
					return false
				}
			}
			return true
		})
		for g := types.Line; g <= m.MaxGrade(); g++ {
			if err = sel.AddGrade(g); err != nil {
				return nil, err
			}
		}
	}
	return
}

func (p *Problem) field(name string) (f *mesh.Field, err error) {
	var ok bool
	if f, ok = p.Fields[name]; !ok {
		err = fmt.Errorf("%w: no field named %q", types.ErrInvalidArgs, name)
	}
	return
}

func (p *Problem) newFunctional(fs InputParameters.FunctionalSpec) (f functional.Functional, err error) {
	var (
		field *mesh.Field
		grade = types.Vertex
	)
	if len(fs.Grade) != 0 {
		var ok bool
		if grade, ok = types.GradeNameMap[fs.Grade]; !ok {
			err = fmt.Errorf("%w: unknown grade %q", types.ErrInvalidArgs, fs.Grade)
			return
		}
	}
	switch fs.Type {
	case "GradSq", "NormSq", "Nematic", "NematicElectric":
		if field, err = p.field(fs.Field); err != nil {
			return
		}
	}
	switch fs.Type {
	case "Length":
		f = functional.NewLength()
	case "AreaEnclosed":
		f = functional.NewAreaEnclosed()
	case "Area":
		f = functional.NewArea()
	case "VolumeEnclosed":
		f = functional.NewVolumeEnclosed()
	case "Volume":
		f = functional.NewVolume()
	case "ScalarPotential":
		ls, ok := p.Params.Potentials[fs.Potential]
		if !ok {
			err = fmt.Errorf("%w: no potential named %q", types.ErrInvalidArgs, fs.Potential)
			return
		}
		if len(ls.Gradient) != p.Mesh.Dim {
			err = fmt.Errorf("%w: potential gradient has %d components on a %d dimensional mesh",
				types.ErrIncompatibleDimensions, len(ls.Gradient), p.Mesh.Dim)
			return
		}
		f, err = functional.NewScalarPotential(
			func(x []float64) (float64, error) { return ls.Constant + utils.VecDot(ls.Gradient, x), nil },
			func(x []float64) ([]float64, error) { return ls.Gradient, nil })
	case "LinearElasticity":
		var le *functional.LinearElasticity
		if grade == types.Vertex {
			le, err = functional.NewLinearElasticity(p.Reference)
		} else {
			le, err = functional.NewLinearElasticity(p.Reference, grade)
		}
		if err != nil {
			return
		}
		if fs.Poisson != 0 {
			le.SetPoisson(fs.Poisson)
		}
		f = le
	case "EquiElement":
		f = functional.NewEquiElement(grade, fs.Weights)
	case "LineCurvatureSq":
		f = functional.NewLineCurvatureSq(fs.IntegrandOnly)
	case "LineTorsionSq":
		f = functional.NewLineTorsionSq()
	case "MeanCurvatureSq":
		f = functional.NewMeanCurvatureSq(fs.IntegrandOnly)
	case "GaussCurvature":
		f = functional.NewGaussCurvature(fs.IntegrandOnly)
	case "GradSq":
		f = functional.NewGradSq(field)
	case "NormSq":
		f = functional.NewNormSq(field)
	case "Nematic":
		nem := functional.NewNematic(field)
		if fs.KSplay != 0 {
			nem.KSplay = fs.KSplay
		}
		if fs.KTwist != 0 {
			nem.KTwist = fs.KTwist
		}
		if fs.KBend != 0 {
			nem.KBend = fs.KBend
		}
		if fs.Pitch != nil {
			nem.SetPitch(*fs.Pitch)
		}
		f = nem
	case "NematicElectric":
		if len(fs.Potential) != 0 {
			var potential *mesh.Field
			if potential, err = p.field(fs.Potential); err != nil {
				return
			}
			f = functional.NewNematicElectric(field, potential)
		} else {
			f = functional.NewNematicElectricUniform(field, fs.ElectricField)
		}
	default:
		err = fmt.Errorf("%w: unknown functional type %q", types.ErrInvalidArgs, fs.Type)
	}
	return
}
