package functional

import (
	"fmt"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/quadrature"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// IntegrandFunc is sampled at quadrature points: x is the position, t the unit tangent of the line being
// integrated over (nil on areas and volumes) and q holds the interpolated value of each field
type IntegrandFunc func(x, t []float64, q [][]float64) (float64, error)

// QuadratureOrder is the number of Gauss-Legendre points per direction used by the integral functionals
var QuadratureOrder = 4

type integral struct {
	base
	Fn        IntegrandFunc
	FieldList []*mesh.Field
	rule      *quadrature.Rule
}

// LineIntegral integrates a function of position, tangent and fields over line elements
type LineIntegral struct{ integral }

// AreaIntegral integrates a function of position and fields over triangles
type AreaIntegral struct{ integral }

// VolumeIntegral integrates a function of position and fields over tetrahedra
type VolumeIntegral struct{ integral }

func newIntegral(g types.Grade, fn IntegrandFunc, fields []*mesh.Field) (in integral, err error) {
	if fn == nil {
		err = fmt.Errorf("%w: integral needs an integrand", types.ErrInvalidArgs)
		return
	}
	in = integral{base: base{g, types.SymmetryNone}, Fn: fn, FieldList: fields}
	in.rule, err = quadrature.NewRule(g, QuadratureOrder)
	return
}

func NewLineIntegral(fn IntegrandFunc, fields ...*mesh.Field) (f *LineIntegral, err error) {
	var in integral
	if in, err = newIntegral(types.Line, fn, fields); err != nil {
		return
	}
	return &LineIntegral{in}, nil
}

func NewAreaIntegral(fn IntegrandFunc, fields ...*mesh.Field) (f *AreaIntegral, err error) {
	var in integral
	if in, err = newIntegral(types.Area, fn, fields); err != nil {
		return
	}
	return &AreaIntegral{in}, nil
}

func NewVolumeIntegral(fn IntegrandFunc, fields ...*mesh.Field) (f *VolumeIntegral, err error) {
	var in integral
	if in, err = newIntegral(types.Volume, fn, fields); err != nil {
		return
	}
	return &VolumeIntegral{in}, nil
}

func (in *integral) Fields() []*mesh.Field { return in.FieldList }

func (in *integral) Integrand(m *mesh.Mesh, id int, vid []int) (val float64, err error) {
	var (
		x       = positions(m, vid)
		q       = make([][][]float64, len(in.FieldList))
		size    float64
		tangent []float64
	)
	if size, err = elementSize(in.grade, x); err != nil {
		return
	}
	for k, field := range in.FieldList {
		if err = checkField(field, m); err != nil {
			return
		}
		if q[k], err = vertexValues(field, vid); err != nil {
			return
		}
	}
	if in.grade == types.Line {
		tangent = utils.VecSub(x[1], x[0])
		if n := utils.VecNorm(tangent); n > utils.EPS {
			tangent = utils.VecScale(1/n, tangent)
		}
	}
	val, err = in.rule.Mean(func(lambda, pt []float64, qi [][]float64) (float64, error) {
		return in.Fn(pt, tangent, qi)
	}, x, q)
	val *= size
	return
}
