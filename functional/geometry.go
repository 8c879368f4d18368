package functional

import (
	"fmt"
	"math"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

var errDegenerate = fmt.Errorf("degenerate element")

// Length of line elements
type Length struct{ base }

func NewLength() *Length { return &Length{newBase(types.Line)} }

func (f *Length) Integrand(m *mesh.Mesh, id int, vid []int) (float64, error) {
	return lineLength(positions(m, vid)), nil
}

func (f *Length) Gradient(m *mesh.Mesh, id int, vid []int, frc utils.Matrix) error {
	var (
		x    = positions(m, vid)
		s0   = utils.VecSub(x[1], x[0])
		norm = utils.VecNorm(s0)
	)
	if norm < utils.EPS {
		return errDegenerate
	}
	frc.AddToCol(vid[0], -1/norm, s0)
	frc.AddToCol(vid[1], 1/norm, s0)
	return nil
}

func lineLength(x [][]float64) float64 { return utils.VecNorm(utils.VecSub(x[1], x[0])) }

// AreaEnclosed is the area swept from the origin by line elements
type AreaEnclosed struct{ base }

func NewAreaEnclosed() *AreaEnclosed { return &AreaEnclosed{newBase(types.Line)} }

func (f *AreaEnclosed) Integrand(m *mesh.Mesh, id int, vid []int) (float64, error) {
	x := positions(m, vid)
	return 0.5 * utils.VecNorm(utils.VecCross(x[0], x[1])), nil
}

func (f *AreaEnclosed) Gradient(m *mesh.Mesh, id int, vid []int, frc utils.Matrix) error {
	var (
		x    = positions(m, vid)
		cx   = utils.VecCross(x[0], x[1])
		norm = utils.VecNorm(cx)
	)
	if norm < utils.EPS { // lines through the origin enclose nothing and take no force
		return nil
	}
	frc.AddToCol(vid[0], 0.5/norm, utils.VecTrim(utils.VecCross(x[1], cx), m.Dim))
	frc.AddToCol(vid[1], 0.5/norm, utils.VecTrim(utils.VecCross(cx, x[0]), m.Dim))
	return nil
}

// Area of triangle elements
type Area struct{ base }

func NewArea() *Area { return &Area{newBase(types.Area)} }

func (f *Area) Integrand(m *mesh.Mesh, id int, vid []int) (float64, error) {
	return triangleArea(positions(m, vid)), nil
}

func (f *Area) Gradient(m *mesh.Mesh, id int, vid []int, frc utils.Matrix) error {
	var (
		x    = positions(m, vid)
		s0   = utils.VecSub(x[1], x[0])
		s1   = utils.VecSub(x[2], x[1])
		s01  = utils.VecCross(s0, s1)
		norm = utils.VecNorm(s01)
	)
	if norm < utils.EPS {
		return errDegenerate
	}
	var (
		s010 = utils.VecTrim(utils.VecCross(s01, s0), m.Dim)
		s011 = utils.VecTrim(utils.VecCross(s01, s1), m.Dim)
	)
	frc.AddToCol(vid[0], 0.5/norm, s011)
	frc.AddToCol(vid[2], 0.5/norm, s010)
	frc.AddToCol(vid[1], -0.5/norm, utils.VecAdd(s010, s011))
	return nil
}

func triangleArea(x [][]float64) float64 {
	return 0.5 * utils.VecNorm(utils.VecCross(utils.VecSub(x[1], x[0]), utils.VecSub(x[2], x[1])))
}

// VolumeEnclosed is the volume of the cone from the origin over triangle elements
type VolumeEnclosed struct{ base }

func NewVolumeEnclosed() *VolumeEnclosed { return &VolumeEnclosed{newBase(types.Area)} }

func (f *VolumeEnclosed) Integrand(m *mesh.Mesh, id int, vid []int) (float64, error) {
	x := positions(m, vid)
	return math.Abs(utils.VecDot(utils.VecCross(x[0], x[1]), pad(x[2]))) / 6, nil
}

func (f *VolumeEnclosed) Gradient(m *mesh.Mesh, id int, vid []int, frc utils.Matrix) error {
	var (
		x   = positions(m, vid)
		cx  = utils.VecCross(x[0], x[1])
		sgn = sign(utils.VecDot(cx, pad(x[2])))
	)
	frc.AddToCol(vid[2], sgn/6, utils.VecTrim(cx, m.Dim))
	frc.AddToCol(vid[0], sgn/6, utils.VecTrim(utils.VecCross(x[1], x[2]), m.Dim))
	frc.AddToCol(vid[1], sgn/6, utils.VecTrim(utils.VecCross(x[2], x[0]), m.Dim))
	return nil
}

// Volume of tetrahedral elements
type Volume struct{ base }

func NewVolume() *Volume { return &Volume{newBase(types.Volume)} }

func (f *Volume) Integrand(m *mesh.Mesh, id int, vid []int) (float64, error) {
	return tetVolume(positions(m, vid)), nil
}

func (f *Volume) Gradient(m *mesh.Mesh, id int, vid []int, frc utils.Matrix) error {
	var (
		x   = positions(m, vid)
		s10 = utils.VecSub(x[1], x[0])
		s20 = utils.VecSub(x[2], x[0])
		s30 = utils.VecSub(x[3], x[0])
		s31 = utils.VecSub(x[3], x[1])
		s21 = utils.VecSub(x[2], x[1])
		cx  = utils.VecCross(s20, s30)
		uu  = 1.
	)
	if utils.VecDot(pad(s10), cx) <= 0 {
		uu = -1
	}
	frc.AddToCol(vid[1], uu/6, utils.VecTrim(cx, m.Dim))
	frc.AddToCol(vid[0], uu/6, utils.VecTrim(utils.VecCross(s31, s21), m.Dim))
	frc.AddToCol(vid[2], uu/6, utils.VecTrim(utils.VecCross(s30, s10), m.Dim))
	frc.AddToCol(vid[3], uu/6, utils.VecTrim(utils.VecCross(s10, s20), m.Dim))
	return nil
}

func tetVolume(x [][]float64) float64 {
	var (
		s10 = utils.VecSub(x[1], x[0])
		s20 = utils.VecSub(x[2], x[0])
		s30 = utils.VecSub(x[3], x[0])
	)
	return math.Abs(utils.VecDot(pad(s10), utils.VecCross(s20, s30))) / 6
}

// elementSize is the length, area or volume of an element given its vertex positions
func elementSize(g types.Grade, x [][]float64) (size float64, err error) {
	switch g {
	case types.Line:
		size = lineLength(x)
	case types.Area:
		size = triangleArea(x)
	case types.Volume:
		size = tetVolume(x)
	default:
		err = fmt.Errorf("%w: no element size for grade %v", types.ErrInvalidArgs, g)
	}
	return
}

// pad extends a 1 or 2 component vector with zeros to 3 components
func pad(v []float64) []float64 {
	if len(v) >= 3 {
		return v
	}
	r := make([]float64, 3)
	copy(r, v)
	return r
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
