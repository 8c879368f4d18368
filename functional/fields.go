package functional

import (
	"fmt"
	"math"

	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/types"
	"github.com/notargets/gofunctional/utils"
)

// perpendicular is the component of s1 normal to s2, scaled by the inverse of its squared length. For the
// side opposite a vertex this is the gradient of the vertex's barycentric coordinate.
func perpendicular(s1, s2 []float64) (out []float64, err error) {
	s2s2 := utils.VecDot(s2, s2)
	if math.Abs(s2s2) < utils.EPS {
		return nil, errDegenerate
	}
	out = utils.VecSub(s1, utils.VecScale(utils.VecDot(s1, s2)/s2s2, s2))
	n := utils.VecNorm(out)
	if math.Abs(n) < utils.EPS {
		return nil, errDegenerate
	}
	return utils.VecScale(1/(n*n), out), nil
}

// vertexValues returns the first prototype stored on each listed vertex, aliasing field storage
func vertexValues(field *mesh.Field, vid []int) (q [][]float64, err error) {
	if field.Dof[types.Vertex] == 0 {
		return nil, fmt.Errorf("%w: field has no vertex degrees of freedom", types.ErrInvalidArgs)
	}
	q = make([][]float64, len(vid))
	for i, v := range vid {
		q[i] = field.Element(types.Vertex, v)[:field.Psize]
	}
	return
}

// triangleGradient returns the gradient of the linear interpolant of field over a triangle, grad[i][k] being
// the derivative of component i along coordinate k
func triangleGradient(m *mesh.Mesh, field *mesh.Field, vid []int) (grad [][]float64, err error) {
	var (
		x = positions(m, vid)
		q [][]float64
		t [3][]float64
	)
	if q, err = vertexValues(field, vid); err != nil {
		return
	}
	s := [3][]float64{
		utils.VecSub(x[1], x[0]),
		utils.VecSub(x[2], x[1]),
		utils.VecSub(x[0], x[2]),
	}
	if t[0], err = perpendicular(s[2], s[1]); err != nil {
		return
	}
	if t[1], err = perpendicular(s[0], s[2]); err != nil {
		return
	}
	if t[2], err = perpendicular(s[1], s[0]); err != nil {
		return
	}
	grad = make([][]float64, field.Psize)
	for i := range grad {
		grad[i] = make([]float64, m.Dim)
		for j := 0; j < 3; j++ {
			for k := range grad[i] {
				grad[i][k] += q[j][i] * t[j][k]
			}
		}
	}
	return
}

func checkField(field *mesh.Field, m *mesh.Mesh) error {
	if field == nil {
		return fmt.Errorf("%w: missing field", types.ErrInvalidArgs)
	}
	if field.Mesh != nil && field.Mesh != m {
		return fmt.Errorf("%w: field belongs to another mesh", types.ErrInvalidArgs)
	}
	return nil
}

// GradSq is the integral of |grad q|^2 over triangles for a field q stored on vertices
type GradSq struct {
	base
	Field *mesh.Field
}

func NewGradSq(field *mesh.Field) *GradSq { return &GradSq{newBase(types.Area), field} }

func (f *GradSq) Fields() []*mesh.Field { return []*mesh.Field{f.Field} }

func (f *GradSq) Integrand(m *mesh.Mesh, id int, vid []int) (val float64, err error) {
	var grad [][]float64
	if err = checkField(f.Field, m); err != nil {
		return
	}
	if grad, err = triangleGradient(m, f.Field, vid); err != nil {
		return
	}
	for _, g := range grad {
		val += utils.VecDot(g, g)
	}
	val *= triangleArea(positions(m, vid))
	return
}

// NormSq is |q|^2 of a vertex field summed over vertices
type NormSq struct {
	base
	Field *mesh.Field
}

func NewNormSq(field *mesh.Field) *NormSq {
	return &NormSq{base{types.Vertex, types.SymmetryNone}, field}
}

func (f *NormSq) Fields() []*mesh.Field { return []*mesh.Field{f.Field} }

func (f *NormSq) Integrand(m *mesh.Mesh, id int, vid []int) (val float64, err error) {
	var q [][]float64
	if err = checkField(f.Field, m); err != nil {
		return
	}
	if q, err = vertexValues(f.Field, []int{id}); err != nil {
		return
	}
	return utils.VecDot(q[0], q[0]), nil
}

// Nematic is the Frank elastic energy of a director field stored on vertices, integrated over triangles.
// Components beyond those of the mesh or the director are taken as zero.
type Nematic struct {
	base
	Director              *mesh.Field
	KSplay, KTwist, KBend float64
	Pitch                 float64
	HasPitch              bool
}

func NewNematic(director *mesh.Field) *Nematic {
	return &Nematic{
		base:     base{types.Area, types.SymmetryNone},
		Director: director,
		KSplay:   1, KTwist: 1, KBend: 1,
	}
}

// SetPitch adds the cholesteric term with wavenumber q
func (f *Nematic) SetPitch(q float64) *Nematic {
	f.Pitch, f.HasPitch = q, true
	return f
}

func (f *Nematic) Fields() []*mesh.Field { return []*mesh.Field{f.Director} }

// bcint integrates the product of two linear functions with vertex values f and g over a triangle of unit
// area
func bcint(f, g [3]float64) float64 {
	return (f[0]*(2*g[0]+g[1]+g[2]) + f[1]*(g[0]+2*g[1]+g[2]) + f[2]*(g[0]+g[1]+2*g[2])) / 12
}

func bcint1(f [3]float64) float64 { return (f[0] + f[1] + f[2]) / 3 }

// components transposes the vertex values into three component rows, nnt[c][v]
func components(q [][]float64) (nnt [3][3]float64) {
	for v := range q {
		for c := 0; c < len(q[v]) && c < 3; c++ {
			nnt[c][v] = q[v][c]
		}
	}
	return
}

// pad3x3 embeds grad[i][k] in a 3 x 3 array
func pad3x3(grad [][]float64) (G [3][3]float64) {
	for i := 0; i < len(grad) && i < 3; i++ {
		for k := 0; k < len(grad[i]) && k < 3; k++ {
			G[i][k] = grad[i][k]
		}
	}
	return
}

func (f *Nematic) Integrand(m *mesh.Mesh, id int, vid []int) (energy float64, err error) {
	var (
		q    [][]float64
		grad [][]float64
	)
	if err = checkField(f.Director, m); err != nil {
		return
	}
	if q, err = vertexValues(f.Director, vid); err != nil {
		return
	}
	if grad, err = triangleGradient(m, f.Director, vid); err != nil {
		return
	}
	var (
		size = triangleArea(positions(m, vid))
		G    = pad3x3(grad)
		nnt  = components(q)
		div  = G[0][0] + G[1][1] + G[2][2]
		curl = [3]float64{G[2][1] - G[1][2], G[0][2] - G[2][0], G[1][0] - G[0][1]}
	)
	// coefficients of the integrals of nx^2, ny^2, nz^2, nx ny, ny nz, nz nx
	twistC := [6]float64{
		curl[0] * curl[0], curl[1] * curl[1], curl[2] * curl[2],
		2 * curl[0] * curl[1], 2 * curl[1] * curl[2], 2 * curl[2] * curl[0],
	}
	bendC := [6]float64{
		twistC[1] + twistC[2], twistC[0] + twistC[2], twistC[0] + twistC[1],
		-twistC[3], -twistC[4], -twistC[5],
	}
	integrals := [6]float64{
		bcint(nnt[0], nnt[0]), bcint(nnt[1], nnt[1]), bcint(nnt[2], nnt[2]),
		bcint(nnt[0], nnt[1]), bcint(nnt[1], nnt[2]), bcint(nnt[2], nnt[0]),
	}
	splay := 0.5 * f.KSplay * size * div * div
	var twist, bend, chol float64
	for i := range integrals {
		twist += twistC[i] * integrals[i]
		bend += bendC[i] * integrals[i]
	}
	twist *= 0.5 * f.KTwist * size
	bend *= 0.5 * f.KBend * size
	if f.HasPitch {
		for i := 0; i < 3; i++ {
			chol += -2 * curl[i] * bcint1(nnt[i]) * f.Pitch
		}
		chol += f.Pitch * f.Pitch
		chol *= 0.5 * f.KTwist * size
	}
	energy = splay + twist + bend + chol
	return
}

// NematicElectric is the integral of (n.E)^2 over triangles. E is the gradient of an electric potential
// stored on vertices, or a constant field when no potential is given.
type NematicElectric struct {
	base
	Director  *mesh.Field
	Potential *mesh.Field
	E         []float64
}

func NewNematicElectric(director, potential *mesh.Field) *NematicElectric {
	return &NematicElectric{base: base{types.Area, types.SymmetryNone}, Director: director, Potential: potential}
}

// NewNematicElectricUniform uses the constant field e
func NewNematicElectricUniform(director *mesh.Field, e []float64) *NematicElectric {
	return &NematicElectric{base: base{types.Area, types.SymmetryNone}, Director: director, E: e}
}

func (f *NematicElectric) Fields() (fields []*mesh.Field) {
	fields = []*mesh.Field{f.Director}
	if f.Potential != nil {
		fields = append(fields, f.Potential)
	}
	return
}

func (f *NematicElectric) Integrand(m *mesh.Mesh, id int, vid []int) (val float64, err error) {
	var (
		q  [][]float64
		ee [3]float64
	)
	if err = checkField(f.Director, m); err != nil {
		return
	}
	if q, err = vertexValues(f.Director, vid); err != nil {
		return
	}
	switch {
	case f.Potential != nil:
		var grad [][]float64
		if grad, err = triangleGradient(m, f.Potential, vid); err != nil {
			return
		}
		copy(ee[:], grad[0])
	case len(f.E) != 0:
		copy(ee[:], f.E)
	default:
		err = fmt.Errorf("%w: nematic electric needs a potential or a field", types.ErrInvalidArgs)
		return
	}
	nnt := components(q)
	val = ee[0]*ee[0]*bcint(nnt[0], nnt[0]) +
		ee[1]*ee[1]*bcint(nnt[1], nnt[1]) +
		ee[2]*ee[2]*bcint(nnt[2], nnt[2]) +
		2*ee[0]*ee[1]*bcint(nnt[0], nnt[1]) +
		2*ee[1]*ee[2]*bcint(nnt[1], nnt[2]) +
		2*ee[2]*ee[0]*bcint(nnt[2], nnt[0])
	val *= triangleArea(positions(m, vid))
	return
}
