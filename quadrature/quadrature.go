package quadrature

import (
	"fmt"

	"github.com/notargets/gofunctional/types"
	"gonum.org/v1/gonum/integrate/quad"
)

// Rule is a set of sample points in barycentric coordinates with weights summing to one, so that
// sum(w_i f(p_i)) approximates the mean of f over the element
type Rule struct {
	Grade   types.Grade
	Lambda  [][]float64
	Weights []float64
}

// NewRule builds a rule for simplices of grade g from n point Gauss-Legendre rules along each reference
// direction. Triangles and tetrahedra use the collapsed coordinate mapping of the unit square and cube.
func NewRule(g types.Grade, n int) (r *Rule, err error) {
	if n < 1 {
		err = fmt.Errorf("quadrature order %d must be positive", n)
		return
	}
	var (
		s = make([]float64, n)
		w = make([]float64, n)
	)
	quad.Legendre{}.FixedLocations(s, w, 0, 1)
	r = &Rule{Grade: g}
	switch g {
	case types.Vertex:
		r.add([]float64{1}, 1)
	case types.Line:
		for i := range s {
			r.add([]float64{1 - s[i], s[i]}, w[i])
		}
	case types.Area:
		// xi = u, eta = v (1 - u), Jacobian (1 - u), reference area 1/2
		for i := range s {
			for j := range s {
				xi, eta := s[i], s[j]*(1-s[i])
				r.add([]float64{1 - xi - eta, xi, eta}, 2*w[i]*w[j]*(1-s[i]))
			}
		}
	case types.Volume:
		// xi = u, eta = v (1 - u), zeta = t (1 - u)(1 - v), Jacobian (1 - u)^2 (1 - v), reference volume 1/6
		for i := range s {
			for j := range s {
				for k := range s {
					u, v, t := s[i], s[j], s[k]
					xi, eta, zeta := u, v*(1-u), t*(1-u)*(1-v)
					jac := (1 - u) * (1 - u) * (1 - v)
					r.add([]float64{1 - xi - eta - zeta, xi, eta, zeta}, 6*w[i]*w[j]*w[k]*jac)
				}
			}
		}
	default:
		r = nil
		err = fmt.Errorf("%w: no quadrature for grade %v", types.ErrInvalidIndices, g)
	}
	return
}

func (r *Rule) add(lambda []float64, w float64) {
	r.Lambda = append(r.Lambda, lambda)
	r.Weights = append(r.Weights, w)
}

// Integrand is evaluated at each sample point. lambda are the barycentric coordinates, x the position and
// q the field values interpolated to the point, one slice per field.
type Integrand func(lambda, x []float64, q [][]float64) (float64, error)

// Mean applies the rule to fn over the simplex with vertex positions x. q[k][v] is the value of field k at
// vertex v. The result is the mean of fn over the element; multiply by the element size for the integral.
func (r *Rule) Mean(fn Integrand, x [][]float64, q [][][]float64) (mean float64, err error) {
	var (
		nv = r.Grade.NVertices()
	)
	if len(x) != nv {
		err = fmt.Errorf("%w: %v rule given %d vertices", types.ErrIncompatibleDimensions, r.Grade, len(x))
		return
	}
	for k := range q {
		if len(q[k]) != nv {
			err = fmt.Errorf("%w: field %d has %d vertex samples, need %d",
				types.ErrIncompatibleDimensions, k, len(q[k]), nv)
			return
		}
	}
	var (
		dim = len(x[0])
		pt  = make([]float64, dim)
		qi  = make([][]float64, len(q))
	)
	for k := range q {
		qi[k] = make([]float64, len(q[k][0]))
	}
	for p, lambda := range r.Lambda {
		interpolate(pt, lambda, x)
		for k := range q {
			interpolate(qi[k], lambda, q[k])
		}
		var f float64
		if f, err = fn(lambda, pt, qi); err != nil {
			return
		}
		mean += r.Weights[p] * f
	}
	return
}

func interpolate(dst, lambda []float64, vals [][]float64) {
	for i := range dst {
		dst[i] = 0
	}
	for v, l := range lambda {
		for i := range dst {
			dst[i] += l * vals[v][i]
		}
	}
}
