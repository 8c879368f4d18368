package utils

import (
	"fmt"

	"github.com/notargets/gofunctional/types"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense row-major matrix. Vertex positions and forces are stored one vertex per column.
type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if nr == 0 || nc == 0 {
		// gonum refuses zero length allocations, an empty Dense reports 0 x 0
		m = &mat.Dense{}
	} else if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("%w: NewMatrix nr,nc = %v,%v, len(data[0]) = %v",
				types.ErrAllocationFailed, nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// NewMatrixFromColumns builds a len(cols[0]) x len(cols) matrix, one column per entry
func NewMatrixFromColumns(cols [][]float64) (R Matrix) {
	var (
		nc = len(cols)
		nr int
	)
	if nc != 0 {
		nr = len(cols[0])
	}
	R = NewMatrix(nr, nc)
	for j, col := range cols {
		R.SetCol(j, col)
	}
	return
}

func NewIdentity(n int) (R Matrix) {
	R = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		R.M.Set(i, i, 1)
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }
func (m Matrix) Data() []float64           { return m.M.RawMatrix().Data }
func (m Matrix) IsEmpty() bool             { return m.M == nil }

// Chainable methods (extended)
func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m *Matrix) SetWritable() Matrix {
	m.readOnly = false
	return *m
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		dataR  = make([]float64, nr*nc)
	)
	copy(dataR, m.Data())
	R = NewMatrix(nr, nc, dataR)
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, _ = m.M.Dims()
		_, ncA = A.M.Dims()
	)
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return R
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) SetCol(j int, data []float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.SetCol(j, data)
	return m
}

// AddToCol accumulates scale*data into column j
func (m Matrix) AddToCol(j int, scale float64, data []float64) Matrix { // Changes receiver
	var (
		raw = m.RawMatrix()
	)
	m.checkWritable()
	for i, val := range data {
		raw.Data[i*raw.Stride+j] += scale * val
	}
	return m
}

func (m Matrix) Add(A Matrix) Matrix { // Changes receiver
	var (
		dataM = m.Data()
		dataA = A.Data()
	)
	m.checkWritable()
	for i, val := range dataA {
		dataM[i] += val
	}
	return m
}

func (m Matrix) Subtract(a Matrix) Matrix { // Changes receiver
	var (
		data  = m.Data()
		dataA = a.Data()
	)
	m.checkWritable()
	for i := range data {
		data[i] -= dataA[i]
	}
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	var (
		data = m.Data()
	)
	m.checkWritable()
	for i := range data {
		data[i] *= a
	}
	return m
}

func (m Matrix) Zero() Matrix { // Changes receiver
	m.checkWritable()
	m.M.Zero()
	return m
}

// Non chainable methods
func (m Matrix) Col(j int) (col []float64) {
	var (
		nr, _ = m.Dims()
	)
	col = make([]float64, nr)
	mat.Col(col, j, m.M)
	return
}

func (m Matrix) Trace() (tr float64) {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		panic(fmt.Errorf("%w: trace of %d x %d matrix", types.ErrNotSquare, nr, nc))
	}
	return mat.Trace(m.M)
}

func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("%w: unable to invert %d x %d matrix", types.ErrNotSquare, nr, nc)
		return
	}
	R = m.Copy()
	iPiv := make([]int, nr)
	if ok := lapack64.Getrf(R.RawMatrix(), iPiv); !ok {
		err = fmt.Errorf("%w: unable to invert, matrix is singular", types.ErrSingularSystem)
		return
	}
	work := make([]float64, nr*nc)
	if ok := lapack64.Getri(R.RawMatrix(), iPiv, work, nr*nc); !ok {
		err = fmt.Errorf("%w: unable to invert, matrix is singular", types.ErrSingularSystem)
	}
	return
}

// Solve returns X such that m X = B
func (m Matrix) Solve(B Matrix) (X Matrix, err error) {
	var (
		nr, nc = m.Dims()
		nrB, _ = B.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("%w: unable to solve with %d x %d matrix", types.ErrNotSquare, nr, nc)
		return
	}
	if nrB != nr {
		err = fmt.Errorf("%w: rhs has %d rows, system has %d", types.ErrIncompatibleDimensions, nrB, nr)
		return
	}
	var lu mat.LU
	lu.Factorize(m.M)
	if lu.Det() == 0 {
		err = fmt.Errorf("%w: unable to solve, matrix is singular", types.ErrSingularSystem)
		return
	}
	_, ncB := B.Dims()
	X = NewMatrix(nr, ncB)
	if err = lu.SolveTo(X.M, false, B.M); err != nil {
		err = fmt.Errorf("%w: %v", types.ErrSingularSystem, err)
	}
	return
}

func (m Matrix) Print(msgI ...string) (o string) {
	var (
		name = ""
	)
	if len(msgI) != 0 {
		name = msgI[0]
	}
	o = fmt.Sprintf("%s = \n%v\n", name, mat.Formatted(m.M, mat.Squeeze()))
	return
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
