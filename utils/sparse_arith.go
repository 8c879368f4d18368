package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/notargets/gofunctional/types"
	"gonum.org/v1/gonum/mat"
)

type nonZeroDoer interface {
	DoNonZero(fn func(i, j int, v float64))
}

// toCSR hands the matrix to the sparse arithmetic package, scaling values by alpha
func (S *Sparse) toCSR(alpha float64) (R *sparse.CSR, err error) {
	if err = S.CheckFormat(FormatCCS, true, true); err != nil {
		return
	}
	var (
		C      = S.ccs
		nr, nc = C.Dims()
		indptr = make([]int, len(C.ColPtr))
		ind    = make([]int, len(C.RowIdx))
		data   = make([]float64, len(C.RowIdx))
	)
	copy(indptr, C.ColPtr)
	copy(ind, C.RowIdx)
	for k := range data {
		if C.Values != nil {
			data[k] = alpha * C.Values[k]
		} else {
			data[k] = alpha
		}
	}
	R = sparse.NewCSC(nr, nc, indptr, ind, data).ToCSR()
	return
}

func fromNonZero(nr, nc int, m nonZeroDoer, name string) (S *Sparse, err error) {
	S = NewSparse(name)
	m.DoNonZero(func(i, j int, v float64) {
		if v == 0 || err != nil {
			return
		}
		err = S.dok.Insert(i, j, v)
	})
	if err != nil {
		return
	}
	if err = S.dok.SetDimensions(nr, nc); err != nil {
		return
	}
	err = S.CheckFormat(FormatCCS, true, true)
	return
}

func isEmpty(nr, nc int) bool { return nr == 0 || nc == 0 }

// SparseAdd returns alpha*A + beta*B
func SparseAdd(A, B *Sparse, alpha, beta float64) (R *Sparse, err error) {
	var (
		nrA, ncA = A.Dims()
		nrB, ncB = B.Dims()
		a, b     *sparse.CSR
	)
	if nrA != nrB || ncA != ncB {
		err = fmt.Errorf("%w: add %d x %d to %d x %d", types.ErrIncompatibleDimensions, nrA, ncA, nrB, ncB)
		return
	}
	if isEmpty(nrA, ncA) {
		return NewSparse("sum"), nil
	}
	if a, err = A.toCSR(alpha); err != nil {
		return
	}
	if b, err = B.toCSR(beta); err != nil {
		return
	}
	sum := sparse.NewCSR(nrA, ncA, nil, nil, nil)
	sum.Add(a, b)
	return fromNonZero(nrA, ncA, sum, "sum")
}

// SparseMul returns the product A B
func SparseMul(A, B *Sparse) (R *Sparse, err error) {
	var (
		nrA, ncA = A.Dims()
		nrB, ncB = B.Dims()
		a, b     *sparse.CSR
	)
	if ncA != nrB {
		err = fmt.Errorf("%w: multiply %d x %d by %d x %d", types.ErrIncompatibleDimensions, nrA, ncA, nrB, ncB)
		return
	}
	if isEmpty(nrA, ncB) || ncA == 0 {
		R = NewSparse("product")
		err = R.SetDimensions(nrA, ncB)
		return
	}
	if a, err = A.toCSR(1); err != nil {
		return
	}
	if b, err = B.toCSR(1); err != nil {
		return
	}
	prod := sparse.NewCSR(nrA, ncB, nil, nil, nil)
	prod.Mul(a, b)
	return fromNonZero(nrA, ncB, prod, "product")
}

// SparseTranspose returns A transposed; a pattern matrix stays a pattern
func SparseTranspose(A *Sparse) (R *Sparse, err error) {
	var (
		nr, nc = A.Dims()
		a      *sparse.CSR
	)
	if isEmpty(nr, nc) {
		R = NewSparse("transpose")
		err = R.SetDimensions(nc, nr)
		return
	}
	pattern := A.ccs != nil && A.ccs.IsPattern()
	if a, err = A.toCSR(1); err != nil {
		return
	}
	// the transpose of a CSR shares its arrays as a CSC
	if R, err = fromNonZero(nc, nr, a.T().(nonZeroDoer), "transpose"); err != nil {
		return
	}
	if pattern {
		R.ccs.Values = nil
	}
	return
}

// ToDense expands the stored entries into a dense matrix; pattern entries read as one
func (S *Sparse) ToDense() (R Matrix) {
	nr, nc := S.Dims()
	R = NewMatrix(nr, nc)
	S.DoNonZero(func(row, col int, val float64) {
		R.M.Set(row, col, val)
	})
	return
}

// SparseSolve returns x with A x = b. Square systems are solved by LU; other shapes by QR, giving the least
// squares solution when A has more rows than columns and the minimum norm solution when it has fewer.
func SparseSolve(A *Sparse, b Matrix) (x Matrix, err error) {
	var (
		nr, nc = A.Dims()
		nrB    = 0
		ncB    = 0
	)
	if !b.IsEmpty() {
		nrB, ncB = b.Dims()
	}
	if isEmpty(nr, nc) || nrB != nr || ncB == 0 {
		err = fmt.Errorf("%w: solve %d x %d system with %d x %d rhs", types.ErrIncompatibleDimensions,
			nr, nc, nrB, ncB)
		return
	}
	D := A.ToDense()
	if nr == nc {
		return D.Solve(b)
	}
	var qr mat.QR
	if nr > nc {
		qr.Factorize(D.M)
		x = NewMatrix(nc, ncB)
		err = qr.SolveTo(x.M, false, b.M)
	} else {
		qr.Factorize(D.M.T())
		x = NewMatrix(nc, ncB)
		err = qr.SolveTo(x.M, true, b.M)
	}
	if err != nil {
		x = Matrix{}
		err = fmt.Errorf("%w: %v", types.ErrSingularSystem, err)
	}
	return
}
