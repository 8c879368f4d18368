package utils

import (
	"fmt"
	"strings"

	"github.com/notargets/gofunctional/types"
)

type SparseFormat uint8

const (
	FormatEmpty SparseFormat = iota
	FormatDOK
	FormatCCS
	FormatBoth
)

func (f SparseFormat) String() string {
	return [...]string{"Empty", "DOK", "CCS", "Both"}[f]
}

// Sparse holds a matrix as a DOK for building and a cached CCS for traversal. Any write through the DOK drops
// the CCS, so a present CCS is always consistent with the DOK.
type Sparse struct {
	dok  *DOK
	ccs  *CCS
	name string
}

func NewSparse(name ...string) (S *Sparse) {
	S = &Sparse{dok: NewDOK(), name: "unnamed"}
	if len(name) != 0 {
		S.name = name[0]
	}
	return
}

// NewSparseFromCCS wraps an existing compressed store
func NewSparseFromCCS(C *CCS) (S *Sparse) {
	S = NewSparse()
	S.ccs = C
	return
}

func (S *Sparse) Format() SparseFormat {
	var (
		hasDOK = S.dok.Count() != 0
		hasCCS = S.ccs != nil
	)
	switch {
	case hasDOK && hasCCS:
		return FormatBoth
	case hasDOK:
		return FormatDOK
	case hasCCS:
		return FormatCCS
	}
	return FormatEmpty
}

func (S *Sparse) Dims() (r, c int) {
	r, c = S.dok.Dims()
	if S.ccs != nil {
		cr, cc := S.ccs.Dims()
		r, c = max(r, cr), max(c, cc)
	}
	return
}

func (S *Sparse) Count() int {
	if S.ccs != nil {
		return S.ccs.Count()
	}
	return S.dok.Count()
}

func (S *Sparse) DOK() *DOK { return S.dok }

// CCS returns the compressed store, nil if it has not been built
func (S *Sparse) CCS() *CCS { return S.ccs }

func (S *Sparse) Insert(row, col int, val float64) (err error) {
	if err = S.CheckFormat(FormatDOK, true, true); err != nil {
		return
	}
	if err = S.dok.Insert(row, col, val); err != nil {
		return
	}
	S.ccs = nil
	return
}

func (S *Sparse) Remove(row, col int) (found bool) {
	if err := S.CheckFormat(FormatDOK, true, true); err != nil {
		return
	}
	if found = S.dok.Remove(row, col); found {
		S.ccs = nil
	}
	return
}

// Get looks in the DOK first and falls back to the CCS; pattern entries read as 1
func (S *Sparse) Get(row, col int) (val float64, found bool) {
	if val, found = S.dok.Get(row, col); found {
		return
	}
	if S.ccs != nil {
		return S.ccs.Get(row, col)
	}
	return
}

func (S *Sparse) SetDimensions(nrows, ncols int) (err error) {
	if err = S.dok.SetDimensions(nrows, ncols); err != nil {
		return
	}
	if S.ccs != nil {
		if cr, cc := S.ccs.Dims(); cr != nrows || cc != ncols {
			S.ccs = nil
		}
	}
	return
}

// CheckFormat reports whether the requested representation is present, building it from the other when force
// is set. copyValues controls whether a new CCS carries values or is a pattern.
func (S *Sparse) CheckFormat(format SparseFormat, force, copyValues bool) (err error) {
	switch format {
	case FormatCCS:
		if S.ccs != nil {
			return
		}
		if !force {
			err = fmt.Errorf("%w: %s has no CCS", types.ErrConversionFailed, S.name)
			return
		}
		S.ccs, err = NewCCSFromDOK(S.dok, copyValues)
	case FormatDOK:
		if S.dok.Count() != 0 || S.ccs == nil {
			return
		}
		if !force {
			err = fmt.Errorf("%w: %s has no DOK", types.ErrConversionFailed, S.name)
			return
		}
		nr, nc := S.ccs.Dims()
		S.ccs.DoNonZero(func(row, col int, val float64) {
			_ = S.dok.Insert(row, col, val)
		})
		if err = S.dok.SetDimensions(nr, nc); err != nil {
			err = fmt.Errorf("%w: %v", types.ErrConversionFailed, err)
		}
	default:
		err = fmt.Errorf("%w: unknown format %v", types.ErrConversionFailed, format)
	}
	return
}

// RemoveFormat drops one representation
func (S *Sparse) RemoveFormat(format SparseFormat) {
	switch format {
	case FormatCCS:
		S.ccs = nil
	case FormatDOK:
		S.dok.Clear()
	}
}

// RowIndices returns the row indices of column col, building the CCS if needed. They are ascending unless
// the column was reordered with SetRowIndices, as element definitions are to keep their orientation.
func (S *Sparse) RowIndices(col int) (rows []int, err error) {
	if err = S.CheckFormat(FormatCCS, true, false); err != nil {
		return
	}
	return S.ccs.RowIndices(col)
}

func (S *Sparse) Clear() {
	S.dok.Clear()
	S.ccs = nil
}

func (S *Sparse) Clone() (R *Sparse) {
	R = NewSparse(S.name)
	R.dok = S.dok.Copy()
	if S.ccs != nil {
		R.ccs = S.ccs.Copy()
	}
	return
}

// DoNonZero visits every stored entry, from the CCS when present
func (S *Sparse) DoNonZero(fn func(row, col int, val float64)) {
	if S.ccs != nil {
		S.ccs.DoNonZero(fn)
		return
	}
	S.dok.Keys(fn)
}

func (S *Sparse) Print() (o string) {
	var (
		nr, nc = S.Dims()
		sb     strings.Builder
	)
	fmt.Fprintf(&sb, "%s [%d x %d, %s, %d entries]\n", S.name, nr, nc, S.Format(), S.Count())
	S.DoNonZero(func(row, col int, val float64) {
		fmt.Fprintf(&sb, "\t(%d, %d) = %g\n", row, col, val)
	})
	return sb.String()
}
