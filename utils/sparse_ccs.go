package utils

import (
	"fmt"
	"sort"

	"github.com/notargets/gofunctional/types"
)

// CCS is a compressed column store. Row indices of column j are RowIdx[ColPtr[j]:ColPtr[j+1]], ascending.
// A nil Values slice marks a pattern matrix whose stored entries are implicitly 1.
type CCS struct {
	nrows, ncols int
	ColPtr       []int
	RowIdx       []int
	Values       []float64
}

func NewCCS(nrows, ncols, nentries int, withValues bool) (C *CCS) {
	C = &CCS{
		nrows:  nrows,
		ncols:  ncols,
		ColPtr: make([]int, ncols+1),
		RowIdx: make([]int, nentries),
	}
	if withValues {
		C.Values = make([]float64, nentries)
	}
	return
}

// NewCCSFromDOK converts in two passes: count entries per column, prefix sum into ColPtr, place row indices,
// then sort each column. Values are copied on a final pass when copyValues is set.
func NewCCSFromDOK(d *DOK, copyValues bool) (C *CCS, err error) {
	var (
		nr, nc = d.Dims()
		n      = d.Count()
		fill   []int
	)
	C = NewCCS(nr, nc, n, false)
	d.Keys(func(row, col int, val float64) {
		C.ColPtr[col+1]++
	})
	for j := 0; j < nc; j++ {
		C.ColPtr[j+1] += C.ColPtr[j]
	}
	fill = make([]int, nc)
	copy(fill, C.ColPtr[:nc])
	d.Keys(func(row, col int, val float64) {
		C.RowIdx[fill[col]] = row
		fill[col]++
	})
	for j := 0; j < nc; j++ {
		sort.Ints(C.RowIdx[C.ColPtr[j]:C.ColPtr[j+1]])
	}
	if copyValues {
		C.Values = make([]float64, n)
		for j := 0; j < nc; j++ {
			for k := C.ColPtr[j]; k < C.ColPtr[j+1]; k++ {
				val, found := d.Get(C.RowIdx[k], j)
				if !found {
					err = fmt.Errorf("%w: entry (%d, %d) vanished during conversion",
						types.ErrConversionFailed, C.RowIdx[k], j)
					C = nil
					return
				}
				C.Values[k] = val
			}
		}
	}
	return
}

func (C *CCS) Dims() (r, c int) { return C.nrows, C.ncols }

func (C *CCS) Count() int { return len(C.RowIdx) }

func (C *CCS) IsPattern() bool { return C.Values == nil }

// ColumnSlice is a bounds checked view of the entries in one column
type ColumnSlice struct {
	Offset, Length int
}

func (C *CCS) Column(col int) (cs ColumnSlice, err error) {
	if col < 0 || col >= C.ncols {
		err = fmt.Errorf("%w: column %d of %d", types.ErrInvalidIndices, col, C.ncols)
		return
	}
	cs = ColumnSlice{C.ColPtr[col], C.ColPtr[col+1] - C.ColPtr[col]}
	return
}

// RowIndices returns the row indices of a column, ascending unless reordered by SetRowIndices.
// The slice aliases internal storage.
func (C *CCS) RowIndices(col int) (rows []int, err error) {
	var cs ColumnSlice
	if cs, err = C.Column(col); err != nil {
		return
	}
	rows = C.RowIdx[cs.Offset : cs.Offset+cs.Length]
	return
}

// SetRowIndices replaces the row indices of a column, keeping the entry count of the column fixed.
// Values stay in place, so reordering is meant for pattern matrices.
func (C *CCS) SetRowIndices(col int, rows []int) (err error) {
	var cs ColumnSlice
	if cs, err = C.Column(col); err != nil {
		return
	}
	if len(rows) != cs.Length {
		err = fmt.Errorf("%w: column %d has %d entries, got %d",
			types.ErrIncompatibleDimensions, col, cs.Length, len(rows))
		return
	}
	for _, r := range rows {
		if r < 0 || r >= C.nrows {
			err = fmt.Errorf("%w: row %d of %d", types.ErrInvalidIndices, r, C.nrows)
			return
		}
	}
	copy(C.RowIdx[cs.Offset:cs.Offset+cs.Length], rows)
	return
}

// ColumnsWithNonzeroRow collects the columns having a stored entry in row, ascending. At most len(dst) columns
// are written when dst is non nil; count is always the full number of matching columns so a caller can size dst.
func (C *CCS) ColumnsWithNonzeroRow(row int, dst []int) (count int) {
	for j := 0; j < C.ncols; j++ {
		for k := C.ColPtr[j]; k < C.ColPtr[j+1]; k++ {
			if C.RowIdx[k] == row {
				if dst != nil && count < len(dst) {
					dst[count] = j
				}
				count++
				break
			}
		}
	}
	return
}

// NonzeroColumns lists the columns with at least one stored entry
func (C *CCS) NonzeroColumns() (cols []int) {
	for j := 0; j < C.ncols; j++ {
		if C.ColPtr[j+1] > C.ColPtr[j] {
			cols = append(cols, j)
		}
	}
	return
}

// find scans the column; columns reordered through SetRowIndices need not be sorted
func (C *CCS) find(row, col int) (k int, found bool) {
	if col < 0 || col >= C.ncols {
		return
	}
	for k = C.ColPtr[col]; k < C.ColPtr[col+1]; k++ {
		if C.RowIdx[k] == row {
			found = true
			return
		}
	}
	return
}

func (C *CCS) Get(row, col int) (val float64, found bool) {
	var k int
	if k, found = C.find(row, col); !found {
		return
	}
	val = 1
	if C.Values != nil {
		val = C.Values[k]
	}
	return
}

// Set overwrites the value of an entry already in the pattern
func (C *CCS) Set(row, col int, val float64) (err error) {
	k, found := C.find(row, col)
	if !found {
		err = fmt.Errorf("%w: (%d, %d) is not in the sparsity pattern", types.ErrInvalidIndices, row, col)
		return
	}
	if C.Values == nil {
		C.Values = ConstArray(len(C.RowIdx), 1)
	}
	C.Values[k] = val
	return
}

// DoNonZero visits the entries column by column
func (C *CCS) DoNonZero(fn func(row, col int, val float64)) {
	for j := 0; j < C.ncols; j++ {
		for k := C.ColPtr[j]; k < C.ColPtr[j+1]; k++ {
			val := 1.
			if C.Values != nil {
				val = C.Values[k]
			}
			fn(C.RowIdx[k], j, val)
		}
	}
}

func (C *CCS) Copy() (R *CCS) {
	R = NewCCS(C.nrows, C.ncols, len(C.RowIdx), C.Values != nil)
	copy(R.ColPtr, C.ColPtr)
	copy(R.RowIdx, C.RowIdx)
	copy(R.Values, C.Values)
	return
}
