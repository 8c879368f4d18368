package utils

import (
	"fmt"

	"github.com/notargets/gofunctional/types"
)

type dokKey struct {
	row, col int
}

// DOK is a dictionary-of-keys sparse store. Keys are remembered in insertion order so that enumeration is
// deterministic. Dimensions only grow.
type DOK struct {
	nrows, ncols int
	values       map[dokKey]float64
	keys         []dokKey
	tombstones   int
}

func NewDOK() (d *DOK) {
	d = &DOK{
		values: make(map[dokKey]float64),
	}
	return
}

func (d *DOK) Dims() (r, c int) { return d.nrows, d.ncols }

// Count is the number of stored entries
func (d *DOK) Count() int { return len(d.values) }

// Insert stores val at (row, col), growing the dimensions to contain the entry
func (d *DOK) Insert(row, col int, val float64) (err error) {
	if row < 0 || col < 0 {
		err = fmt.Errorf("%w: (%d, %d)", types.ErrInvalidIndices, row, col)
		return
	}
	k := dokKey{row, col}
	if _, present := d.values[k]; !present {
		d.keys = append(d.keys, k)
	}
	d.values[k] = val
	if row >= d.nrows {
		d.nrows = row + 1
	}
	if col >= d.ncols {
		d.ncols = col + 1
	}
	return
}

func (d *DOK) Get(row, col int) (val float64, found bool) {
	val, found = d.values[dokKey{row, col}]
	return
}

// Remove deletes the entry at (row, col). The key list entry is left in place and skipped on enumeration.
func (d *DOK) Remove(row, col int) (found bool) {
	k := dokKey{row, col}
	if _, found = d.values[k]; found {
		delete(d.values, k)
		d.tombstones++
	}
	return
}

// SetDimensions grows the logical size; shrinking below the current size is refused
func (d *DOK) SetDimensions(nrows, ncols int) (err error) {
	if nrows < d.nrows || ncols < d.ncols {
		err = fmt.Errorf("%w: cannot shrink %d x %d to %d x %d",
			types.ErrIncompatibleDimensions, d.nrows, d.ncols, nrows, ncols)
		return
	}
	d.nrows, d.ncols = nrows, ncols
	return
}

// Keys visits every live entry in insertion order. Removed keys that were later re-inserted are
// visited at their original position only once.
func (d *DOK) Keys(fn func(row, col int, val float64)) {
	var (
		seen map[dokKey]struct{}
	)
	if d.tombstones != 0 {
		seen = make(map[dokKey]struct{}, len(d.values))
	}
	for _, k := range d.keys {
		val, ok := d.values[k]
		if !ok {
			continue
		}
		if seen != nil {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		fn(k.row, k.col, val)
	}
}

func (d *DOK) Clear() {
	d.values = make(map[dokKey]float64)
	d.keys = d.keys[:0]
	d.tombstones = 0
}

func (d *DOK) Copy() (R *DOK) {
	R = NewDOK()
	R.nrows, R.ncols = d.nrows, d.ncols
	d.Keys(func(row, col int, val float64) {
		k := dokKey{row, col}
		R.values[k] = val
		R.keys = append(R.keys, k)
	})
	return
}
