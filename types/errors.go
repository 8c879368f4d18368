package types

import "errors"

var (
	ErrIncompatibleDimensions = errors.New("incompatible dimensions")
	ErrNotSquare              = errors.New("matrix not square")
	ErrSingularSystem         = errors.New("singular system")
	ErrConversionFailed       = errors.New("sparse format conversion failed")
	ErrAllocationFailed       = errors.New("allocation failed")
	ErrInvalidIndices         = errors.New("invalid indices")
	ErrEvaluatorFailed        = errors.New("functional evaluator failed")
	ErrElementNotFound        = errors.New("mesh has no elements of requested grade")
	ErrInvalidArgs            = errors.New("invalid functional arguments")
)
