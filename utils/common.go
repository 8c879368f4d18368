package utils

const (
	// EPS guards divisions by lengths, areas and norms in element geometry
	EPS = 2.220446049250313e-16
	// DiffEps is the central difference step used by the numerical gradients
	DiffEps = 1.e-10
)
