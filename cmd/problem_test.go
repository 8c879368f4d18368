package cmd

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gofunctional/InputParameters"
	"github.com/notargets/gofunctional/functional"
	"github.com/notargets/gofunctional/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var squareMesh = []byte(`
Dimension: 2
Vertices: [[0, 0], [1, 0], [0, 1], [1, 1]]
Lines: [[0, 1], [1, 3], [3, 2], [2, 0]]
Faces: [[0, 1, 2], [1, 3, 2]]
`)

var squareProblem = []byte(`
Title: "Unit square"
MeshFile: square.yaml
Functionals:
  - Type: Length
  - Type: AreaEnclosed
  - Type: Area
  - Type: GradSq
    Field: q
  - Type: NormSq
    Field: q
  - Type: ScalarPotential
    Potential: tilt
  - Type: EquiElement
    Grade: area
  - Type: LinearElasticity
    Poisson: 0.25
  - Type: Nematic
    Field: director
    Pitch: 2
  - Type: NematicElectric
    Field: director
    ElectricField: [2, 0, 0]
  - Type: GaussCurvature
Fields:
  q:
    Components: 1
    Values: [[0], [1], [2], [3]]
  director:
    Components: 3
    Constant: [1, 0, 0]
Potentials:
  tilt:
    Constant: 1
    Gradient: [1, 0]
`)

func writeProblem(t *testing.T) (problemFile string) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "square.yaml"), squareMesh, 0644))
	problemFile = filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(problemFile, squareProblem, 0644))
	return
}

func TestProblem(t *testing.T) {
	p, err := loadProblem(&EvalOptions{ProblemFile: writeProblem(t)})
	require.NoError(t, err)
	require.Len(t, p.Functionals, 11)
	assert.Nil(t, p.Selection)
	expected := map[string]float64{
		"Length":           4,
		"AreaEnclosed":     1,
		"Area":             1,
		"GradSq":           5,
		"NormSq":           14,
		"ScalarPotential":  6,
		"EquiElement":      0,
		"LinearElasticity": 0,
		"Nematic":          2,
		"NematicElectric":  4,
		"GaussCurvature":   6 * math.Pi, // boundary vertices keep their turning angle
	}
	for _, nf := range p.Functionals {
		total, err := functional.Total(nf.Functional, p.Mesh, p.Selection)
		require.NoError(t, err, nf.Name)
		assert.InDelta(t, expected[nf.Name], total, 1.e-12, nf.Name)
	}
	assert.NoError(t, RunEval(&EvalOptions{Gradient: true, Integrand: true}, p))
}

func TestProblemErrors(t *testing.T) {
	problemFile := writeProblem(t)
	{
		_, err := loadProblem(&EvalOptions{})
		assert.Error(t, err)
		_, err = loadProblem(&EvalOptions{ProblemFile: problemFile, MeshFile: "missing.su2"})
		assert.Error(t, err)
	}
	p, err := loadProblem(&EvalOptions{ProblemFile: problemFile})
	require.NoError(t, err)
	bad := []InputParameters.FunctionalSpec{
		{Type: "Bogus"},
		{Type: "Area", Grade: "hypercube"},
		{Type: "ScalarPotential", Potential: "none"},
		{Type: "GradSq", Field: "none"},
	}
	for _, fs := range bad {
		_, err := p.newFunctional(fs)
		assert.True(t, errors.Is(err, types.ErrInvalidArgs), fs.Type)
	}
	{
		ip := &InputParameters.FunctionalParameters{
			Functionals: []InputParameters.FunctionalSpec{{Type: "Area"}},
			Fields: map[string]InputParameters.FieldSpec{
				"short": {Components: 1, Values: [][]float64{{1}}},
			},
		}
		_, err := NewProblem(ip, p.Mesh, nil)
		assert.True(t, errors.Is(err, types.ErrIncompatibleDimensions))
	}
}

func TestProblemSelection(t *testing.T) {
	p, err := loadProblem(&EvalOptions{ProblemFile: writeProblem(t)})
	require.NoError(t, err)
	{ // the box holds the bottom edge only
		sel, err := newSelection(p.Mesh, &InputParameters.SelectionSpec{
			BoxMin: []float64{-0.5, -0.5}, BoxMax: []float64{1.5, 0.5}})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, sel.IDs(types.Vertex))
		assert.Equal(t, []int{0}, sel.IDs(types.Line))
		assert.Empty(t, sel.IDs(types.Area))
		total, err := functional.Total(functional.NewLength(), p.Mesh, sel)
		require.NoError(t, err)
		assert.InDelta(t, 1, total, 1.e-15)
	}
	{
		sel, err := newSelection(p.Mesh, &InputParameters.SelectionSpec{Grade: "faces", IDs: []int{1}})
		require.NoError(t, err)
		total, err := functional.Total(functional.NewArea(), p.Mesh, sel)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, total, 1.e-15)
		_, err = newSelection(p.Mesh, &InputParameters.SelectionSpec{Grade: "faces", IDs: []int{2}})
		assert.True(t, errors.Is(err, types.ErrInvalidIndices))
		_, err = newSelection(p.Mesh, &InputParameters.SelectionSpec{BoxMin: []float64{0}, BoxMax: []float64{1}})
		assert.True(t, errors.Is(err, types.ErrIncompatibleDimensions))
	}
}

func TestCheckGradients(t *testing.T) {
	p, err := loadProblem(&EvalOptions{ProblemFile: writeProblem(t)})
	require.NoError(t, err)
	checks, err := CheckGradients(p)
	require.NoError(t, err)
	names := make([]string, len(checks))
	for i, gc := range checks {
		names[i] = gc.Name
		assert.Equal(t, 8, gc.NumComponents, gc.Name)
		assert.Less(t, gc.MAX, 1.e-5, gc.Name)
	}
	assert.Equal(t, []string{"Length", "AreaEnclosed", "Area", "ScalarPotential"}, names)
	var buf bytes.Buffer
	require.NoError(t, writeChecks(&buf, checks))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Functional,Components,RMS,MAX,Scale", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Length,8,"))
	{
		csvFile := filepath.Join(t.TempDir(), "checks.csv")
		require.NoError(t, writeChecksFile(csvFile, checks))
		data, err := os.ReadFile(csvFile)
		require.NoError(t, err)
		assert.Equal(t, buf.String(), string(data))
		assert.Error(t, writeChecksFile(filepath.Join(t.TempDir(), "missing", "checks.csv"), checks))
	}
}
