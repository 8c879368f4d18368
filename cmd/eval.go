/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/notargets/gofunctional/InputParameters"
	"github.com/notargets/gofunctional/functional"
	"github.com/notargets/gofunctional/mesh"
	"github.com/notargets/gofunctional/readfiles"
	"github.com/notargets/gofunctional/utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type EvalOptions struct {
	MeshFile      string
	ProblemFile   string
	Gradient      bool
	Integrand     bool
	ProfileMethod string
}

// EvalCmd represents the eval command
var EvalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate the functionals of a problem file on a mesh",
	Long: `Evaluate the functionals of a problem file on a mesh, printing totals and
optionally the per element integrand and the gradient with respect to vertex positions`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		eo := &EvalOptions{}
		if eo.MeshFile, err = cmd.Flags().GetString("meshFile"); err != nil {
			return
		}
		if eo.ProblemFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		eo.Gradient, _ = cmd.Flags().GetBool("gradient")
		eo.Integrand, _ = cmd.Flags().GetBool("integrand")
		eo.ProfileMethod, _ = cmd.Flags().GetString("profile")
		switch eo.ProfileMethod {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		default:
			return fmt.Errorf("unknown profile method %q, use cpu or mem", eo.ProfileMethod)
		}
		var p *Problem
		if p, err = loadProblem(eo); err != nil {
			return
		}
		return RunEval(eo, p)
	},
}

func init() {
	rootCmd.AddCommand(EvalCmd)
	EvalCmd.Flags().StringP("meshFile", "F", "", "Mesh file (.su2, .msh, .mesh or .yaml), overrides MeshFile in the problem file")
	EvalCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML problem file listing the functionals to evaluate")
	EvalCmd.Flags().BoolP("gradient", "g", false, "print the gradient of each functional")
	EvalCmd.Flags().BoolP("integrand", "i", false, "print the integrand of each functional per element")
	EvalCmd.Flags().String("profile", "", "write a cpu or mem profile to the current directory")
}

func loadProblem(eo *EvalOptions) (p *Problem, err error) {
	if len(eo.ProblemFile) == 0 {
		exampleFile := `
########################################
Title: "Test Case"
MeshFile: square.yaml
Functionals:
  - Type: Area
  - Type: GradSq
    Field: q
Fields:
  q:
    Components: 1
    Values: [[0], [1], [2], [3]]
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply a problem file (-I, --inputConditionsFile)")
	}
	var data []byte
	if data, err = os.ReadFile(eo.ProblemFile); err != nil {
		return
	}
	ip := &InputParameters.FunctionalParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", eo.ProblemFile, err)
	}
	meshFile := eo.MeshFile
	if len(meshFile) == 0 {
		meshFile = relativeTo(eo.ProblemFile, ip.MeshFile)
	}
	if len(meshFile) == 0 {
		return nil, fmt.Errorf("must supply a mesh file (-F, --meshFile) or MeshFile in %s", eo.ProblemFile)
	}
	var m, ref *mesh.Mesh
	if m, err = readfiles.ReadMeshFile(meshFile); err != nil {
		return
	}
	if len(ip.ReferenceMeshFile) != 0 {
		if ref, err = readfiles.ReadMeshFile(relativeTo(eo.ProblemFile, ip.ReferenceMeshFile)); err != nil {
			return
		}
	}
	slog.Debug("loaded mesh", "file", meshFile, "dim", m.Dim, "vertices", m.NVertices(), "maxGrade", m.MaxGrade())
	return NewProblem(ip, m, ref)
}

// relativeTo resolves a file named inside the problem file against the problem file's directory
func relativeTo(problemFile, name string) string {
	if len(name) == 0 || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(problemFile), name)
}

func RunEval(eo *EvalOptions, p *Problem) (err error) {
	p.Params.Print()
	for _, nf := range p.Functionals {
		var total float64
		if total, err = functional.Total(nf.Functional, p.Mesh, p.Selection); err != nil {
			return
		}
		fmt.Printf("%-16s\t= %16.10g\n", nf.Name, total)
		if eo.Integrand {
			var R utils.Matrix
			if R, err = functional.Integrand(nf.Functional, p.Mesh, p.Selection); err != nil {
				return
			}
			for id, val := range R.Data() {
				fmt.Printf("\t%s[%d] = %g\n", nf.Grade(), id, val)
			}
		}
		if eo.Gradient {
			if err = printGradient(nf, p); err != nil {
				return
			}
		}
	}
	return
}

func printGradient(nf NamedFunctional, p *Problem) (err error) {
	var frc utils.Matrix
	if frc, err = functional.Gradient(nf.Functional, p.Mesh, p.Selection); err != nil {
		return
	}
	_, nv := frc.Dims()
	for v := 0; v < nv; v++ {
		fmt.Printf("\tdx[%d] = %v\n", v, frc.Col(v))
	}
	fd, ok := nf.Functional.(functional.FieldDependent)
	if !ok {
		return
	}
	for _, field := range fd.Fields() {
		var grad *mesh.Field
		if grad, err = functional.FieldGradient(nf.Functional, p.Mesh, field, p.Selection); err != nil {
			return
		}
		fmt.Printf("\t|dq| = %g over %d dofs\n", utils.VecNorm(grad.Data), grad.Size())
	}
	return
}
