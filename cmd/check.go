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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/notargets/gofunctional/functional"
	"github.com/notargets/gofunctional/utils"
	"github.com/spf13/cobra"
)

// GradientCheck compares the analytic and central difference gradients of one functional
type GradientCheck struct {
	Name          string
	RMS, MAX      float64
	Scale         float64 // Largest analytic gradient entry
	NumComponents int
}

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare analytic gradients against central differences",
	Long: `Compare the analytic gradient of every functional in a problem file that provides one
against its central difference gradient and report the RMS and maximum deviations`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		eo := &EvalOptions{}
		if eo.MeshFile, err = cmd.Flags().GetString("meshFile"); err != nil {
			return
		}
		if eo.ProblemFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		csvFile, _ := cmd.Flags().GetString("csvFile")
		var p *Problem
		if p, err = loadProblem(eo); err != nil {
			return
		}
		var checks []GradientCheck
		if checks, err = CheckGradients(p); err != nil {
			return
		}
		for _, gc := range checks {
			fmt.Printf("%-16s\tRMS = %10.3e\tMAX = %10.3e\tscale = %10.3e\n", gc.Name, gc.RMS, gc.MAX, gc.Scale)
		}
		if len(csvFile) == 0 {
			return
		}
		return writeChecksFile(csvFile, checks)
	},
}

func init() {
	rootCmd.AddCommand(CheckCmd)
	CheckCmd.Flags().StringP("meshFile", "F", "", "Mesh file (.su2, .msh, .mesh or .yaml), overrides MeshFile in the problem file")
	CheckCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML problem file listing the functionals to check")
	CheckCmd.Flags().String("csvFile", "", "also write the deviations to this CSV file")
}

// CheckGradients skips functionals without an analytic gradient
func CheckGradients(p *Problem) (checks []GradientCheck, err error) {
	for _, nf := range p.Functionals {
		if _, ok := nf.Functional.(functional.Differentiable); !ok {
			continue
		}
		var analytic, numerical utils.Matrix
		if analytic, err = functional.Gradient(nf.Functional, p.Mesh, p.Selection); err != nil {
			return
		}
		if numerical, err = functional.NumericalGradient(nf.Functional, p.Mesh, p.Selection); err != nil {
			return
		}
		var (
			a, n = analytic.Data(), numerical.Data()
			gc   = GradientCheck{Name: nf.Name, NumComponents: len(a)}
			sum  utils.KahanSum
		)
		for i := range a {
			d := math.Abs(a[i] - n[i])
			sum.Add(d * d)
			gc.MAX = math.Max(gc.MAX, d)
			gc.Scale = math.Max(gc.Scale, math.Abs(a[i]))
		}
		if len(a) != 0 {
			gc.RMS = math.Sqrt(sum.Sum() / float64(len(a)))
		}
		checks = append(checks, gc)
	}
	return
}

// writeChecksFile writes the CSV report to filename, reporting a failed close
func writeChecksFile(filename string, checks []GradientCheck) (err error) {
	var f *os.File
	if f, err = os.Create(filename); err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", filename, cerr)
		}
	}()
	return writeChecks(f, checks)
}

func writeChecks(w io.Writer, checks []GradientCheck) (err error) {
	cw := csv.NewWriter(w)
	if err = cw.Write([]string{"Functional", "Components", "RMS", "MAX", "Scale"}); err != nil {
		return
	}
	format := func(x float64) string { return strconv.FormatFloat(x, 'e', 6, 64) }
	for _, gc := range checks {
		rec := []string{gc.Name, strconv.Itoa(gc.NumComponents), format(gc.RMS), format(gc.MAX), format(gc.Scale)}
		if err = cw.Write(rec); err != nil {
			return
		}
	}
	cw.Flush()
	return cw.Error()
}
