package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML problem file
type FunctionalParameters struct {
	Title             string                `json:"Title"`
	MeshFile          string                `json:"MeshFile"`
	ReferenceMeshFile string                `json:"ReferenceMeshFile"` // Undeformed mesh for LinearElasticity
	Functionals       []FunctionalSpec      `json:"Functionals"`
	Fields            map[string]FieldSpec  `json:"Fields"` // Key is the field name used by Functionals
	Potentials        map[string]LinearSpec `json:"Potentials"`
	Selection         *SelectionSpec        `json:"Selection"`
}

type FunctionalSpec struct {
	Type          string    `json:"Type"`
	Grade         string    `json:"Grade"`
	IntegrandOnly bool      `json:"IntegrandOnly"`
	Poisson       float64   `json:"Poisson"`
	KSplay        float64   `json:"KSplay"`
	KTwist        float64   `json:"KTwist"`
	KBend         float64   `json:"KBend"`
	Pitch         *float64  `json:"Pitch"`
	Weights       []float64 `json:"Weights"`
	Field         string    `json:"Field"`
	Potential     string    `json:"Potential"` // A named entry of Fields or Potentials, depending on Type
	ElectricField []float64 `json:"ElectricField"`
}

// FieldSpec holds per vertex values, or a Constant repeated on every vertex
type FieldSpec struct {
	Components int         `json:"Components"`
	Constant   []float64   `json:"Constant"`
	Values     [][]float64 `json:"Values"`
}

// LinearSpec is the potential V(x) = Constant + Gradient . x
type LinearSpec struct {
	Constant float64   `json:"Constant"`
	Gradient []float64 `json:"Gradient"`
}

// SelectionSpec restricts evaluation to listed element ids and/or the vertices inside a box
type SelectionSpec struct {
	Grade  string    `json:"Grade"`
	IDs    []int     `json:"IDs"`
	BoxMin []float64 `json:"BoxMin"`
	BoxMax []float64 `json:"BoxMax"`
}

func (fp *FunctionalParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, fp); err != nil {
		return
	}
	if len(fp.Functionals) == 0 {
		err = fmt.Errorf("no Functionals in input")
		return
	}
	for i, fs := range fp.Functionals {
		if len(fs.Type) == 0 {
			err = fmt.Errorf("functional %d has no Type", i)
			return
		}
		if len(fs.Field) != 0 {
			if _, ok := fp.Fields[fs.Field]; !ok {
				err = fmt.Errorf("functional %d (%s) uses undefined field %q", i, fs.Type, fs.Field)
				return
			}
		}
	}
	if fp.Selection != nil && len(fp.Selection.BoxMin) != len(fp.Selection.BoxMax) {
		err = fmt.Errorf("selection box corners differ in length: %d, %d",
			len(fp.Selection.BoxMin), len(fp.Selection.BoxMax))
	}
	return
}

func (fp *FunctionalParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", fp.Title)
	fmt.Printf("[%s]\t\t= Mesh File\n", fp.MeshFile)
	if len(fp.ReferenceMeshFile) != 0 {
		fmt.Printf("[%s]\t\t= Reference Mesh File\n", fp.ReferenceMeshFile)
	}
	for i, fs := range fp.Functionals {
		fmt.Printf("Functionals[%d] = %s", i, fs.Type)
		if len(fs.Grade) != 0 {
			fmt.Printf(" Grade: %s", fs.Grade)
		}
		if len(fs.Field) != 0 {
			fmt.Printf(" Field: %s", fs.Field)
		}
		fmt.Printf("\n")
	}
	keys := make([]string, len(fp.Fields))
	i := 0
	for k := range fp.Fields {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Fields[%s] = %d components\n", key, fp.Fields[key].Components)
	}
	if fp.Selection != nil {
		fmt.Printf("Selection = %+v\n", *fp.Selection)
	}
}
