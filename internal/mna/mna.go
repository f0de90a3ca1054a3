// Package mna assembles the Modified Nodal Analysis system from a
// DC or AC model and solves it.
package mna

import (
	"github.com/andersalavik/el-labb/internal/model"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// DCSolution is the solved DC network: node voltages indexed by node
// (index 0 is always 0 V, ground), and the current through each source
// keyed by source id.
type DCSolution struct {
	NodeVoltages   []float64
	SourceCurrents map[string]float64
}

// ACSolution mirrors DCSolution over the complex field.
type ACSolution struct {
	NodeVoltages   []numeric.Complex
	SourceCurrents map[string]numeric.Complex
}

// SolveDC assembles and solves the (n+m) square system: n =
// NodeCount-1 non-ground unknowns, m = len(Sources) source-current
// unknowns.
func SolveDC(dc model.DCModel) (DCSolution, error) {
	n := dc.NodeCount - 1
	m := len(dc.Sources)
	size := n + m

	a := make([][]float64, size)
	for i := range a {
		a[i] = make([]float64, size)
	}
	b := make([]float64, size)

	idx := func(node int) int { return node - 1 }

	for _, e := range dc.Elements {
		if e.R == 0 {
			continue
		}
		g := 1 / e.R
		if e.N1 != 0 {
			a[idx(e.N1)][idx(e.N1)] += g
		}
		if e.N2 != 0 {
			a[idx(e.N2)][idx(e.N2)] += g
		}
		if e.N1 != 0 && e.N2 != 0 {
			a[idx(e.N1)][idx(e.N2)] -= g
			a[idx(e.N2)][idx(e.N1)] -= g
		}
	}

	for k, s := range dc.Sources {
		row := n + k
		if s.N1 != 0 {
			a[idx(s.N1)][row] += 1
			a[row][idx(s.N1)] += 1
		}
		if s.N2 != 0 {
			a[idx(s.N2)][row] -= 1
			a[row][idx(s.N2)] -= 1
		}
		b[row] = s.V
	}

	x, err := numeric.SolveReal(a, b)
	if err != nil {
		return DCSolution{}, err
	}

	voltages := make([]float64, dc.NodeCount)
	for node := 1; node < dc.NodeCount; node++ {
		voltages[node] = x[idx(node)]
	}
	currents := make(map[string]float64, m)
	for k, s := range dc.Sources {
		currents[s.ID] = x[n+k]
	}
	return DCSolution{NodeVoltages: voltages, SourceCurrents: currents}, nil
}

// SolveAC is SolveDC's complex-field counterpart.
func SolveAC(ac model.ACModel) (ACSolution, error) {
	n := ac.NodeCount - 1
	m := len(ac.Sources)
	size := n + m

	a := make([][]numeric.Complex, size)
	for i := range a {
		a[i] = make([]numeric.Complex, size)
	}
	b := make([]numeric.Complex, size)

	idx := func(node int) int { return node - 1 }

	for _, e := range ac.Elements {
		if e.Z.Re == 0 && e.Z.Im == 0 {
			continue
		}
		y := numeric.Real(1).Div(e.Z)
		if e.N1 != 0 {
			a[idx(e.N1)][idx(e.N1)] = a[idx(e.N1)][idx(e.N1)].Add(y)
		}
		if e.N2 != 0 {
			a[idx(e.N2)][idx(e.N2)] = a[idx(e.N2)][idx(e.N2)].Add(y)
		}
		if e.N1 != 0 && e.N2 != 0 {
			a[idx(e.N1)][idx(e.N2)] = a[idx(e.N1)][idx(e.N2)].Sub(y)
			a[idx(e.N2)][idx(e.N1)] = a[idx(e.N2)][idx(e.N1)].Sub(y)
		}
	}

	one := numeric.Real(1)
	for k, s := range ac.Sources {
		row := n + k
		if s.N1 != 0 {
			a[idx(s.N1)][row] = a[idx(s.N1)][row].Add(one)
			a[row][idx(s.N1)] = a[row][idx(s.N1)].Add(one)
		}
		if s.N2 != 0 {
			a[idx(s.N2)][row] = a[idx(s.N2)][row].Sub(one)
			a[row][idx(s.N2)] = a[row][idx(s.N2)].Sub(one)
		}
		b[row] = s.V
	}

	x, err := numeric.SolveComplex(a, b)
	if err != nil {
		return ACSolution{}, err
	}

	voltages := make([]numeric.Complex, ac.NodeCount)
	for node := 1; node < ac.NodeCount; node++ {
		voltages[node] = x[idx(node)]
	}
	currents := make(map[string]numeric.Complex, m)
	for k, s := range ac.Sources {
		currents[s.ID] = x[n+k]
	}
	return ACSolution{NodeVoltages: voltages, SourceCurrents: currents}, nil
}
