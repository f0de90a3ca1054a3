package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// ShuntResistance is the value used to tie a dead node to ground rather
// than leaving the system singular.
const ShuntResistance = 1e9

// FloatingDiagnosis is the node classification: active nodes touched by
// any element, the subset reachable from ground
// through that adjacency, floating = active∖reachable, inactive =
// {1..N−1}∖active, dead = floating∪inactive, and sourceReachable = nodes
// reachable from any source terminal (used to gate the diagnostic).
type FloatingDiagnosis struct {
	NodeCount       int
	Active          map[int]bool
	Reachable       map[int]bool
	Floating        map[int]bool
	Inactive        map[int]bool
	Dead            map[int]bool
	SourceReachable map[int]bool
}

func findFloating(nodeCount int, pairs [][2]int) (active, reachable, floating map[int]bool) {
	active = map[int]bool{}
	reachable = map[int]bool{}
	floating = map[int]bool{}
	if nodeCount <= 1 {
		return
	}
	adjacency := make([]map[int]bool, nodeCount)
	for i := range adjacency {
		adjacency[i] = map[int]bool{}
	}
	for _, p := range pairs {
		n1, n2 := p[0], p[1]
		active[n1] = true
		active[n2] = true
		adjacency[n1][n2] = true
		adjacency[n2][n1] = true
	}
	if len(active) == 0 {
		return
	}
	var stack []int
	if active[0] {
		stack = append(stack, 0)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[n] {
			continue
		}
		reachable[n] = true
		for nb := range adjacency[n] {
			stack = append(stack, nb)
		}
	}
	for n := range active {
		if !reachable[n] {
			floating[n] = true
		}
	}
	return
}

func reachableFromSources(nodeCount int, pairs [][2]int, sourcePairs [][2]int) map[int]bool {
	reachable := map[int]bool{}
	if len(sourcePairs) == 0 {
		return reachable
	}
	adjacency := make([]map[int]bool, nodeCount)
	for i := range adjacency {
		adjacency[i] = map[int]bool{}
	}
	for _, p := range pairs {
		adjacency[p[0]][p[1]] = true
		adjacency[p[1]][p[0]] = true
	}
	var stack []int
	seed := map[int]bool{}
	for _, p := range sourcePairs {
		seed[p[0]] = true
		seed[p[1]] = true
	}
	for n := range seed {
		stack = append(stack, n)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[n] {
			continue
		}
		reachable[n] = true
		for nb := range adjacency[n] {
			stack = append(stack, nb)
		}
	}
	return reachable
}

func dcPairs(dc DCModel) ([][2]int, [][2]int) {
	pairs := make([][2]int, 0, len(dc.Elements)+len(dc.Sources))
	sourcePairs := make([][2]int, 0, len(dc.Sources))
	for _, e := range dc.Elements {
		pairs = append(pairs, [2]int{e.N1, e.N2})
	}
	for _, s := range dc.Sources {
		pairs = append(pairs, [2]int{s.N1, s.N2})
		sourcePairs = append(sourcePairs, [2]int{s.N1, s.N2})
	}
	return pairs, sourcePairs
}

func acPairs(ac ACModel) ([][2]int, [][2]int) {
	pairs := make([][2]int, 0, len(ac.Elements)+len(ac.Sources))
	sourcePairs := make([][2]int, 0, len(ac.Sources))
	for _, e := range ac.Elements {
		pairs = append(pairs, [2]int{e.N1, e.N2})
	}
	for _, s := range ac.Sources {
		pairs = append(pairs, [2]int{s.N1, s.N2})
		sourcePairs = append(sourcePairs, [2]int{s.N1, s.N2})
	}
	return pairs, sourcePairs
}

// DiagnoseDC runs the floating-node analysis over a DC model.
func DiagnoseDC(dc DCModel) FloatingDiagnosis {
	pairs, sourcePairs := dcPairs(dc)
	active, reachable, floating := findFloating(dc.NodeCount, pairs)
	inactive := map[int]bool{}
	for n := 1; n < dc.NodeCount; n++ {
		if !active[n] {
			inactive[n] = true
		}
	}
	dead := map[int]bool{}
	for n := range floating {
		dead[n] = true
	}
	for n := range inactive {
		dead[n] = true
	}
	return FloatingDiagnosis{
		NodeCount:       dc.NodeCount,
		Active:          active,
		Reachable:       reachable,
		Floating:        floating,
		Inactive:        inactive,
		Dead:            dead,
		SourceReachable: reachableFromSources(dc.NodeCount, pairs, sourcePairs),
	}
}

// DiagnoseAC runs the floating-node analysis over an AC model.
func DiagnoseAC(ac ACModel) FloatingDiagnosis {
	pairs, sourcePairs := acPairs(ac)
	active, reachable, floating := findFloating(ac.NodeCount, pairs)
	inactive := map[int]bool{}
	for n := 1; n < ac.NodeCount; n++ {
		if !active[n] {
			inactive[n] = true
		}
	}
	dead := map[int]bool{}
	for n := range floating {
		dead[n] = true
	}
	for n := range inactive {
		dead[n] = true
	}
	return FloatingDiagnosis{
		NodeCount:       ac.NodeCount,
		Active:          active,
		Reachable:       reachable,
		Floating:        floating,
		Inactive:        inactive,
		Dead:            dead,
		SourceReachable: reachableFromSources(ac.NodeCount, pairs, sourcePairs),
	}
}

// FilterAndShuntDC removes every element/source touching a dead node and
// adds a ShuntResistance resistor from each dead non-ground node to
// ground — the first-stage singular-system recovery.
func FilterAndShuntDC(dc DCModel, diag FloatingDiagnosis) DCModel {
	out := DCModel{NodeCount: dc.NodeCount}
	for _, e := range dc.Elements {
		if diag.Dead[e.N1] || diag.Dead[e.N2] {
			continue
		}
		out.Elements = append(out.Elements, e)
	}
	for _, s := range dc.Sources {
		if diag.Dead[s.N1] || diag.Dead[s.N2] {
			continue
		}
		out.Sources = append(out.Sources, s)
	}
	for n := range diag.Dead {
		if n == 0 {
			continue
		}
		out.Elements = append(out.Elements, DCElement{N1: n, N2: 0, R: ShuntResistance})
	}
	return out
}

// ShuntAllActiveDC is the second-stage escalation: add a shunt from
// every active non-ground node to ground (used when the first-stage
// model is still singular).
func ShuntAllActiveDC(dc DCModel, diag FloatingDiagnosis) DCModel {
	out := dc
	for n := range diag.Active {
		if n == 0 {
			continue
		}
		out.Elements = append(out.Elements, DCElement{N1: n, N2: 0, R: ShuntResistance})
	}
	return out
}

// FilterAndShuntAC is FilterAndShuntDC's complex-field counterpart.
func FilterAndShuntAC(ac ACModel, diag FloatingDiagnosis) ACModel {
	out := ACModel{NodeCount: ac.NodeCount}
	for _, e := range ac.Elements {
		if diag.Dead[e.N1] || diag.Dead[e.N2] {
			continue
		}
		out.Elements = append(out.Elements, e)
	}
	for _, s := range ac.Sources {
		if diag.Dead[s.N1] || diag.Dead[s.N2] {
			continue
		}
		out.Sources = append(out.Sources, s)
	}
	for n := range diag.Dead {
		if n == 0 {
			continue
		}
		out.Elements = append(out.Elements, ACElement{N1: n, N2: 0, Z: numeric.Real(ShuntResistance)})
	}
	return out
}

// ShuntAllActiveAC is ShuntAllActiveDC's complex-field counterpart.
func ShuntAllActiveAC(ac ACModel, diag FloatingDiagnosis) ACModel {
	out := ac
	for n := range diag.Active {
		if n == 0 {
			continue
		}
		out.Elements = append(out.Elements, ACElement{N1: n, N2: 0, Z: numeric.Real(ShuntResistance)})
	}
	return out
}

// ComponentErrorsForFloating emits {componentID: "Ungrounded subcircuit
// (<label>)"} for every component with a terminal that is active,
// floating, and reachable from a source.
func ComponentErrorsForFloating(components []circuit.Component, topo circuit.Topology, diag FloatingDiagnosis, label string) map[string]string {
	errs := map[string]string{}
	if len(diag.Floating) == 0 {
		return errs
	}
	for _, c := range components {
		for idx := 0; idx < c.TerminalCount(); idx++ {
			node, ok := topo.Node(c.ID, idx)
			if !ok {
				continue
			}
			if diag.Active[node] && diag.Floating[node] && diag.SourceReachable[node] {
				errs[c.ID] = "Ungrounded subcircuit (" + label + ")"
				break
			}
		}
	}
	return errs
}
