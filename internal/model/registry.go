package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/discrete"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// Stampable is implemented by every component type: it knows its own
// terminal count and how to contribute DC and AC primitives. Adding a
// component type means adding one implementation and one registry entry.
type Stampable interface {
	TerminalCount() int
	StampDC(ctx *StampContext)
	StampAC(ctx *StampContext, omega float64)
}

// Stateful is implemented only by component types that carry discrete
// state across fixed-point iterations (contactor, timer, time_timer,
// plc). EvaluateState reads the solved voltages for this component's
// terminals and writes its next state into the shared discrete.State.
type Stateful interface {
	EvaluateState(ctx *EvalContext)
}

// constructor builds a Stampable for one component, bound to the
// discrete.State snapshot current at the start of this fixed-point
// iteration. Stateless types ignore state.
type constructor func(c circuit.Component, state *discrete.State) Stampable

var registry = map[circuit.Type]constructor{
	circuit.TypeResistor:      wrap(newPassive),
	circuit.TypeMotor:         wrap(newPassive),
	circuit.TypeLamp:          wrap(newPassive),
	circuit.TypeSwitch:        wrap(newSwitch),
	circuit.TypePushButton:    wrap(newSwitch),
	circuit.TypeSwitchSPDT:    wrap(newSwitchSPDT),
	circuit.TypeInductor:      wrap(newInductor),
	circuit.TypeCapacitor:     wrap(newCapacitor),
	circuit.TypeMotor3Ph:      wrap(newMotor3Ph),
	circuit.TypeContactor:     newContactor,
	circuit.TypeTimer:         newTimer,
	circuit.TypeTimeTimer:     newTimeTimer,
	circuit.TypePLC:           newPLC,
	circuit.TypeVoltageSource: wrap(newVoltageSource),
	circuit.TypeNode:          wrap(newPassthrough),
	circuit.TypeGround:        wrap(newPassthrough),
}

// wrap adapts a state-independent constructor to the constructor shape.
func wrap(f func(circuit.Component) Stampable) constructor {
	return func(c circuit.Component, _ *discrete.State) Stampable { return f(c) }
}

// Build constructs one Stampable per component, in input order and
// index-aligned with components (nil for an unrecognized type, which
// then stamps nothing; pkg/ellabb passes component types through
// unchecked), bound to state.
func Build(components []circuit.Component, state *discrete.State) []Stampable {
	out := make([]Stampable, len(components))
	for i, c := range components {
		ctor, ok := registry[c.Type]
		if !ok {
			continue
		}
		out[i] = ctor(c, state)
	}
	return out
}

// StampAll runs StampDC (and, when omega>0, StampAC) for every
// component's already-built Stampable, against its own per-component
// StampContext, writing into the shared dc/ac models. nextNode seeds the
// counter used to allocate any internal nodes (motor_3ph Y neutral); it
// starts at the topology's node count and is advanced in place.
func StampAll(components []circuit.Component, stampables []Stampable, topo circuit.Topology, dc *DCModel, ac *ACModel, omega float64) {
	nextNode := topo.NodeCount
	for i, c := range components {
		if i >= len(stampables) || stampables[i] == nil {
			continue
		}
		s := stampables[i]
		ctx := &StampContext{compID: c.ID, topo: topo, dc: dc, ac: ac, nextNode: &nextNode}
		if dc != nil {
			s.StampDC(ctx)
		}
		if ac != nil && omega > 0 {
			s.StampAC(ctx, omega)
		}
	}
	if ac != nil {
		ac.NodeCount = nextNode
	}
}

// EvaluateAll runs EvaluateState for every stateful component's
// already-built Stampable (as returned by Build), writing next-iteration
// state into ctxFor's State.
func EvaluateAll(components []circuit.Component, stampables []Stampable, ctxFor func(compID string) *EvalContext) {
	for i, c := range components {
		if i >= len(stampables) || stampables[i] == nil {
			continue
		}
		st, ok := stampables[i].(Stateful)
		if !ok {
			continue
		}
		st.EvaluateState(ctxFor(c.ID))
	}
}

// EvalContext is passed to one stateful component's EvaluateState call.
// It exposes the solved DC/AC node voltages (either may be nil when
// that field wasn't solved this round) restricted to this component's
// own terminal lookups, the wall-clock/sim time, and the mutable
// discrete.State the evaluator reads its prior state from and writes
// its next state into.
type EvalContext struct {
	CompID string
	Topo   circuit.Topology
	DCV    []float64
	ACV    []numeric.Complex
	NowMs  int64
	State  *discrete.State
}

// Node resolves one of this component's terminals to a node index.
func (ctx *EvalContext) Node(terminal int) (int, bool) {
	return ctx.Topo.Node(ctx.CompID, terminal)
}

// DeltaDC returns the signed DC voltage difference V(t1)−V(t2) between
// two of this component's terminals, or ok=false if either is unmapped
// or DCV wasn't supplied.
func (ctx *EvalContext) DeltaDC(t1, t2 int) (float64, bool) {
	if ctx.DCV == nil {
		return 0, false
	}
	n1, ok1 := ctx.Node(t1)
	n2, ok2 := ctx.Node(t2)
	if !ok1 || !ok2 || n1 >= len(ctx.DCV) || n2 >= len(ctx.DCV) {
		return 0, false
	}
	return ctx.DCV[n1] - ctx.DCV[n2], true
}

// DeltaAC returns the magnitude of the AC phasor difference between two
// of this component's terminals, or ok=false if either is unmapped or
// ACV wasn't supplied.
func (ctx *EvalContext) DeltaAC(t1, t2 int) (float64, bool) {
	if ctx.ACV == nil {
		return 0, false
	}
	n1, ok1 := ctx.Node(t1)
	n2, ok2 := ctx.Node(t2)
	if !ok1 || !ok2 || n1 >= len(ctx.ACV) || n2 >= len(ctx.ACV) {
		return 0, false
	}
	return ctx.ACV[n1].Sub(ctx.ACV[n2]).Abs(), true
}
