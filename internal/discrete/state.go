// Package discrete evaluates the discrete-state side of the network: the
// contactor pull-in rule, the TON/TOF/TP-style timer state machine, the
// wall-clock schedule timer, and (in the plc subpackage) the LAD
// interpreter. All functions here are pure: given the prior state and the
// solved voltages they return the next state, with no package-level
// mutable state.
package discrete

import "github.com/andersalavik/el-labb/internal/discrete/plc"

// Tolerance applied to every threshold comparison in the discrete layer
// ("dv+ε ≥ threshold").
const Tolerance = 1e-2

// TimerState is the per-timer record carried across fixed-point
// iterations and across requests (it may be seeded from a component's
// props.timerState).
type TimerState struct {
	Running      bool
	StartAtMs    int64
	HasStartAt   bool
	OutputClosed bool
	RemainingMs  int64
}

// State is the full discrete-state snapshot the fixed-point driver
// threads through the electrical solve: contactor energization, timer
// states, and PLC output/metadata.
type State struct {
	ContactorStates map[string]bool
	TimerStates     map[string]TimerState
	PLCStates       map[string]plc.State
}

// NewState returns an empty snapshot; the driver seeds it before the
// first iteration.
func NewState() State {
	return State{
		ContactorStates: make(map[string]bool),
		TimerStates:     make(map[string]TimerState),
		PLCStates:       make(map[string]plc.State),
	}
}

// Equal reports whether two snapshots carry identical contactor flags,
// timer running/outputClosed flags, and PLC output bits — the
// fixed-point driver's convergence test. Timer start/remaining times and
// PLC internal timer/counter/trace bookkeeping are excluded: only
// observable outputs matter for convergence.
func (s State) Equal(o State) bool {
	if len(s.ContactorStates) != len(o.ContactorStates) {
		return false
	}
	for id, v := range s.ContactorStates {
		if o.ContactorStates[id] != v {
			return false
		}
	}
	if len(s.TimerStates) != len(o.TimerStates) {
		return false
	}
	for id, v := range s.TimerStates {
		ov, ok := o.TimerStates[id]
		if !ok || ov.OutputClosed != v.OutputClosed || ov.Running != v.Running {
			return false
		}
	}
	if len(s.PLCStates) != len(o.PLCStates) {
		return false
	}
	for id, v := range s.PLCStates {
		ov, ok := o.PLCStates[id]
		if !ok || !outputsEqual(v.Outputs, ov.Outputs) {
			return false
		}
	}
	return true
}

func outputsEqual(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep-enough copy so the driver can compare an
// iteration's result against the state it started from without aliasing.
func (s State) Clone() State {
	out := State{
		ContactorStates: make(map[string]bool, len(s.ContactorStates)),
		TimerStates:     make(map[string]TimerState, len(s.TimerStates)),
		PLCStates:       make(map[string]plc.State, len(s.PLCStates)),
	}
	for k, v := range s.ContactorStates {
		out.ContactorStates[k] = v
	}
	for k, v := range s.TimerStates {
		out.TimerStates[k] = v
	}
	for k, v := range s.PLCStates {
		out.PLCStates[k] = v.Clone()
	}
	return out
}
