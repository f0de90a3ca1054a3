// Package ellabb is the public contract of the network-resolution engine:
// the wire-level request/response shapes and the Simulate/Measure entry points
// that wire internal/engine to an external surface (an HTTP router, a CLI,
// a test harness). It does not itself speak HTTP — callers map the Kind on
// a returned *Error to whatever status code their transport uses.
package ellabb

import (
	"errors"
	"time"

	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/discrete"
	"github.com/andersalavik/el-labb/internal/discrete/plc"
	"github.com/andersalavik/el-labb/internal/engine"
	"github.com/andersalavik/el-labb/internal/numeric"
	"github.com/rs/zerolog"
)

// Kind classifies an Error: Validation and Topology map to 400,
// NotFound to 404, Storage and Numerical map to 500 (Numerical failures
// are normally absorbed into solveErrors rather than returned as errors,
// but selectFrequency's multi-frequency case surfaces as Topology).
type Kind string

const (
	KindValidation Kind = "validation"
	KindTopology   Kind = "topology"
	KindNumerical  Kind = "numerical"
	KindStorage    Kind = "storage"
	KindNotFound   Kind = "not_found"
)

// Error wraps an underlying failure with the Kind a transport needs to
// pick a status code.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps Kind to its conventional HTTP status. Callers without
// an HTTP layer of their own can ignore this and switch on Kind directly.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindTopology:
		return 400
	case KindNotFound:
		return 404
	default:
		return 500
	}
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// Terminal is the wire-level `{compId,index}` pair.
type Terminal struct {
	CompID string `json:"compId"`
	Index  int    `json:"index"`
}

// Component is the wire-level netlist entity.
type Component struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	Props map[string]any `json:"props,omitempty"`
}

// Wire is the wire-level unordered terminal pair.
type Wire struct {
	From Terminal `json:"from"`
	To   Terminal `json:"to"`
}

// SimulateRequest is the simulate operation's request body.
type SimulateRequest struct {
	Components []Component `json:"components"`
	Wires      []Wire      `json:"wires"`
	SimTime    *int64      `json:"simTime,omitempty"`
}

// Complex is the `{re,im}` phasor wire shape.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// Solution is the simulate response's `solution` object.
type Solution struct {
	NodeVoltages   []float64      `json:"nodeVoltages"`
	TerminalNodes  map[string]int `json:"terminalNodes"`
	ACNodeVoltages []Complex      `json:"acNodeVoltages,omitempty"`
}

// DebugInfo mirrors one of `debugInfo.dc` / `debugInfo.ac`.
type DebugInfo struct {
	Nodes         int  `json:"nodes"`
	Sources       int  `json:"sources"`
	Elements      int  `json:"elements"`
	Floating      int  `json:"floating"`
	Inactive      int  `json:"inactive"`
	Active        int  `json:"active"`
	VirtualGround bool `json:"virtualGround"`
}

// TimerState is one entry of the response's `timerStates` map. StartAt
// is null while the timer is idle; clients round-trip the whole record
// into the next request's props.timerState to carry state across solves.
type TimerState struct {
	Running      bool   `json:"running"`
	StartAt      *int64 `json:"startAt"`
	OutputClosed bool   `json:"outputClosed"`
	RemainingMs  int64  `json:"remainingMs"`
}

// TimerMeta is one PLC timer instance's metadata, part of `plcMeta`.
type TimerMeta struct {
	In      bool   `json:"in"`
	Q       bool   `json:"q"`
	StartAt *int64 `json:"startAt"`
}

// CounterMeta is one PLC counter instance's metadata, part of `plcMeta`.
type CounterMeta struct {
	CV int  `json:"cv"`
	PV int  `json:"pv"`
	CU bool `json:"cu"`
	Q  bool `json:"q"`
}

// PLCMeta is one PLC's bookkeeping: timers/counters/memory/edge-trigger
// registers and its bounded execution trace.
type PLCMeta struct {
	Mem        map[int]bool           `json:"mem"`
	Timers     map[string]TimerMeta   `json:"timers"`
	Counters   map[string]CounterMeta `json:"counters"`
	Trig       map[string]bool        `json:"trig"`
	Trace      []string               `json:"trace"`
	NextTickMs *int64                 `json:"nextTickMs,omitempty"`
}

// SimulateResponse is the full simulate response.
type SimulateResponse struct {
	Solution          Solution              `json:"solution"`
	ContactorStates   map[string]bool       `json:"contactorStates"`
	LampLit           map[string]bool       `json:"lampLit"`
	MotorRunning      map[string]bool       `json:"motorRunning"`
	Motor3phDirection map[string]string     `json:"motor3phDirection"`
	Faults            map[string]string     `json:"faults"`
	SolveErrors       map[string]string     `json:"solveErrors"`
	TimerStates       map[string]TimerState `json:"timerStates"`
	PLCStates         map[string][]bool     `json:"plcStates"`
	PLCMeta           map[string]PLCMeta    `json:"plcMeta"`
	DebugInfo         struct {
		DC DebugInfo `json:"dc"`
		AC DebugInfo `json:"ac"`
	} `json:"debugInfo"`
}

func toCircuitComponents(in []Component) []circuit.Component {
	out := make([]circuit.Component, len(in))
	for i, c := range in {
		out[i] = circuit.Component{ID: c.ID, Type: circuit.Type(c.Type), Props: c.Props}
	}
	return out
}

func toCircuitWires(in []Wire) []circuit.Wire {
	out := make([]circuit.Wire, len(in))
	for i, w := range in {
		out[i] = circuit.Wire{
			From: circuit.Terminal{CompID: w.From.CompID, Index: w.From.Index},
			To:   circuit.Terminal{CompID: w.To.CompID, Index: w.To.Index},
		}
	}
	return out
}

func simTimeMs(req SimulateRequest) int64 {
	if req.SimTime != nil {
		return *req.SimTime
	}
	return time.Now().UnixMilli()
}

func toComplexSlice(in []numeric.Complex) []Complex {
	if in == nil {
		return nil
	}
	out := make([]Complex, len(in))
	for i, c := range in {
		out[i] = Complex{Re: c.Re, Im: c.Im}
	}
	return out
}

func toTimerStates(in map[string]discrete.TimerState) map[string]TimerState {
	out := make(map[string]TimerState, len(in))
	for id, ts := range in {
		entry := TimerState{Running: ts.Running, OutputClosed: ts.OutputClosed, RemainingMs: ts.RemainingMs}
		if ts.HasStartAt {
			startAt := ts.StartAtMs
			entry.StartAt = &startAt
		}
		out[id] = entry
	}
	return out
}

func toPLCStates(in map[string]plc.State) (map[string][]bool, map[string]PLCMeta) {
	states := make(map[string][]bool, len(in))
	meta := make(map[string]PLCMeta, len(in))
	for id, s := range in {
		states[id] = append([]bool(nil), s.Outputs...)

		timers := make(map[string]TimerMeta, len(s.Timers))
		for k, t := range s.Timers {
			entry := TimerMeta{In: t.In, Q: t.Q}
			if t.HasStartAt {
				startAt := t.StartAtMs
				entry.StartAt = &startAt
			}
			timers[k] = entry
		}
		counters := make(map[string]CounterMeta, len(s.Counters))
		for k, c := range s.Counters {
			counters[k] = CounterMeta{CV: c.CV, PV: c.PV, CU: c.CU, Q: c.Q}
		}
		trig := make(map[string]bool, len(s.Trig))
		for k, v := range s.Trig {
			trig[k] = v
		}
		mem := make(map[int]bool, len(s.Mem))
		for k, v := range s.Mem {
			mem[k] = v
		}
		meta[id] = PLCMeta{
			Mem:        mem,
			Timers:     timers,
			Counters:   counters,
			Trig:       trig,
			Trace:      append([]string(nil), s.Trace...),
			NextTickMs: s.NextTickMs,
		}
	}
	return states, meta
}

func toDebugInfo(d engine.DebugInfo) DebugInfo {
	return DebugInfo{
		Nodes:         d.Nodes,
		Sources:       d.Sources,
		Elements:      d.Elements,
		Floating:      d.Floating,
		Inactive:      d.Inactive,
		Active:        d.Active,
		VirtualGround: d.VirtualGround,
	}
}

// Simulate resolves a netlist (topology flatten, stamp, MNA solve,
// discrete-state fixed point) and assembles the response from
// internal/engine.Resolve and internal/engine.BuildReport.
func Simulate(log zerolog.Logger, req SimulateRequest) (SimulateResponse, error) {
	components := toCircuitComponents(req.Components)
	wires := toCircuitWires(req.Wires)

	result, err := engine.Resolve(log, components, wires, simTimeMs(req))
	if err != nil {
		if errors.Is(err, engine.ErrMultipleFrequencies) {
			return SimulateResponse{}, newError(KindTopology, err)
		}
		return SimulateResponse{}, newError(KindNumerical, err)
	}

	report := engine.BuildReport(result)

	resp := SimulateResponse{
		Solution: Solution{
			NodeVoltages:  result.DC.NodeVoltages,
			TerminalNodes: result.Topology.TerminalNodes,
		},
		ContactorStates:   result.State.ContactorStates,
		LampLit:           report.LampLit,
		MotorRunning:      report.MotorRunning,
		Motor3phDirection: report.Motor3phDirection,
		Faults:            report.Faults,
		SolveErrors:       result.SolveErrors,
		TimerStates:       toTimerStates(result.State.TimerStates),
	}
	if result.AC != nil {
		resp.Solution.ACNodeVoltages = toComplexSlice(result.AC.NodeVoltages)
	}
	resp.PLCStates, resp.PLCMeta = toPLCStates(result.State.PLCStates)
	resp.DebugInfo.DC = toDebugInfo(result.DebugDC)
	resp.DebugInfo.AC = toDebugInfo(result.DebugAC)
	return resp, nil
}

// MeasureRequest is the wire-level solve-and-derive request: a netlist
// plus a measurement mode and probe references.
type MeasureRequest struct {
	SimulateRequest
	Mode        string    `json:"mode"`
	ARef        *Terminal `json:"aRef,omitempty"`
	BRef        *Terminal `json:"bRef,omitempty"`
	ComponentID string    `json:"componentId,omitempty"`
}

// Measure resolves the network and derives one measurement value, per
// internal/engine.Measure. A nil *float64 with a nil error means the
// measurement is well-formed but undefined (e.g. an open circuit), which
// serializes as JSON null rather than an error.
func Measure(log zerolog.Logger, req MeasureRequest) (*float64, error) {
	components := toCircuitComponents(req.Components)
	wires := toCircuitWires(req.Wires)

	var aRef, bRef *engine.Ref
	if req.ARef != nil {
		aRef = &engine.Ref{CompID: req.ARef.CompID, Index: req.ARef.Index}
	}
	if req.BRef != nil {
		bRef = &engine.Ref{CompID: req.BRef.CompID, Index: req.BRef.Index}
	}

	val, err := engine.Measure(log, components, wires, simTimeMs(req.SimulateRequest), engine.MeasureRequest{
		Mode:        req.Mode,
		ARef:        aRef,
		BRef:        bRef,
		ComponentID: req.ComponentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrMissingProbe), errors.Is(err, engine.ErrMissingComponent), errors.Is(err, engine.ErrUnknownMode):
			return nil, newError(KindValidation, err)
		case errors.Is(err, engine.ErrMultipleFrequencies):
			return nil, newError(KindTopology, err)
		case errors.Is(err, engine.ErrNoACSolution):
			return nil, newError(KindValidation, err)
		default:
			return nil, newError(KindNumerical, err)
		}
	}
	return val, nil
}
