// Package engine implements the fixed-point driver, frequency
// selection, device-state reporting, and measure-mode derivation that
// sit on top of internal/circuit, internal/model, and internal/mna.
package engine

import (
	"errors"
	"math"
	"time"

	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/discrete"
	"github.com/andersalavik/el-labb/internal/discrete/plc"
	"github.com/andersalavik/el-labb/internal/mna"
	"github.com/andersalavik/el-labb/internal/model"
	"github.com/andersalavik/el-labb/internal/numeric"
	"github.com/rs/zerolog"
)

// ErrMultipleFrequencies is returned when more than one distinct AC
// frequency appears across the netlist's voltage sources — the engine
// solves one steady-state frequency, so the whole request fails rather
// than superposing.
var ErrMultipleFrequencies = errors.New("engine: multiple AC frequencies not supported")

// maxIterations is the fixed-point driver's hard cap.
const maxIterations = 3

// DebugInfo mirrors one entry of the simulate response's debugInfo.dc /
// debugInfo.ac object.
type DebugInfo struct {
	Nodes         int
	Sources       int
	Elements      int
	Floating      int
	Inactive      int
	Active        int
	VirtualGround bool
}

// Result is everything one Resolve call produces: the flattened
// topology, the DC solution (always present), the AC solution (nil when
// no AC source exists in the netlist), the converged discrete state, and
// per-component/__network_* solve errors.
type Result struct {
	Components  []circuit.Component
	Topology    circuit.Topology
	DC          mna.DCSolution
	AC          *mna.ACSolution
	State       discrete.State
	SolveErrors map[string]string
	DebugDC     DebugInfo
	DebugAC     DebugInfo
}

// selectFrequency collects integer frequencies from
// every AC1/AC3 voltage source (default 50). Zero AC sources means no
// AC solve (return 0, nil); more than one distinct frequency fails.
func selectFrequency(components []circuit.Component) (int, error) {
	freqs := map[int]bool{}
	for _, c := range components {
		if c.Type != circuit.TypeVoltageSource {
			continue
		}
		supply := c.PropString("supplyType", "DC")
		if supply != "AC1" && supply != "AC3" {
			continue
		}
		freqs[int(c.PropFloat("frequency", 50))] = true
	}
	if len(freqs) == 0 {
		return 0, nil
	}
	if len(freqs) > 1 {
		return 0, ErrMultipleFrequencies
	}
	for f := range freqs {
		return f, nil
	}
	return 0, nil
}

func acVoltages(sol *mna.ACSolution) []numeric.Complex {
	if sol == nil {
		return nil
	}
	return sol.NodeVoltages
}

// Resolve runs the fixed-point driver: it seeds
// discrete state, then iterates topology→stamp→solve→evaluate up to
// maxIterations times, stopping early once another round would not
// change the observable contactor/timer/PLC state.
func Resolve(log zerolog.Logger, components []circuit.Component, wires []circuit.Wire, simTimeMs int64) (Result, error) {
	freqHz, err := selectFrequency(components)
	if err != nil {
		return Result{}, err
	}

	state := discrete.NewState()
	for _, c := range components {
		switch c.Type {
		case circuit.TypeContactor:
			// All-false unless the client round-tripped prior state
			// through props.
			state.ContactorStates[c.ID] = c.PropBool("energized", false)
		case circuit.TypeTimer:
			state.TimerStates[c.ID] = discrete.TimerStateFromProps(c.PropMap("timerState"))
		case circuit.TypeTimeTimer:
			active := discrete.TimeTimerOutputClosed(c.PropString("startTime", ""), c.PropString("endTime", ""), time.Now())
			state.TimerStates[c.ID] = discrete.TimerState{OutputClosed: active}
		case circuit.TypePLC:
			outputs := int(c.PropFloat("outputs", 4))
			if outputs < 1 {
				outputs = 1
			} else if outputs > 64 {
				outputs = 64
			}
			state.PLCStates[c.ID] = plc.NewState(outputs)
		}
	}

	start := time.Now()
	log = log.With().Int("components", len(components)).Logger()

	var topo circuit.Topology
	var dcSolution mna.DCSolution
	var acSolution *mna.ACSolution
	solveErrors := map[string]string{}
	var debugDC, debugAC DebugInfo

	for iteration := 0; iteration < maxIterations; iteration++ {
		topo = circuit.Flatten(components, wires)
		stampables := model.Build(components, &state)

		dcModel := &model.DCModel{NodeCount: topo.NodeCount}
		var acModel *model.ACModel
		omega := 0.0
		if freqHz > 0 {
			acModel = &model.ACModel{NodeCount: topo.NodeCount}
			omega = 2 * math.Pi * float64(freqHz)
		}
		model.StampAll(components, stampables, topo, dcModel, acModel, omega)

		dcSolution, debugDC = solveDCWithShunting(log, *dcModel, solveErrors)
		debugDC.VirtualGround = topo.VirtualGround
		for id, msg := range model.ComponentErrorsForFloating(components, topo, model.DiagnoseDC(*dcModel), "DC") {
			solveErrors[id] = msg
		}

		if acModel != nil {
			sol, dbg := solveACWithShunting(log, *acModel, solveErrors)
			dbg.VirtualGround = topo.VirtualGround
			for id, msg := range model.ComponentErrorsForFloating(components, topo, model.DiagnoseAC(*acModel), "AC") {
				solveErrors[id] = msg
			}
			acSolution = &sol
			debugAC = dbg
		} else {
			acSolution = nil
			debugAC = DebugInfo{}
		}

		next := state.Clone()
		model.EvaluateAll(components, stampables, func(compID string) *model.EvalContext {
			return &model.EvalContext{
				CompID: compID,
				Topo:   topo,
				DCV:    dcSolution.NodeVoltages,
				ACV:    acVoltages(acSolution),
				NowMs:  simTimeMs,
				State:  &next,
			}
		})

		converged := next.Equal(state)
		state = next
		log.Debug().Int("iteration", iteration).Int("nodes", topo.NodeCount).Bool("converged", converged).Dur("elapsed", time.Since(start)).Msg("fixed-point round")
		if converged {
			break
		}
	}

	return Result{
		Components:  components,
		Topology:    topo,
		DC:          dcSolution,
		AC:          acSolution,
		State:       state,
		SolveErrors: solveErrors,
		DebugDC:     debugDC,
		DebugAC:     debugAC,
	}, nil
}

// solveDCWithShunting runs the two-stage floating/singular recovery
// for one DC model: filter+shunt dead nodes, solve; on singular failure
// escalate to shunting every active node; on continued failure record
// "__network_dc" and synthesize an all-zero solution.
func solveDCWithShunting(log zerolog.Logger, dcModel model.DCModel, solveErrors map[string]string) (mna.DCSolution, DebugInfo) {
	diag := model.DiagnoseDC(dcModel)
	debug := DebugInfo{
		Nodes:    dcModel.NodeCount,
		Sources:  len(dcModel.Sources),
		Elements: len(dcModel.Elements) + len(dcModel.Sources),
		Floating: len(diag.Floating),
		Inactive: len(diag.Inactive),
		Active:   len(diag.Active),
	}

	filtered := model.FilterAndShuntDC(dcModel, diag)
	if len(filtered.Sources) == 0 {
		return mna.DCSolution{NodeVoltages: make([]float64, dcModel.NodeCount), SourceCurrents: map[string]float64{}}, debug
	}

	sol, err := mna.SolveDC(filtered)
	if err != nil {
		log.Warn().Err(err).Msg("DC model singular after first-stage shunting, escalating")
		shunted := model.ShuntAllActiveDC(filtered, diag)
		sol, err = mna.SolveDC(shunted)
		if err != nil {
			log.Error().Err(err).Msg("DC network unsolvable, synthesizing zero solution")
			solveErrors["__network_dc"] = "could not solve DC network"
			return mna.DCSolution{NodeVoltages: make([]float64, dcModel.NodeCount), SourceCurrents: map[string]float64{}}, debug
		}
	}
	return sol, debug
}

// solveACWithShunting is solveDCWithShunting's complex-field counterpart.
func solveACWithShunting(log zerolog.Logger, acModel model.ACModel, solveErrors map[string]string) (mna.ACSolution, DebugInfo) {
	diag := model.DiagnoseAC(acModel)
	debug := DebugInfo{
		Nodes:    acModel.NodeCount,
		Sources:  len(acModel.Sources),
		Elements: len(acModel.Elements) + len(acModel.Sources),
		Floating: len(diag.Floating),
		Inactive: len(diag.Inactive),
		Active:   len(diag.Active),
	}

	filtered := model.FilterAndShuntAC(acModel, diag)
	if len(filtered.Sources) == 0 {
		return mna.ACSolution{NodeVoltages: make([]numeric.Complex, acModel.NodeCount), SourceCurrents: map[string]numeric.Complex{}}, debug
	}

	sol, err := mna.SolveAC(filtered)
	if err != nil {
		log.Warn().Err(err).Msg("AC model singular after first-stage shunting, escalating")
		shunted := model.ShuntAllActiveAC(filtered, diag)
		sol, err = mna.SolveAC(shunted)
		if err != nil {
			log.Error().Err(err).Msg("AC network unsolvable, synthesizing zero solution")
			solveErrors["__network_ac"] = "could not solve AC network"
			return mna.ACSolution{NodeVoltages: make([]numeric.Complex, acModel.NodeCount), SourceCurrents: map[string]numeric.Complex{}}, debug
		}
	}
	return sol, debug
}
