package model

import (
	"math"

	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/discrete"
	"github.com/andersalavik/el-labb/internal/discrete/plc"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// plcComp stamps one 0.01 Ω branch from its L terminal (index 1) to
// each output terminal whose current bit is set. Its EvaluateState
// reads input-terminal voltages relative to the M terminal (index 0),
// runs the ladder interpreter, and stores the resulting plc.State.
type plcComp struct {
	c     circuit.Component
	state *discrete.State
}

func newPLC(c circuit.Component, state *discrete.State) Stampable {
	return &plcComp{c: c, state: state}
}

func (p *plcComp) TerminalCount() int { return p.c.TerminalCount() }

func (p *plcComp) inputsCount() int  { return clamp(int(p.c.PropFloat("inputs", 4)), 1, 64) }
func (p *plcComp) outputsCount() int { return clamp(int(p.c.PropFloat("outputs", 4)), 1, 64) }

func (p *plcComp) outputs() []bool {
	if p.state == nil {
		return nil
	}
	return p.state.PLCStates[p.c.ID].Outputs
}

func (p *plcComp) StampDC(ctx *StampContext) {
	outs, inputs := p.outputs(), p.inputsCount()
	for i := 0; i < p.outputsCount(); i++ {
		if i >= len(outs) || !outs[i] {
			continue
		}
		ctx.ResistorDC(1, 2+inputs+i, ClosedSwitchResistance)
	}
}

func (p *plcComp) StampAC(ctx *StampContext, _ float64) {
	outs, inputs := p.outputs(), p.inputsCount()
	for i := 0; i < p.outputsCount(); i++ {
		if i >= len(outs) || !outs[i] {
			continue
		}
		ctx.ImpedanceAC(1, 2+inputs+i, numeric.Real(ClosedSwitchResistance))
	}
}

// EvaluateState implements Stateful: builds the input-bit vector from
// the solved voltages, runs one scan of the ladder program, and records
// the resulting plc.State (outputs plus timer/counter/memory/trace
// bookkeeping).
func (p *plcComp) EvaluateState(ctx *EvalContext) {
	inputsN := p.inputsCount()
	outputsN := p.outputsCount()
	threshold := p.c.PropFloat("inputThreshold", 9)

	inputs := make([]bool, inputsN)
	for i := 0; i < inputsN; i++ {
		term := 2 + i
		var dv float64
		have := false
		if d, ok := ctx.DeltaDC(term, 0); ok {
			dv = math.Abs(d)
			have = true
		}
		if a, ok := ctx.DeltaAC(term, 0); ok {
			if v := math.Abs(a); !have || v > dv {
				dv = v
			}
			have = true
		}
		inputs[i] = have && dv+Epsilon >= threshold
	}

	program := p.c.PropString("program", "")
	language := p.c.PropString("language", "LAD")
	// Bookkeeping always steps from the props-seeded plcState, never
	// from the previous fixed-point iteration, so one scan per request
	// is idempotent: only the output bits feed back into the stamping.
	prev := plc.StateFromProps(p.c.PropMap("plcState"), outputsN)
	ctx.State.PLCStates[p.c.ID] = plc.Run(program, language, inputs, outputsN, prev, ctx.NowMs)
}
