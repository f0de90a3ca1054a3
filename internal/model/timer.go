package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/discrete"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// timer stamps a coil resistor at (0,1) and one output contact
// (common=2, NO=3, NC=4) selected by the current outputClosed flag.
// EvaluateState re-derives that flag from the coil's pull-in rule and
// the TON/TOF/TP-like state machine in internal/discrete.
type timer struct {
	c     circuit.Component
	state *discrete.State
}

func newTimer(c circuit.Component, state *discrete.State) Stampable {
	return &timer{c: c, state: state}
}

func (t *timer) TerminalCount() int { return t.c.TerminalCount() }

func (t *timer) coilResistance() float64 { return t.c.PropFloat("coilResistance", CoilResistance) }

func (t *timer) outputClosed() bool {
	if t.state == nil {
		return false
	}
	return t.state.TimerStates[t.c.ID].OutputClosed
}

func (t *timer) contactTarget() int {
	if t.outputClosed() {
		return 3
	}
	return 4
}

func (t *timer) StampDC(ctx *StampContext) {
	ctx.ResistorDC(0, 1, t.coilResistance())
	ctx.ResistorDC(2, t.contactTarget(), ClosedSwitchResistance)
}

func (t *timer) StampAC(ctx *StampContext, _ float64) {
	ctx.ImpedanceAC(0, 1, numeric.Real(t.coilResistance()))
	ctx.ImpedanceAC(2, t.contactTarget(), numeric.Real(ClosedSwitchResistance))
}

func (t *timer) pullInVoltage() float64 { return t.c.PropFloat("pullInVoltage", 0) }

func (t *timer) delayMs() int64 {
	v := int64(t.c.PropFloat("delayMs", 1000))
	if v < 0 {
		v = 0
	}
	return v
}

func (t *timer) loop() bool          { return t.c.PropBool("loop", false) }
func (t *timer) initialClosed() bool { return t.c.PropBool("initialClosed", false) }

// EvaluateState implements Stateful: the coil pull-in test over (0,1)
// drives discrete.StepTimer's state machine. prev always comes from the
// props-seeded timerState, never from the previous fixed-point
// iteration's output, so the step is idempotent within one request.
func (t *timer) EvaluateState(ctx *EvalContext) {
	var dcPtr, acPtr *float64
	if dv, ok := ctx.DeltaDC(0, 1); ok {
		dcPtr = &dv
	}
	if av, ok := ctx.DeltaAC(0, 1); ok {
		acPtr = &av
	}
	energized := discrete.ContactorEnergized(dcPtr, acPtr, t.pullInVoltage())
	prev := discrete.TimerStateFromProps(t.c.PropMap("timerState"))
	ctx.State.TimerStates[t.c.ID] = discrete.StepTimer(prev, energized, t.delayMs(), t.loop(), t.initialClosed(), ctx.NowMs)
}
