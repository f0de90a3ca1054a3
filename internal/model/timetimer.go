package model

import (
	"time"

	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/discrete"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// timeTimer has no coil; its single output contact (common=0, NO=1,
// NC=2) is driven entirely by a wall-clock HH:MM schedule — it does not
// consult simTime, reading real local time rather than the request's
// simulated clock.
type timeTimer struct {
	c     circuit.Component
	state *discrete.State
}

func newTimeTimer(c circuit.Component, state *discrete.State) Stampable {
	return &timeTimer{c: c, state: state}
}

func (t *timeTimer) TerminalCount() int { return t.c.TerminalCount() }

func (t *timeTimer) outputClosed() bool {
	if t.state == nil {
		return false
	}
	return t.state.TimerStates[t.c.ID].OutputClosed
}

func (t *timeTimer) contactTarget() int {
	if t.outputClosed() {
		return 1
	}
	return 2
}

func (t *timeTimer) StampDC(ctx *StampContext) {
	ctx.ResistorDC(0, t.contactTarget(), ClosedSwitchResistance)
}

func (t *timeTimer) StampAC(ctx *StampContext, _ float64) {
	ctx.ImpedanceAC(0, t.contactTarget(), numeric.Real(ClosedSwitchResistance))
}

// EvaluateState implements Stateful: active iff the current local
// minute-of-day falls inside [startTime,endTime).
func (t *timeTimer) EvaluateState(ctx *EvalContext) {
	active := discrete.TimeTimerOutputClosed(t.c.PropString("startTime", ""), t.c.PropString("endTime", ""), time.Now())
	ctx.State.TimerStates[t.c.ID] = discrete.TimerState{OutputClosed: active}
}
