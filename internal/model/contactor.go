package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/discrete"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// contactor stamps a coil resistor at terminals (0,1) plus one contact
// branch per pole, whose open/closed state depends on the current
// energized flag in discrete.State. EvaluateState recomputes that flag
// from the solved coil voltage for the next iteration.
type contactor struct {
	c     circuit.Component
	state *discrete.State
}

func newContactor(c circuit.Component, state *discrete.State) Stampable {
	return &contactor{c: c, state: state}
}

func (k *contactor) TerminalCount() int { return k.c.TerminalCount() }

func (k *contactor) coilResistance() float64 {
	return k.c.PropFloat("coilResistance", CoilResistance)
}

func (k *contactor) poles() []string {
	return k.c.PropStringSlice("poles", []string{"NO"})
}

func (k *contactor) energized() bool {
	if k.state == nil {
		return false
	}
	return k.state.ContactorStates[k.c.ID]
}

func (k *contactor) changeover() bool {
	return k.c.PropString("contactType", "standard") == "changeover"
}

func (k *contactor) StampDC(ctx *StampContext) {
	ctx.ResistorDC(0, 1, k.coilResistance())
	energized := k.energized()
	poles := k.poles()
	if k.changeover() {
		for idx := range poles {
			common := 2 + idx*3
			no := 3 + idx*3
			nc := 4 + idx*3
			target := nc
			if energized {
				target = no
			}
			ctx.ResistorDC(common, target, ClosedSwitchResistance)
		}
		return
	}
	for idx, pole := range poles {
		closed := pole == "NO"
		if !energized {
			closed = pole == "NC"
		}
		if !closed {
			continue
		}
		ctx.ResistorDC(2+idx*2, 3+idx*2, ClosedSwitchResistance)
	}
}

func (k *contactor) StampAC(ctx *StampContext, _ float64) {
	ctx.ImpedanceAC(0, 1, numeric.Real(k.coilResistance()))
	energized := k.energized()
	poles := k.poles()
	if k.changeover() {
		for idx := range poles {
			common := 2 + idx*3
			no := 3 + idx*3
			nc := 4 + idx*3
			target := nc
			if energized {
				target = no
			}
			ctx.ImpedanceAC(common, target, numeric.Real(ClosedSwitchResistance))
		}
		return
	}
	for idx, pole := range poles {
		closed := pole == "NO"
		if !energized {
			closed = pole == "NC"
		}
		if !closed {
			continue
		}
		ctx.ImpedanceAC(2+idx*2, 3+idx*2, numeric.Real(ClosedSwitchResistance))
	}
}

func (k *contactor) pullInVoltage() float64 {
	return k.c.PropFloat("pullInVoltage", 0)
}

// EvaluateState implements Stateful: the pull-in rule over the coil
// terminals (0,1).
func (k *contactor) EvaluateState(ctx *EvalContext) {
	var dcPtr, acPtr *float64
	if dv, ok := ctx.DeltaDC(0, 1); ok {
		dcPtr = &dv
	}
	if av, ok := ctx.DeltaAC(0, 1); ok {
		acPtr = &av
	}
	ctx.State.ContactorStates[k.c.ID] = discrete.ContactorEnergized(dcPtr, acPtr, k.pullInVoltage())
}
