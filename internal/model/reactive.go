package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// inductor acts as a near-wire (0.01 Ω) in DC and as jωL in AC. L is
// floored at 1e-12 H to keep ωL off zero.
type inductor struct {
	c circuit.Component
}

func newInductor(c circuit.Component) Stampable { return inductor{c: c} }

func (i inductor) TerminalCount() int { return i.c.TerminalCount() }

func (i inductor) inductance() float64 {
	l := i.c.PropFloat("value", 0)
	if l < 1e-12 {
		l = 1e-12
	}
	return l
}

func (i inductor) StampDC(ctx *StampContext) {
	ctx.ResistorDC(0, 1, InductorDCResistance)
}

func (i inductor) StampAC(ctx *StampContext, omega float64) {
	ctx.ImpedanceAC(0, 1, numeric.Complex{Re: 0, Im: omega * i.inductance()})
}

// capacitor is open in DC (no stamp) and −j/(ωC) in AC.
type capacitor struct {
	c circuit.Component
}

func newCapacitor(c circuit.Component) Stampable { return capacitor{c: c} }

func (c capacitor) TerminalCount() int { return c.c.TerminalCount() }

func (c capacitor) capacitance() float64 {
	val := c.c.PropFloat("value", 0)
	if val < 1e-12 {
		val = 1e-12
	}
	return val
}

func (c capacitor) StampDC(ctx *StampContext) {}

func (c capacitor) StampAC(ctx *StampContext, omega float64) {
	if omega <= 0 {
		return
	}
	x := -1 / (omega * c.capacitance())
	ctx.ImpedanceAC(0, 1, numeric.Complex{Re: 0, Im: x})
}
