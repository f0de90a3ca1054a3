package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// passive covers resistor/motor/lamp: DC resistance = AC impedance =
// props["value"] (type-defaulted).
type passive struct {
	c circuit.Component
}

func newPassive(c circuit.Component) Stampable { return passive{c: c} }

func (p passive) TerminalCount() int { return p.c.TerminalCount() }

func (p passive) value() float64 {
	return p.c.PropFloat("value", DefaultValue(p.c.Type))
}

func (p passive) StampDC(ctx *StampContext) {
	ctx.ResistorDC(0, 1, p.value())
}

func (p passive) StampAC(ctx *StampContext, _ float64) {
	ctx.ImpedanceAC(0, 1, numeric.Real(p.value()))
}
