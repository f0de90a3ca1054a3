package model

import (
	"math"

	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// voltageSource covers DC, AC1, AC3-Delta, and AC3-Y supplies. Terminal
// layout: DC/AC1 use 0/1; AC3-Delta uses 0/1/2 (L1/L2/L3); AC3-Y uses
// 0/1/2/3 (L1/L2/L3/neutral).
type voltageSource struct {
	c circuit.Component
}

func newVoltageSource(c circuit.Component) Stampable { return voltageSource{c: c} }

func (v voltageSource) TerminalCount() int { return v.c.TerminalCount() }

func (v voltageSource) supplyType() string { return v.c.PropString("supplyType", "DC") }

func (v voltageSource) StampDC(ctx *StampContext) {
	if v.supplyType() != "DC" {
		return
	}
	ctx.SourceDC(v.c.ID, 0, 1, v.c.PropFloat("value", 0))
}

func (v voltageSource) StampAC(ctx *StampContext, _ float64) {
	switch v.supplyType() {
	case "DC":
		return
	case "AC1":
		ctx.SourceAC(v.c.ID, 0, 1, numeric.Real(v.c.PropFloat("value", 0)))
	case "AC3":
		vLL := v.c.PropFloat("value", 400)
		if v.c.PropString("connection", "Y") == "Delta" {
			ctx.SourceAC(v.c.ID+"_L1L2", 0, 1, numeric.FromPolar(vLL, 0))
			ctx.SourceAC(v.c.ID+"_L2L3", 1, 2, numeric.FromPolar(vLL, -120))
			ctx.SourceAC(v.c.ID+"_L3L1", 2, 0, numeric.FromPolar(vLL, 120))
			return
		}
		vPhase := vLL / math.Sqrt(3)
		ctx.SourceAC(v.c.ID+"_L1", 3, 0, numeric.FromPolar(vPhase, 0))
		ctx.SourceAC(v.c.ID+"_L2", 3, 1, numeric.FromPolar(vPhase, -120))
		ctx.SourceAC(v.c.ID+"_L3", 3, 2, numeric.FromPolar(vPhase, 120))
	}
}
