package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// sw covers switch/push_button: a 0.01 Ω branch when closed, an open
// circuit (no element) otherwise.
type sw struct {
	c circuit.Component
}

func newSwitch(c circuit.Component) Stampable { return sw{c: c} }

func (s sw) TerminalCount() int { return s.c.TerminalCount() }

func (s sw) closed() bool { return s.c.PropBool("closed", false) }

func (s sw) StampDC(ctx *StampContext) {
	if s.closed() {
		ctx.ResistorDC(0, 1, ClosedSwitchResistance)
	}
}

func (s sw) StampAC(ctx *StampContext, _ float64) {
	if s.closed() {
		ctx.ImpedanceAC(0, 1, numeric.Real(ClosedSwitchResistance))
	}
}

// switchSPDT is a single-pole double-throw switch: the common terminal
// (0) connects to either the "up" (1) or "down" (2) terminal depending
// on props["position"].
type switchSPDT struct {
	c circuit.Component
}

func newSwitchSPDT(c circuit.Component) Stampable { return switchSPDT{c: c} }

func (s switchSPDT) TerminalCount() int { return s.c.TerminalCount() }

// Anything other than "up" throws to the down terminal.
func (s switchSPDT) thrownTerminal() int {
	if s.c.PropString("position", "up") != "up" {
		return 2
	}
	return 1
}

func (s switchSPDT) StampDC(ctx *StampContext) {
	ctx.ResistorDC(0, s.thrownTerminal(), ClosedSwitchResistance)
}

func (s switchSPDT) StampAC(ctx *StampContext, _ float64) {
	ctx.ImpedanceAC(0, s.thrownTerminal(), numeric.Real(ClosedSwitchResistance))
}
