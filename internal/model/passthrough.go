package model

import "github.com/andersalavik/el-labb/internal/circuit"

// passthrough covers node/ground: pure topology markers with no
// electrical contribution of their own.
type passthrough struct {
	c circuit.Component
}

func newPassthrough(c circuit.Component) Stampable { return passthrough{c: c} }

func (p passthrough) TerminalCount() int               { return p.c.TerminalCount() }
func (p passthrough) StampDC(ctx *StampContext)        {}
func (p passthrough) StampAC(ctx *StampContext, _ float64) {}
