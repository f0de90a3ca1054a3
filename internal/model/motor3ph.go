package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// motor3ph is AC-only: it contributes no DC stamp at all, so its DC
// behavior is undefined/absent by design. Y allocates an internal
// neutral node and stamps one impedance per line-to-neutral; Delta
// stamps one impedance per line-to-line pair.
type motor3ph struct {
	c circuit.Component
}

func newMotor3Ph(c circuit.Component) Stampable { return motor3ph{c: c} }

func (m motor3ph) TerminalCount() int { return m.c.TerminalCount() }

func (m motor3ph) impedance() numeric.Complex {
	return numeric.Real(m.c.PropFloat("value", DefaultValue(circuit.TypeMotor3Ph)))
}

func (m motor3ph) StampDC(ctx *StampContext) {}

func (m motor3ph) StampAC(ctx *StampContext, _ float64) {
	// All three line terminals must be wired; a partially connected
	// motor contributes nothing.
	for t := 0; t < 3; t++ {
		if _, ok := ctx.Node(t); !ok {
			return
		}
	}
	z := m.impedance()
	if m.c.PropString("connection", "Y") == "Delta" {
		ctx.ImpedanceAC(0, 1, z)
		ctx.ImpedanceAC(1, 2, z)
		ctx.ImpedanceAC(2, 0, z)
		return
	}
	neutral := ctx.NewInternalNode()
	ctx.ImpedanceACNode(0, neutral, z)
	ctx.ImpedanceACNode(1, neutral, z)
	ctx.ImpedanceACNode(2, neutral, z)
}
