// Package model turns flattened topology + component props + current
// discrete state into the DC and AC linear models the MNA assembler
// solves. Each component type registers a Stampable constructor;
// StampContext is the narrow surface a stamper uses to read its own
// terminal nodes and contribute elements/sources.
package model

import (
	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// Fixed electrical constants shared across component stampers.
const (
	ClosedSwitchResistance = 0.01
	CoilResistance         = 120.0
	InductorDCResistance   = 0.01
	FaultMinVoltage        = 0.1
	Epsilon                = 1e-2
)

// DCElement is a resistor-like branch: resistance R>0 between n1,n2.
type DCElement struct {
	N1, N2 int
	R      float64
}

// DCSource is an ideal DC voltage source between n1,n2.
type DCSource struct {
	ID     string
	N1, N2 int
	V      float64
}

// DCModel is the full set of resistors and sources handed to the MNA
// assembler, plus the node count the topology produced (not counting
// any internal nodes a stamper may have allocated — there are none in
// the DC path, since motor_3ph contributes no DC stamp at all).
type DCModel struct {
	Elements  []DCElement
	Sources   []DCSource
	NodeCount int
}

// ACElement is a complex impedance between n1,n2.
type ACElement struct {
	N1, N2 int
	Z      numeric.Complex
}

// ACSource is a phasor voltage source between n1,n2.
type ACSource struct {
	ID     string
	N1, N2 int
	V      numeric.Complex
}

// ACModel mirrors DCModel over the complex field. NodeCount may exceed
// the topology's node count when a stamper (motor_3ph Y) allocated an
// internal neutral node.
type ACModel struct {
	Elements  []ACElement
	Sources   []ACSource
	NodeCount int
}

// StampContext is passed to one component's StampDC/StampAC call. It
// resolves that component's own terminals to topology nodes and
// accumulates elements/sources into the shared DC or AC model being
// built.
type StampContext struct {
	compID   string
	topo     circuit.Topology
	dc       *DCModel
	ac       *ACModel
	nextNode *int
}

// Node resolves one of the owning component's terminals to a node
// index. ok is false when the terminal was never wired.
func (ctx *StampContext) Node(terminal int) (int, bool) {
	return ctx.topo.Node(ctx.compID, terminal)
}

// NewInternalNode allocates a fresh node index beyond the topology's own
// node set — used by motor_3ph's Y connection to create an internal
// neutral (AC only).
func (ctx *StampContext) NewInternalNode() int {
	n := *ctx.nextNode
	*ctx.nextNode++
	return n
}

// ResistorDC adds a resistor between two of this component's terminals.
// Silently skipped if either terminal is unmapped.
func (ctx *StampContext) ResistorDC(t1, t2 int, r float64) {
	n1, ok1 := ctx.Node(t1)
	n2, ok2 := ctx.Node(t2)
	if !ok1 || !ok2 || ctx.dc == nil {
		return
	}
	ctx.dc.Elements = append(ctx.dc.Elements, DCElement{N1: n1, N2: n2, R: r})
}

// SourceDC adds an ideal DC source between two of this component's
// terminals.
func (ctx *StampContext) SourceDC(id string, t1, t2 int, v float64) {
	n1, ok1 := ctx.Node(t1)
	n2, ok2 := ctx.Node(t2)
	if !ok1 || !ok2 || ctx.dc == nil {
		return
	}
	ctx.dc.Sources = append(ctx.dc.Sources, DCSource{ID: id, N1: n1, N2: n2, V: v})
}

// ImpedanceAC adds a complex impedance between two of this component's
// terminals.
func (ctx *StampContext) ImpedanceAC(t1, t2 int, z numeric.Complex) {
	n1, ok1 := ctx.Node(t1)
	n2, ok2 := ctx.Node(t2)
	if !ok1 || !ok2 || ctx.ac == nil {
		return
	}
	ctx.ac.Elements = append(ctx.ac.Elements, ACElement{N1: n1, N2: n2, Z: z})
}

// ImpedanceACNode adds a complex impedance between one of this
// component's terminals and a raw node index (used for Y-connection
// internal neutrals).
func (ctx *StampContext) ImpedanceACNode(t1 int, rawNode int, z numeric.Complex) {
	n1, ok1 := ctx.Node(t1)
	if !ok1 || ctx.ac == nil {
		return
	}
	ctx.ac.Elements = append(ctx.ac.Elements, ACElement{N1: n1, N2: rawNode, Z: z})
}

// SourceAC adds a phasor voltage source between two of this component's
// terminals.
func (ctx *StampContext) SourceAC(id string, t1, t2 int, v numeric.Complex) {
	n1, ok1 := ctx.Node(t1)
	n2, ok2 := ctx.Node(t2)
	if !ok1 || !ok2 || ctx.ac == nil {
		return
	}
	ctx.ac.Sources = append(ctx.ac.Sources, ACSource{ID: id, N1: n1, N2: n2, V: v})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DefaultValue returns the per-type numeric default for props["value"].
func DefaultValue(t circuit.Type) float64 {
	switch t {
	case circuit.TypeResistor:
		return 1
	case circuit.TypeMotor:
		return 10
	case circuit.TypeMotor3Ph:
		return 12
	case circuit.TypeLamp:
		return 80
	default:
		return 0
	}
}
