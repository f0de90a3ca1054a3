package engine

import (
	"errors"
	"math"

	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/model"
	"github.com/andersalavik/el-labb/internal/numeric"
	"github.com/rs/zerolog"
)

// Errors returned by Measure, mapped by callers to Validation/Numerical
// error kinds.
var (
	ErrMissingProbe     = errors.New("engine: missing probe reference")
	ErrMissingComponent = errors.New("engine: missing component")
	ErrUnknownMode      = errors.New("engine: unknown measure mode")
	ErrNoACSolution     = errors.New("engine: no AC solution available")
)

// Ref is one probe terminal reference (aRef/bRef, or the implicit
// terminals 0/1 of componentId).
type Ref struct {
	CompID string
	Index  int
}

// MeasureRequest is the decoded solve-and-derive request: a measurement
// mode plus whichever probe references that mode needs.
type MeasureRequest struct {
	Mode        string
	ARef        *Ref
	BRef        *Ref
	ComponentID string
}

func nodeVoltage(topo circuit.Topology, dcV []float64, ref Ref) (float64, bool) {
	n, ok := topo.Node(ref.CompID, ref.Index)
	if !ok || n >= len(dcV) {
		return 0, false
	}
	return dcV[n], true
}

func nodeVoltageAC(topo circuit.Topology, acV []numeric.Complex, ref Ref) (numeric.Complex, bool) {
	n, ok := topo.Node(ref.CompID, ref.Index)
	if !ok || n >= len(acV) {
		return numeric.Complex{}, false
	}
	return acV[n], true
}

func findComponent(components []circuit.Component, id string) (circuit.Component, bool) {
	for _, c := range components {
		if c.ID == id {
			return c, true
		}
	}
	return circuit.Component{}, false
}

// Measure resolves the network (via Resolve) and derives the requested
// measurement using the per-type impedance table below.
func Measure(log zerolog.Logger, components []circuit.Component, wires []circuit.Wire, simTimeMs int64, req MeasureRequest) (*float64, error) {
	result, err := Resolve(log, components, wires, simTimeMs)
	if err != nil {
		return nil, err
	}

	dcV := result.DC.NodeVoltages
	var acV []numeric.Complex
	if result.AC != nil {
		acV = result.AC.NodeVoltages
	}

	switch req.Mode {
	case "voltage":
		return measureVoltage(result.Topology, dcV, req)
	case "ac_voltage":
		return measureACVoltage(result.Topology, acV, req)
	case "ac_phase":
		return measureACPhase(result.Topology, acV, req)
	case "current":
		return measureCurrent(result.Topology, result.Components, dcV, req)
	case "ac_current":
		return measureACCurrent(result.Topology, result.Components, acV, req)
	case "ac_power_p", "ac_power_q", "ac_power_s", "ac_pf":
		return measureACPower(result.Topology, result.Components, acV, req)
	case "resistance":
		return measureResistance(log, result, req)
	default:
		return nil, ErrUnknownMode
	}
}

func measureVoltage(topo circuit.Topology, dcV []float64, req MeasureRequest) (*float64, error) {
	if req.ARef == nil || req.BRef == nil {
		return nil, ErrMissingProbe
	}
	va, ok1 := nodeVoltage(topo, dcV, *req.ARef)
	vb, ok2 := nodeVoltage(topo, dcV, *req.BRef)
	if !ok1 || !ok2 {
		return nil, ErrMissingProbe
	}
	v := va - vb
	return &v, nil
}

func measureACVoltage(topo circuit.Topology, acV []numeric.Complex, req MeasureRequest) (*float64, error) {
	if req.ARef == nil || req.BRef == nil {
		return nil, ErrMissingProbe
	}
	if acV == nil {
		return nil, ErrNoACSolution
	}
	va, ok1 := nodeVoltageAC(topo, acV, *req.ARef)
	vb, ok2 := nodeVoltageAC(topo, acV, *req.BRef)
	if !ok1 || !ok2 {
		return nil, ErrMissingProbe
	}
	v := va.Sub(vb).Abs()
	return &v, nil
}

func measureACPhase(topo circuit.Topology, acV []numeric.Complex, req MeasureRequest) (*float64, error) {
	if req.ARef == nil || req.BRef == nil {
		return nil, ErrMissingProbe
	}
	if acV == nil {
		return nil, ErrNoACSolution
	}
	va, ok1 := nodeVoltageAC(topo, acV, *req.ARef)
	vb, ok2 := nodeVoltageAC(topo, acV, *req.BRef)
	if !ok1 || !ok2 {
		return nil, ErrMissingProbe
	}
	angle := va.Sub(vb).AngleDegrees()
	return &angle, nil
}

func measureCurrent(topo circuit.Topology, components []circuit.Component, dcV []float64, req MeasureRequest) (*float64, error) {
	comp, ok := findComponent(components, req.ComponentID)
	if !ok {
		return nil, ErrMissingComponent
	}
	n1, ok1 := topo.Node(comp.ID, 0)
	n2, ok2 := topo.Node(comp.ID, 1)
	if !ok1 || !ok2 {
		return nil, nil
	}
	v := dcV[n1] - dcV[n2]

	switch comp.Type {
	case circuit.TypeVoltageSource:
		return nil, nil
	case circuit.TypeResistor, circuit.TypeMotor:
		i := v / comp.PropFloat("value", model.DefaultValue(comp.Type))
		return &i, nil
	case circuit.TypeLamp:
		i := v / comp.PropFloat("value", model.DefaultValue(circuit.TypeLamp))
		return &i, nil
	case circuit.TypeSwitch:
		if !comp.PropBool("closed", false) {
			zero := 0.0
			return &zero, nil
		}
		i := v / model.ClosedSwitchResistance
		return &i, nil
	case circuit.TypeInductor:
		i := v / model.InductorDCResistance
		return &i, nil
	case circuit.TypeContactor:
		i := v / comp.PropFloat("coilResistance", model.CoilResistance)
		return &i, nil
	default:
		return nil, nil
	}
}

// acImpedance returns the per-type AC impedance used to derive current
// and power for `ac_current`/`ac_power_*`/`ac_pf` modes.
// includeSPDT is true for ac_current (which prices switch_spdt at its
// closed-switch resistance) and false for the ac_power_* modes (whose
// table omits switch_spdt, falling through to null).
func acImpedance(comp circuit.Component, omega float64, includeSPDT bool) (numeric.Complex, bool) {
	switch comp.Type {
	case circuit.TypeResistor, circuit.TypeMotor, circuit.TypeLamp:
		return numeric.Real(comp.PropFloat("value", model.DefaultValue(comp.Type))), true
	case circuit.TypeContactor, circuit.TypeTimer:
		return numeric.Real(comp.PropFloat("coilResistance", model.CoilResistance)), true
	case circuit.TypeInductor:
		l := math.Max(comp.PropFloat("value", 0), 1e-12)
		return numeric.Complex{Re: 0, Im: omega * l}, true
	case circuit.TypeCapacitor:
		c := math.Max(comp.PropFloat("value", 0), 1e-12)
		return numeric.Complex{Re: 0, Im: -1 / (omega * c)}, true
	case circuit.TypeSwitch, circuit.TypePushButton:
		if !comp.PropBool("closed", false) {
			return numeric.Complex{}, false
		}
		return numeric.Real(model.ClosedSwitchResistance), true
	case circuit.TypeSwitchSPDT:
		if !includeSPDT {
			return numeric.Complex{}, false
		}
		return numeric.Real(model.ClosedSwitchResistance), true
	default:
		return numeric.Complex{}, false
	}
}

func acFrequencyOmega(components []circuit.Component) float64 {
	freq, err := selectFrequency(components)
	if err != nil || freq == 0 {
		freq = 50
	}
	return 2 * math.Pi * float64(freq)
}

func motor3phLineCurrent(comp circuit.Component, topo circuit.Topology, acV []numeric.Complex) (*float64, error) {
	n1, ok1 := topo.Node(comp.ID, 0)
	n2, ok2 := topo.Node(comp.ID, 1)
	n3, ok3 := topo.Node(comp.ID, 2)
	if !ok1 || !ok2 || !ok3 {
		return nil, nil
	}
	z := numeric.Real(comp.PropFloat("value", model.DefaultValue(circuit.TypeMotor3Ph)))
	v12 := acV[n1].Sub(acV[n2]).Abs()
	v23 := acV[n2].Sub(acV[n3]).Abs()
	v31 := acV[n3].Sub(acV[n1]).Abs()
	vLL := (v12 + v23 + v31) / 3.0
	if comp.PropString("connection", "Y") == "Y" {
		vPhase := vLL / math.Sqrt(3)
		i := numeric.Real(vPhase).Div(z).Abs()
		return &i, nil
	}
	i := numeric.Real(vLL).Div(z).Abs() * math.Sqrt(3)
	return &i, nil
}

func measureACCurrent(topo circuit.Topology, components []circuit.Component, acV []numeric.Complex, req MeasureRequest) (*float64, error) {
	comp, ok := findComponent(components, req.ComponentID)
	if !ok {
		return nil, ErrMissingComponent
	}
	if acV == nil {
		return nil, ErrNoACSolution
	}
	n1, ok1 := topo.Node(comp.ID, 0)
	n2, ok2 := topo.Node(comp.ID, 1)
	if !ok1 || !ok2 {
		return nil, nil
	}
	if comp.Type == circuit.TypeMotor3Ph {
		return motor3phLineCurrent(comp, topo, acV)
	}
	if comp.Type == circuit.TypeTimeTimer {
		return nil, nil
	}
	v := acV[n1].Sub(acV[n2])
	if comp.Type == circuit.TypeSwitch || comp.Type == circuit.TypePushButton {
		if !comp.PropBool("closed", false) {
			zero := 0.0
			return &zero, nil
		}
	}
	omega := acFrequencyOmega(components)
	z, ok := acImpedance(comp, omega, true)
	if !ok {
		return nil, nil
	}
	i := v.Div(z).Abs()
	return &i, nil
}

func measureACPower(topo circuit.Topology, components []circuit.Component, acV []numeric.Complex, req MeasureRequest) (*float64, error) {
	comp, ok := findComponent(components, req.ComponentID)
	if !ok {
		return nil, ErrMissingComponent
	}
	if acV == nil {
		return nil, ErrNoACSolution
	}
	n1, ok1 := topo.Node(comp.ID, 0)
	n2, ok2 := topo.Node(comp.ID, 1)
	if !ok1 || !ok2 {
		return nil, nil
	}
	v := acV[n1].Sub(acV[n2])
	omega := acFrequencyOmega(components)

	var s numeric.Complex
	switch comp.Type {
	case circuit.TypeMotor3Ph:
		n3, ok3 := topo.Node(comp.ID, 2)
		if !ok3 {
			return nil, nil
		}
		z := numeric.Real(comp.PropFloat("value", model.DefaultValue(circuit.TypeMotor3Ph)))
		v12 := acV[n1].Sub(acV[n2]).Abs()
		v23 := acV[n2].Sub(acV[n3]).Abs()
		v31 := acV[n3].Sub(acV[n1]).Abs()
		vLL := (v12 + v23 + v31) / 3.0
		var phase numeric.Complex
		if comp.PropString("connection", "Y") == "Y" {
			vPhase := numeric.Real(vLL / math.Sqrt(3))
			iPhase := vPhase.Div(z)
			phase = vPhase.Mul(iPhase.Conjugate())
		} else {
			vLine := numeric.Real(vLL)
			iPhase := vLine.Div(z)
			phase = vLine.Mul(iPhase.Conjugate())
		}
		s = numeric.Complex{Re: phase.Re * 3, Im: phase.Im * 3}
	case circuit.TypeTimeTimer:
		return nil, nil
	default:
		if comp.Type == circuit.TypeSwitch || comp.Type == circuit.TypePushButton {
			if !comp.PropBool("closed", false) {
				zero := 0.0
				return &zero, nil
			}
		}
		z, ok := acImpedance(comp, omega, false)
		if !ok {
			return nil, nil
		}
		current := v.Div(z)
		s = v.Mul(current.Conjugate())
	}

	switch req.Mode {
	case "ac_power_p":
		return &s.Re, nil
	case "ac_power_q":
		return &s.Im, nil
	case "ac_power_s":
		mag := s.Abs()
		return &mag, nil
	case "ac_pf":
		mag := s.Abs()
		if mag == 0 {
			return nil, nil
		}
		pf := s.Re / mag
		return &pf, nil
	}
	return nil, ErrUnknownMode
}

// measureResistance re-solves a derived DC network (every source
// zeroed, a 1 V test voltage source between the two probe terminals) and
// derives R = 1/|i_test|.
func measureResistance(log zerolog.Logger, result Result, req MeasureRequest) (*float64, error) {
	if req.ARef == nil || req.BRef == nil {
		return nil, ErrMissingProbe
	}
	aNode, ok1 := result.Topology.Node(req.ARef.CompID, req.ARef.Index)
	bNode, ok2 := result.Topology.Node(req.BRef.CompID, req.BRef.Index)
	if !ok1 || !ok2 {
		return nil, ErrMissingProbe
	}

	components := result.Components
	state := &result.State
	dcModel := &model.DCModel{NodeCount: result.Topology.NodeCount}
	stampables := model.Build(components, state)
	model.StampAll(components, stampables, result.Topology, dcModel, nil, 0)

	zeroed := model.DCModel{NodeCount: dcModel.NodeCount, Elements: dcModel.Elements}
	for _, s := range dcModel.Sources {
		zeroed.Sources = append(zeroed.Sources, model.DCSource{ID: s.ID, N1: s.N1, N2: s.N2, V: 0})
	}
	zeroed.Sources = append(zeroed.Sources, model.DCSource{ID: "test", N1: aNode, N2: bNode, V: 1})

	solveErrors := map[string]string{}
	sol, _ := solveDCWithShunting(log, zeroed, solveErrors)

	current, ok := sol.SourceCurrents["test"]
	if !ok || math.Abs(current) < 1e-9 {
		return nil, nil
	}
	r := 1 / math.Abs(current)
	return &r, nil
}
