package engine

import (
	"fmt"
	"math"

	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/andersalavik/el-labb/internal/numeric"
)

// faultTolerance and faultMinVoltage define the fault band.
const (
	faultTolerance  = 0.10
	faultMinVoltage = 0.1
)

// voltageMagnitude is the DC/AC-max delta across a component's first
// two terminals: ok is false when either terminal is unmapped, either
// voltage slice may be nil (acV is nil when no AC solve ran), and the
// larger of the two present magnitudes wins.
func voltageMagnitude(topo circuit.Topology, compID string, dcV []float64, acV []numeric.Complex) (float64, bool) {
	n1, ok1 := topo.Node(compID, 0)
	n2, ok2 := topo.Node(compID, 1)
	if !ok1 || !ok2 {
		return 0, false
	}
	var dv float64
	have := false
	if dcV != nil {
		dv = math.Abs(dcV[n1] - dcV[n2])
		have = true
	}
	if acV != nil {
		av := acV[n1].Sub(acV[n2]).Abs()
		if !have || av > dv {
			dv = av
		}
		have = true
	}
	return dv, have
}

// Report is the set of derived device states bundled into the simulate
// response.
type Report struct {
	LampLit           map[string]bool
	MotorRunning      map[string]bool
	Motor3phDirection map[string]string
	Faults            map[string]string
}

// BuildReport computes lamp-lit, motor-running, 3-phase direction and
// voltage-band faults from a resolved Result.
func BuildReport(r Result) Report {
	dcV := r.DC.NodeVoltages
	var acV []numeric.Complex
	if r.AC != nil {
		acV = r.AC.NodeVoltages
	}

	report := Report{
		LampLit:           map[string]bool{},
		MotorRunning:      map[string]bool{},
		Motor3phDirection: map[string]string{},
		Faults:            map[string]string{},
	}

	for _, c := range r.Components {
		switch c.Type {
		case circuit.TypeLamp:
			dv, ok := voltageMagnitude(r.Topology, c.ID, dcV, acV)
			if !ok {
				report.LampLit[c.ID] = false
				continue
			}
			report.LampLit[c.ID] = dv+epsilon >= c.PropFloat("threshold", 0)
		case circuit.TypeMotor:
			dv, ok := voltageMagnitude(r.Topology, c.ID, dcV, acV)
			if !ok {
				report.MotorRunning[c.ID] = false
				continue
			}
			report.MotorRunning[c.ID] = dv+epsilon >= c.PropFloat("startVoltage", 0)
		case circuit.TypeMotor3Ph:
			if acV != nil {
				report.Motor3phDirection[c.ID] = motor3phDirection(c, r.Topology, acV)
			}
		}

		if c.Type == circuit.TypeLamp || c.Type == circuit.TypeContactor {
			if fault, ok := faultFor(c, r.Topology, dcV, acV); ok {
				report.Faults[c.ID] = fault
			}
		}
	}
	return report
}

const epsilon = 1e-2

func faultFor(c circuit.Component, topo circuit.Topology, dcV []float64, acV []numeric.Complex) (string, bool) {
	dv, ok := voltageMagnitude(topo, c.ID, dcV, acV)
	if !ok || dv < faultMinVoltage {
		return "", false
	}
	var rated float64
	var label string
	switch c.Type {
	case circuit.TypeLamp:
		rated = c.PropFloat("ratedVoltage", c.PropFloat("threshold", 0))
		label = "Lamp wrong voltage"
	case circuit.TypeContactor:
		rated = c.PropFloat("coilRatedVoltage", c.PropFloat("pullInVoltage", 0))
		label = "Contactor wrong voltage"
	default:
		return "", false
	}
	if rated == 0 {
		return "", false
	}
	low := rated * (1 - faultTolerance)
	high := rated * (1 + faultTolerance)
	if dv < low || dv > high {
		return fmt.Sprintf("%s (%.2f V / %.0f V)", label, dv, rated), true
	}
	return "", false
}

func phaseAngle(z numeric.Complex) float64 { return z.AngleDegrees() }

func normalizeAngle(angle float64) float64 {
	for angle <= -180 {
		angle += 360
	}
	for angle > 180 {
		angle -= 360
	}
	return angle
}

// motor3phDirection derives the rotation sense from the order of the
// three line phase angles.
func motor3phDirection(c circuit.Component, topo circuit.Topology, acV []numeric.Complex) string {
	n1, ok1 := topo.Node(c.ID, 0)
	n2, ok2 := topo.Node(c.ID, 1)
	n3, ok3 := topo.Node(c.ID, 2)
	if !ok1 || !ok2 || !ok3 {
		return "stopped"
	}
	v1, v2, v3 := acV[n1], acV[n2], acV[n3]
	v12 := v1.Sub(v2).Abs()
	v23 := v2.Sub(v3).Abs()
	v31 := v3.Sub(v1).Abs()
	vLL := (v12 + v23 + v31) / 3.0

	threshold := c.PropFloat("startVoltage", 0)
	if vLL+epsilon < threshold {
		return "stopped"
	}

	d12 := normalizeAngle(phaseAngle(v2) - phaseAngle(v1))
	d13 := normalizeAngle(phaseAngle(v3) - phaseAngle(v1))
	if d12 < 0 && d13 > 0 {
		return "cw"
	}
	if d12 > 0 && d13 < 0 {
		return "ccw"
	}
	return "cw"
}
