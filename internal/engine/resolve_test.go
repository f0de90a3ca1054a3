package engine

import (
	"testing"

	"github.com/andersalavik/el-labb/internal/circuit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func silentLogger() zerolog.Logger {
	return zerolog.Nop()
}

// Single resistor loop. Ground is pinned at V:1 (an explicit ground
// component) so node(V:0) is the solved, non-reference node. The MNA
// source row stamps +1 at n1's KCL row and -1 at n2's, so the source's
// own internal branch current comes out negative for a source actively
// delivering power into its load; Ohm's law on the resistor itself
// (measureCurrent's v/r, not the MNA branch unknown) gives the unsigned
// load current.
func TestResolveSingleResistorLoop(t *testing.T) {
	comps := []circuit.Component{
		{ID: "V", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "DC", "value": 24.0}},
		{ID: "R", Type: circuit.TypeResistor, Props: map[string]any{"value": 48.0}},
		{ID: "G", Type: circuit.TypeGround},
	}
	wires := []circuit.Wire{
		{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "R", Index: 0}},
		{From: circuit.Terminal{CompID: "V", Index: 1}, To: circuit.Terminal{CompID: "R", Index: 1}},
		{From: circuit.Terminal{CompID: "G", Index: 0}, To: circuit.Terminal{CompID: "V", Index: 1}},
	}
	res, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)

	node, ok := res.Topology.Node("V", 0)
	require.True(t, ok)
	require.InDelta(t, 24.0, res.DC.NodeVoltages[node], 1e-6)
	require.InDelta(t, -0.5, res.DC.SourceCurrents["V"], 1e-6)

	i, err := Measure(silentLogger(), comps, wires, 0, MeasureRequest{Mode: "current", ComponentID: "R"})
	require.NoError(t, err)
	require.NotNil(t, i)
	require.InDelta(t, 0.5, *i, 1e-6)
}

// Scenario 2: lamp threshold and fault.
func TestResolveLampThresholdAndFault(t *testing.T) {
	base := func(sourceV float64) ([]circuit.Component, []circuit.Wire) {
		comps := []circuit.Component{
			{ID: "V", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "DC", "value": sourceV}},
			{ID: "L", Type: circuit.TypeLamp, Props: map[string]any{"value": 80.0, "threshold": 6.0}},
		}
		wires := []circuit.Wire{
			{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "L", Index: 0}},
			{From: circuit.Terminal{CompID: "V", Index: 1}, To: circuit.Terminal{CompID: "L", Index: 1}},
		}
		return comps, wires
	}

	comps, wires := base(12)
	res, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	report := BuildReport(res)
	require.True(t, report.LampLit["L"])

	comps, wires = base(5)
	res, err = Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	report = BuildReport(res)
	require.False(t, report.LampLit["L"])

	comps = []circuit.Component{
		{ID: "V", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "DC", "value": 12.0}},
		{ID: "S", Type: circuit.TypeResistor, Props: map[string]any{"value": 20.0}},
		{ID: "L", Type: circuit.TypeLamp, Props: map[string]any{"value": 80.0, "threshold": 6.0, "ratedVoltage": 12.0}},
	}
	wires = []circuit.Wire{
		{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "S", Index: 0}},
		{From: circuit.Terminal{CompID: "S", Index: 1}, To: circuit.Terminal{CompID: "L", Index: 0}},
		{From: circuit.Terminal{CompID: "L", Index: 1}, To: circuit.Terminal{CompID: "V", Index: 1}},
	}
	res, err = Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	report = BuildReport(res)
	require.Contains(t, report.Faults, "L")
}

// Scenario 3: contactor seal-in latch via an NO auxiliary contact. The
// press converges in-request (coil pulls in, then the NO contact closes
// on the next iteration). The release is a second solve carrying the
// prior energized state in props — the client round-trips
// contactorStates — and the seal-in path keeps the coil energized with
// the button open.
func TestResolveContactorSealIn(t *testing.T) {
	comps := []circuit.Component{
		{ID: "V", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "DC", "value": 24.0}},
		{ID: "PB", Type: circuit.TypePushButton, Props: map[string]any{"closed": true}},
		{ID: "K", Type: circuit.TypeContactor, Props: map[string]any{"coilResistance": 120.0, "pullInVoltage": 12.0, "poles": []any{"NO"}}},
	}
	wires := []circuit.Wire{
		{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "PB", Index: 0}},
		{From: circuit.Terminal{CompID: "PB", Index: 1}, To: circuit.Terminal{CompID: "K", Index: 0}},
		{From: circuit.Terminal{CompID: "PB", Index: 0}, To: circuit.Terminal{CompID: "K", Index: 2}},
		{From: circuit.Terminal{CompID: "K", Index: 3}, To: circuit.Terminal{CompID: "K", Index: 0}},
		{From: circuit.Terminal{CompID: "K", Index: 1}, To: circuit.Terminal{CompID: "V", Index: 1}},
	}
	res, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	require.True(t, res.State.ContactorStates["K"])

	// Release the button and seed the contactor with the solved state:
	// the NO aux contact (seal-in) holds the coil energized even though
	// the PB branch is open.
	comps[1].Props["closed"] = false
	comps[2].Props["energized"] = true
	res2, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	require.True(t, res2.State.ContactorStates["K"])

	// Without the seed, a fresh solve with the button open drops out.
	comps[2].Props["energized"] = false
	res3, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	require.False(t, res3.State.ContactorStates["K"])
}

// Scenario 4: AC RL series current magnitude.
func TestResolveACRLSeries(t *testing.T) {
	comps := []circuit.Component{
		{ID: "V", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "AC1", "value": 230.0, "frequency": 50.0}},
		{ID: "R", Type: circuit.TypeResistor, Props: map[string]any{"value": 10.0}},
		{ID: "L", Type: circuit.TypeInductor, Props: map[string]any{"value": 0.1}},
	}
	wires := []circuit.Wire{
		{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "R", Index: 0}},
		{From: circuit.Terminal{CompID: "R", Index: 1}, To: circuit.Terminal{CompID: "L", Index: 0}},
		{From: circuit.Terminal{CompID: "L", Index: 1}, To: circuit.Terminal{CompID: "V", Index: 1}},
	}
	res, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	require.NotNil(t, res.AC)
	i := res.AC.SourceCurrents["V"].Abs()
	require.InDelta(t, 6.976, i, 1e-2)

	val, err := Measure(silentLogger(), comps, wires, 0, MeasureRequest{Mode: "ac_current", ComponentID: "R"})
	require.NoError(t, err)
	require.NotNil(t, val)
	require.InDelta(t, 6.976, *val, 1e-2)
}

// Scenario 5: 3-phase Y motor direction, with a swap flipping cw/ccw.
// The Y source only stamps its three phase branches when its neutral
// terminal (index 3) resolves to a node, so the neutral is grounded here.
func TestResolveMotor3phDirection(t *testing.T) {
	comps := []circuit.Component{
		{ID: "V", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "AC3", "connection": "Y", "value": 400.0, "frequency": 50.0}},
		{ID: "M", Type: circuit.TypeMotor3Ph, Props: map[string]any{"value": 12.0, "connection": "Y", "startVoltage": 100.0}},
		{ID: "G", Type: circuit.TypeGround},
	}
	wires := []circuit.Wire{
		{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "M", Index: 0}},
		{From: circuit.Terminal{CompID: "V", Index: 1}, To: circuit.Terminal{CompID: "M", Index: 1}},
		{From: circuit.Terminal{CompID: "V", Index: 2}, To: circuit.Terminal{CompID: "M", Index: 2}},
		{From: circuit.Terminal{CompID: "G", Index: 0}, To: circuit.Terminal{CompID: "V", Index: 3}},
	}
	res, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	report := BuildReport(res)
	require.Equal(t, "cw", report.Motor3phDirection["M"])

	swapped := []circuit.Wire{
		{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "M", Index: 0}},
		{From: circuit.Terminal{CompID: "V", Index: 1}, To: circuit.Terminal{CompID: "M", Index: 2}},
		{From: circuit.Terminal{CompID: "V", Index: 2}, To: circuit.Terminal{CompID: "M", Index: 1}},
		{From: circuit.Terminal{CompID: "G", Index: 0}, To: circuit.Terminal{CompID: "V", Index: 3}},
	}
	res2, err := Resolve(silentLogger(), comps, swapped, 0)
	require.NoError(t, err)
	report2 := BuildReport(res2)
	require.Equal(t, "ccw", report2.Motor3phDirection["M"])
}

// Ungrounded subcircuit diagnostic, main loop unaffected. V2/R2 form a
// closed loop that never wires back to the grounded V/R1 group — active
// (both driven by V2's own stamp) but unreachable from ground, so the
// ungrounded-subcircuit diagnostic fires for them while V/R1 solve
// exactly as in the single-resistor-loop case.
func TestResolveUngroundedSubcircuit(t *testing.T) {
	comps := []circuit.Component{
		{ID: "V", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "DC", "value": 24.0}},
		{ID: "R1", Type: circuit.TypeResistor, Props: map[string]any{"value": 48.0}},
		{ID: "G", Type: circuit.TypeGround},
		{ID: "V2", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "DC", "value": 10.0}},
		{ID: "R2", Type: circuit.TypeResistor, Props: map[string]any{"value": 10.0}},
	}
	wires := []circuit.Wire{
		{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "R1", Index: 0}},
		{From: circuit.Terminal{CompID: "V", Index: 1}, To: circuit.Terminal{CompID: "R1", Index: 1}},
		{From: circuit.Terminal{CompID: "G", Index: 0}, To: circuit.Terminal{CompID: "V", Index: 1}},
		{From: circuit.Terminal{CompID: "V2", Index: 0}, To: circuit.Terminal{CompID: "R2", Index: 0}},
		{From: circuit.Terminal{CompID: "V2", Index: 1}, To: circuit.Terminal{CompID: "R2", Index: 1}},
	}
	res, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	require.Equal(t, "Ungrounded subcircuit (DC)", res.SolveErrors["R2"])
	require.InDelta(t, -0.5, res.DC.SourceCurrents["V"], 1e-6)
}

// A timer's state machine steps from props.timerState, so carrying the
// solved state into a later request (at a later simTime) advances the
// delay across solves.
func TestResolveTimerDelayAcrossSolves(t *testing.T) {
	comps := []circuit.Component{
		{ID: "V", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "DC", "value": 24.0}},
		{ID: "T", Type: circuit.TypeTimer, Props: map[string]any{"delayMs": 1000.0, "pullInVoltage": 12.0}},
		{ID: "G", Type: circuit.TypeGround},
	}
	wires := []circuit.Wire{
		{From: circuit.Terminal{CompID: "V", Index: 0}, To: circuit.Terminal{CompID: "T", Index: 0}},
		{From: circuit.Terminal{CompID: "V", Index: 1}, To: circuit.Terminal{CompID: "T", Index: 1}},
		{From: circuit.Terminal{CompID: "G", Index: 0}, To: circuit.Terminal{CompID: "V", Index: 1}},
	}

	res, err := Resolve(silentLogger(), comps, wires, 0)
	require.NoError(t, err)
	ts := res.State.TimerStates["T"]
	require.True(t, ts.Running)
	require.False(t, ts.OutputClosed)
	require.EqualValues(t, 1000, ts.RemainingMs)

	comps[1].Props["timerState"] = map[string]any{"running": true, "startAt": float64(0)}
	res2, err := Resolve(silentLogger(), comps, wires, 1500)
	require.NoError(t, err)
	ts2 := res2.State.TimerStates["T"]
	require.False(t, ts2.Running)
	require.True(t, ts2.OutputClosed)
	require.EqualValues(t, 0, ts2.RemainingMs)
}

func TestResolveMultipleFrequenciesFails(t *testing.T) {
	comps := []circuit.Component{
		{ID: "V1", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "AC1", "value": 230.0, "frequency": 50.0}},
		{ID: "V2", Type: circuit.TypeVoltageSource, Props: map[string]any{"supplyType": "AC1", "value": 230.0, "frequency": 60.0}},
	}
	_, err := Resolve(silentLogger(), comps, nil, 0)
	require.ErrorIs(t, err, ErrMultipleFrequencies)
}
