package ellabb

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func silentLogger() zerolog.Logger { return zerolog.Nop() }

func TestSimulateSingleResistorLoop(t *testing.T) {
	simTime := int64(0)
	req := SimulateRequest{
		Components: []Component{
			{ID: "V", Type: "voltage_source", Props: map[string]any{"supplyType": "DC", "value": 24.0}},
			{ID: "R", Type: "resistor", Props: map[string]any{"value": 48.0}},
			{ID: "G", Type: "ground"},
		},
		Wires: []Wire{
			{From: Terminal{CompID: "V", Index: 0}, To: Terminal{CompID: "R", Index: 0}},
			{From: Terminal{CompID: "V", Index: 1}, To: Terminal{CompID: "R", Index: 1}},
			{From: Terminal{CompID: "G", Index: 0}, To: Terminal{CompID: "V", Index: 1}},
		},
		SimTime: &simTime,
	}

	resp, err := Simulate(silentLogger(), req)
	require.NoError(t, err)

	node, ok := resp.Solution.TerminalNodes["V:0"]
	require.True(t, ok)
	require.InDelta(t, 24.0, resp.Solution.NodeVoltages[node], 1e-6)
	require.Empty(t, resp.SolveErrors)
}

func TestMeasureCurrent(t *testing.T) {
	simTime := int64(0)
	req := MeasureRequest{
		SimulateRequest: SimulateRequest{
			Components: []Component{
				{ID: "V", Type: "voltage_source", Props: map[string]any{"supplyType": "DC", "value": 24.0}},
				{ID: "R", Type: "resistor", Props: map[string]any{"value": 48.0}},
				{ID: "G", Type: "ground"},
			},
			Wires: []Wire{
				{From: Terminal{CompID: "V", Index: 0}, To: Terminal{CompID: "R", Index: 0}},
				{From: Terminal{CompID: "V", Index: 1}, To: Terminal{CompID: "R", Index: 1}},
				{From: Terminal{CompID: "G", Index: 0}, To: Terminal{CompID: "V", Index: 1}},
			},
			SimTime: &simTime,
		},
		Mode:        "current",
		ComponentID: "R",
	}

	val, err := Measure(silentLogger(), req)
	require.NoError(t, err)
	require.NotNil(t, val)
	require.InDelta(t, 0.5, *val, 1e-6)
}

func TestMeasureUnknownModeIsValidationError(t *testing.T) {
	req := MeasureRequest{
		SimulateRequest: SimulateRequest{
			Components: []Component{
				{ID: "V", Type: "voltage_source", Props: map[string]any{"supplyType": "DC", "value": 24.0}},
			},
		},
		Mode: "bogus",
	}

	_, err := Measure(silentLogger(), req)
	require.Error(t, err)
	var ellErr *Error
	require.ErrorAs(t, err, &ellErr)
	require.Equal(t, KindValidation, ellErr.Kind)
	require.Equal(t, 400, ellErr.StatusCode())
}

func TestSimulateMultipleFrequenciesIsTopologyError(t *testing.T) {
	req := SimulateRequest{
		Components: []Component{
			{ID: "V1", Type: "voltage_source", Props: map[string]any{"supplyType": "AC1", "value": 230.0, "frequency": 50.0}},
			{ID: "V2", Type: "voltage_source", Props: map[string]any{"supplyType": "AC1", "value": 230.0, "frequency": 60.0}},
		},
	}

	_, err := Simulate(silentLogger(), req)
	require.Error(t, err)
	var ellErr *Error
	require.ErrorAs(t, err, &ellErr)
	require.Equal(t, KindTopology, ellErr.Kind)
	require.Equal(t, 400, ellErr.StatusCode())
}

func TestSimulateUngroundedSubcircuitIsDiagnosticNotError(t *testing.T) {
	req := SimulateRequest{
		Components: []Component{
			{ID: "V", Type: "voltage_source", Props: map[string]any{"supplyType": "DC", "value": 24.0}},
			{ID: "R1", Type: "resistor", Props: map[string]any{"value": 48.0}},
			{ID: "G", Type: "ground"},
			{ID: "V2", Type: "voltage_source", Props: map[string]any{"supplyType": "DC", "value": 10.0}},
			{ID: "R2", Type: "resistor", Props: map[string]any{"value": 10.0}},
		},
		Wires: []Wire{
			{From: Terminal{CompID: "V", Index: 0}, To: Terminal{CompID: "R1", Index: 0}},
			{From: Terminal{CompID: "V", Index: 1}, To: Terminal{CompID: "R1", Index: 1}},
			{From: Terminal{CompID: "G", Index: 0}, To: Terminal{CompID: "V", Index: 1}},
			{From: Terminal{CompID: "V2", Index: 0}, To: Terminal{CompID: "R2", Index: 0}},
			{From: Terminal{CompID: "V2", Index: 1}, To: Terminal{CompID: "R2", Index: 1}},
		},
	}

	resp, err := Simulate(silentLogger(), req)
	require.NoError(t, err)
	require.Equal(t, "Ungrounded subcircuit (DC)", resp.SolveErrors["R2"])
}
