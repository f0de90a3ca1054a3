package circuit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenExplicitGround(t *testing.T) {
	comps := []Component{
		{ID: "gnd", Type: TypeGround},
		{ID: "src", Type: TypeVoltageSource, Props: map[string]any{"supplyType": "DC"}},
		{ID: "r1", Type: TypeResistor},
	}
	wires := []Wire{
		{From: Terminal{"src", 0}, To: Terminal{"r1", 0}},
		{From: Terminal{"r1", 1}, To: Terminal{"gnd", 0}},
		{From: Terminal{"src", 1}, To: Terminal{"gnd", 0}},
	}
	topo := Flatten(comps, wires)
	require.False(t, topo.VirtualGround)
	require.Equal(t, 2, topo.NodeCount) // ground(0) + one live node

	gndNode, ok := topo.Node("gnd", 0)
	require.True(t, ok)
	require.Equal(t, 0, gndNode)

	srcNeg, ok := topo.Node("src", 1)
	require.True(t, ok)
	require.Equal(t, 0, srcNeg)

	srcPos, ok := topo.Node("src", 0)
	require.True(t, ok)
	r1In, ok := topo.Node("r1", 0)
	require.True(t, ok)
	require.Equal(t, srcPos, r1In)
	require.NotEqual(t, 0, srcPos)
}

func TestFlattenVirtualGroundFromSource(t *testing.T) {
	comps := []Component{
		{ID: "src", Type: TypeVoltageSource, Props: map[string]any{"supplyType": "DC"}},
		{ID: "r1", Type: TypeResistor},
	}
	wires := []Wire{
		{From: Terminal{"src", 0}, To: Terminal{"r1", 0}},
		{From: Terminal{"r1", 1}, To: Terminal{"src", 1}},
	}
	topo := Flatten(comps, wires)
	require.True(t, topo.VirtualGround)
	require.Equal(t, 2, topo.NodeCount)

	// The first used terminal of the first source (src:0) elects ground.
	srcPos, ok := topo.Node("src", 0)
	require.True(t, ok)
	require.Equal(t, 0, srcPos)
}

func TestFlattenVirtualGroundFromArbitraryTerminal(t *testing.T) {
	comps := []Component{
		{ID: "r1", Type: TypeResistor},
		{ID: "r2", Type: TypeResistor},
	}
	wires := []Wire{
		{From: Terminal{"r1", 1}, To: Terminal{"r2", 0}},
	}
	topo := Flatten(comps, wires)
	require.True(t, topo.VirtualGround)

	// r1:0 is unwired, so the first used terminal is r1:1.
	r1B, ok := topo.Node("r1", 1)
	require.True(t, ok)
	require.Equal(t, 0, r1B)
}

func TestFlattenNoTerminals(t *testing.T) {
	topo := Flatten(nil, nil)
	require.Equal(t, 1, topo.NodeCount)
	require.Empty(t, topo.TerminalNodes)
	require.False(t, topo.VirtualGround)
}

func TestFlattenExcludesUnusedTerminals(t *testing.T) {
	comps := []Component{
		{ID: "gnd", Type: TypeGround},
		{ID: "r1", Type: TypeResistor},
	}
	wires := []Wire{
		{From: Terminal{"r1", 0}, To: Terminal{"gnd", 0}},
	}
	topo := Flatten(comps, wires)
	_, ok := topo.Node("r1", 1)
	require.False(t, ok)
}
