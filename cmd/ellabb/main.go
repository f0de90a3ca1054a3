// Command ellabb is a small CLI host around the network-resolution engine:
// it reads a netlist from a JSON file, runs simulate/measure, and manages
// on-disk saves. It has no HTTP surface.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
