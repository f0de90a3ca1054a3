package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andersalavik/el-labb/pkg/ellabb"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	var netlistPath string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Resolve a netlist and print the simulate response as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readNetlist(netlistPath)
			if err != nil {
				return err
			}
			var req ellabb.SimulateRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("decode netlist: %w", err)
			}

			resp, err := ellabb.Simulate(newLogger(), req)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(resp)
		},
	}
	cmd.Flags().StringVarP(&netlistPath, "file", "f", "", "path to a netlist JSON file (default: stdin)")
	return cmd
}

func readNetlist(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
