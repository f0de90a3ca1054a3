package main

import (
	"encoding/json"
	"fmt"

	"github.com/andersalavik/el-labb/pkg/ellabb"
	"github.com/spf13/cobra"
)

func newMeasureCmd() *cobra.Command {
	var (
		netlistPath string
		mode        string
		componentID string
		aComp       string
		aIndex      int
		bComp       string
		bIndex      int
	)
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Resolve a netlist and derive a single measurement value",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readNetlist(netlistPath)
			if err != nil {
				return err
			}
			var base ellabb.SimulateRequest
			if err := json.Unmarshal(data, &base); err != nil {
				return fmt.Errorf("decode netlist: %w", err)
			}

			req := ellabb.MeasureRequest{
				SimulateRequest: base,
				Mode:            mode,
				ComponentID:     componentID,
			}
			if aComp != "" {
				req.ARef = &ellabb.Terminal{CompID: aComp, Index: aIndex}
			}
			if bComp != "" {
				req.BRef = &ellabb.Terminal{CompID: bComp, Index: bIndex}
			}

			val, err := ellabb.Measure(newLogger(), req)
			if err != nil {
				return err
			}
			if val == nil {
				fmt.Println("null")
				return nil
			}
			fmt.Println(*val)
			return nil
		},
	}
	cmd.Flags().StringVarP(&netlistPath, "file", "f", "", "path to a netlist JSON file (default: stdin)")
	cmd.Flags().StringVar(&mode, "mode", "", "voltage|ac_voltage|ac_phase|current|ac_current|ac_power_p|ac_power_q|ac_power_s|ac_pf|resistance")
	cmd.Flags().StringVar(&componentID, "component", "", "component id for current/ac_current/ac_power_*/ac_pf modes")
	cmd.Flags().StringVar(&aComp, "a-component", "", "probe A component id (voltage/ac_voltage/ac_phase/resistance)")
	cmd.Flags().IntVar(&aIndex, "a-index", 0, "probe A terminal index")
	cmd.Flags().StringVar(&bComp, "b-component", "", "probe B component id")
	cmd.Flags().IntVar(&bIndex, "b-index", 0, "probe B terminal index")
	return cmd
}
