package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andersalavik/el-labb/internal/store"
	"github.com/spf13/cobra"
)

func newSavesCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "Manage on-disk netlist snapshots",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "./saves", "saves directory")

	cmd.AddCommand(newSavesListCmd(&dir))
	cmd.AddCommand(newSavesSaveCmd(&dir))
	cmd.AddCommand(newSavesLoadCmd(&dir))
	cmd.AddCommand(newSavesDeleteCmd(&dir))
	return cmd
}

func newSavesListCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saves, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.New(*dir)
			if err != nil {
				return err
			}
			summaries, err := st.List()
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(summaries)
		},
	}
}

func newSavesSaveCmd(dir *string) *cobra.Command {
	var name, id, file string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save or upsert a snapshot from a JSON file (or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.New(*dir)
			if err != nil {
				return err
			}
			var data []byte
			if file == "" || file == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			rec, err := st.Save(name, data, id)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(rec)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "save name")
	cmd.Flags().StringVar(&id, "id", "", "existing save id to update (optional)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot JSON file (default: stdin)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newSavesLoadCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load [id]",
		Short: "Print a save's snapshot payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.New(*dir)
			if err != nil {
				return err
			}
			snapshot, err := st.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Println(string(snapshot))
			return nil
		},
	}
}

func newSavesDeleteCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.New(*dir)
			if err != nil {
				return err
			}
			return st.Delete(args[0])
		},
	}
}
