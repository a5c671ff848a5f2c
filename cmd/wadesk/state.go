package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/persist"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the local state file",
}

var stateInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the state file location and partition sizes",
	RunE:  runStateInfo,
}

var stateClearCmd = &cobra.Command{
	Use:   "clear [partition]...",
	Short: "Forget cached chats, campaigns or templates",
	RunE:  runStateClear,
}

func init() {
	stateCmd.AddCommand(stateInfoCmd)
	stateCmd.AddCommand(stateClearCmd)
}

func runStateInfo(cmd *cobra.Command, args []string) error {
	sizes, err := state.Size()
	if err != nil {
		return err
	}
	fmt.Printf("State file: %s\n", cfg.State.Path)
	for _, p := range persist.Partitions {
		fmt.Printf("  %-10s %d bytes\n", p, sizes[p])
	}
	return nil
}

func runStateClear(cmd *cobra.Command, args []string) error {
	parts := []persist.Partition{persist.PartitionChats, persist.PartitionCampaigns, persist.PartitionTemplates}
	if len(args) > 0 {
		parts = parts[:0]
		for _, a := range args {
			p := persist.Partition(a)
			if p == persist.PartitionAuth {
				return fmt.Errorf("use 'wadesk logout' to clear the session")
			}
			parts = append(parts, p)
		}
	}

	for _, p := range parts {
		if err := state.Clear(p); err != nil {
			return err
		}
		fmt.Printf("Cleared %s\n", p)
	}
	return nil
}
