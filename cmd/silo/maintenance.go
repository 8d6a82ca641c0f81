package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Repair the stub side-index and shard layout",
}

var maintenanceRebuildStubsCmd = &cobra.Command{
	Use:   "rebuild-stubs",
	Short: "Regenerate the stub side-index from the data files on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		n, err := st.RebuildStubs()
		if err != nil {
			return err
		}
		fmt.Printf("rebuilt %d stub(s)\n", n)
		return nil
	},
}

var maintenanceRebuildShardsCmd = &cobra.Command{
	Use:   "rebuild-shards",
	Short: "Relocate records to match the configured shard depth",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		n, err := st.RebuildShards()
		if err != nil {
			return err
		}
		fmt.Printf("relocated %d record(s)\n", n)
		return nil
	},
}

func init() {
	maintenanceCmd.AddCommand(maintenanceRebuildStubsCmd)
	maintenanceCmd.AddCommand(maintenanceRebuildShardsCmd)
}
