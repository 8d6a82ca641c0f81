package main

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <uuid>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		return st.Delete(args[0], force)
	},
}

func init() {
	deleteCmd.Flags().Bool("force", false, "do not fail if the record does not exist")
}
