package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ttlCmd = &cobra.Command{
	Use:   "ttl",
	Short: "Inspect or change a record's expiration",
}

var ttlGetCmd = &cobra.Command{
	Use:   "get <uuid>",
	Short: "Print a record's absolute expiration time, if any",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		at, err := st.GetExpiration(args[0])
		if err != nil {
			return err
		}
		if at == nil {
			fmt.Println("never expires")
			return nil
		}
		fmt.Println(at.Format("2006-01-02T15:04:05Z07:00"))
		return nil
	},
}

var ttlSetCmd = &cobra.Command{
	Use:   "set <uuid> <duration>",
	Short: "Set a record to expire after the given duration (0 clears expiration)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dur, err := parseDuration(args[1])
		if err != nil {
			return err
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		return st.SetExpiration(args[0], dur)
	},
}

func init() {
	ttlCmd.AddCommand(ttlGetCmd)
	ttlCmd.AddCommand(ttlSetCmd)
}
