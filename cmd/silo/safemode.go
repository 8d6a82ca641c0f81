package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var safeModeCmd = &cobra.Command{
	Use:   "safemode",
	Short: "Inspect or change the store's safe-mode flag",
}

var safeModeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print whether safe-mode is currently enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		if st.SafeMode() {
			fmt.Println("enabled")
		} else {
			fmt.Println("disabled")
		}
		return nil
	},
}

var safeModeOnCmd = &cobra.Command{
	Use:   "on [reason]",
	Short: "Enter safe-mode, refusing further writes until cleared",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason := "operator requested"
		if len(args) == 1 {
			reason = args[0]
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		return st.EnterSafeMode(reason)
	},
}

var safeModeOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Leave safe-mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		return st.ExitSafeMode()
	},
}

func init() {
	safeModeCmd.AddCommand(safeModeStatusCmd)
	safeModeCmd.AddCommand(safeModeOnCmd)
	safeModeCmd.AddCommand(safeModeOffCmd)
}
