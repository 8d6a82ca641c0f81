package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/silo/pkg/store"
)

var getCmd = &cobra.Command{
	Use:   "get <uuid>",
	Short: "Load a record and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		obj, err := st.Load(args[0])
		if err != nil {
			return err
		}
		if obj == nil {
			return &store.Error{Kind: store.NotFound, UUID: args[0]}
		}
		out, err := json.MarshalIndent(dump(obj), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
