package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/silo/pkg/store"
)

var putCmd = &cobra.Command{
	Use:   "put <class> [file]",
	Short: "Store a JSON document under the given class",
	Long: "Store reads a JSON object from file (or stdin when file is omitted " +
		"or \"-\") and persists it as a dynamically typed instance of class.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		class := args[0]

		var r io.Reader = os.Stdin
		if len(args) == 2 && args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		var fields map[string]any
		if err := json.NewDecoder(r).Decode(&fields); err != nil {
			return fmt.Errorf("decoding input: %w", err)
		}

		obj := store.NewDynamicObject(class)
		for name, v := range fields {
			if err := obj.SetFieldValue(name, v); err != nil {
				return err
			}
		}

		uuidFlag, _ := cmd.Flags().GetString("uuid")
		ttlFlag, _ := cmd.Flags().GetDuration("ttl")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		id, err := st.Store(obj, uuidFlag, ttlFlag)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	putCmd.Flags().String("uuid", "", "store under this UUID instead of minting a fresh one")
	putCmd.Flags().Duration("ttl", 0, "expire this record after the given duration")
}
