package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of records stored under each known class",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		classes, err := st.ClassNames()
		if err != nil {
			return err
		}
		for _, class := range classes {
			count, err := st.Count(class)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%d\n", class, count)
		}
		return nil
	},
}
