package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/silo/pkg/record"
)

var checkCmd = &cobra.Command{
	Use:   "check <uuid>",
	Short: "Verify a record's checksum against its metadata without fully decoding it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		meta, err := st.LoadMetadata(id)
		if err != nil {
			return err
		}
		data, err := st.ReadRaw(id)
		if err != nil {
			return err
		}
		if record.VerifyChecksum(data, meta.Checksum, meta.ChecksumAlgorithm) {
			fmt.Printf("%s: ok (class=%s version=%d)\n", id, meta.ClassName, meta.Version)
			return nil
		}
		fmt.Printf("%s: checksum mismatch (class=%s version=%d)\n", id, meta.ClassName, meta.Version)
		return nil
	},
}
