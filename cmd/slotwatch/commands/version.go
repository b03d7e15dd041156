package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/slotwatch/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if !cmd.Flags().Changed("output") {
			fmt.Fprintln(cmd.OutOrStdout(), info.Full())
			return nil
		}
		w, err := newWriter(cmd)
		if err != nil {
			return err
		}
		if err := w.Write(info); err != nil {
			return err
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringP("output", "o", "json", "output format when set: json, jsonl, yaml")
}
