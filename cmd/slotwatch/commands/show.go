package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/slotwatch/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved booking details",
	Long: `Load the saved details the same way "run" does and print them.
Values that fail validation are reported and shown as empty.

Examples:
  slotwatch show
  slotwatch show -o json --reveal`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	flags := showCmd.Flags()
	flags.StringP("output", "o", "yaml", "output format: json, jsonl, yaml")
	flags.Bool("reveal", false, "show the full licence number")
}

type showReport struct {
	Store    string                `json:"store" yaml:"store"`
	Complete bool                  `json:"complete" yaml:"complete"`
	Config   config.Config         `json:"config" yaml:"config"`
	Warnings []config.FieldWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	initLogger()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, warnings := config.Load(st)
	rep := showReport{
		Store:    viper.GetString("store"),
		Complete: cfg.Complete(),
		Config:   cfg,
		Warnings: warnings,
	}
	if reveal, _ := cmd.Flags().GetBool("reveal"); !reveal {
		rep.Config = cfg.Masked()
	}

	w, err := newWriter(cmd)
	if err != nil {
		return err
	}
	if err := w.Write(rep); err != nil {
		return err
	}
	return w.Flush()
}
