package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/slotwatch/pkg/config"
	"github.com/jmylchreest/slotwatch/pkg/notify"
	"github.com/jmylchreest/slotwatch/pkg/prompt"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the saved booking details",
	Long: `Prompt for the licence number, preferred test date, postcode and
optional instructor reference. Each answer is checked on its own; an
invalid answer is reported and the saved value is kept.

At a prompt, press Enter to keep the value shown in brackets, enter "-"
to clear it, or press Ctrl+D to skip the field.

With any of the field flags set, no prompts are shown: flagged fields
are updated and the rest are left alone.

Examples:
  slotwatch configure
  slotwatch configure --postcode "SW1A 1AA" --test-date 15/08/2026`,
	RunE: runConfigure,
}

// fieldFlags maps flag names to the field they answer.
var fieldFlags = map[string]string{
	"licence":    config.KeyLicence,
	"test-date":  config.KeyTestDate,
	"postcode":   config.KeyPostcode,
	"instructor": config.KeyInstructor,
}

func init() {
	rootCmd.AddCommand(configureCmd)

	flags := configureCmd.Flags()
	flags.String("licence", "", "driving licence number (16 characters)")
	flags.String("test-date", "", "preferred test date, DD/MM/YYYY")
	flags.String("postcode", "", "postcode to search test centres near")
	flags.String("instructor", "", "instructor reference number (digits, empty to clear)")
	flags.StringP("output", "o", "yaml", "summary format: json, jsonl, yaml")
}

// scriptedAnswers turns the changed field flags into prompt answers keyed
// by field label. It returns nil when no field flag was set.
func scriptedAnswers(cmd *cobra.Command) map[string]string {
	byKey := map[string]string{}
	for flag, key := range fieldFlags {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			byKey[key] = v
		}
	}
	if len(byKey) == 0 {
		return nil
	}
	answers := make(map[string]string, len(byKey))
	for _, f := range config.Fields {
		if v, ok := byKey[f.Key]; ok {
			answers[f.Label] = v
		}
	}
	return answers
}

func runConfigure(cmd *cobra.Command, args []string) error {
	initLogger()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := newWriter(cmd)
	if err != nil {
		return err
	}

	var ui config.Prompter
	scripted := scriptedAnswers(cmd)
	if scripted != nil {
		s := prompt.NewScripted(scripted, false)
		defer func() {
			for _, a := range s.Recorded() {
				fmt.Fprintln(cmd.ErrOrStderr(), "!", a)
			}
		}()
		ui = s
	} else {
		ui = prompt.NewTerminal(os.Stdin, cmd.ErrOrStderr())
	}

	res := config.Reconfigure(st, ui, notify.NewToast(cmd.ErrOrStderr(), scripted != nil))

	if err := w.Write(res); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if scripted != nil && len(res.Rejected) > 0 {
		return fmt.Errorf("%d field(s) rejected: %v", len(res.Rejected), res.Rejected)
	}
	return nil
}
