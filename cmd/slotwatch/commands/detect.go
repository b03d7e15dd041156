package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/slotwatch/internal/logger"
	"github.com/jmylchreest/slotwatch/pkg/booking"
	"github.com/jmylchreest/slotwatch/pkg/config"
	"github.com/jmylchreest/slotwatch/pkg/dom"
)

var detectCmd = &cobra.Command{
	Use:   "detect FILE...",
	Short: "Identify the booking page in saved HTML files",
	Long: `Report which booking page each HTML file shows, and name any
challenge interstitial when no booking page matches.

With --simulate the matching step is run against an in-memory copy of
the page using the saved details, and the form changes and scheduled
delays are reported. Nothing is sent anywhere.

Examples:
  slotwatch detect results.html
  slotwatch detect *.html -o jsonl
  slotwatch detect results.html --simulate --centres 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	flags := detectCmd.Flags()
	flags.StringP("output", "o", "yaml", "output format: json, jsonl, yaml")
	flags.Bool("simulate", false, "run the matching step against an in-memory page")
	flags.Int("centres", booking.DefaultNearestSize, "test centres wanted before polling stops asking for more")
}

type detectResult struct {
	File      string        `json:"file" yaml:"file"`
	Title     string        `json:"title" yaml:"title"`
	State     booking.State `json:"state" yaml:"state"`
	Challenge string        `json:"challenge,omitempty" yaml:"challenge,omitempty"`
	Expected  string        `json:"expected_title,omitempty" yaml:"expected_title,omitempty"`
	Delays    []string      `json:"delays,omitempty" yaml:"delays,omitempty"`
	Actions   []string      `json:"actions,omitempty" yaml:"actions,omitempty"`
}

func newDetectResult(file string, rep booking.Report) detectResult {
	res := detectResult{File: file, Title: rep.Title, State: rep.State, Challenge: rep.Challenge, Expected: rep.ExpectedTitle}
	for _, d := range rep.Delays {
		res.Delays = append(res.Delays, d.String())
	}
	for _, a := range rep.Actions {
		res.Actions = append(res.Actions, a.String())
	}
	return res
}

// detectFile classifies one file, simulating its step when cfg is non-nil.
func detectFile(ctx context.Context, path string, cfg *config.Config, opts booking.Options) (detectResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return detectResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	if cfg == nil {
		snap, err := dom.NewSnapshot("", string(data))
		if err != nil {
			return detectResult{}, fmt.Errorf("%s: %w", path, err)
		}
		return newDetectResult(path, booking.DetectReport(snap)), nil
	}

	page, err := dom.NewHTMLPage("", string(data))
	if err != nil {
		return detectResult{}, fmt.Errorf("%s: %w", path, err)
	}
	rep, err := booking.Simulate(ctx, page, *cfg, nil, opts)
	if err != nil {
		return detectResult{}, fmt.Errorf("simulate %s: %w", path, err)
	}
	return newDetectResult(path, rep), nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	initLogger()

	w, err := newWriter(cmd)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if simulate, _ := cmd.Flags().GetBool("simulate"); simulate {
		st, err := openStore()
		if err != nil {
			return err
		}
		loaded, _ := config.Load(st)
		_ = st.Close()
		cfg = &loaded
	}
	centres, _ := cmd.Flags().GetInt("centres")
	opts := booking.Options{NearestCentres: centres}

	for _, path := range args {
		res, err := detectFile(cmd.Context(), path, cfg, opts)
		if err != nil {
			logger.Error("detect failed", "file", path, "error", err)
			return err
		}
		if err := w.Write(res); err != nil {
			return err
		}
	}
	return w.Flush()
}
