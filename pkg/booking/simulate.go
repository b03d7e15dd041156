package booking

import (
	"context"
	"strings"
	"time"

	"github.com/jmylchreest/slotwatch/pkg/config"
	"github.com/jmylchreest/slotwatch/pkg/dom"
	"github.com/jmylchreest/slotwatch/pkg/notify"
	"github.com/jmylchreest/slotwatch/pkg/schedule"
)

// Report describes what one page load would do.
type Report struct {
	Title     string `json:"title" yaml:"title"`
	State     State  `json:"state" yaml:"state"`
	Challenge string `json:"challenge,omitempty" yaml:"challenge,omitempty"`
	// ExpectedTitle is set when the marker matched but the title did not.
	ExpectedTitle string          `json:"expected_title,omitempty" yaml:"expected_title,omitempty"`
	Delays        []time.Duration `json:"delays,omitempty" yaml:"delays,omitempty"`
	Actions       []dom.Action    `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// DetectReport classifies snap without touching any page.
func DetectReport(snap *dom.Snapshot) Report {
	rep := Report{Title: snap.Title, State: Detect(snap), Challenge: snap.Challenge()}
	if want := ExpectedTitle(rep.State); want != "" && !strings.Contains(snap.Title, want) {
		rep.ExpectedTitle = want
	}
	return rep
}

// Simulate routes page once with a manual clock, runs the chosen step and
// reports the delays it scheduled and the mutations it made. Callbacks
// scheduled by the step, such as a results reload, are recorded but not run.
func Simulate(ctx context.Context, page *dom.HTMLPage, cfg config.Config, n notify.Notifier, opts Options) (Report, error) {
	snap, err := page.Snapshot(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := DetectReport(snap)

	clock := &schedule.Manual{}
	o := NewOrchestrator(page, cfg, clock, n, opts)
	if _, err := o.Router().Route(ctx); err != nil {
		return rep, err
	}
	clock.RunPending()

	rep.Delays = append(rep.Delays, clock.Delays...)
	rep.Actions = page.Actions()
	return rep, nil
}
