package booking

import (
	"context"
	"fmt"

	"github.com/jmylchreest/slotwatch/pkg/dom"
	"github.com/jmylchreest/slotwatch/pkg/schedule"
)

// Signature ties a page state to the marker that identifies it. Title is
// the page's usual title and only appears in diagnostics.
type Signature struct {
	State  State
	Marker string
	Title  string
}

// Signatures are checked in order and the first present marker wins.
// Results come before the postcode search because both markers are on
// screen while results render.
var Signatures = []Signature{
	{State: TestCentreResults, Marker: SelResults, Title: TitleTestCentre},
	{State: PostcodeSearch, Marker: SelPostcode, Title: TitleTestCentre},
	{State: TestDate, Marker: SelTestDate, Title: TitleTestDate},
	{State: LicenceDetails, Marker: SelLicence, Title: TitleLicence},
	{State: TestType, Marker: SelTestTypeCar, Title: TitleTestType},
}

// Detect returns the state of the page in snap.
func Detect(snap *dom.Snapshot) State {
	for _, sig := range Signatures {
		if snap.Has(sig.Marker) {
			return sig.State
		}
	}
	return Unknown
}

// ExpectedTitle returns the usual title of pages in st, or "" for Unknown.
func ExpectedTitle(st State) string {
	for _, sig := range Signatures {
		if sig.State == st {
			return sig.Title
		}
	}
	return ""
}

// Router picks the step for the current page and schedules it once.
type Router struct {
	page   dom.Page
	steps  *Steps
	sched  schedule.Scheduler
	window schedule.Window
}

// NewRouter returns a router that spaces steps out by window.
func NewRouter(page dom.Page, steps *Steps, sched schedule.Scheduler, window schedule.Window) *Router {
	return &Router{page: page, steps: steps, sched: sched, window: window}
}

// Route inspects the page and schedules the matching step. An unknown page
// schedules nothing.
func (r *Router) Route(ctx context.Context) (State, error) {
	snap, err := r.page.Snapshot(ctx)
	if err != nil {
		log(ctx).Error("failed to read page", "error", err)
		return Unknown, fmt.Errorf("snapshot: %w", err)
	}

	st := Detect(snap)
	if st == Unknown {
		args := []any{"title", snap.Title}
		if kind := snap.Challenge(); kind != "" {
			args = append(args, "challenge", kind)
		}
		log(ctx).Info("unrecognised page, waiting for next load", args...)
		return Unknown, nil
	}

	step := r.steps.For(st)
	delay := schedule.RandomDelay(r.sched, r.window, func() {
		if err := step(ctx); err != nil {
			log(ctx).Error("step failed", "state", st, "error", err)
		}
	})
	log(ctx).Info("page detected", "state", st, "title", snap.Title, "delay", delay)
	return st, nil
}
