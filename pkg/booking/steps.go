package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/slotwatch/pkg/config"
	"github.com/jmylchreest/slotwatch/pkg/dom"
	"github.com/jmylchreest/slotwatch/pkg/notify"
	"github.com/jmylchreest/slotwatch/pkg/schedule"
)

// Options tunes the flow.
type Options struct {
	StartURL       string
	NearestCentres int             // results wanted before polling stops asking for more
	StepWindow     schedule.Window // delay before each step
	ReloadWindow   schedule.Window // delay before each results reload
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		StartURL:       StartURL,
		NearestCentres: DefaultNearestSize,
		StepWindow:     schedule.StepWindow,
		ReloadWindow:   schedule.ReloadWindow,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.StartURL == "" {
		o.StartURL = d.StartURL
	}
	if o.NearestCentres <= 0 {
		o.NearestCentres = d.NearestCentres
	}
	if o.StepWindow == (schedule.Window{}) {
		o.StepWindow = d.StepWindow
	}
	if o.ReloadWindow == (schedule.Window{}) {
		o.ReloadWindow = d.ReloadWindow
	}
	return o
}

// Step mutates one page. It returns only browser transport errors; a
// missing element is logged and skipped.
type Step func(ctx context.Context) error

// Steps holds the per-page actions for one configuration.
type Steps struct {
	page     dom.Page
	cfg      config.Config
	sched    schedule.Scheduler
	notifier notify.Notifier
	opts     Options
	now      func() time.Time
}

// NewSteps binds the actions to a page and configuration.
func NewSteps(page dom.Page, cfg config.Config, sched schedule.Scheduler, n notify.Notifier, opts Options) *Steps {
	if n == nil {
		n = notify.Nop{}
	}
	return &Steps{
		page:     page,
		cfg:      cfg,
		sched:    sched,
		notifier: n,
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// For returns the step for st, or nil for Unknown.
func (s *Steps) For(st State) Step {
	switch st {
	case TestType:
		return s.SelectTestType
	case LicenceDetails:
		return s.EnterLicenceDetails
	case TestDate:
		return s.EnterTestDate
	case PostcodeSearch:
		return s.EnterPostcode
	case TestCentreResults:
		return s.CheckResults
	}
	return nil
}

// skipMissing swallows ErrNotFound after logging it.
func skipMissing(ctx context.Context, err error, op, selector string) error {
	if errors.Is(err, dom.ErrNotFound) {
		log(ctx).Info("element not found, skipping", "op", op, "selector", selector)
		return nil
	}
	return err
}

func (s *Steps) set(ctx context.Context, selector, value string) error {
	return skipMissing(ctx, s.page.SetValue(ctx, selector, value), "set", selector)
}

func (s *Steps) check(ctx context.Context, selector string) error {
	return skipMissing(ctx, s.page.SetChecked(ctx, selector, true), "check", selector)
}

func (s *Steps) click(ctx context.Context, selector string) error {
	return skipMissing(ctx, s.page.Click(ctx, selector), "click", selector)
}

// SelectTestType picks the car test.
func (s *Steps) SelectTestType(ctx context.Context) error {
	log(ctx).Info("selecting car test")
	return s.click(ctx, SelTestTypeCar)
}

// EnterLicenceDetails fills the licence number, declares no special needs
// and continues.
func (s *Steps) EnterLicenceDetails(ctx context.Context) error {
	log(ctx).Info("entering licence details")
	if err := s.set(ctx, SelLicence, s.cfg.Licence); err != nil {
		return err
	}
	if err := s.check(ctx, SelSpecialNeedsNo); err != nil {
		return err
	}
	return s.click(ctx, SelLicenceSubmit)
}

// EnterTestDate fills the preferred date and, when set, the instructor
// reference. The date page reuses the licence page's submit control.
func (s *Steps) EnterTestDate(ctx context.Context) error {
	log(ctx).Info("entering test date", "date", s.cfg.TestDate)
	if err := s.set(ctx, SelTestDate, s.cfg.TestDate); err != nil {
		return err
	}
	if s.cfg.HasInstructor() {
		if err := s.set(ctx, SelInstructor, s.cfg.InstructorReference); err != nil {
			return err
		}
	}
	return s.click(ctx, SelLicenceSubmit)
}

// EnterPostcode searches for test centres near the postcode.
func (s *Steps) EnterPostcode(ctx context.Context) error {
	log(ctx).Info("searching test centres", "postcode", s.cfg.Postcode)
	if err := s.set(ctx, SelPostcode, s.cfg.Postcode); err != nil {
		return err
	}
	return s.click(ctx, SelPostcodeSubmit)
}

// CheckResults counts the listed centres, asks for more when short of
// NearestCentres, and schedules a reload of the start page. Without a
// results list it runs the postcode search instead.
func (s *Steps) CheckResults(ctx context.Context) error {
	count, err := s.page.ChildCount(ctx, SelResults)
	if errors.Is(err, dom.ErrNotFound) {
		log(ctx).Info("no results list, searching by postcode")
		return s.EnterPostcode(ctx)
	}
	if err != nil {
		// The reload is the only thing that produces the next page load.
		log(ctx).Error("failed to count results", "error", err)
		s.scheduleReload(ctx)
		return nil
	}

	fetchedMore := false
	if count < s.opts.NearestCentres {
		err := s.page.Click(ctx, SelFetchMore)
		fetchedMore = err == nil
		if err := skipMissing(ctx, err, "click", SelFetchMore); err != nil {
			log(ctx).Error("failed to fetch more centres", "error", err)
		}
	}

	delay := s.scheduleReload(ctx)
	next := s.now().Add(delay)
	log(ctx).Info("results checked",
		"centres", count,
		"wanted", s.opts.NearestCentres,
		"fetched_more", fetchedMore,
		"next_check", delay)
	s.notifier.Notify(fmt.Sprintf("%d test centres listed, next check %s", count, humanize.Time(next)))
	return nil
}

// scheduleReload reopens the start page after a draw from the reload window.
func (s *Steps) scheduleReload(ctx context.Context) time.Duration {
	return schedule.RandomDelay(s.sched, s.opts.ReloadWindow, func() {
		log(ctx).Info("reloading results")
		if err := s.page.Navigate(ctx, s.opts.StartURL); err != nil {
			log(ctx).Error("reload failed", "error", err)
		}
	})
}
