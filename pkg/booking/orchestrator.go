package booking

import (
	"context"
	"time"

	"github.com/jmylchreest/slotwatch/pkg/config"
	"github.com/jmylchreest/slotwatch/pkg/dom"
	"github.com/jmylchreest/slotwatch/pkg/notify"
	"github.com/jmylchreest/slotwatch/pkg/schedule"
)

// ReadyPoll is how often a still-loading document is checked again.
const ReadyPoll = 100 * time.Millisecond

// Orchestrator starts routing once the document has been parsed.
type Orchestrator struct {
	page   dom.Page
	router *Router
	sched  schedule.Scheduler
}

// NewOrchestrator wires a router and its steps for one page load.
func NewOrchestrator(page dom.Page, cfg config.Config, sched schedule.Scheduler, n notify.Notifier, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	steps := NewSteps(page, cfg, sched, n, opts)
	return &Orchestrator{
		page:   page,
		router: NewRouter(page, steps, sched, opts.StepWindow),
		sched:  sched,
	}
}

// Router returns the router used by Init.
func (o *Orchestrator) Router() *Router { return o.router }

// Init routes the page now if it has been parsed, otherwise checks again
// after ReadyPoll. It never blocks.
func (o *Orchestrator) Init(ctx context.Context) {
	state, err := o.page.ReadyState(ctx)
	if err != nil {
		log(ctx).Error("failed to read ready state", "error", err)
		return
	}
	if state == dom.StateLoading {
		log(ctx).Debug("document still loading, deferring")
		o.sched.After(ReadyPoll, func() { o.Init(ctx) })
		return
	}
	_, _ = o.router.Route(ctx)
}
