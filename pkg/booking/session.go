package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jmylchreest/slotwatch/internal/logger"
	"github.com/jmylchreest/slotwatch/pkg/config"
	"github.com/jmylchreest/slotwatch/pkg/dom"
	"github.com/jmylchreest/slotwatch/pkg/menu"
	"github.com/jmylchreest/slotwatch/pkg/notify"
	"github.com/jmylchreest/slotwatch/pkg/prompt"
	"github.com/jmylchreest/slotwatch/pkg/schedule"
)

// ConfigureAction is the menu entry that reruns the configuration prompts.
const ConfigureAction = "Configure Script"

// IncompleteConfigMessage is asked before routing when details are missing.
const IncompleteConfigMessage = "Configuration is missing or incomplete. Would you like to set it now?"

// SessionConfig holds the collaborators of a Session.
type SessionConfig struct {
	Page     dom.Page
	Store    config.Store
	Loader   *config.Loader
	Prompter prompt.Prompter
	Notifier notify.Notifier
	Menu     *menu.Registry
	Options  Options
	// SkipStart leaves the browser on its current page instead of opening
	// StartURL when Run begins.
	SkipStart bool
}

// Session owns the event loop that every page load, timer and menu action
// runs on.
type Session struct {
	cfg  SessionConfig
	loop *schedule.Loop
}

// NewSession validates cfg and returns a session ready to Run.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Page == nil || cfg.Store == nil || cfg.Prompter == nil {
		return nil, errors.New("session needs a page, a store and a prompter")
	}
	if cfg.Loader == nil {
		cfg.Loader = config.NewLoader(cfg.Store)
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop{}
	}
	if cfg.Menu == nil {
		cfg.Menu = menu.NewRegistry()
	}
	cfg.Options = cfg.Options.withDefaults()

	s := &Session{cfg: cfg, loop: schedule.NewLoop()}
	if err := cfg.Menu.Register(ConfigureAction, s.reconfigure); err != nil {
		return nil, fmt.Errorf("register menu: %w", err)
	}
	return s, nil
}

// Dispatch queues fn on the session loop. Pass it to menu.Handler.
func (s *Session) Dispatch(fn func()) { s.loop.Post(fn) }

// Menu returns the registry holding the session's actions.
func (s *Session) Menu() *menu.Registry { return s.cfg.Menu }

// Run opens the start page and processes page loads until ctx ends.
func (s *Session) Run(ctx context.Context) error {
	go s.forwardLoads(ctx)

	if !s.cfg.SkipStart {
		s.loop.Post(func() {
			logger.Info("opening booking start page", "url", s.cfg.Options.StartURL)
			if err := s.cfg.Page.Navigate(ctx, s.cfg.Options.StartURL); err != nil {
				logger.Error("failed to open start page", "error", err)
			}
		})
	} else {
		s.loop.Post(func() { s.onLoad(ctx) })
	}

	err := s.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) forwardLoads(ctx context.Context) {
	loads := s.cfg.Page.Loads()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-loads:
			if !ok {
				return
			}
			s.loop.Post(func() { s.onLoad(ctx) })
		}
	}
}

// onLoad handles one page load on the loop goroutine. Anything scheduled
// for the previous load is dropped from here on.
func (s *Session) onLoad(ctx context.Context) {
	gen := s.loop.Advance()
	id := uuid.NewString()
	ctx = WithLoadID(ctx, id)
	log(ctx).Debug("page loaded", "generation", gen)

	cfg := s.cfg.Loader.Current()
	if !cfg.Complete() {
		s.checkConfig(ctx)
		return
	}

	NewOrchestrator(s.cfg.Page, cfg, s.loop, s.cfg.Notifier, s.cfg.Options).Init(ctx)
}

// checkConfig offers to collect missing details. After a reconfiguration
// the start page is reopened so the new values apply from the first page.
func (s *Session) checkConfig(ctx context.Context) {
	if !s.cfg.Prompter.Confirm(IncompleteConfigMessage) {
		log(ctx).Warn("configuration incomplete, not routing this page")
		return
	}
	s.reconfigure(ctx)
	if !s.cfg.Loader.Current().Complete() {
		log(ctx).Warn("configuration still incomplete")
		return
	}
	if err := s.cfg.Page.Navigate(ctx, s.cfg.Options.StartURL); err != nil {
		log(ctx).Error("failed to reopen start page", "error", err)
	}
}

func (s *Session) reconfigure(ctx context.Context) {
	res := config.Reconfigure(s.cfg.Store, s.cfg.Prompter, s.cfg.Notifier)
	s.cfg.Loader.Reload()
	log(ctx).Info("configuration updated",
		"saved", res.Saved,
		"rejected", res.Rejected,
		"cancelled", res.Cancelled)
}
