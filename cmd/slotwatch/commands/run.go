package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/slotwatch/internal/logger"
	"github.com/jmylchreest/slotwatch/pkg/booking"
	"github.com/jmylchreest/slotwatch/pkg/browser/chrome"
	"github.com/jmylchreest/slotwatch/pkg/browser/pw"
	"github.com/jmylchreest/slotwatch/pkg/config"
	"github.com/jmylchreest/slotwatch/pkg/dom"
	"github.com/jmylchreest/slotwatch/pkg/notify"
	"github.com/jmylchreest/slotwatch/pkg/prompt"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the booking flow until interrupted",
	Long: `Open the booking site in a browser and work through it with the saved
details: choose the car test, enter the licence, date and postcode,
then keep reloading the test centre results.

If the saved details are incomplete you are asked to enter them first.
The "Configure Script" action can be triggered at any time over HTTP
when --control-addr is set:

  curl -X POST http://localhost:8765/menu/Configure%20Script

Examples:
  slotwatch run
  slotwatch run --browser playwright --headless
  slotwatch run --centres 20 --control-addr localhost:8765`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.String("browser", "chrome", "browser driver: chrome, playwright")
	flags.Bool("headless", false, "run the browser without a window")
	flags.Bool("playwright-install", false, "download the playwright driver and chromium first")
	flags.String("start-url", booking.StartURL, "first page of the booking flow")
	flags.Int("centres", booking.DefaultNearestSize, "test centres to list before polling stops asking for more")
	flags.String("control-addr", "", "serve the menu actions over HTTP on this address")
	flags.String("nats-url", "", "publish notifications to this NATS server")
	flags.String("nats-subject", notify.DefaultSubject, "NATS subject for notifications")
	flags.Bool("plain", false, "print notifications without styling")

	for key, name := range map[string]string{
		"browser":            "browser",
		"headless":           "headless",
		"playwright_install": "playwright-install",
		"start_url":          "start-url",
		"centres":            "centres",
		"control_addr":       "control-addr",
		"nats_url":           "nats-url",
		"nats_subject":       "nats-subject",
		"plain":              "plain",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

// livePage is a browser tab that must be closed.
type livePage interface {
	dom.Page
	Close() error
}

func launchBrowser() (livePage, error) {
	headless := viper.GetBool("headless")
	switch name := viper.GetString("browser"); name {
	case "chrome", "":
		return chrome.Launch(chrome.Options{Headless: headless})
	case "playwright":
		return pw.Launch(pw.Options{Headless: headless, Install: viper.GetBool("playwright_install")})
	default:
		return nil, fmt.Errorf("unknown browser: %s (use chrome or playwright)", name)
	}
}

func buildNotifier(plain bool) (notify.Notifier, func(), error) {
	notifiers := notify.Multi{notify.NewToast(os.Stdout, plain)}
	cleanup := func() {}

	if url := viper.GetString("nats_url"); url != "" {
		nc, err := notify.Connect(url)
		if err != nil {
			return nil, cleanup, err
		}
		host, _ := os.Hostname()
		n := notify.NewNATS(nc, viper.GetString("nats_subject"), host)
		notifiers = append(notifiers, n)
		cleanup = func() {
			if err := nc.Drain(); err != nil {
				logger.Debug("nats drain failed", "error", err)
			}
		}
		logger.Info("publishing notifications", "url", url, "subject", n.Subject())
	}
	return notifiers, cleanup, nil
}

// loadSaved reads the saved details once. Load itself logs one warning per
// invalid field.
func loadSaved(st config.Store) *config.Loader {
	loader := config.NewLoader(st)
	loader.Current()
	return loader
}

func runRun(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStore()
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	loader := loadSaved(st)

	notifier, closeNotifier, err := buildNotifier(viper.GetBool("plain"))
	if err != nil {
		logger.Error("failed to set up notifications", "error", err)
		return err
	}
	defer closeNotifier()

	page, err := launchBrowser()
	if err != nil {
		logger.Error("failed to launch browser", "error", err)
		return err
	}
	defer page.Close()

	session, err := booking.NewSession(booking.SessionConfig{
		Page:     page,
		Store:    st,
		Loader:   loader,
		Prompter: prompt.NewTerminal(os.Stdin, os.Stderr).WithContext(ctx),
		Notifier: notifier,
		Options: booking.Options{
			StartURL:       viper.GetString("start_url"),
			NearestCentres: viper.GetInt("centres"),
		},
	})
	if err != nil {
		return err
	}

	if addr := viper.GetString("control_addr"); addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           session.Menu().Handler(ctx, session.Dispatch),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("menu control listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("menu control stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("slotwatch running, press Ctrl+C to stop",
		"browser", viper.GetString("browser"),
		"centres", viper.GetInt("centres"))

	if err := session.Run(ctx); err != nil {
		logger.Error("session ended", "error", err)
		return err
	}
	logger.Info("stopped")
	return nil
}
