package config

import (
	"strings"

	"github.com/jmylchreest/slotwatch/internal/logger"
)

// Prompter asks the user for values. Prompt returns ok=false when the user
// cancels.
type Prompter interface {
	Prompt(message, current string) (value string, ok bool)
	Alert(message string)
}

// Notifier shows a short fire-and-forget message.
type Notifier interface {
	Notify(message string)
}

// SavedMessage is the confirmation shown once the flow has visited every field.
const SavedMessage = "Configuration saved! Reload the page to apply changes."

// Result summarises one reconfiguration run by field name.
type Result struct {
	Saved     []string `json:"saved" yaml:"saved"`
	Rejected  []string `json:"rejected" yaml:"rejected"`
	Cancelled []string `json:"cancelled" yaml:"cancelled"`
}

// Reconfigure walks the fields in order, prompting for each with its
// current stored value. Each answer is validated on its own: a rejected
// or cancelled field leaves the stored value alone and the flow moves on.
// A single confirmation is sent when every field has been visited.
func Reconfigure(store Store, ui Prompter, n Notifier) Result {
	var res Result

	for _, f := range Fields {
		current := store.Get(f.Key, f.Default)

		answer, ok := ui.Prompt(f.Label, current)
		if !ok {
			logger.Debug("field prompt cancelled", "field", f.Name)
			res.Cancelled = append(res.Cancelled, f.Name)
			continue
		}

		value := strings.TrimSpace(answer)
		if !f.Accepts(value) {
			logger.Info("rejected configuration value", "field", f.Name)
			ui.Alert(f.Problem)
			res.Rejected = append(res.Rejected, f.Name)
			continue
		}

		if err := store.Set(f.Key, value); err != nil {
			logger.Error("failed to save configuration value", "field", f.Name, "error", err)
			ui.Alert("Could not save " + strings.ReplaceAll(f.Name, "_", " ") + ": " + err.Error())
			res.Rejected = append(res.Rejected, f.Name)
			continue
		}
		res.Saved = append(res.Saved, f.Name)
	}

	n.Notify(SavedMessage)
	return res
}
