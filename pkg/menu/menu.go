// Package menu is the registry of named user actions (the userscript menu
// commands) and an optional HTTP control surface that triggers them.
package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/mux"

	"github.com/jmylchreest/slotwatch/internal/logger"
)

var (
	// ErrDuplicateAction is returned when a name is registered twice.
	ErrDuplicateAction = errors.New("menu action already registered")
	// ErrUnknownAction is returned when invoking a name nobody registered.
	ErrUnknownAction = errors.New("unknown menu action")
)

// Action runs when its menu entry is chosen.
type Action func(ctx context.Context)

// Registry holds named actions.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an action under name.
func (r *Registry) Register(name string, a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, name)
	}
	r.actions[name] = a
	logger.Debug("menu action registered", "name", name)
	return nil
}

// Invoke runs the named action on the calling goroutine.
func (r *Registry) Invoke(ctx context.Context, name string) error {
	r.mu.RLock()
	a, ok := r.actions[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	logger.Info("menu action invoked", "name", name)
	a(ctx)
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for n := range r.actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatch hands fn to whatever goroutine owns the page, typically
// (*schedule.Loop).Post.
type Dispatch func(fn func())

// Handler exposes the registry over HTTP:
//
//	GET  /menu         list action names
//	POST /menu/{name}  queue the action, 202 on success
//
// Actions are never run on the HTTP goroutine; they are passed to dispatch.
func (r *Registry) Handler(ctx context.Context, dispatch Dispatch) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/menu", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"actions": r.Names()})
	}).Methods(http.MethodGet)

	router.HandleFunc("/menu/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := mux.Vars(req)["name"]
		if !r.Has(name) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": ErrUnknownAction.Error(), "name": name})
			return
		}
		dispatch(func() {
			if err := r.Invoke(ctx, name); err != nil {
				logger.Warn("menu action failed", "name", name, "error", err)
			}
		})
		writeJSON(w, http.StatusAccepted, map[string]any{"queued": name})
	}).Methods(http.MethodPost)

	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write response", "error", err)
	}
}
