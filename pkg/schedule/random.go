// Package schedule provides jittered one-shot scheduling.
//
// Every form interaction and every reload goes through a Window so that
// the timing between actions stays irregular and human-scale.
package schedule

import (
	cryptorand "crypto/rand"
	"io"
	"math/big"
	mathrand "math/rand/v2"
	"time"
)

// entropy is swapped in tests to exercise the fallback path.
var entropy io.Reader = cryptorand.Reader

// RandomIntBetween returns a uniformly distributed integer in [min, max].
// It draws from crypto/rand and falls back to math/rand/v2 when the
// crypto source fails. Arguments given in the wrong order are swapped.
func RandomIntBetween(min, max int) int {
	if max < min {
		min, max = max, min
	}
	span := int64(max) - int64(min) + 1
	if n, err := cryptorand.Int(entropy, big.NewInt(span)); err == nil {
		return min + int(n.Int64())
	}
	return min + int(mathrand.Int64N(span))
}

// Window is an inclusive range of delays with millisecond granularity.
type Window struct {
	Min time.Duration
	Max time.Duration
}

var (
	// StepWindow spaces out form interactions.
	StepWindow = Window{Min: 2000 * time.Millisecond, Max: 4000 * time.Millisecond}
	// ReloadWindow spaces out result polling reloads.
	ReloadWindow = Window{Min: 30000 * time.Millisecond, Max: 60000 * time.Millisecond}
)

// Draw picks a delay from the window.
func (w Window) Draw() time.Duration {
	ms := RandomIntBetween(int(w.Min/time.Millisecond), int(w.Max/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Duration) bool {
	return d >= w.Min && d <= w.Max
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// RandomDelay schedules fn once after a delay drawn from w and returns the delay.
func RandomDelay(s Scheduler, w Window, fn func()) time.Duration {
	d := w.Draw()
	s.After(d, fn)
	return d
}
