package config

import (
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/slotwatch/pkg/store"
)

const (
	goodLicence = "MORGA753116SM9IJ"
	goodDate    = "15/08/2026"
	goodPost    = "SW1A 1AA"
)

// countingStore counts Get calls so load-once behaviour is observable.
type countingStore struct {
	*store.Memory
	gets atomic.Int64
}

func (c *countingStore) Get(key, def string) string {
	c.gets.Add(1)
	return c.Memory.Get(key, def)
}

// --- Load Tests ---

func TestLoad_AllValid(t *testing.T) {
	s := store.NewMemory(map[string]string{
		KeyLicence:    goodLicence,
		KeyTestDate:   goodDate,
		KeyPostcode:   goodPost,
		KeyInstructor: "12345",
	})

	cfg, warnings := Load(s)
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	want := Config{Licence: goodLicence, TestDate: goodDate, Postcode: goodPost, InstructorReference: "12345"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("(-want +got)\n%v", diff)
	}
	if !cfg.Complete() {
		t.Error("expected complete config")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	s := store.NewMemory(map[string]string{
		KeyLicence:    "SHORT",
		KeyTestDate:   "31/02/2026",
		KeyPostcode:   "NOT A POSTCODE",
		KeyInstructor: "12a",
	})

	cfg, warnings := Load(s)
	if len(warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %d: %v", len(warnings), warnings)
	}
	if diff := cmp.Diff(Config{}, cfg); diff != "" {
		t.Errorf("expected all defaults (-want +got)\n%v", diff)
	}
	if warnings[0].Field != "licence" || warnings[0].Key != KeyLicence {
		t.Errorf("unexpected first warning: %+v", warnings[0])
	}
	if cfg.Complete() {
		t.Error("config of defaults must not be complete")
	}
}

func TestLoad_EmptyStoreNoWarnings(t *testing.T) {
	cfg, warnings := Load(store.NewMemory(nil))
	if len(warnings) != 0 {
		t.Errorf("missing values must not warn, got %v", warnings)
	}
	if cfg.HasInstructor() {
		t.Error("expected no instructor reference")
	}
}

func TestLoad_EmptyInstructorIsAccepted(t *testing.T) {
	s := store.NewMemory(map[string]string{KeyInstructor: ""})
	cfg, warnings := Load(s)
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected struct validation to fail for empty required fields")
	}
}

// --- Config Tests ---

func TestConfig_Masked(t *testing.T) {
	cfg := Config{Licence: goodLicence, Postcode: goodPost}
	masked := cfg.Masked()
	if masked.Licence != "************M9IJ" {
		t.Errorf("Masked().Licence = %q", masked.Licence)
	}
	if cfg.Licence != goodLicence {
		t.Error("Masked must not modify the receiver")
	}
	if masked.Postcode != goodPost {
		t.Error("only the licence should be masked")
	}
}

func TestFieldsOrder(t *testing.T) {
	var keys []string
	for _, f := range Fields {
		keys = append(keys, f.Key)
	}
	want := []string{KeyLicence, KeyTestDate, KeyPostcode, KeyInstructor}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("(-want +got)\n%v", diff)
	}
}

// --- Loader Tests ---

func TestLoader_LoadsOnce(t *testing.T) {
	s := &countingStore{Memory: store.NewMemory(map[string]string{KeyPostcode: goodPost})}
	l := NewLoader(s)

	first := l.Current()
	_ = l.Current()
	_ = l.Warnings()

	if got := s.gets.Load(); got != int64(len(Fields)) {
		t.Errorf("expected %d store reads, got %d", len(Fields), got)
	}
	if first.Postcode != goodPost {
		t.Errorf("Postcode = %q", first.Postcode)
	}

	// Store changes are invisible until Reload.
	_ = s.Set(KeyPostcode, "M1 1AA")
	if got := l.Current().Postcode; got != goodPost {
		t.Errorf("expected cached postcode, got %q", got)
	}
	if got := l.Reload().Postcode; got != "M1 1AA" {
		t.Errorf("expected reloaded postcode, got %q", got)
	}
	if got := s.gets.Load(); got != int64(2*len(Fields)) {
		t.Errorf("expected %d store reads after reload, got %d", 2*len(Fields), got)
	}
}

func TestLoader_ReloadBeforeCurrent(t *testing.T) {
	s := &countingStore{Memory: store.NewMemory(nil)}
	l := NewLoader(s)
	_ = l.Reload()
	_ = l.Current()
	if got := s.gets.Load(); got != int64(len(Fields)) {
		t.Errorf("Reload should satisfy the first load, got %d reads", got)
	}
}

func TestLoader_Warnings(t *testing.T) {
	l := NewLoader(store.NewMemory(map[string]string{KeyLicence: "bad"}))
	w := l.Warnings()
	if len(w) != 1 || w[0].Field != "licence" {
		t.Errorf("unexpected warnings: %v", w)
	}
}
