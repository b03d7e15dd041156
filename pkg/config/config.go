// Package config holds the booking details the automation types into the
// form, how they are loaded from a Store, and the interactive flow that
// replaces them.
package config

import (
	"strings"
	"sync"

	"github.com/jmylchreest/slotwatch/internal/logger"
	"github.com/jmylchreest/slotwatch/pkg/validate"
)

// Store keys. They match the keys the browser userscript persisted, so an
// exported store can be reused as-is.
const (
	KeyLicence    = "drivingLicenceNumber"
	KeyTestDate   = "testDate"
	KeyPostcode   = "postcode"
	KeyInstructor = "instructorReferenceNumber"
)

// Store is a persisted string key/value map. Last write wins.
type Store interface {
	// Get returns the value for key, or def when it is not set.
	Get(key, def string) string
	// Set persists value under key.
	Set(key, value string) error
}

// Config is the immutable set of booking details for one run. It is
// passed by value; nothing reads it from package state.
type Config struct {
	Licence             string `json:"licence" yaml:"licence" validate:"licence"`
	TestDate            string `json:"test_date" yaml:"test_date" validate:"test_date"`
	Postcode            string `json:"postcode" yaml:"postcode" validate:"uk_postcode"`
	InstructorReference string `json:"instructor_reference,omitempty" yaml:"instructor_reference,omitempty" validate:"omitempty,instructor_ref"`
}

// Complete reports whether the three required fields hold valid values.
func (c Config) Complete() bool {
	return validate.Licence(c.Licence) && validate.Date(c.TestDate) && validate.Postcode(c.Postcode)
}

// HasInstructor reports whether an instructor reference was provided.
func (c Config) HasInstructor() bool {
	return c.InstructorReference != ""
}

// Validate runs struct validation with the booking tags.
func (c Config) Validate() error {
	return validate.New().Struct(c)
}

// Masked returns a copy with the licence number partly hidden, for display.
func (c Config) Masked() Config {
	if n := len(c.Licence); n > 4 {
		c.Licence = strings.Repeat("*", n-4) + c.Licence[n-4:]
	}
	return c
}

// Field describes one configurable value.
type Field struct {
	Name     string // short name used in logs and reports
	Key      string // store key
	Default  string
	Label    string // prompt text
	Problem  string // message shown when a value is rejected
	Optional bool   // empty is accepted
	Valid    func(string) bool
}

// Accepts reports whether v may be stored for this field.
func (f Field) Accepts(v string) bool {
	if f.Optional && v == "" {
		return true
	}
	return f.Valid(v)
}

func (f Field) get(c *Config) *string {
	switch f.Key {
	case KeyLicence:
		return &c.Licence
	case KeyTestDate:
		return &c.TestDate
	case KeyPostcode:
		return &c.Postcode
	default:
		return &c.InstructorReference
	}
}

// Fields lists the configurable values in prompt order.
var Fields = []Field{
	{
		Name:    "licence",
		Key:     KeyLicence,
		Label:   "Enter your Driving Licence Number:",
		Problem: "Invalid driving licence number: it must be exactly 16 letters or digits.",
		Valid:   validate.Licence,
	},
	{
		Name:    "test_date",
		Key:     KeyTestDate,
		Label:   "Enter desired test date (DD/MM/YYYY):",
		Problem: "Invalid test date: use DD/MM/YYYY and a real calendar date.",
		Valid:   validate.Date,
	},
	{
		Name:    "postcode",
		Key:     KeyPostcode,
		Label:   "Enter your Postcode:",
		Problem: "Invalid postcode: enter a UK postcode such as SW1A 1AA.",
		Valid:   validate.Postcode,
	},
	{
		Name:     "instructor_reference",
		Key:      KeyInstructor,
		Label:    "Enter Instructor Reference Number (optional):",
		Problem:  "Invalid instructor reference number: use digits only, or leave it blank.",
		Optional: true,
		Valid:    validate.Instructor,
	},
}

// FieldWarning records a stored value that was replaced by its default.
type FieldWarning struct {
	Field string `json:"field" yaml:"field"`
	Key   string `json:"key" yaml:"key"`
}

// Load reads the four fields from store. A value that fails validation is
// replaced by the field default and reported once; a value equal to the
// default is treated as not set.
func Load(store Store) (Config, []FieldWarning) {
	var cfg Config
	var warnings []FieldWarning

	for _, f := range Fields {
		v := store.Get(f.Key, f.Default)
		if v != f.Default && !f.Accepts(v) {
			logger.Warn("stored value failed validation, using default",
				"field", f.Name,
				"key", f.Key)
			warnings = append(warnings, FieldWarning{Field: f.Name, Key: f.Key})
			v = f.Default
		}
		*f.get(&cfg) = v
	}

	return cfg, warnings
}

// Loader loads the configuration once per process and hands out copies.
type Loader struct {
	store Store

	once     sync.Once
	mu       sync.RWMutex
	cfg      Config
	warnings []FieldWarning
}

// NewLoader returns a loader over store.
func NewLoader(store Store) *Loader {
	return &Loader{store: store}
}

// Current returns the loaded configuration, loading it on first use.
func (l *Loader) Current() Config {
	l.once.Do(l.load)
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Warnings returns the substitutions made by the last load.
func (l *Loader) Warnings() []FieldWarning {
	l.once.Do(l.load)
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]FieldWarning(nil), l.warnings...)
}

// Reload re-reads the store. Only the reconfiguration path calls it.
func (l *Loader) Reload() Config {
	l.once.Do(func() {})
	l.load()
	return l.Current()
}

func (l *Loader) load() {
	cfg, warnings := Load(l.store)
	l.mu.Lock()
	l.cfg = cfg
	l.warnings = warnings
	l.mu.Unlock()
	logger.Debug("configuration loaded", "complete", cfg.Complete(), "warnings", len(warnings))
}
