// Package booking drives the driving-test booking flow: it recognises the
// page on screen, fills in that page, and polls the test-centre results by
// reloading on a jittered interval.
package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/slotwatch/internal/logger"
)

// StartURL is the first page of the booking flow.
const StartURL = "https://driverpracticaltest.dvsa.gov.uk/application"

// Page markers. These must match the booking site exactly.
const (
	SelTestTypeCar     = "#test-type-car"
	SelLicence         = "#driving-licence"
	SelSpecialNeedsNo  = "#special-needs-none"
	SelLicenceSubmit   = "#driving-licence-submit"
	SelTestDate        = "#test-choice-calendar"
	SelInstructor      = "#instructor-prn"
	SelPostcode        = "#test-centres-input"
	SelPostcodeSubmit  = "#test-centres-submit"
	SelResults         = ".test-centre-results"
	SelFetchMore       = "#fetch-more-centres"
	TitleTestType      = "Type of test"
	TitleLicence       = "Licence details"
	TitleTestDate      = "Test date"
	TitleTestCentre    = "Test centre"
	DefaultNearestSize = 12
)

// State identifies a page of the booking flow.
type State int

const (
	Unknown State = iota
	TestType
	LicenceDetails
	TestDate
	TestCentreResults
	PostcodeSearch
)

var stateNames = map[State]string{
	Unknown:           "unknown",
	TestType:          "test_type",
	LicenceDetails:    "licence_details",
	TestDate:          "test_date",
	TestCentreResults: "test_centre_results",
	PostcodeSearch:    "postcode_search",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name in JSON and YAML reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type loadIDKey struct{}

// WithLoadID tags ctx with the page load it belongs to.
func WithLoadID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, loadIDKey{}, id)
}

// LoadID returns the page load ID carried by ctx, or "".
func LoadID(ctx context.Context) string {
	id, _ := ctx.Value(loadIDKey{}).(string)
	return id
}

// log returns the process logger annotated with the load ID, if any.
func log(ctx context.Context) *slog.Logger {
	if id := LoadID(ctx); id != "" {
		return logger.With("load_id", id)
	}
	return logger.With()
}
