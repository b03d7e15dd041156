// Package validate holds the field predicates for booking details.
//
// The predicates are pure and report only true or false. Register exposes
// them as validator/v10 tags so struct-level checks share the same rules.
package validate

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator tags registered by Register.
const (
	TagLicence    = "licence"
	TagTestDate   = "test_date"
	TagPostcode   = "uk_postcode"
	TagInstructor = "instructor_ref"
)

// DateLayout is the only accepted test date shape.
const DateLayout = "02/01/2006"

var (
	licenceRe  = regexp.MustCompile(`^[A-Za-z0-9]{16}$`)
	postcodeRe = regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}$`)
	digitsRe   = regexp.MustCompile(`^[0-9]+$`)
	dateRe     = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// Licence reports whether s is a 16 character alphanumeric driving licence number.
func Licence(s string) bool {
	return licenceRe.MatchString(s)
}

// Postcode reports whether s looks like a UK postcode, in any letter case.
func Postcode(s string) bool {
	return postcodeRe.MatchString(s)
}

// Instructor reports whether s is a non-empty run of digits.
// An empty reference means "not provided"; callers that treat the field
// as optional must check for that themselves.
func Instructor(s string) bool {
	return digitsRe.MatchString(s)
}

// Date reports whether s is DD/MM/YYYY and names a real calendar day.
func Date(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	// time.Parse rejects day 31 in 30 day months and 29/02 outside leap years.
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Year() >= 1
}

// Register adds the four predicates to v as custom tags.
func Register(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		TagLicence:    Licence,
		TagTestDate:   Date,
		TagPostcode:   Postcode,
		TagInstructor: Instructor,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// New returns a validator with the booking tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for empty tags or nil funcs.
	_ = Register(v)
	return v
}
