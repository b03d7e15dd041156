package validate

import (
	"strings"
	"testing"
)

// --- Licence Tests ---

func TestLicence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"upper and digits", "MORGA657054SM9IJ", true},
		{"lower case", "morga657054sm9ij", true},
		{"all digits", "1234567890123456", true},
		{"fifteen chars", "MORGA657054SM9I", false},
		{"seventeen chars", "MORGA657054SM9IJK", false},
		{"contains space", "MORGA657054 M9IJ", false},
		{"contains underscore", "MORGA657054_M9IJ", false},
		{"empty", "", false},
		{"placeholder", "Your_Driver_Licence_Here", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Licence(tt.input); got != tt.want {
				t.Errorf("Licence(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLicence_AnyAlphanumericOfLength16(t *testing.T) {
	alphabet := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for start := 0; start+16 <= len(alphabet); start++ {
		s := alphabet[start : start+16]
		if !Licence(s) {
			t.Errorf("Licence(%q) = false, want true", s)
		}
		for _, bad := range []string{"-", ".", "é", " "} {
			mutated := bad + s[1:]
			if Licence(mutated) {
				t.Errorf("Licence(%q) = true, want false", mutated)
			}
		}
	}
}

// --- Postcode Tests ---

func TestPostcode(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"SW1A 1AA", true},
		{"M1 1AA", true},
		{"sw1a 1aa", true},
		{"B33 8TH", true},
		{"CR2 6XH", true},
		{"DN551PT", true},
		{"12345", false},
		{"SW1A  1AA", false},
		{"SW1A-1AA", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Postcode(tt.input); got != tt.want {
			t.Errorf("Postcode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// --- Instructor Tests ---

func TestInstructor(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"123456", true},
		{"0", true},
		{"", false},
		{"12a456", false},
		{" 123", false},
		{"-1", false},
	}
	for _, tt := range tests {
		if got := Instructor(tt.input); got != tt.want {
			t.Errorf("Instructor(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// --- Date Tests ---

func TestDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"29/02/2024", true},
		{"29/02/2023", false},
		{"01/01/0000", false},
		{"01/01/0001", true},
		{"32/01/2024", false},
		{"2024/08/15", false},
		{"15/08/2024", true},
		{"31/12/2025", true},
		{"31/04/2025", false},
		{"31/02/2024", false},
		{"00/01/2024", false},
		{"15/13/2024", false},
		{"15-08-2024", false},
		{"08/15/2024", false},
		{"1/8/2024", false},
		{"15/08/24", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Date(tt.input); got != tt.want {
			t.Errorf("Date(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// --- Register Tests ---

func TestNew_StructValidation(t *testing.T) {
	type details struct {
		Licence    string `validate:"licence"`
		Date       string `validate:"test_date"`
		Postcode   string `validate:"uk_postcode"`
		Instructor string `validate:"omitempty,instructor_ref"`
	}

	v := New()

	ok := details{Licence: "MORGA657054SM9IJ", Date: "15/08/2026", Postcode: "M1 1AA"}
	if err := v.Struct(ok); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}

	bad := details{Licence: "short", Date: "29/02/2023", Postcode: "12345", Instructor: "x1"}
	err := v.Struct(bad)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, tag := range []string{TagLicence, TagTestDate, TagPostcode, TagInstructor} {
		if !strings.Contains(err.Error(), "'"+tag+"'") {
			t.Errorf("expected failure on tag %q, got %v", tag, err)
		}
	}
}

func TestNew_VarValidation(t *testing.T) {
	v := New()
	if err := v.Var("SW1A 1AA", TagPostcode); err != nil {
		t.Errorf("Var(postcode) error = %v", err)
	}
	if err := v.Var("nope", TagPostcode); err == nil {
		t.Error("Var(postcode) should fail for bad postcode")
	}
}
