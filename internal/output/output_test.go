package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type report struct {
	State string `json:"state" yaml:"state"`
	Count int    `json:"count" yaml:"count"`
}

// --- ParseFormat Tests ---

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSONL", FormatJSONL, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("toml"))
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

// --- JSON Tests ---

func TestWriter_JSONSingle(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON)
	_ = w.Write(report{State: "test_date", Count: 1})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("single report should be a JSON object: %v\n%s", err, buf.String())
	}
	if got.State != "test_date" {
		t.Errorf("unexpected report %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  \"state\"") {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}

func TestWriter_JSONMultiple(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON)
	_ = w.Write(report{State: "a"})
	_ = w.Write(report{State: "b"})
	_ = w.Flush()

	var got []report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected JSON array: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 reports, got %d", len(got))
	}
}

// --- JSONL Tests ---

func TestWriter_JSONLStreams(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSONL)
	_ = w.Write(report{State: "a", Count: 1})
	if buf.Len() == 0 {
		t.Fatal("jsonl should write before Flush")
	}
	_ = w.Write(report{State: "b", Count: 2})
	_ = w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var second report
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil || second.Count != 2 {
		t.Errorf("bad second line %q (err %v)", lines[1], err)
	}
}

// --- YAML Tests ---

func TestWriter_YAMLDocuments(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatYAML)
	_ = w.Write(report{State: "a", Count: 1})
	_ = w.Write(report{State: "b", Count: 2})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	dec := yaml.NewDecoder(strings.NewReader(buf.String()))
	var docs []report
	for {
		var r report
		if err := dec.Decode(&r); err != nil {
			break
		}
		docs = append(docs, r)
	}
	if len(docs) != 2 || docs[1].State != "b" {
		t.Errorf("expected two YAML documents, got %+v\n%s", docs, buf.String())
	}
}

func TestWriter_FlushResets(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatYAML)
	_ = w.Write(report{State: "a"})
	_ = w.Flush()
	n := buf.Len()
	_ = w.Flush()
	if buf.Len() != n {
		t.Error("second flush should write nothing new")
	}
}
