// Package output writes command reports as JSON, JSON lines or YAML.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted --output values.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat accepts a format name in any case; "yml" is an alias.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format: %s (use json, jsonl or yaml)", s)
}

// Writer collects reports and renders them on Flush. JSON lines are
// written as they arrive.
type Writer struct {
	w      *bufio.Writer
	format Format
	indent string
	items  []any
}

// NewWriter creates a writer for format.
func NewWriter(w io.Writer, format Format) (*Writer, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &Writer{w: bufio.NewWriter(w), format: format, indent: "  "}, nil
}

// Write adds one report.
func (w *Writer) Write(v any) error {
	if w.format != FormatJSONL {
		w.items = append(w.items, v)
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := w.w.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.w.Flush()
}

// Flush renders buffered reports. A single report is written on its own;
// several become a JSON array or a stream of YAML documents.
func (w *Writer) Flush() error {
	defer func() { w.items = nil }()

	switch w.format {
	case FormatJSON:
		var v any = w.items
		switch len(w.items) {
		case 0:
			v = []any{}
		case 1:
			v = w.items[0]
		}
		data, err := json.MarshalIndent(v, "", w.indent)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if _, err := w.w.Write(append(data, '\n')); err != nil {
			return err
		}
	case FormatYAML:
		if len(w.items) == 0 {
			break
		}
		enc := yaml.NewEncoder(w.w)
		enc.SetIndent(2)
		for _, item := range w.items {
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return w.w.Flush()
}
