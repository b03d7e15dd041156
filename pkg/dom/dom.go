// Package dom defines the boundary between the booking logic and a live
// page, plus goquery snapshots of a page and an in-memory page used by
// tests and the detect command.
package dom

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNotFound is returned when a selector matches no element.
var ErrNotFound = errors.New("element not found")

// Ready states reported by ReadyState, as in document.readyState.
const (
	StateLoading     = "loading"
	StateInteractive = "interactive"
	StateComplete    = "complete"
)

// Page is a live document. Mutating calls operate on the first element
// matching a CSS selector and return ErrNotFound when there is none.
type Page interface {
	Title(ctx context.Context) (string, error)
	ReadyState(ctx context.Context) (string, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
	Exists(ctx context.Context, selector string) (bool, error)
	SetValue(ctx context.Context, selector, value string) error
	SetChecked(ctx context.Context, selector string, checked bool) error
	Click(ctx context.Context, selector string) error
	ChildCount(ctx context.Context, selector string) (int, error)
	Navigate(ctx context.Context, url string) error
	// Loads delivers one value per completed document load.
	Loads() <-chan struct{}
}

// Snapshot is a parsed, read-only copy of a page at one instant.
type Snapshot struct {
	Title string
	HTML  string
	Doc   *goquery.Document
}

// NewSnapshot parses html. The title falls back to the <title> element.
func NewSnapshot(title, html string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return &Snapshot{Title: title, HTML: html, Doc: doc}, nil
}

// Has reports whether selector matches anything.
func (s *Snapshot) Has(selector string) bool {
	if s == nil || s.Doc == nil {
		return false
	}
	return s.Doc.Find(selector).Length() > 0
}

// ChildCount returns the number of element children of the first match,
// or -1 when nothing matches.
func (s *Snapshot) ChildCount(selector string) int {
	if s == nil || s.Doc == nil {
		return -1
	}
	sel := s.Doc.Find(selector).First()
	if sel.Length() == 0 {
		return -1
	}
	return sel.Children().Length()
}
