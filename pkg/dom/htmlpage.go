package dom

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Action kinds recorded by HTMLPage.
const (
	ActionSetValue   = "set_value"
	ActionSetChecked = "set_checked"
	ActionClick      = "click"
	ActionNavigate   = "navigate"
)

// Action is one mutation applied to an HTMLPage.
type Action struct {
	Kind     string `json:"kind" yaml:"kind"`
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case ActionClick:
		return fmt.Sprintf("click %s", a.Selector)
	case ActionNavigate:
		return fmt.Sprintf("navigate %s", a.Value)
	default:
		return fmt.Sprintf("%s %s=%q", a.Kind, a.Selector, a.Value)
	}
}

// HTMLPage is a Page over an in-memory goquery document. It records every
// mutation, and optional hooks let a test swap the document on click or
// navigation to emulate the next page.
type HTMLPage struct {
	mu         sync.Mutex
	title      string
	doc        *goquery.Document
	readyState string
	actions    []Action
	loads      chan struct{}

	// OnClick runs after a successful click, without the page lock held.
	OnClick func(p *HTMLPage, selector string)
	// OnNavigate runs after a navigation, before the load is signalled.
	OnNavigate func(p *HTMLPage, url string)
}

// NewHTMLPage parses html into a complete page.
func NewHTMLPage(title, html string) (*HTMLPage, error) {
	p := &HTMLPage{readyState: StateComplete, loads: make(chan struct{}, 16)}
	if err := p.setHTML(title, html); err != nil {
		return nil, err
	}
	return p, nil
}

// Load replaces the document and signals a page load.
func (p *HTMLPage) Load(title, html string) error {
	if err := p.setHTML(title, html); err != nil {
		return err
	}
	p.signalLoad()
	return nil
}

// SetReadyState overrides the reported document.readyState.
func (p *HTMLPage) SetReadyState(state string) {
	p.mu.Lock()
	p.readyState = state
	p.mu.Unlock()
}

// Actions returns a copy of the recorded mutations.
func (p *HTMLPage) Actions() []Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Action(nil), p.actions...)
}

// Value returns the value attribute of the first match.
func (p *HTMLPage) Value(selector string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(selector).First().Attr("value")
}

// Checked reports whether the first match carries the checked attribute.
func (p *HTMLPage) Checked(selector string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.doc.Find(selector).First().Attr("checked")
	return ok
}

func (p *HTMLPage) setHTML(title, html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	p.mu.Lock()
	p.title = title
	p.doc = doc
	p.mu.Unlock()
	return nil
}

func (p *HTMLPage) signalLoad() {
	select {
	case p.loads <- struct{}{}:
	default:
	}
}

func (p *HTMLPage) record(a Action) {
	p.actions = append(p.actions, a)
}

func (p *HTMLPage) Title(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, nil
}

func (p *HTMLPage) ReadyState(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readyState, nil
}

func (p *HTMLPage) Snapshot(context.Context) (*Snapshot, error) {
	p.mu.Lock()
	title := p.title
	html, err := goquery.OuterHtml(p.doc.Selection)
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to serialise page: %w", err)
	}
	return NewSnapshot(title, html)
}

func (p *HTMLPage) Exists(_ context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(selector).Length() > 0, nil
}

func (p *HTMLPage) SetValue(_ context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	sel.SetAttr("value", value)
	p.record(Action{Kind: ActionSetValue, Selector: selector, Value: value})
	return nil
}

func (p *HTMLPage) SetChecked(_ context.Context, selector string, checked bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	if checked {
		sel.SetAttr("checked", "checked")
	} else {
		sel.RemoveAttr("checked")
	}
	p.record(Action{Kind: ActionSetChecked, Selector: selector, Value: fmt.Sprint(checked)})
	return nil
}

func (p *HTMLPage) Click(_ context.Context, selector string) error {
	p.mu.Lock()
	if p.doc.Find(selector).Length() == 0 {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	p.record(Action{Kind: ActionClick, Selector: selector})
	hook := p.OnClick
	p.mu.Unlock()

	if hook != nil {
		hook(p, selector)
	}
	return nil
}

func (p *HTMLPage) ChildCount(_ context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return sel.Children().Length(), nil
}

// Navigate records the navigation, runs OnNavigate and signals a load.
// Without a hook the current document is kept, as on a reload.
func (p *HTMLPage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	p.record(Action{Kind: ActionNavigate, Value: url})
	hook := p.OnNavigate
	p.mu.Unlock()

	if hook != nil {
		hook(p, url)
	}
	p.signalLoad()
	return nil
}

func (p *HTMLPage) Loads() <-chan struct{} {
	return p.loads
}
