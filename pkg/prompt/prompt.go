// Package prompt implements the interactive dialogs used by the
// configuration flow: a line-based terminal prompter and a scripted one
// for flags and tests.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Clear is the answer that empties a field, since an empty line keeps the
// current value.
const Clear = "-"

// Prompter is the full dialog surface: text prompts, yes/no questions and
// blocking alerts.
type Prompter interface {
	Prompt(message, current string) (string, bool)
	Confirm(message string) bool
	Alert(message string)
}

// Terminal reads answers line by line from in and writes prompts to out.
// Input is read on its own goroutine so an open prompt can be abandoned
// when the context given to WithContext ends.
type Terminal struct {
	mu    sync.Mutex
	in    *bufio.Reader
	out   io.Writer
	done  <-chan struct{}
	start sync.Once
	lines chan readResult
}

type readResult struct {
	line string
	ok   bool
}

// NewTerminal returns a terminal prompter.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, lines: make(chan readResult)}
}

// WithContext makes every open and later prompt answer as cancelled once
// ctx ends. It returns t.
func (t *Terminal) WithContext(ctx context.Context) *Terminal {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = ctx.Done()
	return t
}

// Prompt shows message with the current value in brackets. End of input
// cancels, an empty line keeps current and "-" clears the value.
func (t *Terminal) Prompt(message, current string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", message, current)
	} else {
		fmt.Fprintf(t.out, "%s ", message)
	}

	line, ok := t.readLine()
	if !ok {
		fmt.Fprintln(t.out)
		return "", false
	}
	switch line {
	case "":
		return current, true
	case Clear:
		return "", true
	}
	return line, true
}

// Confirm asks a yes/no question. Anything other than y or yes is no.
func (t *Terminal) Confirm(message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "%s [y/N]: ", message)
	line, ok := t.readLine()
	if !ok {
		fmt.Fprintln(t.out)
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

// Alert prints message on its own line.
func (t *Terminal) Alert(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "! %s\n", message)
}

// readLine waits for the next line, end of input or the end of the
// context. Callers hold t.mu.
func (t *Terminal) readLine() (string, bool) {
	t.start.Do(func() { go t.readLoop() })
	select {
	case r := <-t.lines:
		return r.line, r.ok
	case <-t.done:
		return "", false
	}
}

func (t *Terminal) readLoop() {
	for {
		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			close(t.lines)
			return
		}
		t.lines <- readResult{line: strings.TrimRight(line, "\r\n"), ok: true}
	}
}

// Scripted answers prompts from a map keyed by prompt message. A message
// with no entry is treated as cancelled. Alerts are recorded.
type Scripted struct {
	mu       sync.Mutex
	Answers  map[string]string
	Confirms bool
	Alerts   []string
	Asked    []string
}

// NewScripted returns a scripted prompter.
func NewScripted(answers map[string]string, confirm bool) *Scripted {
	return &Scripted{Answers: answers, Confirms: confirm}
}

// Prompt returns the scripted answer for message.
func (s *Scripted) Prompt(message, current string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, message)
	v, ok := s.Answers[message]
	return v, ok
}

// Confirm returns the scripted confirmation.
func (s *Scripted) Confirm(message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, message)
	return s.Confirms
}

// Alert records message.
func (s *Scripted) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Alerts = append(s.Alerts, message)
}

// Recorded returns a copy of the alerts seen so far.
func (s *Scripted) Recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Alerts...)
}
