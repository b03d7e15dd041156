// Package notify delivers short fire-and-forget messages: a styled toast on
// the terminal, an event on a NATS subject, or both.
package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/jmylchreest/slotwatch/internal/logger"
)

// DefaultSubject is the NATS subject used when none is configured.
const DefaultSubject = "slotwatch.notify"

// Notifier shows or sends a message. Delivery failures are logged, never
// returned.
type Notifier interface {
	Notify(message string)
}

// Nop drops every message.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(string) {}

// Multi fans a message out to several notifiers in order.
type Multi []Notifier

// Notify sends message to every notifier.
func (m Multi) Notify(message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(message)
		}
	}
}

var (
	toastStyle     lipgloss.Style
	toastStyleOnce sync.Once
)

func style() lipgloss.Style {
	toastStyleOnce.Do(func() {
		toastStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#3C3C3C")).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00A3E0"))
	})
	return toastStyle
}

// Toast renders messages as a boxed banner on a writer.
type Toast struct {
	mu    sync.Mutex
	out   io.Writer
	plain bool
	now   func() time.Time
}

// NewToast returns a toast writer. Plain output skips styling, for logs
// and non-terminal outputs.
func NewToast(out io.Writer, plain bool) *Toast {
	return &Toast{out: out, plain: plain, now: time.Now}
}

// Notify writes message.
func (t *Toast) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stamp := t.now().Format("15:04:05")
	var text string
	if t.plain {
		text = fmt.Sprintf("[%s] %s", stamp, message)
	} else {
		text = style().Render(stamp + "  " + message)
	}
	if _, err := fmt.Fprintln(t.out, text); err != nil {
		logger.Debug("toast write failed", "error", err)
	}
}

// Publisher is the subset of *nats.Conn used here.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event is the JSON payload published for each message.
type Event struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

// NATS publishes each message as an Event.
type NATS struct {
	pub     Publisher
	subject string
	source  string
}

// NewNATS wraps an existing publisher.
func NewNATS(pub Publisher, subject, source string) *NATS {
	if subject == "" {
		subject = DefaultSubject
	}
	if source == "" {
		source = "slotwatch"
	}
	return &NATS{pub: pub, subject: subject, source: source}
}

// Connect dials url and returns the connection, reconnecting forever.
func Connect(url string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("slotwatch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return nc, nil
}

// Subject returns the subject events are published on.
func (n *NATS) Subject() string { return n.subject }

// Notify publishes message.
func (n *NATS) Notify(message string) {
	evt := Event{
		ID:      uuid.NewString(),
		Time:    time.Now().UTC(),
		Source:  n.source,
		Message: message,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		logger.Warn("failed to encode notification", "error", err)
		return
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		logger.Warn("failed to publish notification", "subject", n.subject, "error", err)
	}
}
