package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recorder struct{ got []string }

func (r *recorder) Notify(m string) { r.got = append(r.got, m) }

type fakePublisher struct {
	subject string
	data    []byte
	err     error
	calls   int
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.calls++
	f.subject = subject
	f.data = data
	return f.err
}

// --- Toast Tests ---

func TestToast_Plain(t *testing.T) {
	var buf bytes.Buffer
	toast := NewToast(&buf, true)
	toast.now = func() time.Time { return time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC) }

	toast.Notify("Configuration saved!")

	if got := buf.String(); got != "[09:30:00] Configuration saved!\n" {
		t.Errorf("unexpected plain toast %q", got)
	}
}

func TestToast_Styled(t *testing.T) {
	var buf bytes.Buffer
	NewToast(&buf, false).Notify("Slots found")
	if !strings.Contains(buf.String(), "Slots found") {
		t.Errorf("styled toast should contain the message, got %q", buf.String())
	}
}

// --- NATS Tests ---

func TestNATS_PublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATS(pub, "", "")

	n.Notify("hello")

	if pub.subject != DefaultSubject {
		t.Errorf("subject = %q, want %q", pub.subject, DefaultSubject)
	}
	var evt Event
	if err := json.Unmarshal(pub.data, &evt); err != nil {
		t.Fatalf("payload is not an Event: %v", err)
	}
	if evt.Message != "hello" || evt.Source != "slotwatch" {
		t.Errorf("unexpected event %+v", evt)
	}
	if _, err := uuid.Parse(evt.ID); err != nil {
		t.Errorf("event id is not a uuid: %q", evt.ID)
	}
}

func TestNATS_PublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("no responders")}
	n := NewNATS(pub, "custom.subject", "test")
	n.Notify("x")
	if pub.calls != 1 || n.Subject() != "custom.subject" {
		t.Errorf("expected a single publish on custom subject, calls=%d", pub.calls)
	}
}

// --- Multi Tests ---

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, nil, Nop{}, b}.Notify("m")
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("expected both notifiers to receive the message, got %v %v", a.got, b.got)
	}
}
