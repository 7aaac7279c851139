// Package notify turns post-create store events into best-effort email
// notifications. The store only exposes the hook; delivery happens here, off
// the request path.
package notify

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/brightward/patientd/internal/metrics"
	"github.com/brightward/patientd/internal/store"
)

// DefaultBufferSize is the notifier's event channel capacity.
const DefaultBufferSize = 64

// CreateEvent describes one successful patient create.
type CreateEvent struct {
	EventID    string
	Patient    store.Patient
	OccurredAt time.Time
}

// Notifier consumes create events on a single worker goroutine and hands
// them to a Mailer. Enqueueing never blocks a create: when the buffer is full
// the event is dropped with a warning.
type Notifier struct {
	mailer  Mailer
	log     zerolog.Logger
	events  chan CreateEvent
	entropy *rand.Rand
	mu      sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// NewNotifier returns a notifier delivering through mailer. bufferSize <= 0
// falls back to DefaultBufferSize. Call Start before use and Close on
// shutdown.
func NewNotifier(mailer Mailer, bufferSize int, logger zerolog.Logger) *Notifier {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Notifier{
		mailer:  mailer,
		log:     logger,
		events:  make(chan CreateEvent, bufferSize),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		done:    make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (n *Notifier) Start() {
	go n.run()
}

// PatientCreated returns the store hook that enqueues create events.
func (n *Notifier) PatientCreated() store.CreateHook {
	return func(_ context.Context, p store.Patient) {
		event := CreateEvent{
			EventID:    n.newEventID(),
			Patient:    p,
			OccurredAt: time.Now(),
		}

		select {
		case n.events <- event:
		default:
			n.log.Warn().
				Int64("patient_id", p.ID).
				Str("event_id", event.EventID).
				Msg("Notification buffer full, dropping create event")
			metrics.RecordNotification("dropped")
		}
	}
}

// Close stops accepting events and waits for the worker to drain the buffer.
func (n *Notifier) Close() {
	n.once.Do(func() {
		close(n.events)
		<-n.done
	})
}

func (n *Notifier) newEventID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), n.entropy).String()
}

func (n *Notifier) run() {
	defer close(n.done)

	for event := range n.events {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := n.mailer.Send(ctx, buildMessage(event))
		cancel()

		if err != nil {
			n.log.Error().
				Err(err).
				Int64("patient_id", event.Patient.ID).
				Str("event_id", event.EventID).
				Msg("Failed to send create notification")
			metrics.RecordNotification("error")
			continue
		}

		n.log.Info().
			Int64("patient_id", event.Patient.ID).
			Str("event_id", event.EventID).
			Msg("Create notification sent")
		metrics.RecordNotification("sent")
	}
}

// buildMessage formats the notification mail for one create event.
func buildMessage(event CreateEvent) Message {
	ts := event.OccurredAt.Format("2006-01-02 15:04:05")
	return Message{
		Subject: fmt.Sprintf("Patient Record Created at %s", ts),
		Body: fmt.Sprintf(
			"A new patient record has been created:\nName: %s\nAge: %s\nDisease: %s",
			event.Patient.Name, event.Patient.Age, event.Patient.Disease),
	}
}
