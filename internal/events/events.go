// Package events publishes auth lifecycle events onto the message broker.
// Publication is best effort: a broker outage never fails an auth request.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gatehouse/apiserver/internal/mq"
)

// Channel is the broker channel the auth event stream is published on.
const Channel = "auth.events"

// Event names.
const (
	UserRegistered = "user.registered"
	UserSignedIn   = "user.signed_in"
)

const publishTimeout = 5 * time.Second

// Event is the payload published for each auth lifecycle moment.
type Event struct {
	Event  string    `json:"event"`
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// Publisher serializes auth events onto a broker backend. A nil backend
// disables publishing entirely.
type Publisher struct {
	backend mq.Backend
	logger  *slog.Logger
}

// NewPublisher constructs a Publisher. Pass a nil backend to get a no-op.
func NewPublisher(backend mq.Backend, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{backend: backend, logger: logger}
}

// UserRegistered emits a registration event.
func (p *Publisher) UserRegistered(userID, email string) {
	p.publish(Event{Event: UserRegistered, UserID: userID, Email: email, At: time.Now().UTC()})
}

// UserSignedIn emits a signin event.
func (p *Publisher) UserSignedIn(userID, email string) {
	p.publish(Event{Event: UserSignedIn, UserID: userID, Email: email, At: time.Now().UTC()})
}

func (p *Publisher) publish(event Event) {
	if p.backend == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal auth event", slog.Any("error", err))
		return
	}

	// Detached from the request lifecycle so a slow broker cannot delay the
	// HTTP response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if _, err := p.backend.Publish(ctx, Channel, data, map[string]string{"event": event.Event}); err != nil {
			p.logger.Error("publish auth event",
				slog.String("event", event.Event),
				slog.Any("error", err),
			)
		}
	}()
}
