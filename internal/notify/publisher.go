package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
)

// Event is the JSON document published for each finished RSVP.
type Event struct {
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Subject    string        `json:"subject"`
	Guest      *domain.Guest `json:"guest"`
}

type jetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher publishes RSVP events to a NATS JetStream subject.
type Publisher struct {
	conn    *nats.Conn
	js      jetStream
	subject string
}

// NewPublisher connects to url and publishes to subject.
func NewPublisher(url, subject string, opts ...nats.Option) (*Publisher, error) {
	if subject == "" {
		return nil, errors.New("notify: nats subject is required")
	}
	nc, err := nats.Connect(url, append([]nats.Option{nats.Name("wedding-rsvp")}, opts...)...)
	if err != nil {
		return nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}
	return &Publisher{conn: nc, js: js, subject: subject}, nil
}

// Notify implements Notifier.
func (p *Publisher) Notify(ctx context.Context, g *domain.Guest) error {
	if p == nil {
		return errors.New("nil publisher")
	}
	data, err := json.Marshal(Event{
		Type:       "rsvp.submitted",
		OccurredAt: time.Now().UTC(),
		Subject:    Summary(g).Subject,
		Guest:      g,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject, data, nats.Context(ctx))
	return err
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
