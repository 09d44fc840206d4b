package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/loqalabs/speechify-go/internal/config"
	"github.com/loqalabs/speechify-go/internal/events"
	"github.com/loqalabs/speechify-go/internal/logging"
)

// Publisher broadcasts synthesis events over NATS. Publishing is
// fire-and-forget: failures are logged and dropped so the request path is
// never blocked by the message bus.
type Publisher struct {
	conn *nats.Conn
	cfg  config.NATSConfig
}

// Subject suffixes under the configured prefix.
const (
	subjectSynthesisCompleted = "synthesis.completed"
	subjectSynthesisFailed    = "synthesis.failed"
)

// NewPublisher creates a publisher from configuration. Connect must be
// called before events flow.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("NATS URL cannot be empty")
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "speechify"
	}

	return &Publisher{cfg: cfg}, nil
}

// Connect establishes the connection to the NATS server.
func (p *Publisher) Connect() error {
	reconnectWait := p.cfg.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}

	opts := []nats.Option{
		nats.Name("speechify-go"),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(p.cfg.MaxReconnect),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.LogWarn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.LogNATSEvent("", "reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logging.LogNATSEvent("", "closed")
		}),
	}

	conn, err := nats.Connect(p.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p.conn = conn
	logging.LogNATSEvent("", "connected", zap.String("url", conn.ConnectedUrl()))
	return nil
}

// PublishSynthesisEvent implements the client's event sink. Invalid
// events and publish failures are logged and dropped.
func (p *Publisher) PublishSynthesisEvent(event *events.SynthesisEvent) {
	if p.conn == nil {
		return
	}

	if err := event.IsValid(); err != nil {
		logging.LogWarn("Dropping invalid synthesis event", zap.Error(err))
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logging.LogError(err, "Failed to marshal synthesis event")
		return
	}

	suffix := subjectSynthesisCompleted
	if !event.Success {
		suffix = subjectSynthesisFailed
	}
	subject := p.cfg.SubjectPrefix + "." + suffix

	if err := p.conn.Publish(subject, data); err != nil {
		logging.LogError(err, "Failed to publish synthesis event", zap.String("subject", subject))
		return
	}

	logging.LogNATSEvent(subject, "published",
		zap.String("event_uuid", event.UUID),
		zap.Bool("success", event.Success),
	)
}

// Close drains and closes the connection. Safe to call when never
// connected.
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
	p.conn = nil
}
