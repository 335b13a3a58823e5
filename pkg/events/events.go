package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"

	"github.com/STAYCALM1234/mabest-alum/config"
)

// ApprovalEvent emitted when an administrator changes an alumni profile's approval
type ApprovalEvent struct {
	AlumniID  string    `json:"alumni_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Approved  bool      `json:"approved"`
	ChangedAt time.Time `json:"changed_at"`
}

// Publisher sends approval events
type Publisher interface {
	PublishApproval(ctx context.Context, evt ApprovalEvent) error
	Close() error
}

// NopPublisher drops events; used when no broker is configured
type NopPublisher struct{}

// PublishApproval discards the event
func (NopPublisher) PublishApproval(context.Context, ApprovalEvent) error { return nil }

// Close no-op
func (NopPublisher) Close() error { return nil }

// KafkaPublisher writes approval events keyed by alumni id
type KafkaPublisher struct {
	writer *kafka.Writer
}

func transport(cfg *config.EventsConfig) *kafka.Transport {
	if cfg.Username == "" {
		return nil
	}
	return &kafka.Transport{
		SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
		TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// NewKafkaPublisher builds a synchronous writer on cfg.ApprovalTopic
func NewKafkaPublisher(cfg *config.EventsConfig) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ApprovalTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if t := transport(cfg); t != nil {
		w.Transport = t
	}
	return &KafkaPublisher{writer: w}
}

func newMessage(evt ApprovalEvent) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode approval event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(evt.AlumniID),
		Value: value,
		Time:  evt.ChangedAt,
	}, nil
}

// PublishApproval writes one event
func (p *KafkaPublisher) PublishApproval(ctx context.Context, evt ApprovalEvent) error {
	msg, err := newMessage(evt)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish approval event: %w", err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewPublisher returns a Kafka publisher when brokers are configured, NopPublisher otherwise
func NewPublisher(cfg *config.EventsConfig, logger *zap.Logger) Publisher {
	if !cfg.Enabled() {
		logger.Warn("no kafka brokers configured, approval events are dropped")
		return NopPublisher{}
	}
	logger.Info("approval events enabled",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.ApprovalTopic),
	)
	return NewKafkaPublisher(cfg)
}

// ── Consumer ──

// Handler processes one decoded event. Listen retries a failing event until it succeeds.
type Handler func(ctx context.Context, evt ApprovalEvent) error

// messageReader the part of *kafka.Reader the consumer loop uses
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const maxBackoff = 30 * time.Second

// backoff doubles from one second, capped at maxBackoff
func backoff(attempt int) time.Duration {
	d := time.Second
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// Consumer reads approval events in a consumer group
type Consumer struct {
	reader  messageReader
	logger  *zap.Logger
	backoff func(attempt int) time.Duration
}

// NewConsumer joins cfg.GroupID on cfg.ApprovalTopic
func NewConsumer(cfg *config.EventsConfig, logger *zap.Logger) *Consumer {
	dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	if cfg.Username != "" {
		dialer.SASLMechanism = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.ApprovalTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})
	return &Consumer{reader: reader, logger: logger, backoff: backoff}
}

// Listen blocks until ctx is cancelled. Events are handled and committed in
// order: a failing event is retried with backoff and never skipped, since a
// later commit would acknowledge it. Undecodable messages are logged and committed.
func (c *Consumer) Listen(ctx context.Context, handle Handler) error {
	fetchFailures := 0
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fetchFailures++
			c.logger.Error("fetch approval event failed",
				zap.Int("attempt", fetchFailures),
				zap.Error(err),
			)
			if !c.sleep(ctx, fetchFailures) {
				return nil
			}
			continue
		}
		fetchFailures = 0

		var evt ApprovalEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			c.logger.Warn("skip malformed approval event",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		} else if err := c.dispatch(ctx, handle, evt); err != nil {
			// only cancellation ends dispatch; the event stays uncommitted
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("commit approval event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// dispatch runs handle until it succeeds or ctx is done
func (c *Consumer) dispatch(ctx context.Context, handle Handler, evt ApprovalEvent) error {
	for attempt := 1; ; attempt++ {
		err := handle(ctx, evt)
		if err == nil {
			return nil
		}
		c.logger.Warn("retry approval event",
			zap.String("alumni_id", evt.AlumniID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !c.sleep(ctx, attempt) {
			return ctx.Err()
		}
	}
}

// sleep waits out the backoff for attempt; false when ctx ended first
func (c *Consumer) sleep(ctx context.Context, attempt int) bool {
	if ctx.Err() != nil {
		return false
	}
	t := time.NewTimer(c.backoff(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close leaves the group
func (c *Consumer) Close() error {
	return c.reader.Close()
}
