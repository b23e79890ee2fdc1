package natsadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
)

// Subscriber implements ports.HostSubscriber using NATS JetStream.
type Subscriber struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	subs   []*nats.Subscription
	logger *slog.Logger
}

// NewSubscriber creates a subscriber with its own NATS connection. The host
// stream must already exist; NewPublisher creates it.
func NewSubscriber(url string, logger *slog.Logger) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{conn: conn, js: js, logger: logger}, nil
}

// SubscribeHost delivers every host notification to handler. Notifications
// that can never succeed are terminated; others are redelivered up to three
// times.
func (s *Subscriber) SubscribeHost(ctx context.Context, handler func(ctx context.Context, n ports.HostNotification) error) error {
	for _, kind := range HostKinds {
		sub, err := s.js.Subscribe(subjectRoot+".*.*."+kind, func(msg *nats.Msg) {
			n, err := DecodeHost(msg.Subject, msg.Data)
			if err != nil {
				s.logger.Warn("bad host notification", "subject", msg.Subject, "error", err)
				_ = msg.Term()
				return
			}
			if err := handler(ctx, n); err != nil {
				s.logger.Warn("host notification failed", "subject", msg.Subject, "error", err)
				if permanent(err) {
					_ = msg.Term()
				} else {
					_ = msg.Nak()
				}
				return
			}
			_ = msg.Ack()
		},
			nats.Durable("host-"+kind),
			nats.ManualAck(),
			nats.MaxDeliver(3),
		)
		if err != nil {
			return fmt.Errorf("subscribe host %s: %w", kind, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

// permanent reports errors that redelivery cannot fix.
func permanent(err error) bool {
	return errors.Is(err, domain.ErrEntityNotFound) ||
		errors.Is(err, domain.ErrInvalidCoordinate) ||
		errors.Is(err, domain.ErrUnknownProvider) ||
		errors.Is(err, domain.ErrProviderUnavailable)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
