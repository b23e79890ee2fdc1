package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/pkg/metrics"
)

// Publisher implements ports.CommandSink and ports.EventPublisher using NATS.
// Native commands go through JetStream so a host that connects late can
// replay them; map events are plain core NATS messages.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// PublisherOptions tune moveend fan-out per session.
type PublisherOptions struct {
	MoveEndRate  float64
	MoveEndBurst int
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string, opts PublisherOptions) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	hostSubjects := make([]string, 0, len(HostKinds))
	for _, k := range HostKinds {
		hostSubjects = append(hostSubjects, subjectRoot+".*.*."+k)
	}
	streams := []nats.StreamConfig{
		{
			Name:      "MAPBRIDGE_COMMANDS",
			Subjects:  []string{subjectRoot + ".*.*.cmd"},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "MAPBRIDGE_HOST",
			Subjects:  hostSubjects,
			Retention: nats.WorkQueuePolicy,
			MaxAge:    10 * time.Minute,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	if opts.MoveEndRate <= 0 {
		opts.MoveEndRate = 5
	}
	if opts.MoveEndBurst <= 0 {
		opts.MoveEndBurst = 10
	}
	return &Publisher{
		conn:     conn,
		js:       js,
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(opts.MoveEndRate),
		burst:    opts.MoveEndBurst,
	}, nil
}

// SendCommand publishes a native command for the host drawing cmd.Map.
func (p *Publisher) SendCommand(ctx context.Context, cmd ports.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command %s: %w", cmd.Op, err)
	}
	_, err = p.js.Publish(CommandSubject(cmd.Session, cmd.Provider), data, nats.Context(ctx))
	return err
}

// PublishMapEvent fans a map event out to subscribers. moveend events beyond
// the per-session rate are dropped.
func (p *Publisher) PublishMapEvent(ctx context.Context, session string, ev domain.Event) error {
	if ev.Kind == domain.EventMoveEnd && !p.limiter(session).Allow() {
		metrics.EventsThrottled.WithLabelValues(string(ev.Kind)).Inc()
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Kind, err)
	}
	return p.conn.Publish(EventSubject(session, ev.Kind), data)
}

func (p *Publisher) limiter(session string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[session]
	if !ok {
		l = rate.NewLimiter(p.limit, p.burst)
		p.limiters[session] = l
	}
	return l
}

// ForgetSession drops the session's rate limiter.
func (p *Publisher) ForgetSession(session string) {
	p.mu.Lock()
	delete(p.limiters, session)
	p.mu.Unlock()
}

// Conn exposes the underlying connection for relays.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("mapbridge"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
