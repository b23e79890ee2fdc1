package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/mapbridge/internal/adapters/nats"
	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
	"github.com/samirrijal/mapbridge/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to event kinds.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Kind   string `json:"kind"`   // "click" | "moveend" | "" (all)
}

// eventSource delivers raw event payloads of one kind ("" for all) until the
// returned cancel is called.
type eventSource func(kind domain.EventKind, deliver func([]byte)) (cancel func(), err error)

// natsEvents relays the session's event subjects.
func natsEvents(nc *nats.Conn, session string) eventSource {
	return func(kind domain.EventKind, deliver func([]byte)) (func(), error) {
		subject := natsadapter.SessionEventsSubject(session)
		if kind != "" {
			subject = natsadapter.EventSubject(session, kind)
		}
		sub, err := nc.Subscribe(subject, func(msg *nats.Msg) { deliver(msg.Data) })
		if err != nil {
			return nil, err
		}
		return func() { _ = sub.Unsubscribe() }, nil
	}
}

// busEvents listens on the session's in-process event bus.
func busEvents(m *usecases.Manager, session string) eventSource {
	return func(kind domain.EventKind, deliver func([]byte)) (func(), error) {
		kinds := []domain.EventKind{kind}
		if kind == "" {
			kinds = []domain.EventKind{domain.EventClick, domain.EventMoveEnd}
		}
		var ids []usecases.ListenerID
		err := m.Do(session, func(s *usecases.Session) error {
			for _, k := range kinds {
				ids = append(ids, s.Events().AddListener(k, func(ev domain.Event) error {
					data, err := json.Marshal(ev)
					if err != nil {
						return err
					}
					deliver(data)
					return nil
				}, nil))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return func() {
			_ = m.Do(session, func(s *usecases.Session) error {
				for _, id := range ids {
					s.Events().RemoveListener(id)
				}
				return nil
			})
		}, nil
	}
}

// WebSocketHandler relays a session's map events to the client. All events
// are streamed by default; clients narrow or widen the stream with
// {"action":"subscribe","kind":"click"} and {"action":"unsubscribe","kind":""}.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		session := c.Params("id")
		logger := slog.Default().With("session", session, "remote", c.RemoteAddr().String())
		logger.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		source := busEvents(deps.Sessions, session)
		if deps.NATS != nil {
			source = natsEvents(deps.NATS, session)
		}

		var mu sync.Mutex
		subs := make(map[domain.EventKind]func()) // kind -> cancel

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(data []byte) { _ = writeJSON(json.RawMessage(data)) }

		cancel, err := source("", relay)
		if err != nil {
			_ = writeJSON(map[string]string{"error": err.Error()})
			return
		}
		subs[""] = cancel

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			kind := domain.EventKind(m.Kind)
			switch kind {
			case "", domain.EventClick, domain.EventMoveEnd:
			default:
				_ = writeJSON(map[string]string{"error": "unknown kind: " + m.Kind})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[kind]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "kind": m.Kind})
					continue
				}
				cancel, err := source(kind, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[kind] = cancel
				_ = writeJSON(map[string]string{"status": "subscribed", "kind": m.Kind})

			case "unsubscribe":
				if cancel, exists := subs[kind]; exists {
					cancel()
					delete(subs, kind)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "kind": m.Kind})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Kind})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, cancel := range subs {
			cancel()
		}
		logger.Info("ws client disconnected")
	}
}
