package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client publishes and consumes Aegis events. Payloads are JSON.
type Client interface {
	Publish(subject string, data interface{}) error
	Subscribe(subject string, handler func(subject string, data []byte)) error
	Close()
}

// NATSClient is the Client used when hermes.url is configured. Catalog and
// recommendation events are also captured by the AEGIS_EVENTS stream so they
// can be replayed by consumers that were offline.
type NATSClient struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name(ConnectionName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("hermes disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("hermes reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, logger: logger}
	if err := c.ensureStream(ctx); err != nil {
		// Core pub/sub still works without the stream; only replay is lost.
		logger.Warn("failed to ensure event stream", "stream", StreamName, "error", err)
	}
	return c, nil
}

func (c *NATSClient) ensureStream(ctx context.Context) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Aegis catalog and recommendation events",
		Subjects:    StreamSubjects,
		MaxAge:      StreamMaxAge,
	})
	return err
}

func (c *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (c *NATSClient) Subscribe(subject string, handler func(string, []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	return nil
}

// Close drains in-flight messages, falling back to a hard close.
func (c *NATSClient) Close() {
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("hermes drain failed", "error", err)
		for _, sub := range c.subs {
			_ = sub.Unsubscribe()
		}
		c.conn.Close()
	}
}

// OnCatalogInvalidate subscribes fn to catalog invalidation requests. A
// payload that does not decode still triggers fn with an empty reason.
func OnCatalogInvalidate(c Client, logger *slog.Logger, fn func(CatalogInvalidateEvent)) error {
	if logger == nil {
		logger = slog.Default()
	}
	return c.Subscribe(SubjectCatalogInvalidate, func(_ string, data []byte) {
		var ev CatalogInvalidateEvent
		if len(data) > 0 {
			if err := json.Unmarshal(data, &ev); err != nil {
				logger.Warn("invalid catalog invalidate event", "error", err)
				ev = CatalogInvalidateEvent{}
			}
		}
		fn(ev)
	})
}

// NopClient drops every event. Used when no NATS URL is configured.
type NopClient struct{}

func (NopClient) Publish(string, interface{}) error { return nil }

func (NopClient) Subscribe(string, func(string, []byte)) error { return nil }

func (NopClient) Close() {}
