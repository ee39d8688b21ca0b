package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/resilience"
)

const workerGroup = "benchmark-workers"

// Queue carries QuoteGeneratedEvent between the API and the benchmark worker.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func (o Options) connectOptions() []nats.Option {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 2 * time.Second
	}
	if o.ReconnectWait <= 0 {
		o.ReconnectWait = 2 * time.Second
	}
	if o.MaxReconnects <= 0 {
		o.MaxReconnects = 60
	}
	retry := o.RetryOnFailedConnect == nil || *o.RetryOnFailedConnect

	return []nats.Option{
		nats.Name("quote-assistant"),
		nats.Timeout(o.ConnectTimeout),
		nats.ReconnectWait(o.ReconnectWait),
		nats.MaxReconnects(o.MaxReconnects),
		nats.RetryOnFailedConnect(retry),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	}
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	conn, err := nats.Connect(url, options.connectOptions()...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{conn: conn, subject: subject, executor: options.ResilienceExecutor}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishQuoteGenerated(ctx context.Context, event domain.QuoteGeneratedEvent) error {
	msg, err := q.newMessage(event)
	if err != nil {
		return err
	}
	err = q.executor.Execute(ctx, "nats.publish", func(context.Context) error {
		if err := q.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}, classifyNATSError)
	return wrapTemporaryIfNeeded(err)
}

func (q *Queue) newMessage(event domain.QuoteGeneratedEvent) (*nats.Msg, error) {
	payload, err := encodeEvent(event)
	if err != nil {
		return nil, err
	}
	msg := nats.NewMsg(q.subject)
	msg.Header.Set(nats.MsgIdHdr, event.QuoteID)
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = payload
	return msg, nil
}

// SubscribeQuoteGenerated blocks until ctx is done, then drains the subscription.
func (q *Queue) SubscribeQuoteGenerated(ctx context.Context, handler func(context.Context, domain.QuoteGeneratedEvent) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		dispatch(handlerCtx, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func encodeEvent(event domain.QuoteGeneratedEvent) ([]byte, error) {
	if event.QuoteID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode quote event", errors.New("quote id is required"))
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode quote event: %w", err)
	}
	return payload, nil
}

func decodeEvent(data []byte) (domain.QuoteGeneratedEvent, error) {
	var event domain.QuoteGeneratedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.QuoteGeneratedEvent{}, fmt.Errorf("decode quote event: %w", err)
	}
	if event.QuoteID == "" {
		return domain.QuoteGeneratedEvent{}, errors.New("decode quote event: missing quote_id")
	}
	return event, nil
}

// dispatch drops malformed payloads; redelivering them would fail the same way.
func dispatch(ctx context.Context, data []byte, handler func(context.Context, domain.QuoteGeneratedEvent) error) {
	event, err := decodeEvent(data)
	if err != nil {
		slog.Warn("quote_event_dropped", "error", err, "payload_bytes", len(data))
		return
	}
	if err := handler(ctx, event); err != nil {
		slog.Error("quote_event_handler_failed", "quote_id", event.QuoteID, "category", event.Category, "error", err)
	}
}
