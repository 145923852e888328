// Package service holds background collaborators of the HTTP layer:
// the invoice event publisher and the periodic maintenance scheduler.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/logger"
	"github.com/iliyamo/garage-api/internal/queue"
)

const (
	publishTimeout = 5 * time.Second
	defaultBuffer  = 256
)

// Publisher sends invoice events to RabbitMQ.  A nil *Publisher is valid
// and drops every event, which is how publishing is switched off.
type Publisher struct {
	cfg    config.QueueConfig
	log    *logger.Logger
	events chan queue.InvoiceEvent
}

// NewPublisher returns nil when the queue is disabled.  Events queued with
// PublishAsync are sent by Run.
func NewPublisher(cfg config.QueueConfig, log *logger.Logger) *Publisher {
	if !cfg.Enabled {
		return nil
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	return &Publisher{
		cfg:    cfg,
		log:    log.WithComponent("invoice-publisher"),
		events: make(chan queue.InvoiceEvent, cfg.Buffer),
	}
}

// Publish sends ev to the invoice queue as a persistent message.  Errors
// are logged and returned so callers may ignore them.
func (p *Publisher) Publish(ctx context.Context, ev queue.InvoiceEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		p.log.Warnw("dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warnw("channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		p.log.Warnw("queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, pub); err != nil {
		p.log.Warnw("publish failed", "error", err, "type", ev.Type, "invoice_id", ev.InvoiceID)
		return err
	}
	return nil
}

// PublishAsync queues ev for Run without blocking.  When the buffer is full
// the event is dropped and logged; the request never waits on the broker.
func (p *Publisher) PublishAsync(ev queue.InvoiceEvent) {
	if p == nil {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.log.Warnw("event buffer full, dropping event", "type", ev.Type, "invoice_id", ev.InvoiceID)
	}
}

// Run sends queued events one at a time until ctx is done.  Events still
// buffered at that point are dropped.
func (p *Publisher) Run(ctx context.Context) {
	if p == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			if n := len(p.events); n > 0 {
				p.log.Warnw("publisher stopped with events pending", "dropped", n)
			}
			return
		case ev := <-p.events:
			pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
			_ = p.Publish(pctx, ev)
			cancel()
		}
	}
}
