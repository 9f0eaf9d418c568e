// Package delivery fans consumed report events out to subscribers and archives every event.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/notify"
	subscriberdomain "github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry/producer"
)

// SubscriberLister returns the subscribers that receive the report.
type SubscriberLister interface {
	ListActive(ctx context.Context) ([]*subscriberdomain.Subscriber, error)
}

// Archiver stores the raw event line (e.g. the Loki client).
type Archiver interface {
	PushEventJSON(ctx context.Context, rawJSON []byte) error
}

// reportHeader is the part of the report payload used for the message subject.
type reportHeader struct {
	ReportTitle string `json:"report_title"`
}

// Deliverer handles one consumed message at a time.
type Deliverer struct {
	subscribers SubscriberLister
	notifier    notify.Notifier
	archiver    Archiver
	mirror      telemetry.EventEmitter
	logger      *zap.Logger
}

// NewDeliverer returns a Deliverer. archiver and mirror may be nil.
func NewDeliverer(subscribers SubscriberLister, notifier notify.Notifier, archiver Archiver, mirror telemetry.EventEmitter, logger *zap.Logger) *Deliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{subscribers: subscribers, notifier: notifier, archiver: archiver, mirror: mirror, logger: logger}
}

// Handle archives msg and, for report.generated events, sends the report to every active
// subscriber. Archive and per-subscriber failures are logged; Handle returns an error only when the
// subscriber list cannot be read.
func (d *Deliverer) Handle(ctx context.Context, msg *producer.Message) error {
	if msg == nil {
		return nil
	}
	if d.archiver != nil {
		if err := d.archiver.PushEventJSON(ctx, msg.Raw); err != nil {
			d.logger.Warn("delivery: archive failed", zap.Error(err))
		}
	}
	if msg.Event == nil {
		d.logger.Warn("delivery: skipping message that is not an event", zap.Int("bytes", len(msg.Raw)))
		return nil
	}
	if d.mirror != nil {
		if err := d.mirror.Emit(ctx, msg.Event); err != nil {
			d.logger.Warn("delivery: mirror emit failed", zap.Error(err))
		}
	}
	if msg.Event.Type != telemetry.EventReportGenerated {
		return nil
	}
	sent, err := d.deliverReport(ctx, msg.Event.Payload)
	if err != nil {
		return err
	}
	d.logger.Info("delivery: report sent", zap.String("event_id", msg.Event.ID), zap.Int("recipients", sent))
	return nil
}

func (d *Deliverer) deliverReport(ctx context.Context, payload json.RawMessage) (int, error) {
	if len(payload) == 0 {
		return 0, errors.New("delivery: report event has no payload")
	}
	var header reportHeader
	_ = json.Unmarshal(payload, &header)

	subs, err := d.subscribers.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("delivery: list subscribers: %w", err)
	}
	sent := 0
	for _, s := range subs {
		msg := notify.Message{
			Kind:    notify.KindReport,
			To:      s.Email,
			Name:    s.Name,
			Subject: header.ReportTitle,
			Data:    payload,
		}
		if err := d.notifier.Send(ctx, msg); err != nil {
			d.logger.Warn("delivery: send failed", zap.String("to", s.Email), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
