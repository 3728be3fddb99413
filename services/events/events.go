package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fixerhub/utils"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subjects published by the API.
const (
	SubjectBookingStatus        = "fixerhub.booking.status"
	SubjectBookingPaid          = "fixerhub.booking.paid"
	SubjectCertificationCreated = "fixerhub.certification.created"
	SubjectCertificationUpdated = "fixerhub.certification.reviewed"
	SubjectDisputeOpened        = "fixerhub.dispute.opened"
	SubjectDisputeResolved      = "fixerhub.dispute.resolved"
	SubjectReviewCreated        = "fixerhub.review.created"
	SubjectPaymentRefunded      = "fixerhub.payment.refunded"
)

// Event is the envelope written to every subject.
type Event struct {
	Subject    string    `json:"subject"`
	EntityID   string    `json:"entityId"`
	Data       any       `json:"data"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher emits domain events. Publishing is best effort; failures are logged.
type Publisher interface {
	Publish(ctx context.Context, subject, entityID string, data any)
}

// NatsPublisher publishes JSON events on a NATS connection.
type NatsPublisher struct {
	conn *nats.Conn
}

// Connect dials url. An empty url yields a Noop publisher.
func Connect(url string) (Publisher, func(), error) {
	if url == "" {
		return Noop{}, func() {}, nil
	}
	conn, err := nats.Connect(url,
		nats.Name("fixerhub-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				utils.GetLogger().Warn("nats disconnected", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NatsPublisher{conn: conn}, func() { _ = conn.Drain() }, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, subject, entityID string, data any) {
	body, err := json.Marshal(Event{Subject: subject, EntityID: entityID, Data: data, OccurredAt: time.Now()})
	if err != nil {
		utils.GetLogger().Error("failed to encode event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.conn.Publish(subject, body); err != nil {
		utils.GetLogger().Warn("failed to publish event", zap.String("subject", subject), zap.String("entityId", entityID), zap.Error(err))
	}
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) {}
