package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bloghub/apiserver/internal/mq"
	"github.com/sirupsen/logrus"
)

// Activity event names published to the broker.
const (
	EventPostCreated    = "post.created"
	EventCommentCreated = "comment.created"
	EventUserDeleted    = "user.deleted"
)

const activityChannel = "blog.activity"

// EventPublisher emits activity events to the configured broker.
// Publishing is best effort: a broker failure is logged and never
// surfaces to the request that triggered the event.
type EventPublisher struct {
	mq  *mq.MQ
	log *logrus.Logger
}

// NewEventPublisher constructs a publisher. A nil broker disables
// publishing entirely.
func NewEventPublisher(broker *mq.MQ, log *logrus.Logger) *EventPublisher {
	return &EventPublisher{mq: broker, log: log}
}

type activityEvent struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publish sends an activity event carrying the given payload.
func (p *EventPublisher) Publish(ctx context.Context, event string, payload any) {
	if p == nil || p.mq == nil {
		return
	}

	data, err := json.Marshal(activityEvent{
		Event:      event,
		OccurredAt: time.Now(),
		Payload:    payload,
	})
	if err != nil {
		p.warn(event, err)
		return
	}

	attrs := map[string]string{"event": event}
	if _, err := p.mq.Publish(ctx, activityChannel, data, attrs); err != nil {
		p.warn(event, err)
	}
}

func (p *EventPublisher) warn(event string, err error) {
	if p.log != nil {
		p.log.WithField("event", event).WithError(err).Warn("failed to publish activity event")
	}
}
