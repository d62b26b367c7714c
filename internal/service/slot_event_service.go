package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Pub/sub channels for scheduling events.
	ChannelSlotOpened       = "clinic:slot:opened"
	ChannelWaitlistNotified = "clinic:waitlist:notified"

	// Recent events are also kept in a capped list per channel so consumers
	// that were offline can catch up.
	recentEventsKeyPrefix = "clinic:events:recent:"
	recentEventsMax       = 500
	recentEventsTTL       = 7 * 24 * time.Hour

	redisPublishTimeout = 5 * time.Second
)

// SlotOpenedEvent is emitted after an appointment releases its slot.
type SlotOpenedEvent struct {
	DoctorID      uuid.UUID `json:"doctor_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Duration      int       `json:"duration"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// WaitlistNotifiedEvent is emitted when a waitlist entry is offered an
// opening.
type WaitlistNotifiedEvent struct {
	WaitlistEntryID uuid.UUID `json:"waitlist_entry_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	Date            string    `json:"date,omitempty"`
	Time            string    `json:"time,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// SlotEventPublisher fans scheduling events out to other services. Publishing
// happens after commit; failures are reported but never undo the write.
type SlotEventPublisher interface {
	PublishSlotOpened(ctx context.Context, event SlotOpenedEvent) error
	PublishWaitlistNotified(ctx context.Context, event WaitlistNotifiedEvent) error
}

type redisSlotEventPublisher struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewSlotEventPublisher(redisClient *redis.Client, log *logrus.Logger) SlotEventPublisher {
	return &redisSlotEventPublisher{
		redisClient: redisClient,
		log:         log,
	}
}

func (p *redisSlotEventPublisher) PublishSlotOpened(ctx context.Context, event SlotOpenedEvent) error {
	return p.publish(ctx, ChannelSlotOpened, event)
}

func (p *redisSlotEventPublisher) PublishWaitlistNotified(ctx context.Context, event WaitlistNotifiedEvent) error {
	return p.publish(ctx, ChannelWaitlistNotified, event)
}

func (p *redisSlotEventPublisher) publish(ctx context.Context, channel string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", channel, err)
	}

	ctx, cancel := context.WithTimeout(ctx, redisPublishTimeout)
	defer cancel()

	recentKey := recentEventsKeyPrefix + channel

	pipe := p.redisClient.TxPipeline()
	pipe.Publish(ctx, channel, payload)
	pipe.LPush(ctx, recentKey, payload)
	pipe.LTrim(ctx, recentKey, 0, recentEventsMax-1)
	pipe.Expire(ctx, recentKey, recentEventsTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		p.log.Warnf("Failed to publish %s event: %+v", channel, err)
		return fmt.Errorf("publish %s event: %w", channel, err)
	}

	p.log.Debugf("Published %s event: %s", channel, payload)
	return nil
}

type noopSlotEventPublisher struct{}

// NewNoopSlotEventPublisher drops every event. Used when Redis is disabled.
func NewNoopSlotEventPublisher() SlotEventPublisher {
	return noopSlotEventPublisher{}
}

func (noopSlotEventPublisher) PublishSlotOpened(context.Context, SlotOpenedEvent) error {
	return nil
}

func (noopSlotEventPublisher) PublishWaitlistNotified(context.Context, WaitlistNotifiedEvent) error {
	return nil
}
