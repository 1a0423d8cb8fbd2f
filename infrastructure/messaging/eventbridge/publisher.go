package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"dailytens/application/ports"
	"dailytens/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// PutEventsAPI is the part of the EventBridge client the publisher uses
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher implements ports.EventPublisher using AWS EventBridge
type Publisher struct {
	client       PutEventsAPI
	eventBusName string
	source       string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client PutEventsAPI, eventBusName string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		source:       events.SourceGame,
		logger:       logger,
	}
}

// Publish puts one event on the bus. A partially failed batch is an error.
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	entry, err := p.entry(event)
	if err != nil {
		return err
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("put %s event: %w", event.GetEventType(), err)
	}
	if out.FailedEntryCount > 0 {
		for _, e := range out.Entries {
			if e.ErrorCode == nil {
				continue
			}
			p.logger.Error("EventBridge rejected event",
				zap.String("eventType", event.GetEventType()),
				zap.String("date", event.GetAggregateID()),
				zap.String("errorCode", aws.ToString(e.ErrorCode)),
				zap.String("errorMessage", aws.ToString(e.ErrorMessage)),
			)
		}
		return fmt.Errorf("put %s event: %d entries rejected", event.GetEventType(), out.FailedEntryCount)
	}

	p.logger.Debug("Event published",
		zap.String("eventType", event.GetEventType()),
		zap.String("date", event.GetAggregateID()),
		zap.String("eventBus", p.eventBusName),
	)
	return nil
}

// entry serializes event as an EventBridge entry whose resource is the game date.
func (p *Publisher) entry(event events.DomainEvent) (types.PutEventsRequestEntry, error) {
	detail, err := json.Marshal(event)
	if err != nil {
		return types.PutEventsRequestEntry{}, fmt.Errorf("marshal %s event: %w", event.GetEventType(), err)
	}
	return types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBusName),
		Source:       aws.String(p.source),
		DetailType:   aws.String(event.GetEventType()),
		Detail:       aws.String(string(detail)),
		Time:         aws.Time(event.GetTimestamp()),
		Resources:    []string{"dailytens:game:" + event.GetAggregateID()},
	}, nil
}

// LogPublisher stands in when no event bus is configured; it only logs.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a publisher that logs events at debug level
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event
func (p *LogPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Debug("Event not published, no event bus configured",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
	)
	return nil
}

var (
	_ ports.EventPublisher = (*Publisher)(nil)
	_ ports.EventPublisher = (*LogPublisher)(nil)
)
