package observability

import (
	"context"
	"log"
)

// EventEnvelope wraps every event published to the forum's event exchange.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// Publisher is the outbound event contract, satisfied by the rabbitmq
// package's publishers.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
}

var defaultPublisher Publisher

// SetPublisher installs the process-wide event publisher.
func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// PublishEvent publishes through the installed publisher; a publish failure
// is counted but never fails the caller's request.
func PublishEvent(ctx context.Context, routingKey string, event EventEnvelope, headers map[string]string) {
	if defaultPublisher == nil {
		return
	}
	if err := defaultPublisher.Publish(ctx, routingKey, event, headers); err != nil {
		IncAMQPPublishError()
		log.Printf("event publish failed routing_key=%s: %v", routingKey, err)
	}
}

// BuildHeaders assembles propagation headers for published events.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
