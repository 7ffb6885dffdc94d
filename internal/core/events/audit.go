package events

import (
	"context"
	"log/slog"
)

// AuditLogger writes every admin event to the structured log under the "audit" group.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.WithGroup("audit")}
}

// Register subscribes the audit logger to all admin event types.
func (a *AuditLogger) Register(bus *EventBus) {
	bus.SubscribeAll(AdminEventTypes, a.Handle)
}

func (a *AuditLogger) Handle(ctx context.Context, event Event) error {
	attrs := []any{
		"event_id", event.EventID(),
		"event_type", event.EventType(),
		"occurred_at", event.OccurredAt(),
	}
	if data, ok := event.Payload().(map[string]interface{}); ok {
		for k, v := range data {
			attrs = append(attrs, k, v)
		}
	}
	a.logger.InfoContext(ctx, "admin action", attrs...)
	return nil
}

// Publish tolerates a nil publisher so services can run without an event bus.
func Publish(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	_ = p.Publish(ctx, event)
}
