package mailer

import (
	"context"
	"log/slog"
)

// LogSink is satisfied by *slog.Logger.
type LogSink interface {
	InfoContext(ctx context.Context, msg string, args ...any)
}

type logSender struct {
	sink LogSink
}

// NewLogSender returns a Sender that writes messages to the log instead of delivering
// them. Used in development and by the seeder.
func NewLogSender(sink LogSink) Sender {
	if sink == nil {
		sink = slog.Default()
	}
	return &logSender{sink: sink}
}

func (s *logSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.sink.InfoContext(ctx, "email not delivered, log driver active",
		"to", msg.To,
		"subject", msg.Subject,
		"tag", msg.Tag,
		"body", msg.TextBody)
	return nil
}
