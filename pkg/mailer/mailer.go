package mailer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrFailedToSend  = errors.New("mailer: failed to send email")
	ErrInvalidConfig = errors.New("mailer: invalid config")
	ErrInvalidParams = errors.New("mailer: invalid params")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Sender delivers a single transactional message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	Tag      string `json:"tag,omitempty"`
}

func (m Message) Validate() error {
	if m.To == "" || !emailRegex.MatchString(m.To) {
		return fmt.Errorf("%w: recipient %q is not a valid email address", ErrInvalidParams, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if m.TextBody == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

type Config struct {
	Driver               string
	PostmarkServerToken  string
	PostmarkAccountToken string
	SenderEmail          string
	SupportEmail         string
}

// New picks the sender for cfg.Driver. Unknown drivers are a configuration error.
func New(cfg Config, logSink LogSink) (Sender, error) {
	switch cfg.Driver {
	case "postmark":
		return NewPostmarkSender(cfg)
	case "log", "":
		return NewLogSender(logSink), nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
