package notification

import (
	"context"
	"errors"
	"log/slog"
)

const (
	// KindLead announces a newly captured lead.
	KindLead = "lead"
)

// Field is one labelled value of a message.
type Field struct {
	Label string
	Value string
}

// Attachment is a file delivered with a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Subject     string
	Body        string
	Fields      []Field
	Attachments []Attachment
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"destination", message.Destination,
		"subject", message.Subject,
		"fields", len(message.Fields),
		"attachments", len(message.Attachments),
	)
	return nil
}

// Fanout delivers every message to all notifiers, even when some fail.
type Fanout []Notifier

// Send implements Notifier. The returned error joins every failure.
func (f Fanout) Send(ctx context.Context, message Message) error {
	var errs []error
	for _, n := range f {
		if err := n.Send(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
