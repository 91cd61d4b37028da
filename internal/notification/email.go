package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"gopkg.in/gomail.v2"
)

// MailSender is the part of *gomail.Dialer used to deliver mail.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails each message to a fixed list of recipients, one
// message per recipient.
type EmailNotifier struct {
	sender     MailSender
	from       string
	recipients []string
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSMTPNotifier builds an EmailNotifier that dials the configured server.
func NewSMTPNotifier(cfg SMTPConfig, recipients []string) *EmailNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewEmailNotifier(dialer, cfg.From, recipients)
}

// NewEmailNotifier builds an EmailNotifier on top of sender.
func NewEmailNotifier(sender MailSender, from string, recipients []string) *EmailNotifier {
	return &EmailNotifier{sender: sender, from: from, recipients: recipients}
}

// Send implements Notifier. Delivery continues past individual failures.
func (n *EmailNotifier) Send(_ context.Context, message Message) error {
	body := renderHTML(message)
	var errs []error
	for _, to := range n.recipients {
		m := gomail.NewMessage()
		m.SetHeader("From", n.from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", message.Subject)
		m.SetBody("text/html", body)
		for _, a := range message.Attachments {
			attach(m, a)
		}
		if err := n.sender.DialAndSend(m); err != nil {
			errs = append(errs, fmt.Errorf("send email to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

func attach(m *gomail.Message, a Attachment) {
	data := a.Data
	settings := []gomail.FileSetting{
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}),
	}
	if a.ContentType != "" {
		settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
	}
	m.Attach(a.Name, settings...)
}

func renderHTML(message Message) string {
	var b strings.Builder
	if message.Subject != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(message.Subject))
	}
	if message.Body != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(message.Body))
	}
	if len(message.Fields) > 0 {
		b.WriteString("<table>\n")
		for _, f := range message.Fields {
			fmt.Fprintf(&b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>\n",
				html.EscapeString(f.Label), html.EscapeString(f.Value))
		}
		b.WriteString("</table>\n")
	}
	return b.String()
}
