package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a fully rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
// Used when MAIL_SEND_ENABLED=false.
type LogSender struct {
	Logger *logrus.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).Info("mail delivery disabled; message logged\n" + msg.Text)
	}
	return nil
}

type clientKey struct{}

type clientInfo struct {
	IP        string
	UserAgent string
}

// WithClient attaches the requesting client's address and user agent so
// notification emails can mention where a request came from.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientInfo{IP: ip, UserAgent: userAgent})
}

func clientFrom(ctx context.Context) clientInfo {
	ci, _ := ctx.Value(clientKey{}).(clientInfo)
	return ci
}
