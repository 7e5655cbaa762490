package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/pkg/mailer/templates"
)

// Notifier renders the transactional templates and hands them to a Sender.
type Notifier struct {
	sender   Sender
	branding templates.Branding
	geo      templates.GeoResolver
	log      *logrus.Logger
}

// NewNotifier builds a Notifier. A nil geo resolver disables location lookup.
func NewNotifier(sender Sender, branding templates.Branding, geo templates.GeoResolver, log *logrus.Logger) *Notifier {
	return &Notifier{sender: sender, branding: branding, geo: geo, log: log}
}

func (n *Notifier) options(ctx context.Context, ttl time.Duration) []templates.Option {
	ci := clientFrom(ctx)
	opts := []templates.Option{
		templates.WithTime(time.Now()),
		templates.WithExpiresIn(ttl),
		templates.WithIP(ci.IP),
		templates.WithUserAgent(ci.UserAgent),
	}
	if n.geo != nil {
		opts = append(opts, templates.WithGeoFromIP(ctx, n.geo, ci.IP))
	}
	return opts
}

func (n *Notifier) SendVerificationCode(ctx context.Context, to, name, code string, ttl time.Duration) error {
	data := templates.NewVerifyEmailData(n.branding, name, to, code, n.options(ctx, ttl)...)
	return n.deliver(ctx, templates.VerifyEmail, to, data)
}

func (n *Notifier) SendPasswordReset(ctx context.Context, to, name, code string, ttl time.Duration) error {
	data := templates.NewForgotPasswordData(n.branding, name, to, code, n.options(ctx, ttl)...)
	return n.deliver(ctx, templates.ForgotPassword, to, data)
}

func (n *Notifier) deliver(ctx context.Context, tmpl, to string, data templates.EmailData) error {
	subject, text, html, err := templates.Render(tmpl, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}
	if err := n.sender.Send(ctx, Message{To: to, Subject: subject, Text: text, HTML: html}); err != nil {
		if n.log != nil {
			n.log.WithError(err).WithFields(logrus.Fields{"template": tmpl, "to": to}).Warn("send email failed")
		}
		return err
	}
	return nil
}
