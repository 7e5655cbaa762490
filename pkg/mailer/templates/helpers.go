package templates

import (
	"context"
	"strings"
	"time"
	_ "time/tzdata"
)

const timeLayout = "02 January 2006, 15:04 MST"

// Branding carries the organization details shown in every email.
type Branding struct {
	OrganizationName string
	AppName          string
	LogoURL          string
	SupportURL       string
}

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format(timeLayout)
	}
}

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format(timeLayout)
		d.ExpiresInMin = int(dur.Minutes())
	}
}

func WithLocation(loc string) Option {
	return func(d *EmailData) {
		if s := strings.TrimSpace(loc); s != "" {
			d.Location = s
		}
	}
}

// WithGeoFromIP resolves the requester's location and renders the request
// and expiry times in their timezone. Lookup failures leave the data untouched.
func WithGeoFromIP(ctx context.Context, r GeoResolver, ip string) Option {
	return func(d *EmailData) {
		if r == nil || strings.TrimSpace(ip) == "" {
			return
		}
		g, err := r.Lookup(ctx, ip)
		if err != nil {
			return
		}
		WithLocation(FormatGeo(g))(d)
		localizeTimes(d, g.Timezone)
	}
}

func localizeTimes(d *EmailData, tz string) {
	if strings.TrimSpace(tz) == "" {
		return
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return
	}
	if !d.TimeAt.IsZero() {
		d.Time = d.TimeAt.In(loc).Format(timeLayout)
	}
	if !d.ExpiresAt.IsZero() {
		d.ExpiresAtText = d.ExpiresAt.In(loc).Format(timeLayout)
	}
}

// NewBaseEmailData fills the common fields then applies the options in order.
func NewBaseEmailData(b Branding, typ, name, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:             name,
		RecipientEmail:   recipient,
		Type:             typ,
		OrganizationName: b.OrganizationName,
		AppName:          b.AppName,
		LogoURL:          b.LogoURL,
		SupportURL:       b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewVerifyEmailData(b Branding, name, email, code string, opts ...Option) EmailData {
	d := NewBaseEmailData(b, VerifyEmail, name, email, opts...)
	d.Code = code
	return d
}

func NewForgotPasswordData(b Branding, name, email, code string, opts ...Option) EmailData {
	d := NewBaseEmailData(b, ForgotPassword, name, email, opts...)
	d.Code = code
	return d
}
