package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
	logx "github.com/dining-concierge/server/pkg/logger"
)

const defaultSMTPTimeout = 15 * time.Second

type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPMailer delivers plain-text mail through an SMTP relay.
type SMTPMailer struct {
	relay  string
	sender string
	send   sendFunc
}

func NewSMTPMailer(cfg model.MailConfig) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp: SMTP_HOST is required")
	}
	if err := gomail.NewMsg().From(cfg.Sender); err != nil {
		return nil, fmt.Errorf("smtp: invalid sender %q: %w", cfg.Sender, err)
	}
	timeout := defaultSMTPTimeout
	if cfg.SMTPTimeout != "" {
		d, err := time.ParseDuration(cfg.SMTPTimeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("smtp: invalid SMTP_TIMEOUT %q", cfg.SMTPTimeout)
		}
		timeout = d
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTimeout(timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUser),
			gomail.WithPassword(cfg.SMTPPass),
		)
	}
	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp: create client: %w", err)
	}

	return &SMTPMailer{
		relay:  fmt.Sprintf("%s:%d", cfg.SMTPHost, port),
		sender: cfg.Sender,
		send: func(ctx context.Context, msg *gomail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

// Send dials the relay for every message; ctx bounds the whole exchange.
func (m *SMTPMailer) Send(ctx context.Context, n model.Notification) error {
	msg, err := m.compose(n)
	if err != nil {
		return errx.WrapMail(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(ctx, msg); err != nil {
		logx.Error().Err(err).Str("to", n.To).Str("relay", m.relay).Msg("smtp send failed")
		return errx.WrapMail(err)
	}
	return nil
}

func (m *SMTPMailer) compose(n model.Notification) (*gomail.Msg, error) {
	msg := gomail.NewMsg(gomail.WithCharset(gomail.CharsetUTF8))
	if err := msg.From(m.sender); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.sender, err)
	}
	if err := msg.To(n.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", n.To, err)
	}
	msg.Subject(strings.NewReplacer("\r", " ", "\n", " ").Replace(n.Subject))
	msg.SetDate()
	msg.SetBodyString(gomail.TypeTextPlain, strings.ReplaceAll(n.Body, "\r\n", "\n"))
	return msg, nil
}

var _ model.Mailer = (*SMTPMailer)(nil)
