package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dining-concierge/server/internal/concierge/model"
	logx "github.com/dining-concierge/server/pkg/logger"
)

const (
	DriverLog  = "log"
	DriverSMTP = "smtp"
)

// New builds the configured mailer.
func New(cfg model.MailConfig) (model.Mailer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverLog, "":
		return LogMailer{}, nil
	case DriverSMTP:
		return NewSMTPMailer(cfg)
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

// LogMailer writes notifications to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, n model.Notification) error {
	logx.Info().
		Str("to", n.To).
		Str("subject", n.Subject).
		Str("body", n.Body).
		Msg("notification (log driver)")
	return nil
}

// Outbox keeps sent notifications in memory. Failures can be scripted with
// FailNext.
type Outbox struct {
	mu       sync.Mutex
	sent     []model.Notification
	failures []error
}

func (o *Outbox) Send(_ context.Context, n model.Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.failures) > 0 {
		err := o.failures[0]
		o.failures = o.failures[1:]
		return err
	}
	o.sent = append(o.sent, n)
	return nil
}

// FailNext makes the next len(errs) sends fail with the given errors.
func (o *Outbox) FailNext(errs ...error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, errs...)
}

func (o *Outbox) Sent() []model.Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.Notification, len(o.sent))
	copy(out, o.sent)
	return out
}

var (
	_ model.Mailer = LogMailer{}
	_ model.Mailer = (*Outbox)(nil)
)
