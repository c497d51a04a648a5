package mail

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

// Sender delivers transactional email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

type dialer interface {
	DialAndSend(...*gomail.Message) error
}

// Mailer sends mail over SMTP.
type Mailer struct {
	dialer dialer
	from   string
	logg   *logger.Logger
}

// New builds an SMTP mailer from config. When SMTP is not configured it
// returns a disabled mailer that logs instead of sending, so local
// development works without a mail server.
func New(cfg config.EmailConfig, logg *logger.Logger) Sender {
	if !cfg.Enabled() {
		return &noopMailer{logg: logg}
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	return &Mailer{dialer: d, from: cfg.From, logg: logg}
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mail: recipient is required")
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		gm.AddAlternative("text/html", msg.HTMLBody)
	}
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("mail: sending %q to %s: %w", msg.Subject, msg.To, err)
	}
	if m.logg != nil {
		m.logg.Info(ctx, fmt.Sprintf("email sent: %s", msg.Subject))
	}
	return nil
}

type noopMailer struct {
	logg *logger.Logger
}

func (n *noopMailer) Send(ctx context.Context, msg Message) error {
	if n.logg != nil {
		n.logg.Warn(ctx, fmt.Sprintf("email disabled, dropping %q for %s", msg.Subject, msg.To))
	}
	return nil
}
