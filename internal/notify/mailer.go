package notify

import (
	"context"
	"errors"

	"github.com/wneessen/go-mail"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
)

// MailConfig describes the SMTP relay and the envelope of operator mails.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	ReplyTo  string
}

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Mailer sends the RSVP summary by email.
type Mailer struct {
	cfg    MailConfig
	client mailSender
}

// NewMailer builds a Mailer for cfg. SMTP auth is enabled when a username
// is set; STARTTLS is used when the server offers it.
func NewMailer(cfg MailConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("notify: smtp host is required")
	}
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("notify: from and to addresses are required")
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &Mailer{cfg: cfg, client: client}, nil
}

// Notify implements Notifier.
func (m *Mailer) Notify(ctx context.Context, g *domain.Guest) error {
	msg, err := m.message(g)
	if err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, msg)
}

func (m *Mailer) message(g *domain.Guest) (*mail.Msg, error) {
	s := Summary(g)
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, err
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return nil, err
	}
	if m.cfg.ReplyTo != "" {
		if err := msg.ReplyTo(m.cfg.ReplyTo); err != nil {
			return nil, err
		}
	}
	msg.Subject(s.Subject)
	msg.SetBodyString(mail.TypeTextPlain, s.Body)
	return msg, nil
}
