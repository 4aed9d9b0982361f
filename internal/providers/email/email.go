package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/brewpass/brewpass/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Provider sends one HTML email. Implementations do not retry; the
// caller decides how to account for failures.
type Provider interface {
	Send(ctx context.Context, to, subject, html string) error
}

type SMTPProvider struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTP(cfg config.Config) *SMTPProvider {
	return &SMTPProvider{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUsername,
		pass: cfg.SMTPPassword,
		from: cfg.SMTPFrom,
	}
}

func (p *SMTPProvider) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString("From: " + p.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	var auth smtp.Auth
	if p.user != "" {
		auth = smtp.PlainAuth("", p.user, p.pass, p.host)
	}
	return smtp.SendMail(addr, auth, p.from, []string{to}, []byte(msg.String()))
}

// NoOpProvider logs instead of sending. Used when SMTP is unconfigured
// so campaign sends still complete in development.
type NoOpProvider struct {
	log *zap.Logger
}

func NewNoOp(log *zap.Logger) *NoOpProvider {
	return &NoOpProvider{log: log.Named("email.noop")}
}

func (p *NoOpProvider) Send(_ context.Context, to, subject, _ string) error {
	p.log.Info("email suppressed, smtp unconfigured",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// NewFromConfig picks SMTP when a host is configured, no-op otherwise.
func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.SMTPHost == "" {
		return NewNoOp(log)
	}
	return NewSMTP(cfg)
}

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)
