// Package mail delivers verification codes and links over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
)

// Dispatcher sends a single message, best effort. Implementations return an
// error on transport failure; retry policy belongs to the caller.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	SendTimeout time.Duration
}

type SMTPDispatcher struct {
	cfg  SMTPConfig
	addr string
	auth smtp.Auth
}

func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPDispatcher{
		cfg:  cfg,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
	}
}

func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = d.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(htmlBody)

	done := make(chan error, 1)
	go func() { done <- e.Send(d.addr, d.auth) }()

	select {
	case err := <-done:
		return err
	case <-time.After(d.cfg.SendTimeout):
		return fmt.Errorf("smtp send to %s timed out after %s", to, d.cfg.SendTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
