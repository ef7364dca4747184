// Package notify delivers activation links by mail, or logs them when no
// mail server is configured.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

const activationSubject = "Activa tu cuenta en PoolForYou"

// SMTPConfig holds the outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Enabled reports whether enough is configured to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.From != ""
}

// Mailer delivers an activation link to one recipient.
type Mailer interface {
	SendActivation(ctx context.Context, email, link string) error
}

// LogMailer prints the link instead of sending it.
type LogMailer struct {
	log *log.Logger
}

func NewLogMailer(l *log.Logger) *LogMailer { return &LogMailer{log: l} }

func (m *LogMailer) SendActivation(_ context.Context, email, link string) error {
	m.log.Infof("notify: email disabled, activation link for %s: %s", email, link)
	return nil
}

// SMTPMailer sends plain text mail through an SMTP server with STARTTLS.
type SMTPMailer struct {
	cfg SMTPConfig
	log *log.Logger
}

func NewSMTPMailer(cfg SMTPConfig, l *log.Logger) *SMTPMailer {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPMailer{cfg: cfg, log: l}
}

// NewMailer returns an SMTP mailer when SMTP is configured, otherwise a
// LogMailer.
func NewMailer(cfg SMTPConfig, l *log.Logger) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg, l)
	}
	return NewLogMailer(l)
}

func (m *SMTPMailer) SendActivation(ctx context.Context, email, link string) error {
	msg := ActivationMessage(m.cfg.From, email, link)
	if err := m.send(ctx, email, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email, err)
	}
	m.log.Infof("notify: activation mail sent to %s", email)
	return nil
}

// ActivationMessage renders the RFC 5322 message for an activation link.
func ActivationMessage(from, to, link string) []byte {
	body := strings.Join([]string{
		"Hola,",
		"",
		"Se te ha dado acceso al portal PoolForYou.",
		"",
		"Activa tu cuenta y crea tu contraseña aquí:",
		link,
		"",
		"Si no esperabas este correo, ignóralo.",
	}, "\r\n")
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + activationSubject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n"))
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
