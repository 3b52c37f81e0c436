// Package mail delivers account emails. LogMailer is for development and
// writes messages to the log; SMTPMailer talks to a real relay.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// LogMailer writes every message to the logger instead of sending it.
type LogMailer struct {
	Composer Composer
	Logger   *slog.Logger
}

func NewLogMailer(c Composer, logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{Composer: c, Logger: logger}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	msg, err := m.Composer.Verification(to, token)
	if err != nil {
		return err
	}
	return m.log(ctx, msg)
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	msg, err := m.Composer.PasswordReset(to, token)
	if err != nil {
		return err
	}
	return m.log(ctx, msg)
}

func (m *LogMailer) SendPasswordChangedNotice(ctx context.Context, to string) error {
	msg, err := m.Composer.PasswordChanged(to)
	if err != nil {
		return err
	}
	return m.log(ctx, msg)
}

func (m *LogMailer) log(ctx context.Context, msg Message) error {
	m.Logger.InfoContext(ctx, "email (development mode, not sent)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("link", msg.Link),
	)
	return nil
}

// SMTPConfig describes the outgoing relay.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	// ImplicitTLS dials TLS directly (port 465). Otherwise STARTTLS is used
	// when the server offers it.
	ImplicitTLS bool `koanf:"implicitTLS"`
}

var ErrSMTPNotConfigured = errors.New("mail: smtp host and from address are required")

// SMTPMailer sends mail through an SMTP relay. Each send opens its own
// connection bounded by the caller's context.
type SMTPMailer struct {
	Composer Composer
	Config   SMTPConfig

	// TLSConfig overrides the TLS settings, mainly for tests.
	TLSConfig *tls.Config
}

func NewSMTPMailer(c Composer, cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, ErrSMTPNotConfigured
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{Composer: c, Config: cfg}, nil
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	msg, err := m.Composer.Verification(to, token)
	if err != nil {
		return err
	}
	return m.Send(ctx, msg)
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	msg, err := m.Composer.PasswordReset(to, token)
	if err != nil {
		return err
	}
	return m.Send(ctx, msg)
}

func (m *SMTPMailer) SendPasswordChangedNotice(ctx context.Context, to string) error {
	msg, err := m.Composer.PasswordChanged(to)
	if err != nil {
		return err
	}
	return m.Send(ctx, msg)
}

func (m *SMTPMailer) tlsConfig() *tls.Config {
	if m.TLSConfig != nil {
		return m.TLSConfig
	}
	return &tls.Config{ServerName: m.Config.Host, MinVersion: tls.VersionTLS12}
}

// Send delivers msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(m.Config.Host, strconv.Itoa(m.Config.Port))

	var (
		conn net.Conn
		err  error
		d    net.Dialer
	)
	if m.Config.ImplicitTLS {
		td := tls.Dialer{NetDialer: &d, Config: m.tlsConfig()}
		conn, err = td.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.Config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("mail: greeting: %w", err)
	}
	defer c.Close()

	if !m.Config.ImplicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(m.tlsConfig()); err != nil {
				return fmt.Errorf("mail: starttls: %w", err)
			}
		}
	}
	if m.Config.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.Config.Username, m.Config.Password, m.Config.Host)
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("mail: auth: %w", err)
			}
		}
	}

	if err := c.Mail(m.Config.From); err != nil {
		return fmt.Errorf("mail: MAIL FROM: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("mail: RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mail: DATA: %w", err)
	}
	body, err := buildMessage(m.Config.From, msg, time.Now())
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("mail: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: end data: %w", err)
	}
	return c.Quit()
}

// buildMessage renders an RFC 5322 message with a quoted-printable HTML
// body.
func buildMessage(from string, msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	header("From", from)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.HTML)); err != nil {
		return nil, fmt.Errorf("mail: encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("mail: encode body: %w", err)
	}
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}
