package smtpmail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"stockAlertBot/internal/ports"
)

// Mailer implements the ports.Notifier interface over SMTP. The recipient
// passed to Send is the destination email address.
type Mailer struct {
	host    string
	port    int
	from    string
	auth    smtp.Auth
	timeout time.Duration
	logger  ports.Logger
}

// Config holds configuration specific to the SMTP mailer adapter.
type Config struct {
	Host     string
	Port     int
	Username string // empty disables authentication
	Password string
	From     string        // sender address
	Timeout  time.Duration // dial timeout, default 15s
	Logger   ports.Logger
}

// New creates a new SMTP mailer adapter.
func New(cfg Config) (*Mailer, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SMTP mailer")
	}
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("SMTP host and sender address are required: %w", ports.ErrConfigurationError)
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{
		host:    cfg.Host,
		port:    port,
		from:    cfg.From,
		auth:    auth,
		timeout: timeout,
		logger:  cfg.Logger,
	}, nil
}

// Send delivers a single email. The context bounds the whole exchange; the
// deadline is applied to the underlying connection.
func (m *Mailer) Send(ctx context.Context, recipient, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	d := net.Dialer{Timeout: m.timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w: %w", addr, ports.ErrNotificationFailed, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w: %w", ports.ErrNotificationFailed, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(nil); err != nil {
			return fmt.Errorf("smtp starttls: %w: %w", ports.ErrNotificationFailed, err)
		}
	}
	if m.auth != nil {
		if err := client.Auth(m.auth); err != nil {
			return fmt.Errorf("smtp auth: %w: %w", ports.ErrNotificationFailed, err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w: %w", ports.ErrNotificationFailed, err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp rcpt to %s: %w: %w", recipient, ports.ErrNotificationFailed, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w: %w", ports.ErrNotificationFailed, err)
	}
	if _, err := w.Write([]byte(formatMessage(m.from, recipient, subject, body))); err != nil {
		return fmt.Errorf("smtp write body: %w: %w", ports.ErrNotificationFailed, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w: %w", ports.ErrNotificationFailed, err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("smtp quit: %w: %w", ports.ErrNotificationFailed, err)
	}

	m.logger.Info(ctx, "Email sent", map[string]interface{}{"recipient": recipient, "subject": subject})
	return nil
}

// formatMessage assembles a minimal RFC 5322 message.
func formatMessage(from, to, subject, body string) string {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")
	return sb.String()
}
