package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/STAYCALM1234/mabest-alum/config"
)

// Sender delivers one HTML message
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends over SMTP with STARTTLS when the server offers it
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// NewSMTPSender creates an SMTPSender from the mail settings
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		fromName: cfg.SiteName,
	}
}

func buildMessage(fromName, from, to, subject, htmlBody string, now time.Time) []byte {
	return []byte(strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", fromName, from),
		"To: " + to,
		"Subject: " + subject,
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n"))
}

// Send dials, authenticates when a username is set, and writes the message
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))

	dialer := &net.Dialer{Timeout: 8 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	deadline := time.Now().Add(20 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if s.username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(s.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(s.fromName, s.from, to, subject, htmlBody, time.Now())); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
