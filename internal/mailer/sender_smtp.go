package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/contact-api/internal/config"
)

// SMTPSender delivers mail over a direct SMTP connection. The same
// implementation backs both the generic `smtp` service and the `gmail`
// service, which is just Gmail's submission endpoint with an app password.
type SMTPSender struct {
	host        string
	port        int
	username    string
	password    string
	implicitTLS bool
	timeout     time.Duration
}

// NewSMTPSender creates a sender from the SMTP_* settings.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	timeout := cfg.Timeout()
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SMTPSender{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUser,
		password:    cfg.SMTPPassword,
		implicitTLS: cfg.SMTPSecure,
		timeout:     timeout,
	}
}

// NewGmailSender creates an SMTP sender preset to Gmail's submission port,
// authenticated with the account's app password.
func NewGmailSender(cfg config.EmailConfig) *SMTPSender {
	timeout := cfg.Timeout()
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SMTPSender{
		host:     "smtp.gmail.com",
		port:     587,
		username: cfg.GmailUser,
		password: cfg.GmailAppPassword,
		timeout:  timeout,
	}
}

// Verify dials the server, negotiates TLS and authenticates, then quits
// without sending. Distinguishes an unreachable transport from rejected
// credentials so the dispatcher can report the right failure class.
func (s *SMTPSender) Verify(ctx context.Context) error {
	if s.host == "" {
		return fmt.Errorf("%w: SMTP host is empty", ErrNotConfigured)
	}
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Noop(); err != nil {
		return fmt.Errorf("%w: NOOP: %v", ErrTransportUnavailable, err)
	}
	return client.Quit()
}

// Send delivers one message over a fresh SMTP transaction.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if s.host == "" {
		return fmt.Errorf("%w: SMTP host is empty", ErrNotConfigured)
	}
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("%w: MAIL FROM: %v", ErrSendFailed, err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%w: RCPT TO: %v", ErrSendFailed, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: DATA: %v", ErrSendFailed, err)
	}
	if _, err := w.Write(buildMIME(msg)); err != nil {
		return fmt.Errorf("%w: write: %v", ErrSendFailed, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: DATA close: %v", ErrSendFailed, err)
	}
	return client.Quit()
}

// connect dials the server, upgrades to TLS and authenticates.
func (s *SMTPSender) connect(ctx context.Context) (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	dialer := &net.Dialer{Timeout: s.timeout}

	var conn net.Conn
	var err error
	if s.implicitTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %v", ErrTransportUnavailable, addr, err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: SMTP client: %v", ErrTransportUnavailable, err)
	}

	if !s.implicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				client.Close()
				return nil, fmt.Errorf("%w: STARTTLS: %v", ErrTransportUnavailable, err)
			}
		}
	}

	if s.username != "" && s.password != "" {
		if err := client.Auth(&plainAuth{user: s.username, pass: s.password}); err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: AUTH: %v", ErrAuthenticationFailed, err)
		}
	}
	return client, nil
}

// buildMIME assembles the raw RFC 5322 message for SMTP delivery.
func buildMIME(msg *Message) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", msg.FromName, msg.From))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString(fmt.Sprintf("Message-ID: <%s@clinicore.io>\r\n", uuid.New().String()))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// plainAuth implements smtp.Auth without the TLS requirement that stdlib's
// PlainAuth enforces, for SMTP relays on private networks that never offer
// STARTTLS on the submission port.
type plainAuth struct {
	user, pass string
}

func (a *plainAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	resp := []byte("\x00" + a.user + "\x00" + a.pass)
	return "PLAIN", resp, nil
}

func (a *plainAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	return nil, nil
}
