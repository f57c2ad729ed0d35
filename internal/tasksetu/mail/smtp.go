package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
)

var ErrNotConfigured = errors.New("mail: smtp host, port and sender are required")

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends multipart text+HTML emails through an SMTP relay.
type SMTPMailer struct {
	cfg  Config
	send SendFunc
	now  func() time.Time
}

// NewSMTPMailer validates cfg. A nil send uses smtp.SendMail.
func NewSMTPMailer(cfg Config, send SendFunc) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port <= 0 || cfg.From == "" {
		return nil, ErrNotConfigured
	}
	if send == nil {
		send = smtp.SendMail
	}
	return &SMTPMailer{cfg: cfg, send: send, now: time.Now}, nil
}

func (m *SMTPMailer) SendInvite(ctx context.Context, msg domain.InviteMessage) error {
	out, err := ComposeInvite(msg)
	if err != nil {
		return err
	}
	return m.deliver(ctx, out)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, msg domain.ResetMessage) error {
	out, err := ComposeReset(msg)
	if err != nil {
		return err
	}
	return m.deliver(ctx, out)
}

func (m *SMTPMailer) SendVerification(ctx context.Context, msg domain.VerificationMessage) error {
	out, err := ComposeVerification(msg)
	if err != nil {
		return err
	}
	return m.deliver(ctx, out)
}

func (m *SMTPMailer) deliver(ctx context.Context, msg Message) error {
	// smtp.SendMail has no context support; at least honour cancellation
	// before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := msg.Bytes(m.cfg.From, m.now())
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Bytes encodes msg as a multipart/alternative MIME message.
func (msg Message) Bytes(from string, date time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct{ contentType, content string }{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(p.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", from)
	fmt.Fprintf(&out, "To: %s\r\n", msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&out, "Date: %s\r\n", date.Format(time.RFC1123Z))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	out.Write(body.Bytes())
	return out.Bytes(), nil
}
