// Package mail delivers transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	texttemplate "text/template"
	"time"

	"folio/config"
	"folio/internal/domain/service"
	"folio/internal/errors"
	"folio/internal/util"
)

const resetSubject = "Reset your portfolio admin password"

var (
	resetText = texttemplate.Must(texttemplate.New("reset.txt").Parse(`Hello {{.Name}},

We received a request to reset the password for your portfolio admin account.
Open the link below to choose a new password. It expires in {{.ExpiresIn}}.

{{.ResetURL}}

If you did not request this, you can ignore this email.
`))

	resetHTML = htmltemplate.Must(htmltemplate.New("reset.html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
<p>Hello {{.Name}},</p>
<p>We received a request to reset the password for your portfolio admin account.</p>
<p><a href="{{.ResetURL}}" style="display:inline-block;padding:10px 16px;background:#2563eb;color:#fff;text-decoration:none;border-radius:4px;">Reset password</a></p>
<p>This link expires in {{.ExpiresIn}}. If you did not request this, you can ignore this email.</p>
</body>
</html>
`))
)

type resetView struct {
	Name      string
	ResetURL  string
	ExpiresIn string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// smtpMailer sends mail through a relay with PLAIN auth.
type smtpMailer struct {
	addr     string
	auth     smtp.Auth
	from     mail.Address
	send     sendFunc
	now      func() time.Time
	boundary string
}

// NewMailer returns the SMTP mailer, or a log-only mailer when mail.host is empty.
func NewMailer(cfg *config.Config, logger *slog.Logger) service.Mailer {
	mc := cfg.Mail
	if mc == nil || mc.Host == "" {
		logger.Warn("SMTP host not configured, password reset mail will only be logged")

		return &logMailer{logger: logger}
	}

	port := mc.Port
	if port == 0 {
		port = 587
	}

	var auth smtp.Auth
	if mc.Username != "" {
		auth = smtp.PlainAuth("", mc.Username, mc.Password, mc.Host)
	}

	from := mc.From
	if from == "" {
		from = mc.Username
	}

	return &smtpMailer{
		addr: net.JoinHostPort(mc.Host, strconv.Itoa(port)),
		auth: auth,
		from: mail.Address{Name: mc.FromName, Address: from},
		send: smtp.SendMail,
		now:  time.Now,
	}
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, msg service.PasswordResetMail) error {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return errors.Wrap(err, "invalid recipient")
	}

	body, err := m.buildPasswordReset(msg)
	if err != nil {
		return err
	}

	// net/smtp has no context support; honor cancellation before dialing at least.
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	if err := m.send(m.addr, m.auth, m.from.Address, []string{msg.To}, body); err != nil {
		return errors.Wrapf(err, "send mail via %s", m.addr)
	}

	return nil
}

// buildPasswordReset renders a multipart/alternative message with text and HTML parts.
func (m *smtpMailer) buildPasswordReset(msg service.PasswordResetMail) ([]byte, error) {
	view := resetView{
		Name:      msg.Name,
		ResetURL:  msg.ResetURL,
		ExpiresIn: util.FormatDuration(msg.ExpiresIn),
	}
	if view.Name == "" {
		view.Name = "there"
	}

	var text, html bytes.Buffer
	if err := resetText.Execute(&text, view); err != nil {
		return nil, errors.Wrap(err, "render text body")
	}
	if err := resetHTML.Execute(&html, view); err != nil {
		return nil, errors.Wrap(err, "render html body")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if m.boundary != "" {
		if err := mw.SetBoundary(m.boundary); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	for _, part := range []struct {
		contentType string
		content     []byte
	}{
		{"text/plain; charset=UTF-8", text.Bytes()},
		{"text/html; charset=UTF-8", html.Bytes()},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if _, err := w.Write(part.content); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", m.from.String())
	fmt.Fprintf(&out, "To: %s\r\n", msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", resetSubject))
	fmt.Fprintf(&out, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	out.Write(body.Bytes())

	return out.Bytes(), nil
}

// logMailer stands in for SMTP in local development.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) SendPasswordReset(ctx context.Context, msg service.PasswordResetMail) error {
	m.logger.InfoContext(ctx, "Password reset mail (not sent, SMTP disabled)",
		slog.String("to", msg.To),
		slog.String("reset_url", msg.ResetURL),
		slog.Duration("expires_in", msg.ExpiresIn),
	)

	return nil
}
