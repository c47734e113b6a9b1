// Package notify delivers one-time codes.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/wastewise/backend/models"
)

func subject(flow models.CodeType) string {
	switch flow {
	case models.CodeTypeEnable2FA:
		return "Confirm enabling two-factor authentication"
	case models.CodeTypeDisable2FA:
		return "Confirm disabling two-factor authentication"
	}
	return "Your WasteWise login code"
}

// Message renders the plain-text email for a code.
func Message(from, to, code string, flow models.CodeType) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject(flow))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Your verification code is %s.\r\n\r\n", code)
	b.WriteString("It can be used once and expires shortly.\r\n")
	b.WriteString("If you did not request it, you can ignore this email.\r\n")
	return []byte(b.String())
}

// LogNotifier stands in for email in development. The code itself is only
// written at debug level; other levels record that a code was issued.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, email, code string, flow models.CodeType) error {
	if n.Log.Enabled(ctx, slog.LevelDebug) {
		n.Log.DebugContext(ctx, "verification code (log notifier, not emailed)", "email", email, "flow", flow, "code", code)
		return nil
	}
	n.Log.WarnContext(ctx, "verification code not delivered, set LOG_LEVEL=debug to log it", "email", email, "flow", flow)
	return nil
}

type SMTPNotifier struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(host string, port int, user, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		Host:     host,
		Port:     port,
		Username: user,
		Password: password,
		From:     from,
		send:     smtp.SendMail,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, email, code string, flow models.CodeType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var a smtp.Auth
	if n.Username != "" {
		a = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}
	addr := net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
	if err := n.send(addr, a, n.From, []string{email}, Message(n.From, email, code, flow)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
