// Package mail submits HTML email over authenticated SMTP.
//
//	m := mail.New(mail.FromConfig())
//	err := m.To("buyer@example.com").
//	    Subject("Order Successful").
//	    Body(mail.Paragraph("You have placed an order successfully.")).
//	    Send()
package mail

import (
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"strings"

	"github.com/plantnet/plantnet/config"
)

// ErrNotConfigured is returned by Send when no SMTP credentials are set.
var ErrNotConfigured = errors.New("mail: MAIL_USERNAME not configured")

// SMTP holds connection credentials (populated from env/config).
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// FromConfig reads the MAIL_* keys.
func FromConfig() SMTP {
	user := config.Get("MAIL_USERNAME", "")
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.gmail.com"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: user,
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", user),
		FromName: config.Get("MAIL_FROM_NAME", "PlantNet"),
	}
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer holds the SMTP settings shared by every message it builds.
type Mailer struct {
	cfg  SMTP
	send sendFunc
}

func New(cfg SMTP) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// Configured reports whether credentials are present.
func (m *Mailer) Configured() bool { return m.cfg.Username != "" }

// Message is a fluent builder for an email.
type Message struct {
	mailer  *Mailer
	to      []string
	subject string
	body    string
}

// To starts a message for the given recipients.
func (m *Mailer) To(addresses ...string) *Message {
	return &Message{mailer: m, to: addresses}
}

// Subject sets the email subject.
func (msg *Message) Subject(s string) *Message {
	msg.subject = s
	return msg
}

// Body sets the HTML body.
func (msg *Message) Body(htmlBody string) *Message {
	msg.body = htmlBody
	return msg
}

// Deliver sends a single HTML message to one recipient.
func (m *Mailer) Deliver(to, subject, htmlBody string) error {
	return m.To(to).Subject(subject).Body(htmlBody).Send()
}

// Paragraph escapes text and wraps it in a single <p> element.
func Paragraph(text string) string {
	return "<p>" + html.EscapeString(text) + "</p>"
}

// Send delivers the email. Port 465 uses implicit TLS; anything else goes
// through smtp.SendMail, which upgrades with STARTTLS when offered.
func (msg *Message) Send() error {
	cfg := msg.mailer.cfg
	if cfg.Username == "" {
		return ErrNotConfigured
	}
	if len(msg.to) == 0 {
		return errors.New("mail: no recipients")
	}

	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	raw := msg.buildRaw(from)

	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	if cfg.Port == "465" {
		return sendTLS(addr, auth, cfg.From, msg.to, raw, cfg.Host)
	}
	return msg.mailer.send(addr, auth, cfg.From, msg.to, raw)
}

func sendTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	return submit(conn, host, auth, from, to, raw)
}

// submit runs one SMTP transaction over conn and always closes it.
func submit(conn net.Conn, host string, auth smtp.Auth, from string, to []string, raw []byte) error {
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: greeting: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (msg *Message) buildRaw(from string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.to, ", ") + "\r\n")
	b.WriteString("Subject: " + stripCRLF(msg.subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.body)
	return []byte(b.String())
}

func stripCRLF(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}
