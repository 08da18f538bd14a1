package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"dokan-be/internal/config"
)

// Email is a rendered message ready for delivery.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single email.
type Sender interface {
	Send(e Email) error
}

// SMTPMailer sends mail over plain SMTP with STARTTLS.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

func (m *SMTPMailer) Send(e Email) error {
	if m.username == "" {
		return fmt.Errorf("mail: SMTP_USER not configured")
	}

	var b strings.Builder
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("To: " + e.To + "\r\n")
	b.WriteString("Subject: " + e.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.Body)

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{e.To}, []byte(b.String()))
}
