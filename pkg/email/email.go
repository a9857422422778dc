package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"go-trades-backend/config"
	"go-trades-backend/internal/domain"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	toEmail   string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		toEmail:   cfg.ContactEmailTo,
		send:      smtp.SendMail,
	}
}

const layoutStyle = `
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #e07b00; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #e07b00; margin-top: 10px; }
        .otp { font-size: 32px; letter-spacing: 8px; font-weight: bold; text-align: center; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }`

var contactTmpl = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>New Contact Form Submission</title><style>` + layoutStyle + `</style></head>
<body>
    <div class="container">
        <div class="header"><h1>New Contact Form Submission</h1></div>
        <div class="content">
            <p><span class="label">From:</span> {{.Name}} ({{.Email}})</p>
            <p><span class="label">Subject:</span> {{.Subject}}</p>
            <div class="message-box">{{.Message}}</div>
        </div>
        <div class="footer"><p>To reply, send an email to: {{.Email}}</p></div>
    </div>
</body>
</html>`))

var otpTmpl = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Password reset code</title><style>` + layoutStyle + `</style></head>
<body>
    <div class="container">
        <div class="header"><h1>Password reset</h1></div>
        <div class="content">
            <p>Hi {{.Name}},</p>
            <p>Use this code to reset your password:</p>
            <p class="otp">{{.OTP}}</p>
            <p>The code expires in {{.Minutes}} minute(s). If you did not ask for a reset you can ignore this email.</p>
        </div>
    </div>
</body>
</html>`))

// SendContactEmail sends a contact form email to the configured recipient
func (s *EmailService) SendContactEmail(_ context.Context, req *domain.ContactRequest) error {
	var body bytes.Buffer
	if err := contactTmpl.Execute(&body, req); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}
	return s.deliver(s.toEmail, req.Email, "Contact Form: "+req.Subject, body.Bytes())
}

func (s *EmailService) SendPasswordResetOTP(_ context.Context, to, name, otp string, ttl time.Duration) error {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	var body bytes.Buffer
	data := struct {
		Name    string
		OTP     string
		Minutes int
	}{name, otp, minutes}
	if err := otpTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}
	return s.deliver(to, "", "Your password reset code", body.Bytes())
}

func (s *EmailService) deliver(to, replyTo, subject string, body []byte) error {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.fromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	if replyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(body)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
