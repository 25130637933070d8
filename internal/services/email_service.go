package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/mpgepmc/backend/internal/config"
)

// Mailer is the notification contract the account flows depend on: a
// best-effort send whose failure is reported to the caller. No retries.
type Mailer interface {
	SendOTPEmail(to, firstName, code string) error
	SendPasswordResetEmail(to, firstName, resetURL string) error
}

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendOTPEmail delivers the verification code
func (s *EmailService) SendOTPEmail(to, firstName, code string) error {
	subject := "mpgepmc Account Verification Code"
	body := fmt.Sprintf(`Hello %s,

Your One-Time Password (OTP) for verifying your mpgepmc account is: %s

This code will expire in %d minutes.

Thank you,
mpgepmc Team`, firstName, code, int(s.cfg.OTPExpiry.Minutes()))

	return s.sendTextEmail(to, subject, body)
}

// SendPasswordResetEmail delivers the reset link
func (s *EmailService) SendPasswordResetEmail(to, firstName, resetURL string) error {
	subject := "mpgepmc Password Reset"
	body := fmt.Sprintf(`Hello %s,

We received a request to reset the password of your mpgepmc account.

Open the link below to choose a new password:

%s

This link will expire in %d hours. If you did not request a reset, you can ignore this email.

Thank you,
mpgepmc Team`, firstName, resetURL, int(s.cfg.ResetTokenExpiry.Hours()))

	return s.sendTextEmail(to, subject, body)
}

func (s *EmailService) sendTextEmail(to, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFrom)
	message := fmt.Sprintf("From: %s\r\n", from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
	message += "\r\n"
	message += body
	return s.sendSMTP(to, []byte(message))
}

// sendSMTP sends an email via SMTP
func (s *EmailService) sendSMTP(to string, message []byte) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	// For TLS connection (port 465)
	if s.cfg.SMTPPort == 465 {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.SMTPHost,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Close()

		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		if err := client.Mail(s.cfg.SMTPFrom); err != nil {
			return err
		}
		if err := client.Rcpt(to); err != nil {
			return err
		}

		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err = w.Write(message); err != nil {
			return err
		}
		if err = w.Close(); err != nil {
			return err
		}

		return client.Quit()
	}

	// For STARTTLS connection (port 587)
	return smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{to}, message)
}
