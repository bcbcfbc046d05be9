package email

import (
	"context"
	"fmt"
	"net/smtp"

	"wildbook-backend/pkg/logger"
)

type ResetPasswordData struct {
	Email     string
	ResetURL  string
	ExpiresIn string
}

type WelcomeData struct {
	Email string
	Name  string
}

type EmailService interface {
	SendResetPasswordEmail(ctx context.Context, data ResetPasswordData) error
	SendWelcomeEmail(ctx context.Context, data WelcomeData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendResetPasswordEmail(ctx context.Context, data ResetPasswordData) error {
	subject := "Password Reset"
	body := fmt.Sprintf(`Hi,

You requested a password reset. Visit the link below to choose a new password:
%s

The link is valid for %s.

If you did not request this, you can safely ignore this email.`, data.ResetURL, data.ExpiresIn)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) SendWelcomeEmail(ctx context.Context, data WelcomeData) error {
	subject := "Welcome to Wildbook"
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Happy spotting!`, data.Name)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, to, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{to}, msg); err != nil {
		logger.Warn("failed to send email", map[string]interface{}{
			"to":        to,
			"smtp_addr": s.smtpAddr,
			"error":     err.Error(),
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
