package services

import (
	"fmt"
	"net/smtp"

	"github.com/davidm/taskhive-api/internal/config"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendWelcome(to, name string) error {
	subject := "Welcome to TaskHive"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome aboard</h2>
			<p>Hi %s,</p>
			<p>Your account is ready. We created a default workspace to get you started.</p>
		</body>
		</html>
	`, name)

	return s.Send(to, subject, body)
}

func (s *EmailService) SendWorkspaceInvite(to, workspaceName, inviterName, inviteCode string) error {
	subject := fmt.Sprintf("You've been invited to join %s", workspaceName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Workspace Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has invited you to join the workspace <strong>%s</strong>.</p>
			<p>Use invite code <strong>%s</strong> to join.</p>
		</body>
		</html>
	`, inviterName, workspaceName, inviteCode)

	return s.Send(to, subject, body)
}
