package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

type EmailService struct {
	context.DefaultService

	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	baseURL      string

	templates map[string]*template.Template
}

const EMAIL_SVC = "email_svc"

func (svc EmailService) Id() string {
	return EMAIL_SVC
}

func (svc *EmailService) Configure(ctx *context.Context) error {
	svc.smtpHost = os.Getenv("SMTP_HOST")
	svc.smtpPort = os.Getenv("SMTP_PORT")
	svc.smtpUsername = os.Getenv("SMTP_USERNAME")
	svc.smtpPassword = os.Getenv("SMTP_PASSWORD")
	svc.fromEmail = os.Getenv("FROM_EMAIL")
	svc.fromName = os.Getenv("FROM_NAME")
	svc.baseURL = os.Getenv("BASE_URL")

	// Set defaults if not provided
	if svc.smtpPort == "" {
		svc.smtpPort = "587"
	}
	if svc.fromName == "" {
		svc.fromName = "Game Platform"
	}
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:8000"
	}

	svc.templates = make(map[string]*template.Template)

	return svc.DefaultService.Configure(ctx)
}

func (svc *EmailService) Start() error {
	// Load email templates
	err := svc.loadTemplates()
	if err != nil {
		log.WithError(err).Error("Failed to load email templates")
		// Don't fail startup, just log the error
	}

	return nil
}

// BaseURL is the public origin links in outgoing mail point at.
func (svc *EmailService) BaseURL() string {
	return svc.baseURL
}

// Email templates
const inviteEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>You're Invited - {{.AppName}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4F46E5; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .button { display: inline-block; padding: 12px 24px; background-color: #4F46E5; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        .footer { padding: 20px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Welcome to {{.AppName}}!</h1>
        </div>
        <div class="content">
            <h2>Hello,</h2>
            <p>{{.InviterName}} has invited you to join {{.AppName}} as a <strong>{{.Role}}</strong>. Click the button below to create your account:</p>
            <a href="{{.InviteURL}}" class="button">Accept Invitation</a>
            <p>If the button doesn't work, you can also copy and paste this link into your browser:</p>
            <p><a href="{{.InviteURL}}">{{.InviteURL}}</a></p>
            <p>This invitation will expire in 7 days.</p>
            <p>If you weren't expecting this invitation, you can safely ignore this email.</p>
        </div>
        <div class="footer">
            <p>&copy; 2026 {{.AppName}}. All rights reserved.</p>
        </div>
    </div>
</body>
</html>
`

const passwordResetEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reset Your Password - {{.AppName}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #DC2626; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .button { display: inline-block; padding: 12px 24px; background-color: #DC2626; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        .footer { padding: 20px; text-align: center; color: #666; font-size: 12px; }
        .warning { background-color: #FEF2F2; border-left: 4px solid #DC2626; padding: 10px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Password Reset Request</h1>
        </div>
        <div class="content">
            <h2>Hi {{.Username}},</h2>
            <p>We received a request to reset your password for your {{.AppName}} account.</p>
            <a href="{{.ResetURL}}" class="button">Reset Password</a>
            <p>If the button doesn't work, you can also copy and paste this link into your browser:</p>
            <p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
            <div class="warning">
                <strong>Important:</strong> This password reset link will expire in 1 hour for security reasons.
            </div>
            <p>If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
        </div>
        <div class="footer">
            <p>&copy; 2026 {{.AppName}}. All rights reserved.</p>
        </div>
    </div>
</body>
</html>
`

// Template data structures
type InviteEmailData struct {
	AppName     string
	InviterName string
	Role        string
	InviteURL   string
}

type PasswordResetEmailData struct {
	AppName  string
	Username string
	ResetURL string
}

// Load email templates
func (svc *EmailService) loadTemplates() error {
	var err error

	svc.templates["invite"], err = template.New("invite").Parse(inviteEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse invite email template: %v", err)
	}

	svc.templates["password_reset"], err = template.New("password_reset").Parse(passwordResetEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse password reset email template: %v", err)
	}

	return nil
}

// Send invite email
func (svc *EmailService) SendInviteEmail(email, inviterName, role, inviteURL string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping invite email")
		return nil
	}

	data := InviteEmailData{
		AppName:     svc.fromName,
		InviterName: inviterName,
		Role:        role,
		InviteURL:   inviteURL,
	}

	subject := fmt.Sprintf("You're invited to join %s", svc.fromName)
	return svc.sendTemplateEmail(email, subject, "invite", data)
}

// Send password reset email
func (svc *EmailService) SendPasswordResetEmail(email, username, token string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping password reset email")
		return nil
	}

	resetURL := fmt.Sprintf("%s/reset-password?email=%s&token=%s", svc.baseURL, email, token)

	data := PasswordResetEmailData{
		AppName:  svc.fromName,
		Username: username,
		ResetURL: resetURL,
	}

	subject := fmt.Sprintf("Reset Your Password - %s", svc.fromName)
	return svc.sendTemplateEmail(email, subject, "password_reset", data)
}

// Send template email
func (svc *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	tmpl, exists := svc.templates[templateName]
	if !exists {
		return fmt.Errorf("template %s not found", templateName)
	}

	var body bytes.Buffer
	err := tmpl.Execute(&body, data)
	if err != nil {
		return fmt.Errorf("failed to execute template: %v", err)
	}

	return svc.sendEmail(to, subject, body.String())
}

// Send email using SMTP
func (svc *EmailService) sendEmail(to, subject, body string) error {
	if svc.smtpHost == "" {
		return fmt.Errorf("SMTP not configured")
	}

	// Setup authentication
	auth := smtp.PlainAuth("", svc.smtpUsername, svc.smtpPassword, svc.smtpHost)

	// Compose message
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		svc.fromName, svc.fromEmail, to, subject, body))

	// Send email
	err := smtp.SendMail(
		svc.smtpHost+":"+svc.smtpPort,
		auth,
		svc.fromEmail,
		[]string{to},
		msg,
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{"to": to, "subject": subject}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("Email sent successfully")
	return nil
}

// Send plain text email (for simple notifications)
func (svc *EmailService) SendPlainEmail(to, subject, body string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping email")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", svc.smtpUsername, svc.smtpPassword, svc.smtpHost)

	// Compose message
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		svc.fromName, svc.fromEmail, to, subject, body))

	// Send email
	err := smtp.SendMail(
		svc.smtpHost+":"+svc.smtpPort,
		auth,
		svc.fromEmail,
		[]string{to},
		msg,
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{"to": to, "subject": subject}).Error("Failed to send plain email")
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("Plain email sent successfully")
	return nil
}
