package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"

	"github.com/govind/worker-portal-back/internal/domain"
)

// Mailer delivers the assignment summary to a worker's email address.
type Mailer interface {
	SendAssignment(ctx context.Context, to, workerName string, details domain.AssignmentDetails) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailer sends through a real relay when credentials are
// configured and falls back to logging the composed message as a demo
// delivery when they are not.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *log.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger *log.Logger) *SMTPMailer {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = "demo@jobportal.com"
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) SendAssignment(
	_ context.Context,
	to string,
	workerName string,
	details domain.AssignmentDetails,
) error {
	body, err := ComposeAssignmentEmail(workerName, details)
	if err != nil {
		return err
	}

	subject := "Important: New Job Assignment Details - " + details.JobID
	message := buildMessage(m.cfg.From, to, subject, body)

	if m.cfg.Username == "" || m.cfg.Password == "" {
		// Demo delivery: no credentials configured.
		if m.logger != nil {
			m.logger.Printf("email demo delivery to=%s subject=%q bytes=%d", to, subject, len(message))
		}
		return nil
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if m.logger != nil {
		m.logger.Printf("email sent to=%s subject=%q", to, subject)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var builder strings.Builder
	builder.WriteString("From: Worker Job Portal <" + from + ">\r\n")
	builder.WriteString("To: " + to + "\r\n")
	builder.WriteString("Subject: " + subject + "\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(htmlBody)
	return []byte(builder.String())
}

var assignmentEmailTemplate = template.Must(template.New("assignment").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #2563eb;">New Job Assignment</h2>
  <p>Dear <strong>{{.WorkerName}}</strong>,</p>
  <p>You have been assigned to a new job. Please find the details below:</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><th align="left">Reporting Location</th><td>{{.Details.Location}}</td></tr>
    <tr><th align="left">Who to Meet</th><td>{{.Details.GuideName}}</td></tr>
    <tr><th align="left">Supervisor Contact</th><td>{{.Details.GuidePhone}}</td></tr>
    <tr><th align="left">Reporting Time</th><td>{{.Details.ReportingTime}}</td></tr>
    <tr><th align="left">Salary</th><td>{{.Details.Salary}}</td></tr>
  </table>
  <p><strong>Instructions:</strong> {{.Details.Instructions}}</p>
  <p>Please report on time. If you have any questions, contact the supervisor directly.</p>
</div>`))

// ComposeAssignmentEmail renders the HTML summary for an assignment.
func ComposeAssignmentEmail(workerName string, details domain.AssignmentDetails) (string, error) {
	var buffer bytes.Buffer
	err := assignmentEmailTemplate.Execute(&buffer, struct {
		WorkerName string
		Details    domain.AssignmentDetails
	}{WorkerName: workerName, Details: details})
	if err != nil {
		return "", fmt.Errorf("render assignment email: %w", err)
	}
	return buffer.String(), nil
}
