package notify

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/govind/worker-portal-back/internal/domain"
)

func TestComposeAssignmentEmailContainsAllDetails(t *testing.T) {
	details := domain.AssignmentDetails{
		JobID:         "1700000000005",
		Location:      "Market Road, Guntur",
		GuideName:     "Suresh",
		GuidePhone:    "9123456789",
		ReportingTime: "8:00 AM",
		Instructions:  "Bring your own safety boots",
		Salary:        "700/day",
	}

	body, err := ComposeAssignmentEmail("Raju", details)
	if err != nil {
		t.Fatalf("compose assignment email: %v", err)
	}

	for _, expected := range []string{
		"Raju",
		details.Location,
		details.GuideName,
		details.GuidePhone,
		details.ReportingTime,
		details.Instructions,
		details.Salary,
	} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected email body to contain %q, got:\n%s", expected, body)
		}
	}
}

func TestComposeAssignmentEmailEscapesHTML(t *testing.T) {
	details := domain.AssignmentDetails{
		Location: `<script>alert("x")</script>`,
	}

	body, err := ComposeAssignmentEmail("Raju", details)
	if err != nil {
		t.Fatalf("compose assignment email: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("expected markup in field values to be escaped, got:\n%s", body)
	}
}

func TestSMTPMailerDemoDeliveryWithoutCredentials(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{}, log.New(io.Discard, "", 0))

	err := mailer.SendAssignment(context.Background(), "raju@example.com", "Raju", domain.AssignmentDetails{
		JobID:    "j1",
		Location: "Guntur",
	})
	if err != nil {
		t.Fatalf("expected demo delivery to succeed without credentials, got %v", err)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	message := string(buildMessage("portal@example.com", "raju@example.com", "New Job", "<p>hello</p>"))

	for _, expected := range []string{
		"From: Worker Job Portal <portal@example.com>",
		"To: raju@example.com",
		"Subject: New Job",
		"Content-Type: text/html",
		"<p>hello</p>",
	} {
		if !strings.Contains(message, expected) {
			t.Fatalf("expected message to contain %q, got:\n%s", expected, message)
		}
	}

	if !strings.Contains(message, "\r\n\r\n") {
		t.Fatalf("expected blank line between headers and body")
	}
}

func TestAssignmentSMS(t *testing.T) {
	message := AssignmentSMS("Raju", domain.AssignmentDetails{
		Location:   "Market Road",
		GuideName:  "Suresh",
		GuidePhone: "9123456789",
	})

	for _, expected := range []string{"Raju", "Market Road", "Suresh", "9123456789"} {
		if !strings.Contains(message, expected) {
			t.Fatalf("expected sms to contain %q, got %q", expected, message)
		}
	}
}
