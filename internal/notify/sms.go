package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/govind/worker-portal-back/internal/domain"
)

// SMSGateway delivers short text notifications to a worker's phone.
type SMSGateway interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSMSGateway simulates delivery by printing the payload. A real
// deployment would call a provider (Twilio, MSG91) here instead.
type LogSMSGateway struct {
	logger *log.Logger
}

func NewLogSMSGateway(logger *log.Logger) *LogSMSGateway {
	return &LogSMSGateway{logger: logger}
}

func (g *LogSMSGateway) Send(_ context.Context, phone, message string) error {
	if g.logger != nil {
		g.logger.Printf("sms delivered to=%s payload=%q", phone, message)
	}
	return nil
}

// AssignmentSMS formats the message sent when a worker is assigned.
func AssignmentSMS(workerName string, details domain.AssignmentDetails) string {
	return fmt.Sprintf(
		"Dear %s, you have been assigned a job! Location: %s. Contact Guide: %s (%s).",
		workerName,
		details.Location,
		details.GuideName,
		details.GuidePhone,
	)
}
