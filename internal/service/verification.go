package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/notify"
	"github.com/govind/worker-portal-back/internal/otp"
)

var (
	ErrCodeExpired  = errors.New("verification code expired or not found")
	ErrCodeMismatch = errors.New("invalid verification code")
)

const verificationCodeLength = 6

// VerificationService runs the two-step phone-verified registration:
// Begin parks the payload with a code in the TTL store, Verify
// promotes it to a real worker record. Codes are single use.
type VerificationService struct {
	workers *WorkersService
	codes   *otp.Store
	sms     notify.SMSGateway
	logger  *log.Logger
}

func NewVerificationService(
	workers *WorkersService,
	codes *otp.Store,
	sms notify.SMSGateway,
	logger *log.Logger,
) *VerificationService {
	return &VerificationService{workers: workers, codes: codes, sms: sms, logger: logger}
}

func (s *VerificationService) Begin(ctx context.Context, registration domain.Registration) error {
	if strings.TrimSpace(registration.Name) == "" ||
		strings.TrimSpace(registration.Phone) == "" ||
		strings.TrimSpace(registration.Skill) == "" ||
		strings.TrimSpace(registration.Location) == "" {
		return ErrMissingFields
	}

	for _, existing := range s.workers.List(ctx) {
		if existing.Phone == registration.Phone {
			return ErrDuplicatePhone
		}
	}

	code := otp.GenerateCode(verificationCodeLength)
	s.codes.Put(registration.Phone, code, registration)

	message := "Your Worker Job Portal verification code is " + code
	if err := s.sms.Send(ctx, registration.Phone, message); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

func (s *VerificationService) Verify(ctx context.Context, phone, code string) (*domain.Worker, error) {
	if strings.TrimSpace(phone) == "" || strings.TrimSpace(code) == "" {
		return nil, ErrMissingFields
	}

	entry, ok := s.codes.Get(phone)
	if !ok {
		return nil, ErrCodeExpired
	}
	if entry.Code != code {
		return nil, ErrCodeMismatch
	}

	worker, err := s.workers.Register(ctx, entry.Registration)
	if err != nil {
		return nil, err
	}
	s.codes.Delete(phone)
	return worker, nil
}
