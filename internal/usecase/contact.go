package usecase

import (
	"context"
	"fmt"
	"strings"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type contactUsecase struct {
	mailer domain.Mailer
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(mailer domain.Mailer) domain.ContactUsecase {
	return &contactUsecase{mailer: mailer}
}

// SendContactMessage validates the contact request and sends the email
func (uc *contactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactRequest) error {
	cleaned := &domain.ContactRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}

	// Binding accepts whitespace-only values
	errs := apperror.FieldErrors{}
	if cleaned.Name == "" {
		errs.Add("name", "is required")
	}
	if cleaned.Email == "" {
		errs.Add("email", "is required")
	}
	if cleaned.Subject == "" {
		errs.Add("subject", "is required")
	}
	if cleaned.Message == "" {
		errs.Add("message", "is required")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if err := uc.mailer.SendContactEmail(ctx, cleaned); err != nil {
		return fmt.Errorf("failed to send contact email: %w", err)
	}
	return nil
}
