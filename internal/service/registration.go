// Package service provides the business logic layer (use cases).
// RegistrationService handles public registration submissions;
// AdminService handles the review panel operations.
package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/catalogo-ips/registration-gateway/internal/domain"
	"github.com/catalogo-ips/registration-gateway/internal/infra/observability"
	"github.com/catalogo-ips/registration-gateway/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/registration")

// RegistrationService resolves the auth account for a submission and
// mirrors the form into the profiles table.
type RegistrationService struct {
	profiles port.ProfileStore
	identity port.IdentityAdmin
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewRegistrationService creates the registration service with all
// dependencies injected.
func NewRegistrationService(profiles port.ProfileStore, identity port.IdentityAdmin, metrics *observability.Metrics, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		profiles: profiles,
		identity: identity,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register looks up the auth account by email, creates one with the email
// pre-confirmed when absent, then upserts the profile row keyed by the
// account id. Status is set to pending unconditionally: re-registration
// resets a previously approved or blocked profile back to pending.
func (s *RegistrationService) Register(ctx context.Context, req *domain.RegistrationRequest) (*domain.RegistrationResponse, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.Register")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("register", time.Since(start))
	}()

	if err := validateRegistration(req); err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(req.Email)
	span.SetAttributes(attribute.String("registration.email", req.Email))

	user, err := s.identity.GetUserByEmail(ctx, req.Email)
	if err != nil {
		s.metrics.IncrExternalError("auth")
		return nil, err
	}

	if user == nil {
		user, err = s.identity.CreateUser(ctx, req.Email)
		if err != nil {
			s.metrics.IncrExternalError("auth")
			return nil, err
		}
		s.logger.Info("auth account created",
			zap.String("user_id", user.ID),
			zap.String("email", req.Email),
		)
	}

	profile := &domain.Profile{
		ID:                user.ID,
		Email:             req.Email,
		FullName:          req.FullName,
		PersonType:        req.PersonType,
		Country:           req.Country,
		State:             req.State,
		City:              req.City,
		CpfCnpj:           req.CpfCnpj,
		PhoneArea:         req.PhoneArea,
		PhoneNumber:       req.PhoneNumber,
		DeviceFingerprint: req.DeviceFingerprint,
		Status:            domain.StatusPending,
	}

	// No compensating rollback: a failed upsert after account creation
	// leaves the account in place and surfaces the database error.
	stored, err := s.profiles.UpsertProfile(ctx, profile)
	if err != nil {
		s.metrics.IncrExternalError("profiles")
		return nil, err
	}

	s.metrics.IncrRegistration()
	s.logger.Info("registration upserted",
		zap.String("user_id", user.ID),
		zap.String("status", stored.Status),
	)

	return &domain.RegistrationResponse{
		OK:      true,
		UserID:  user.ID,
		Profile: stored,
	}, nil
}

func validateRegistration(req *domain.RegistrationRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return &domain.ErrValidation{Field: "email", Message: "obrigatório"}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return &domain.ErrValidation{Field: "email", Message: "formato inválido"}
	}
	if strings.TrimSpace(req.FullName) == "" {
		return &domain.ErrValidation{Field: "full_name", Message: "obrigatório"}
	}
	if strings.TrimSpace(req.PersonType) == "" {
		return &domain.ErrValidation{Field: "person_type", Message: "obrigatório"}
	}
	if strings.TrimSpace(req.DeviceFingerprint) == "" {
		return &domain.ErrValidation{Field: "device_fingerprint", Message: "obrigatório"}
	}
	return nil
}
