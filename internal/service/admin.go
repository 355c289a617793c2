package service

import (
	"context"
	"strings"
	"time"

	"github.com/catalogo-ips/registration-gateway/internal/domain"
	"github.com/catalogo-ips/registration-gateway/internal/infra/observability"
	"github.com/catalogo-ips/registration-gateway/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var adminTracer = otel.Tracer("service/admin")

// AdminService drives the review panel: listing, approving, blocking and
// deleting registrant profiles.
type AdminService struct {
	profiles port.ProfileStore
	identity port.IdentityAdmin
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAdminService creates the admin service.
func NewAdminService(profiles port.ProfileStore, identity port.IdentityAdmin, metrics *observability.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{
		profiles: profiles,
		identity: identity,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns profiles ordered by created_at ascending. A status of "all"
// (any casing) or empty applies no status filter; search narrows by a
// case-insensitive substring over full_name, email, cpf_cnpj and city.
func (s *AdminService) List(ctx context.Context, status, search string) ([]domain.Profile, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.List")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("list", time.Since(start))
	}()

	if strings.EqualFold(status, "all") {
		status = ""
	}
	span.SetAttributes(attribute.String("filter.status", status))

	items, err := s.profiles.ListProfiles(ctx, domain.ProfileFilter{
		Status: status,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		s.metrics.IncrExternalError("profiles")
		return nil, err
	}
	if items == nil {
		items = []domain.Profile{}
	}
	return items, nil
}

// Approve sets status=approved on every row matching the request filter.
// Matching nothing yields an empty slice, not an error.
func (s *AdminService) Approve(ctx context.Context, req *domain.AdminActionRequest) ([]domain.Profile, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Approve")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("approve", time.Since(start))
	}()

	if err := requireTarget(req, "Informe id ou email para aprovar."); err != nil {
		return nil, err
	}

	updated, err := s.profiles.UpdateStatus(ctx, req.ID, req.Email, domain.StatusApproved)
	if err != nil {
		s.metrics.IncrExternalError("profiles")
		return nil, err
	}

	s.metrics.IncrAdminAction("approve")
	s.logger.Info("profiles approved",
		zap.String("id", req.ID),
		zap.String("email", req.Email),
		zap.Int("count", len(updated)),
	)
	return updated, nil
}

// Block sets status=block with the same contract as Approve.
func (s *AdminService) Block(ctx context.Context, req *domain.AdminActionRequest) ([]domain.Profile, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Block")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("block", time.Since(start))
	}()

	if err := requireTarget(req, "Informe id ou email para bloquear."); err != nil {
		return nil, err
	}

	updated, err := s.profiles.UpdateStatus(ctx, req.ID, req.Email, domain.StatusBlock)
	if err != nil {
		s.metrics.IncrExternalError("profiles")
		return nil, err
	}

	s.metrics.IncrAdminAction("block")
	s.logger.Info("profiles blocked",
		zap.String("id", req.ID),
		zap.String("email", req.Email),
		zap.Int("count", len(updated)),
	)
	return updated, nil
}

// Delete removes matching profile rows, then attempts to delete the
// corresponding auth account. Row deletion comes first; the account
// cleanup is best-effort and its errors never reach the caller.
func (s *AdminService) Delete(ctx context.Context, req *domain.AdminActionRequest) ([]domain.Profile, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Delete")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("delete", time.Since(start))
	}()

	if err := requireTarget(req, "Informe id ou email para excluir."); err != nil {
		return nil, err
	}

	// Resolve the auth account id before the row disappears. A failed
	// lookup only disables the cleanup step below.
	targetID := req.ID
	if targetID == "" {
		p, err := s.profiles.GetProfileByEmail(ctx, req.Email)
		if err != nil {
			s.logger.Warn("could not resolve account id for cleanup",
				zap.String("email", req.Email),
				zap.Error(err),
			)
		} else if p != nil {
			targetID = p.ID
		}
	}

	deleted, err := s.profiles.DeleteProfiles(ctx, req.ID, req.Email)
	if err != nil {
		s.metrics.IncrExternalError("profiles")
		return nil, err
	}

	if targetID != "" {
		if err := s.identity.DeleteUser(ctx, targetID); err != nil {
			// Deliberately swallowed: the profile row is already gone.
			s.logger.Warn("auth account cleanup failed",
				zap.String("user_id", targetID),
				zap.Error(err),
			)
		}
	}

	s.metrics.IncrAdminAction("delete")
	s.logger.Info("profiles deleted",
		zap.String("id", req.ID),
		zap.String("email", req.Email),
		zap.Int("count", len(deleted)),
	)
	return deleted, nil
}

func requireTarget(req *domain.AdminActionRequest, msg string) error {
	if strings.TrimSpace(req.ID) == "" && strings.TrimSpace(req.Email) == "" {
		return &domain.ErrValidation{Message: msg}
	}
	return nil
}
