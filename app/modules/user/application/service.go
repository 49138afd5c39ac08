package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	userdb "github.com/raceline-gg/raceline-backend/app/modules/user/infrastructure/repositories"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/metrics"
	"github.com/raceline-gg/raceline-backend/internal/results"
)

// UserService implements the Service interface.
type UserService struct {
	repo    userdb.Repository
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewUserService creates a new UserService.
func NewUserService(repo userdb.Repository, logger *slog.Logger, m *metrics.Metrics, tracer trace.Tracer) *UserService {
	return &UserService{repo: repo, logger: logger, metrics: m, tracer: tracer}
}

// UpdateDiscordID stores the Discord id on the caller's account.
func (s *UserService) UpdateDiscordID(ctx context.Context, input UpdateDiscordInput) (result UserOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, "UpdateDiscordID", trace.WithAttributes(
		attribute.Int64("user_id", input.CallerID),
	))
	defer span.End()

	startTime := time.Now()
	defer func() {
		s.metrics.ObserveDuration("UpdateDiscordID", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in UpdateDiscordID: %v", r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.Int64("user_id", input.CallerID),
				attr.Error(err),
			)
			span.RecordError(err)
			result = UserOperationResult{}
		}
	}()

	if input.CallerID == 0 {
		s.logger.ErrorContext(ctx, "No user id resolved for discord link")
		return s.reject(results.FailureAuthentication, "unable to resolve user id"), nil
	}
	if input.DiscordID == "" {
		return s.reject(results.FailureValidation, "discord id is required"), nil
	}

	if err := s.repo.UpdateDiscordID(ctx, input.CallerID, input.DiscordID); err != nil {
		if errors.Is(err, userdb.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "Discord link for unknown user",
				attr.Int64("user_id", input.CallerID),
			)
			return s.reject(results.FailureValidation, "unknown user"), nil
		}
		s.logger.ErrorContext(ctx, "Unable to update discord id",
			attr.Int64("user_id", input.CallerID),
			attr.Error(err),
		)
		span.RecordError(err)
		return s.reject(results.FailurePersistence, "unable to update discord id"), nil
	}

	return results.SuccessResult[DiscordLinked, UserRejected](DiscordLinked{UserID: input.CallerID}), nil
}

func (s *UserService) reject(reason results.FailureKind, message string) UserOperationResult {
	return results.FailureResult[DiscordLinked](UserRejected{
		Reason:  reason,
		Message: message,
	})
}

var _ Service = (*UserService)(nil)

// Gate adapts the user repository to the ban-check and existence interfaces
// the other modules depend on.
type Gate struct {
	Repo userdb.Repository
}

// IsBanned reports whether the user is banned.
func (g *Gate) IsBanned(ctx context.Context, userID int64) (bool, error) {
	return g.Repo.IsBanned(ctx, userID)
}

// Exists reports whether the user row exists.
func (g *Gate) Exists(ctx context.Context, userID int64) (bool, error) {
	_, err := g.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userdb.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
