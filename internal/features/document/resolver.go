package document

import (
	"context"
	"fmt"
	"time"

	"go-docflow/internal/config"
	"go-docflow/internal/features/organization"
	"go-docflow/internal/features/template"
	"go-docflow/pkg/apperrors"

	"go.uber.org/zap"
)

// Resolver expands a target definition into the concrete set of user ids
// allowed to act on it. Resolution happens at decision time, not at document
// creation, so organizational changes between submission and approval are
// honored.
type Resolver interface {
	Resolve(ctx context.Context, def template.TargetDefinition) ([]string, error)
}

type directoryResolver struct {
	directory organization.Directory
	timeout   time.Duration
	logger    *zap.Logger
}

func NewResolver(repo organization.OrganizationRepository, cfg *config.Config, logger *zap.Logger) Resolver {
	return &directoryResolver{
		directory: repo,
		timeout:   cfg.DirectoryTimeout,
		logger:    logger,
	}
}

// Resolve fails closed: if the directory is unreachable or slow, the error
// carries apperrors.ErrResolutionFailure and no user is ever authorized.
func (r *directoryResolver) Resolve(ctx context.Context, def template.TargetDefinition) ([]string, error) {
	switch def.Kind {
	case template.TargetKindUser:
		return []string{def.UserID}, nil

	case template.TargetKindOrganization:
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		members, err := r.directory.MembersOf(ctx, def.OrganizationID)
		if err != nil {
			r.logger.Warn("organization membership lookup failed",
				zap.String("organization", def.OrganizationID),
				zap.Error(err))
			return nil, fmt.Errorf("members of %s: %w", def.OrganizationID, apperrors.ErrResolutionFailure)
		}
		return members, nil

	case template.TargetKindOrgManagerAtLevel:
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		managers, err := r.directory.ManagerAt(ctx, def.OrganizationID, def.ManagerLevel)
		if err != nil {
			r.logger.Warn("manager lookup failed",
				zap.String("organization", def.OrganizationID),
				zap.Int("level", def.ManagerLevel),
				zap.Error(err))
			return nil, fmt.Errorf("manager level %d of %s: %w", def.ManagerLevel, def.OrganizationID, apperrors.ErrResolutionFailure)
		}
		return managers, nil

	default:
		return []string{}, nil
	}
}
