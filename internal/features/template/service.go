package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-docflow/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateService interface {
	CreateTemplate(ctx context.Context, tpl Template, actorID string) (*Template, error)
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	UpdateTemplate(ctx context.Context, id string, tpl Template) error
	DeleteTemplate(ctx context.Context, id string) error
}

type TemplateServiceImpl struct {
	Repo TemplateRepository
}

func NewTemplateService(repo TemplateRepository) TemplateService {
	return &TemplateServiceImpl{Repo: repo}
}

func (s *TemplateServiceImpl) CreateTemplate(ctx context.Context, tpl Template, actorID string) (*Template, error) {
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	if tpl.ID.IsZero() {
		tpl.ID = primitive.NewObjectID()
	}
	tpl.CreatedBy = actorID
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, id string) (*Template, error) {
	tpl, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("template %s: %w", id, apperrors.ErrNotFound)
	}
	return tpl, nil
}

func (s *TemplateServiceImpl) ListTemplates(ctx context.Context) ([]Template, error) {
	return s.Repo.List(ctx)
}

func (s *TemplateServiceImpl) UpdateTemplate(ctx context.Context, id string, tpl Template) error {
	if err := validateTemplate(tpl); err != nil {
		return err
	}
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("template %s: %w", id, apperrors.ErrNotFound)
	}
	return s.Repo.Update(ctx, id, tpl)
}

func (s *TemplateServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("template %s: %w", id, apperrors.ErrNotFound)
	}
	return s.Repo.Delete(ctx, id)
}

// validateTemplate enforces the chain shape: at least one stage, orders unique
// and contiguous starting at 1, and every target definition complete for its kind.
func validateTemplate(tpl Template) error {
	if tpl.Name == "" {
		return errors.New("template name is required")
	}
	if len(tpl.Stages) == 0 {
		return errors.New("template must define at least one stage")
	}

	seen := make(map[int]bool, len(tpl.Stages))
	for _, stage := range tpl.Stages {
		if stage.Name == "" {
			return fmt.Errorf("stage %d must have a name", stage.Order)
		}
		if stage.Order < 1 || stage.Order > len(tpl.Stages) {
			return fmt.Errorf("stage order %d out of range 1..%d", stage.Order, len(tpl.Stages))
		}
		if seen[stage.Order] {
			return fmt.Errorf("duplicate stage order %d", stage.Order)
		}
		seen[stage.Order] = true

		for _, target := range stage.Targets {
			if err := validateTarget(target); err != nil {
				return fmt.Errorf("stage %d: %w", stage.Order, err)
			}
		}
	}

	for _, target := range tpl.ReferenceTargets {
		if !target.IsReference {
			return errors.New("template-level targets must be reference targets")
		}
		if err := validateTarget(target); err != nil {
			return err
		}
	}

	return nil
}

func validateTarget(target TargetDefinition) error {
	switch target.Kind {
	case TargetKindUser:
		if target.UserID == "" {
			return errors.New("USER target requires a user id")
		}
	case TargetKindOrganization:
		if target.OrganizationID == "" {
			return errors.New("ORGANIZATION target requires an organization id")
		}
	case TargetKindOrgManagerAtLevel:
		if target.OrganizationID == "" {
			return errors.New("ORGANIZATION_MANAGER_AT_LEVEL target requires an organization id")
		}
		if target.ManagerLevel < 1 {
			return errors.New("ORGANIZATION_MANAGER_AT_LEVEL target requires a level >= 1")
		}
	default:
		return fmt.Errorf("unknown target kind %q", target.Kind)
	}
	return nil
}
