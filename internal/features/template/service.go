package template

import (
	"context"
	"fmt"
	"time"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/permission"
	"nextgen-crm/internal/features/prospect"
)

type TemplateService interface {
	List(ctx context.Context) ([]Template, error)
	Create(ctx context.Context, actor *access.Identity, t *Template) (*Template, error)
	Update(ctx context.Context, actor *access.Identity, id string, t *Template) error
	Delete(ctx context.Context, actor *access.Identity, id string) error

	// RenderFor resolves the template's placeholders against a
	// prospect for sending.
	RenderFor(ctx context.Context, templateID string, p *prospect.Prospect, assignedName string) (string, error)
}

type TemplateServiceImpl struct {
	Repo TemplateRepository
}

func NewTemplateService(repo TemplateRepository) TemplateService {
	return &TemplateServiceImpl{Repo: repo}
}

func (s *TemplateServiceImpl) List(ctx context.Context) ([]Template, error) {
	return s.Repo.ListAll(ctx)
}

func (s *TemplateServiceImpl) Create(ctx context.Context, actor *access.Identity, t *Template) (*Template, error) {
	if !actor.Permissions.For(permission.ModuleTemplates).Add {
		return nil, errs.Permission("add template")
	}
	if t.Name == "" {
		return nil, errs.Validation("name", "Template name is required")
	}
	if t.Content == "" {
		return nil, errs.Validation("content", "Template content is required")
	}
	if t.Type == "" {
		t.Type = TypeWhatsApp
	}

	now := time.Now()
	t.CreatedBy = actor.EmployeeID
	t.CreatedAt = now
	t.UpdatedAt = now

	id, err := s.Repo.Create(ctx, t)
	if err != nil {
		return nil, errs.Write("create template", err)
	}
	t.ID = id
	return t, nil
}

func (s *TemplateServiceImpl) Update(ctx context.Context, actor *access.Identity, id string, t *Template) error {
	if !actor.Permissions.For(permission.ModuleTemplates).Edit {
		return errs.Permission("edit template")
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("template not found")
	}

	t.CreatedBy = existing.CreatedBy
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, t); err != nil {
		return errs.Write("update template", err)
	}
	return nil
}

func (s *TemplateServiceImpl) Delete(ctx context.Context, actor *access.Identity, id string) error {
	if !actor.Permissions.For(permission.ModuleTemplates).Delete {
		return errs.Permission("delete template")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return errs.Write("delete template", err)
	}
	return nil
}

func (s *TemplateServiceImpl) RenderFor(ctx context.Context, templateID string, p *prospect.Prospect, assignedName string) (string, error) {
	t, err := s.Repo.FindByID(ctx, templateID)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", fmt.Errorf("template not found")
	}
	return Render(t.Content, p, assignedName), nil
}
