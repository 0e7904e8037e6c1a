package team

import (
	"context"
	"fmt"
	"time"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/permission"
)

type TeamService interface {
	List(ctx context.Context) ([]Team, error)
	Create(ctx context.Context, actor *access.Identity, t *Team) (*Team, error)
	Update(ctx context.Context, actor *access.Identity, id string, t *Team) error
	Delete(ctx context.Context, actor *access.Identity, id string) error
}

type TeamServiceImpl struct {
	Repo TeamRepository
}

func NewTeamService(repo TeamRepository) TeamService {
	return &TeamServiceImpl{Repo: repo}
}

func (s *TeamServiceImpl) List(ctx context.Context) ([]Team, error) {
	return s.Repo.ListAll(ctx)
}

func (s *TeamServiceImpl) Create(ctx context.Context, actor *access.Identity, t *Team) (*Team, error) {
	if !actor.Permissions.For(permission.ModuleTeams).Add {
		return nil, errs.Permission("add team")
	}
	if t.Name == "" {
		return nil, errs.Validation("name", "Team name is required")
	}

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	id, err := s.Repo.Create(ctx, t)
	if err != nil {
		return nil, errs.Write("create team", err)
	}
	t.ID = id
	return t, nil
}

func (s *TeamServiceImpl) Update(ctx context.Context, actor *access.Identity, id string, t *Team) error {
	if !actor.Permissions.For(permission.ModuleTeams).Edit {
		return errs.Permission("edit team")
	}
	// Team leaders may only touch their own team; admins touch any.
	if !permission.IsAdmin(actor.Role) && permission.IsTeamLeader(actor.Role) && actor.TeamID != id {
		return errs.Permission("edit team")
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("team not found")
	}

	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, t); err != nil {
		return errs.Write("update team", err)
	}
	return nil
}

func (s *TeamServiceImpl) Delete(ctx context.Context, actor *access.Identity, id string) error {
	if !actor.Permissions.For(permission.ModuleTeams).Delete {
		return errs.Permission("delete team")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return errs.Write("delete team", err)
	}
	return nil
}
