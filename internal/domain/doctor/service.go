package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo        Repository
	departments DepartmentChecker
}

func NewService(repo Repository, departments DepartmentChecker) *Service {
	return &Service{repo: repo, departments: departments}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (*Doctor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("doctor name is required")
	}
	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	d := &Doctor{
		Name:         name,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("doctor not found")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("doctor name is required")
	}
	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	d.Name = name
	d.DepartmentID = req.DepartmentID
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetStatus toggles a doctor between active and inactive. Doctors are never
// deleted so historical movements keep their reference.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, active bool) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("doctor not found")
	}

	d.IsActive = active
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Search(ctx context.Context, search string, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.Search(ctx, strings.TrimSpace(search), limit, offset)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) checkDepartment(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("department_id is required")
	}
	ok, err := s.departments.DepartmentExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check department: %w", err)
	}
	if !ok {
		return fmt.Errorf("department %s does not exist", id)
	}
	return nil
}
