package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	departments DepartmentRepository
	locations   LocationRepository
}

func NewService(departments DepartmentRepository, locations LocationRepository) *Service {
	return &Service{departments: departments, locations: locations}
}

func (s *Service) CreateDepartment(ctx context.Context, req DepartmentRequest) (*Department, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("department name is required")
	}

	d := &Department{
		Name:   req.Name,
		Code:   strings.TrimSpace(req.Code),
		Active: true,
	}
	if req.Active != nil {
		d.Active = *req.Active
	}
	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, id uuid.UUID, req DepartmentRequest) (*Department, error) {
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("department not found")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		d.Name = name
	}
	if code := strings.TrimSpace(req.Code); code != "" {
		d.Code = code
	}
	if req.Active != nil {
		d.Active = *req.Active
	}
	if err := s.departments.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDepartments(ctx context.Context, activeOnly bool) ([]*Department, error) {
	return s.departments.List(ctx, activeOnly)
}

func (s *Service) CreateLocation(ctx context.Context, req LocationRequest) (*Location, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("location name is required")
	}

	l := &Location{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
	}
	if req.Active != nil {
		l.Active = *req.Active
	}
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, req LocationRequest) (*Location, error) {
	l, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("location not found")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		l.Name = name
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		l.Description = desc
	}
	if req.Active != nil {
		l.Active = *req.Active
	}
	if err := s.locations.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) ListLocations(ctx context.Context, activeOnly bool) ([]*Location, error) {
	return s.locations.List(ctx, activeOnly)
}
