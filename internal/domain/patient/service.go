package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Patient, error) {
	req.MRN = strings.TrimSpace(req.MRN)
	req.Name = strings.TrimSpace(req.Name)
	if req.MRN == "" {
		return nil, fmt.Errorf("mrn is required")
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if existing, err := s.repo.GetByMRN(ctx, req.MRN); err == nil && existing != nil {
		return nil, fmt.Errorf("patient with mrn %s already exists", req.MRN)
	}

	p := &Patient{
		MRN:    req.MRN,
		Name:   req.Name,
		NRIC:   strings.TrimSpace(req.NRIC),
		Active: true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, strings.TrimSpace(search), limit, offset)
}

// Statistics delegates to the repository aggregate so figures are derived
// from current rows on every call.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}
