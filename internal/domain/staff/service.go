package staff

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, m *Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Permissions == nil {
		m.Permissions = []string{}
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) List(ctx context.Context, providerID uuid.UUID) ([]*Member, error) {
	members, err := s.repo.List(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*Member{}
	}
	return members, nil
}
