package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	ok, err := s.repo.PatientExists(ctx, inv.ProviderID, inv.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return pgx.ErrNoRows
	}
	return s.repo.Create(ctx, inv)
}

func (s *Service) Get(ctx context.Context, providerID, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetByID(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.List(ctx, providerID, limit, offset)
}

// Summarize folds the provider's invoices into the dashboard aggregate:
// revenue is the sum of amounts actually paid, pending and overdue are
// invoice counts by status.
func (s *Service) Summarize(ctx context.Context, providerID uuid.UUID) (*Summary, error) {
	invoices, err := s.repo.ListAll(ctx, providerID)
	if err != nil {
		return nil, err
	}

	var sum Summary
	sum.Count = len(invoices)
	for _, inv := range invoices {
		sum.TotalRevenue += inv.PaidAmount
		switch inv.Status {
		case StatusPending:
			sum.Pending++
		case StatusOverdue:
			sum.Overdue++
		}
	}
	return &sum, nil
}
