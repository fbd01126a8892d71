package service

import (
	"context"
	"errors"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/logger"
	"madrasa-backend/internal/repository"
)

type statisticsService struct {
	repos repository.Repositories
}

func NewStatisticsService(repos repository.Repositories) StatisticsService {
	return &statisticsService{repos: repos}
}

func (s *statisticsService) PaymentStats(ctx context.Context, schoolID int32) (*domain.PaymentStats, error) {
	byType, err := s.repos.Payment.TotalsByType(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	var total int32
	for _, stat := range byType {
		total += stat.Amount
	}

	expected, err := s.expectedRevenue(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	return &domain.PaymentStats{
		TotalAmount:     total,
		ExpectedRevenue: expected,
		ByType:          byType,
	}, nil
}

// expectedRevenue sums the live computed total of every family. Deliberately
// recomputed per call; the data volumes make the cost acceptable.
func (s *statisticsService) expectedRevenue(ctx context.Context, schoolID int32) (int32, error) {
	families, err := s.repos.Family.ListBySchool(ctx, schoolID)
	if err != nil {
		return 0, err
	}
	var expected int32
	for _, f := range families {
		tarifs, err := computeFamilyTarifs(ctx, s.repos, f.ID, nil)
		if err != nil {
			logger.Warn("Expected revenue: family skipped", "family_id", f.ID, "error", err)
			continue
		}
		expected += tarifs.Total
	}
	return expected, nil
}

func (s *statisticsService) UnpaidFamilies(ctx context.Context, schoolID int32) ([]domain.UnpaidFamily, error) {
	families, err := s.repos.Family.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.UnpaidFamily, 0)
	for _, f := range families {
		details, err := getPaymentDetails(ctx, s.repos, f.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if details.ResteAPayer <= 0 {
			continue
		}
		responsibles, err := s.repos.Family.ListResponsibles(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.UnpaidFamily{
			FamilyID:     f.ID,
			NomFamille:   details.Tarifs.NomFamille,
			MontantTotal: details.MontantTotal,
			MontantPaye:  details.MontantPaye,
			ResteAPayer:  details.ResteAPayer,
			Responsables: responsibles,
		})
	}
	return out, nil
}

func (s *statisticsService) SearchPayments(ctx context.Context, schoolID int32, query string, ptype domain.PaymentType, page, pageSize int32) ([]domain.PaymentSearchRow, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repos.Payment.SearchLines(ctx, schoolID, query, ptype, page, pageSize)
}

func (s *statisticsService) RevenueByMonth(ctx context.Context, schoolID int32) ([]domain.MonthlyRevenue, error) {
	return s.repos.Payment.RevenueByMonth(ctx, schoolID)
}
