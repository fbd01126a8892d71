package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/logger"
	"madrasa-backend/internal/repository"
)

type tarificationService struct {
	cursusRepo repository.CursusRepository
}

func NewTarificationService(cursusRepo repository.CursusRepository) TarificationService {
	return &tarificationService{cursusRepo: cursusRepo}
}

func (s *tarificationService) ListTarification(ctx context.Context, schoolID int32) ([]CursusTarification, error) {
	cursuses, err := s.cursusRepo.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	out := make([]CursusTarification, 0, len(cursuses))
	for _, c := range cursuses {
		entry := CursusTarification{ID: c.ID, Name: c.Name}

		tarif, err := s.cursusRepo.GetActiveTarif(ctx, c.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		entry.Tarif = tarif

		if entry.ReductionsFamiliales, err = s.cursusRepo.ListReductionsFamiliales(ctx, c.ID, true); err != nil {
			return nil, err
		}
		if entry.ReductionsMultiCursus, err = s.cursusRepo.ListReductionsMultiCursus(ctx, c.ID, true); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *tarificationService) SetTarif(ctx context.Context, cursusID, prix, createdBy int32) (*domain.Tarif, error) {
	if prix < 0 {
		return nil, domain.NewValidationError("prix", "must not be negative")
	}
	if _, err := s.cursusRepo.GetByID(ctx, cursusID); err != nil {
		return nil, err
	}
	t := &domain.Tarif{CursusID: cursusID, Prix: prix, CreatedBy: createdBy}
	if err := s.cursusRepo.SetTarif(ctx, t); err != nil {
		return nil, fmt.Errorf("set tarif: %w", err)
	}
	logger.Info("Tarif updated", "cursus_id", cursusID, "prix", prix)
	return t, nil
}

func (s *tarificationService) CreateReductionFamiliale(ctx context.Context, cursusID int32, in ReductionFamilialeInput) (*domain.ReductionFamiliale, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.cursusRepo.GetByID(ctx, cursusID); err != nil {
		return nil, err
	}
	red := &domain.ReductionFamiliale{
		CursusID:        cursusID,
		NombreElevesMin: in.NombreElevesMin,
		Pourcentage:     decimal.NewFromFloat(in.Pourcentage),
	}
	if err := s.cursusRepo.CreateReductionFamiliale(ctx, red); err != nil {
		return nil, err
	}
	return red, nil
}

func (s *tarificationService) UpdateReductionFamiliale(ctx context.Context, id int32, in ReductionFamilialeInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	return s.cursusRepo.UpdateReductionFamiliale(ctx, &domain.ReductionFamiliale{
		ID:              id,
		NombreElevesMin: in.NombreElevesMin,
		Pourcentage:     decimal.NewFromFloat(in.Pourcentage),
	})
}

func (s *tarificationService) RemoveReductionFamiliale(ctx context.Context, id int32) error {
	return s.cursusRepo.DeactivateReductionFamiliale(ctx, id)
}

func (s *tarificationService) CreateReductionMultiCursus(ctx context.Context, cursusID int32, in ReductionMultiCursusInput) (*domain.ReductionMultiCursus, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.CursusRequisID == cursusID {
		return nil, domain.NewValidationError("cursus_requis_id", "must differ from the beneficiary cursus")
	}
	if _, err := s.cursusRepo.GetByID(ctx, cursusID); err != nil {
		return nil, err
	}
	if _, err := s.cursusRepo.GetByID(ctx, in.CursusRequisID); err != nil {
		return nil, err
	}

	// Guard against a mutual pair: the required cursus must not already hold
	// an active rule depending on this one. Longer cycles are not detected.
	_, err := s.cursusRepo.GetActiveReductionBetween(ctx, in.CursusRequisID, cursusID)
	if err == nil {
		return nil, domain.ErrCircularDependency
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	red := &domain.ReductionMultiCursus{
		CursusBeneficiaireID: cursusID,
		CursusRequisID:       in.CursusRequisID,
		Pourcentage:          decimal.NewFromFloat(in.Pourcentage),
	}
	if err := s.cursusRepo.CreateReductionMultiCursus(ctx, red); err != nil {
		return nil, err
	}
	return red, nil
}

func (s *tarificationService) UpdateReductionMultiCursus(ctx context.Context, id int32, pourcentage float64) error {
	if pourcentage < 0 || pourcentage > 100 {
		return domain.NewValidationError("pourcentage_reduction", "must be between 0 and 100")
	}
	return s.cursusRepo.UpdateReductionMultiCursus(ctx, &domain.ReductionMultiCursus{
		ID:          id,
		Pourcentage: decimal.NewFromFloat(pourcentage),
	})
}

func (s *tarificationService) RemoveReductionMultiCursus(ctx context.Context, id int32) error {
	return s.cursusRepo.DeactivateReductionMultiCursus(ctx, id)
}
