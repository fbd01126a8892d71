package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/repository"
)

type tarifCalculatorService struct {
	repos repository.Repositories
}

func NewTarifCalculatorService(repos repository.Repositories) TarifCalculatorService {
	return &tarifCalculatorService{repos: repos}
}

func (s *tarifCalculatorService) ComputeFamilyTotal(ctx context.Context, familyID int32, inscriptions []domain.EnrollmentInput) (*domain.FamilyTarifs, error) {
	return computeFamilyTarifs(ctx, s.repos, familyID, inscriptions)
}

// computeFamilyTarifs is shared with the payment service, which calls it
// through transaction-backed repositories so owed is checked against a
// consistent snapshot.
func computeFamilyTarifs(ctx context.Context, r repository.Repositories, familyID int32, inscriptions []domain.EnrollmentInput) (*domain.FamilyTarifs, error) {
	family, err := r.Family.GetByID(ctx, familyID)
	if err != nil {
		return nil, err
	}

	if inscriptions == nil {
		active, err := r.Enrollment.ListActiveByFamily(ctx, familyID)
		if err != nil {
			return nil, fmt.Errorf("load active enrollments: %w", err)
		}
		inscriptions = groupEnrollments(active)
	}

	// Per-cursus distinct-student sets, computed once across the whole
	// family. Every student in a cursus shares the same family count.
	parCursus := make(map[int32]map[int32]bool)
	for _, insc := range inscriptions {
		for _, class := range insc.Classes {
			set := parCursus[class.CursusID]
			if set == nil {
				set = make(map[int32]bool)
				parCursus[class.CursusID] = set
			}
			set[insc.StudentID] = true
		}
	}

	var total int32
	details := make([]domain.StudentTarifs, 0, len(inscriptions))

	for _, insc := range inscriptions {
		student, err := r.Family.GetStudent(ctx, insc.StudentID)
		if err != nil {
			return nil, fmt.Errorf("student %d: %w", insc.StudentID, err)
		}

		det := domain.StudentTarifs{
			StudentID:   student.ID,
			StudentName: student.FullName(),
			Cursus:      []domain.CursusTarif{},
		}

		for _, cursusID := range distinctCursusIDs(insc.Classes) {
			cursus, err := r.Cursus.GetByID(ctx, cursusID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			tarif, err := r.Cursus.GetActiveTarif(ctx, cursusID)
			if errors.Is(err, domain.ErrNotFound) {
				// Unpriced cursus contributes nothing; not an error.
				continue
			}
			if err != nil {
				return nil, err
			}

			famRules, err := r.Cursus.ListReductionsFamiliales(ctx, cursusID, true)
			if err != nil {
				return nil, err
			}
			count := len(parCursus[cursusID])
			redFamiliale := domain.BestReductionFamiliale(famRules, count)

			multiRules, err := r.Cursus.ListReductionsMultiCursus(ctx, cursusID, true)
			if err != nil {
				return nil, err
			}
			autres := otherCursusIDs(insc.Classes, cursusID)
			redMulti := domain.BestReductionMultiCursus(multiRules, autres)

			// The better reduction applies; they never stack.
			applied := decimal.Max(redFamiliale, redMulti)
			final := domain.ApplyReduction(tarif.Prix, applied)

			det.Cursus = append(det.Cursus, domain.CursusTarif{
				CursusID:             cursusID,
				CursusName:           cursus.Name,
				TarifBase:            tarif.Prix,
				ReductionFamiliale:   redFamiliale.InexactFloat64(),
				ReductionMultiCursus: redMulti.InexactFloat64(),
				ReductionAppliquee:   applied.InexactFloat64(),
				TarifFinal:           final,
			})
			total += final
		}

		details = append(details, det)
	}

	nomFamille := "Sans responsable"
	responsibles, err := r.Family.ListResponsibles(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if len(responsibles) > 0 {
		nomFamille = responsibles[0].FullName()
	}

	return &domain.FamilyTarifs{
		Total:           total,
		TotalFamille:    total,
		DetailsParEleve: details,
		NombreEleves:    len(inscriptions),
		NomFamille:      nomFamille,
		IDFamille:       family.ID,
	}, nil
}

// groupEnrollments turns active enrollment rows into the calculator's
// per-student input shape, preserving row order.
func groupEnrollments(rows []domain.Enrollment) []domain.EnrollmentInput {
	index := make(map[int32]int)
	out := make([]domain.EnrollmentInput, 0)
	for _, row := range rows {
		i, ok := index[row.StudentID]
		if !ok {
			i = len(out)
			index[row.StudentID] = i
			out = append(out, domain.EnrollmentInput{StudentID: row.StudentID})
		}
		out[i].Classes = append(out[i].Classes, domain.ClassRef{
			ClassroomID: row.ClassroomID,
			CursusID:    row.CursusID,
		})
	}
	return out
}

func distinctCursusIDs(classes []domain.ClassRef) []int32 {
	seen := make(map[int32]bool, len(classes))
	out := make([]int32, 0, len(classes))
	for _, c := range classes {
		if seen[c.CursusID] {
			continue
		}
		seen[c.CursusID] = true
		out = append(out, c.CursusID)
	}
	return out
}

func otherCursusIDs(classes []domain.ClassRef, current int32) map[int32]bool {
	out := make(map[int32]bool)
	for _, c := range classes {
		if c.CursusID != current {
			out[c.CursusID] = true
		}
	}
	return out
}
