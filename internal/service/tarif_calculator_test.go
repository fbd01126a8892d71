package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"madrasa-backend/internal/domain"
)

func calculatorFixture() (*MockCursusRepo, *MockFamilyRepo, *MockEnrollmentRepo, TarifCalculatorService) {
	cursusRepo := new(MockCursusRepo)
	familyRepo := new(MockFamilyRepo)
	enrollRepo := new(MockEnrollmentRepo)
	repos := testRepos(cursusRepo, familyRepo, enrollRepo, new(MockPaymentRepo), new(MockNotificationRepo))
	return cursusRepo, familyRepo, enrollRepo, NewTarifCalculatorService(repos)
}

func pct(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func TestTarifCalculator_SingleStudentNoReduction(t *testing.T) {
	cursusRepo, familyRepo, _, svc := calculatorFixture()
	ctx := context.Background()

	familyRepo.On("GetByID", ctx, int32(1)).Return(&domain.Family{ID: 1, SchoolID: 1}, nil)
	familyRepo.On("GetStudent", ctx, int32(10)).Return(&domain.Student{ID: 10, FirstName: "Adam", LastName: "Benali"}, nil)
	cursusRepo.On("GetByID", ctx, int32(5)).Return(&domain.Cursus{ID: 5, Name: "Arabe"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(5)).Return(&domain.Tarif{CursusID: 5, Prix: 270, Actif: true}, nil)
	cursusRepo.On("ListReductionsFamiliales", ctx, int32(5), true).Return([]domain.ReductionFamiliale{
		{CursusID: 5, NombreElevesMin: 2, Pourcentage: pct("11.11"), Actif: true},
	}, nil)
	cursusRepo.On("ListReductionsMultiCursus", ctx, int32(5), true).Return([]domain.ReductionMultiCursus{}, nil)
	familyRepo.On("ListResponsibles", ctx, int32(1)).Return([]domain.Responsible{
		{ID: 2, FirstName: "Karim", LastName: "Benali"},
	}, nil)

	out, err := svc.ComputeFamilyTotal(ctx, 1, []domain.EnrollmentInput{
		{StudentID: 10, Classes: []domain.ClassRef{{ClassroomID: 100, CursusID: 5}}},
	})

	assert.NoError(t, err)
	assert.Equal(t, int32(270), out.Total)
	assert.Equal(t, 1, out.NombreEleves)
	assert.Equal(t, "Karim Benali", out.NomFamille)
	// A single student never qualifies for the family reduction.
	assert.Equal(t, float64(0), out.DetailsParEleve[0].Cursus[0].ReductionAppliquee)
	assert.Equal(t, int32(270), out.DetailsParEleve[0].Cursus[0].TarifFinal)
}

func TestTarifCalculator_FamilyReduction(t *testing.T) {
	cursusRepo, familyRepo, _, svc := calculatorFixture()
	ctx := context.Background()

	familyRepo.On("GetByID", ctx, int32(1)).Return(&domain.Family{ID: 1, SchoolID: 1}, nil)
	for _, id := range []int32{10, 11, 12, 13} {
		familyRepo.On("GetStudent", ctx, id).Return(&domain.Student{ID: id, FirstName: "Eleve", LastName: "Benali"}, nil)
	}
	cursusRepo.On("GetByID", ctx, int32(5)).Return(&domain.Cursus{ID: 5, Name: "Arabe"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(5)).Return(&domain.Tarif{CursusID: 5, Prix: 270, Actif: true}, nil)
	cursusRepo.On("ListReductionsFamiliales", ctx, int32(5), true).Return([]domain.ReductionFamiliale{
		{CursusID: 5, NombreElevesMin: 2, Pourcentage: pct("11.11"), Actif: true},
		{CursusID: 5, NombreElevesMin: 5, Pourcentage: pct("22.22"), Actif: true},
	}, nil)
	cursusRepo.On("ListReductionsMultiCursus", ctx, int32(5), true).Return([]domain.ReductionMultiCursus{}, nil)
	familyRepo.On("ListResponsibles", ctx, int32(1)).Return([]domain.Responsible{
		{ID: 2, FirstName: "Karim", LastName: "Benali"},
	}, nil)

	inscriptions := make([]domain.EnrollmentInput, 0, 4)
	for _, id := range []int32{10, 11, 12, 13} {
		inscriptions = append(inscriptions, domain.EnrollmentInput{
			StudentID: id,
			Classes:   []domain.ClassRef{{ClassroomID: 100, CursusID: 5}},
		})
	}

	out, err := svc.ComputeFamilyTotal(ctx, 1, inscriptions)

	assert.NoError(t, err)
	// 4 students trigger the 11.11% step: 270 -> 240.003 rounds to 240.
	assert.Equal(t, int32(960), out.Total)
	for _, det := range out.DetailsParEleve {
		assert.Equal(t, int32(240), det.Cursus[0].TarifFinal)
		assert.InDelta(t, 11.11, det.Cursus[0].ReductionAppliquee, 0.001)
	}
}

func TestTarifCalculator_HighestStepWins(t *testing.T) {
	cursusRepo, familyRepo, _, svc := calculatorFixture()
	ctx := context.Background()

	familyRepo.On("GetByID", ctx, int32(1)).Return(&domain.Family{ID: 1, SchoolID: 1}, nil)
	ids := []int32{10, 11, 12, 13, 14}
	for _, id := range ids {
		familyRepo.On("GetStudent", ctx, id).Return(&domain.Student{ID: id, FirstName: "Eleve", LastName: "Benali"}, nil)
	}
	cursusRepo.On("GetByID", ctx, int32(5)).Return(&domain.Cursus{ID: 5, Name: "Arabe"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(5)).Return(&domain.Tarif{CursusID: 5, Prix: 270, Actif: true}, nil)
	cursusRepo.On("ListReductionsFamiliales", ctx, int32(5), true).Return([]domain.ReductionFamiliale{
		{CursusID: 5, NombreElevesMin: 2, Pourcentage: pct("11.11"), Actif: true},
		{CursusID: 5, NombreElevesMin: 5, Pourcentage: pct("22.22"), Actif: true},
	}, nil)
	cursusRepo.On("ListReductionsMultiCursus", ctx, int32(5), true).Return([]domain.ReductionMultiCursus{}, nil)
	familyRepo.On("ListResponsibles", ctx, int32(1)).Return([]domain.Responsible{}, nil)

	inscriptions := make([]domain.EnrollmentInput, 0, len(ids))
	for _, id := range ids {
		inscriptions = append(inscriptions, domain.EnrollmentInput{
			StudentID: id,
			Classes:   []domain.ClassRef{{ClassroomID: 100, CursusID: 5}},
		})
	}

	out, err := svc.ComputeFamilyTotal(ctx, 1, inscriptions)

	assert.NoError(t, err)
	// 5 students reach the 22.22% step: 270 -> 210.006 rounds to 210.
	assert.Equal(t, int32(1050), out.Total)
	assert.Equal(t, "Sans responsable", out.NomFamille)
}

func TestTarifCalculator_CrossCursusReductionNeverStacks(t *testing.T) {
	cursusRepo, familyRepo, _, svc := calculatorFixture()
	ctx := context.Background()

	familyRepo.On("GetByID", ctx, int32(1)).Return(&domain.Family{ID: 1, SchoolID: 1}, nil)
	familyRepo.On("GetStudent", ctx, int32(10)).Return(&domain.Student{ID: 10, FirstName: "Adam", LastName: "Benali"}, nil)
	familyRepo.On("GetStudent", ctx, int32(11)).Return(&domain.Student{ID: 11, FirstName: "Lina", LastName: "Benali"}, nil)

	cursusRepo.On("GetByID", ctx, int32(5)).Return(&domain.Cursus{ID: 5, Name: "Arabe"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(5)).Return(&domain.Tarif{CursusID: 5, Prix: 300, Actif: true}, nil)
	cursusRepo.On("ListReductionsFamiliales", ctx, int32(5), true).Return([]domain.ReductionFamiliale{
		{CursusID: 5, NombreElevesMin: 2, Pourcentage: pct("10"), Actif: true},
	}, nil)
	cursusRepo.On("ListReductionsMultiCursus", ctx, int32(5), true).Return([]domain.ReductionMultiCursus{
		{CursusBeneficiaireID: 5, CursusRequisID: 7, Pourcentage: pct("25"), Actif: true},
	}, nil)

	cursusRepo.On("GetByID", ctx, int32(7)).Return(&domain.Cursus{ID: 7, Name: "Coran"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(7)).Return(&domain.Tarif{CursusID: 7, Prix: 200, Actif: true}, nil)
	cursusRepo.On("ListReductionsFamiliales", ctx, int32(7), true).Return([]domain.ReductionFamiliale{}, nil)
	cursusRepo.On("ListReductionsMultiCursus", ctx, int32(7), true).Return([]domain.ReductionMultiCursus{}, nil)

	familyRepo.On("ListResponsibles", ctx, int32(1)).Return([]domain.Responsible{
		{ID: 2, FirstName: "Karim", LastName: "Benali"},
	}, nil)

	out, err := svc.ComputeFamilyTotal(ctx, 1, []domain.EnrollmentInput{
		{StudentID: 10, Classes: []domain.ClassRef{
			{ClassroomID: 100, CursusID: 5},
			{ClassroomID: 200, CursusID: 7},
		}},
		{StudentID: 11, Classes: []domain.ClassRef{{ClassroomID: 100, CursusID: 5}}},
	})

	assert.NoError(t, err)

	adam := out.DetailsParEleve[0]
	// Both reductions qualify on Arabe; 25% cross-cursus wins, they never add.
	assert.InDelta(t, 10, adam.Cursus[0].ReductionFamiliale, 0.001)
	assert.InDelta(t, 25, adam.Cursus[0].ReductionMultiCursus, 0.001)
	assert.InDelta(t, 25, adam.Cursus[0].ReductionAppliquee, 0.001)
	assert.Equal(t, int32(225), adam.Cursus[0].TarifFinal)
	// Coran has no reduction for Adam.
	assert.Equal(t, int32(200), adam.Cursus[1].TarifFinal)

	lina := out.DetailsParEleve[1]
	// Lina only gets the family step on Arabe.
	assert.InDelta(t, 10, lina.Cursus[0].ReductionAppliquee, 0.001)
	assert.Equal(t, int32(270), lina.Cursus[0].TarifFinal)

	assert.Equal(t, int32(225+200+270), out.Total)
}

func TestTarifCalculator_UnpricedCursusSkipped(t *testing.T) {
	cursusRepo, familyRepo, _, svc := calculatorFixture()
	ctx := context.Background()

	familyRepo.On("GetByID", ctx, int32(1)).Return(&domain.Family{ID: 1, SchoolID: 1}, nil)
	familyRepo.On("GetStudent", ctx, int32(10)).Return(&domain.Student{ID: 10, FirstName: "Adam", LastName: "Benali"}, nil)

	cursusRepo.On("GetByID", ctx, int32(5)).Return(&domain.Cursus{ID: 5, Name: "Arabe"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(5)).Return(nil, domain.ErrNotFound)

	cursusRepo.On("GetByID", ctx, int32(7)).Return(&domain.Cursus{ID: 7, Name: "Coran"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(7)).Return(&domain.Tarif{CursusID: 7, Prix: 200, Actif: true}, nil)
	cursusRepo.On("ListReductionsFamiliales", ctx, int32(7), true).Return([]domain.ReductionFamiliale{}, nil)
	cursusRepo.On("ListReductionsMultiCursus", ctx, int32(7), true).Return([]domain.ReductionMultiCursus{}, nil)

	familyRepo.On("ListResponsibles", ctx, int32(1)).Return([]domain.Responsible{}, nil)

	out, err := svc.ComputeFamilyTotal(ctx, 1, []domain.EnrollmentInput{
		{StudentID: 10, Classes: []domain.ClassRef{
			{ClassroomID: 100, CursusID: 5},
			{ClassroomID: 200, CursusID: 7},
		}},
	})

	assert.NoError(t, err)
	assert.Equal(t, int32(200), out.Total)
	assert.Len(t, out.DetailsParEleve[0].Cursus, 1)
	assert.Equal(t, int32(7), out.DetailsParEleve[0].Cursus[0].CursusID)
}

func TestTarifCalculator_TwoClassroomsSameCursusPricedOnce(t *testing.T) {
	cursusRepo, familyRepo, _, svc := calculatorFixture()
	ctx := context.Background()

	familyRepo.On("GetByID", ctx, int32(1)).Return(&domain.Family{ID: 1, SchoolID: 1}, nil)
	familyRepo.On("GetStudent", ctx, int32(10)).Return(&domain.Student{ID: 10, FirstName: "Adam", LastName: "Benali"}, nil)
	cursusRepo.On("GetByID", ctx, int32(5)).Return(&domain.Cursus{ID: 5, Name: "Arabe"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(5)).Return(&domain.Tarif{CursusID: 5, Prix: 270, Actif: true}, nil)
	cursusRepo.On("ListReductionsFamiliales", ctx, int32(5), true).Return([]domain.ReductionFamiliale{}, nil)
	cursusRepo.On("ListReductionsMultiCursus", ctx, int32(5), true).Return([]domain.ReductionMultiCursus{}, nil)
	familyRepo.On("ListResponsibles", ctx, int32(1)).Return([]domain.Responsible{}, nil)

	out, err := svc.ComputeFamilyTotal(ctx, 1, []domain.EnrollmentInput{
		{StudentID: 10, Classes: []domain.ClassRef{
			{ClassroomID: 100, CursusID: 5},
			{ClassroomID: 101, CursusID: 5},
		}},
	})

	assert.NoError(t, err)
	assert.Equal(t, int32(270), out.Total)
	assert.Len(t, out.DetailsParEleve[0].Cursus, 1)
}

func TestTarifCalculator_LoadsActiveEnrollmentsWhenNilInput(t *testing.T) {
	cursusRepo, familyRepo, enrollRepo, svc := calculatorFixture()
	ctx := context.Background()

	familyRepo.On("GetByID", ctx, int32(1)).Return(&domain.Family{ID: 1, SchoolID: 1}, nil)
	enrollRepo.On("ListActiveByFamily", ctx, int32(1)).Return([]domain.Enrollment{
		{StudentID: 10, ClassroomID: 100, CursusID: 5, FamilyID: 1, Status: domain.EnrollmentActive},
	}, nil)
	familyRepo.On("GetStudent", ctx, int32(10)).Return(&domain.Student{ID: 10, FirstName: "Adam", LastName: "Benali"}, nil)
	cursusRepo.On("GetByID", ctx, int32(5)).Return(&domain.Cursus{ID: 5, Name: "Arabe"}, nil)
	cursusRepo.On("GetActiveTarif", ctx, int32(5)).Return(&domain.Tarif{CursusID: 5, Prix: 270, Actif: true}, nil)
	cursusRepo.On("ListReductionsFamiliales", ctx, int32(5), true).Return([]domain.ReductionFamiliale{}, nil)
	cursusRepo.On("ListReductionsMultiCursus", ctx, int32(5), true).Return([]domain.ReductionMultiCursus{}, nil)
	familyRepo.On("ListResponsibles", ctx, int32(1)).Return([]domain.Responsible{}, nil)

	out, err := svc.ComputeFamilyTotal(ctx, 1, nil)

	assert.NoError(t, err)
	assert.Equal(t, int32(270), out.Total)
	enrollRepo.AssertExpectations(t)
}

func TestTarifCalculator_FamilyNotFound(t *testing.T) {
	_, familyRepo, _, svc := calculatorFixture()
	ctx := context.Background()

	familyRepo.On("GetByID", ctx, int32(99)).Return(nil, domain.ErrNotFound)

	_, err := svc.ComputeFamilyTotal(ctx, 99, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
