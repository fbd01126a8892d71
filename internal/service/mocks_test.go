package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/repository"
)

type MockCursusRepo struct {
	mock.Mock
}

func (m *MockCursusRepo) GetByID(ctx context.Context, id int32) (*domain.Cursus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cursus), args.Error(1)
}

func (m *MockCursusRepo) ListBySchool(ctx context.Context, schoolID int32) ([]domain.Cursus, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Cursus), args.Error(1)
}

func (m *MockCursusRepo) GetActiveTarif(ctx context.Context, cursusID int32) (*domain.Tarif, error) {
	args := m.Called(ctx, cursusID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tarif), args.Error(1)
}

func (m *MockCursusRepo) SetTarif(ctx context.Context, t *domain.Tarif) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockCursusRepo) ListReductionsFamiliales(ctx context.Context, cursusID int32, activeOnly bool) ([]domain.ReductionFamiliale, error) {
	args := m.Called(ctx, cursusID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReductionFamiliale), args.Error(1)
}

func (m *MockCursusRepo) CreateReductionFamiliale(ctx context.Context, r *domain.ReductionFamiliale) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockCursusRepo) UpdateReductionFamiliale(ctx context.Context, r *domain.ReductionFamiliale) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockCursusRepo) DeactivateReductionFamiliale(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCursusRepo) ListReductionsMultiCursus(ctx context.Context, beneficiaireID int32, activeOnly bool) ([]domain.ReductionMultiCursus, error) {
	args := m.Called(ctx, beneficiaireID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReductionMultiCursus), args.Error(1)
}

func (m *MockCursusRepo) GetActiveReductionBetween(ctx context.Context, beneficiaireID, requisID int32) (*domain.ReductionMultiCursus, error) {
	args := m.Called(ctx, beneficiaireID, requisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReductionMultiCursus), args.Error(1)
}

func (m *MockCursusRepo) CreateReductionMultiCursus(ctx context.Context, r *domain.ReductionMultiCursus) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockCursusRepo) UpdateReductionMultiCursus(ctx context.Context, r *domain.ReductionMultiCursus) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockCursusRepo) DeactivateReductionMultiCursus(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockFamilyRepo struct {
	mock.Mock
}

func (m *MockFamilyRepo) GetByID(ctx context.Context, id int32) (*domain.Family, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Family), args.Error(1)
}

func (m *MockFamilyRepo) ListBySchool(ctx context.Context, schoolID int32) ([]domain.Family, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Family), args.Error(1)
}

func (m *MockFamilyRepo) ListResponsibles(ctx context.Context, familyID int32) ([]domain.Responsible, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Responsible), args.Error(1)
}

func (m *MockFamilyRepo) GetStudent(ctx context.Context, id int32) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

type MockEnrollmentRepo struct {
	mock.Mock
}

func (m *MockEnrollmentRepo) ListActiveByFamily(ctx context.Context, familyID int32) ([]domain.Enrollment, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Enrollment), args.Error(1)
}

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) GetOrCreate(ctx context.Context, familyID, createdBy int32) (*domain.Paiement, error) {
	args := m.Called(ctx, familyID, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Paiement), args.Error(1)
}

func (m *MockPaymentRepo) LockByFamily(ctx context.Context, familyID, createdBy int32) (*domain.Paiement, error) {
	args := m.Called(ctx, familyID, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Paiement), args.Error(1)
}

func (m *MockPaymentRepo) GetByFamily(ctx context.Context, familyID int32) (*domain.Paiement, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Paiement), args.Error(1)
}

func (m *MockPaymentRepo) ListLines(ctx context.Context, paiementID int32) ([]domain.LignePaiement, error) {
	args := m.Called(ctx, paiementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LignePaiement), args.Error(1)
}

func (m *MockPaymentRepo) GetLine(ctx context.Context, lineID int32) (*domain.LignePaiement, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LignePaiement), args.Error(1)
}

func (m *MockPaymentRepo) InsertLine(ctx context.Context, line *domain.LignePaiement) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockPaymentRepo) UpdateLine(ctx context.Context, line *domain.LignePaiement) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockPaymentRepo) DeleteLine(ctx context.Context, lineID int32) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

func (m *MockPaymentRepo) TotalsByType(ctx context.Context, schoolID int32) (map[domain.PaymentType]domain.PaymentTypeStat, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.PaymentType]domain.PaymentTypeStat), args.Error(1)
}

func (m *MockPaymentRepo) SearchLines(ctx context.Context, schoolID int32, query string, ptype domain.PaymentType, page, pageSize int32) ([]domain.PaymentSearchRow, int32, error) {
	args := m.Called(ctx, schoolID, query, ptype, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.PaymentSearchRow), int32(args.Int(1)), args.Error(2)
}

func (m *MockPaymentRepo) RevenueByMonth(ctx context.Context, schoolID int32) ([]domain.MonthlyRevenue, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyRevenue), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), int32(args.Int(1)), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPaymentCompleted(ctx context.Context, email, name, nomFamille string, details *domain.PaymentDetails) error {
	args := m.Called(ctx, email, name, nomFamille, details)
	return args.Error(0)
}

func (m *MockEmailService) SendPaymentReminder(ctx context.Context, email, name, nomFamille string, resteAPayer int32) error {
	args := m.Called(ctx, email, name, nomFamille, resteAPayer)
	return args.Error(0)
}

// fakeAtomic runs the transaction body directly over the mock repositories.
type fakeAtomic struct {
	repos repository.Repositories
}

func (f *fakeAtomic) InTx(_ context.Context, fn func(r repository.Repositories) error) error {
	return fn(f.repos)
}

// capturingDispatcher records enqueued tasks so tests can run them
// synchronously.
type capturingDispatcher struct {
	tasks []func(ctx context.Context)
	names []string
}

func (d *capturingDispatcher) Enqueue(name string, task func(ctx context.Context)) {
	d.names = append(d.names, name)
	d.tasks = append(d.tasks, task)
}

func (d *capturingDispatcher) runAll(ctx context.Context) {
	tasks := d.tasks
	d.tasks = nil
	for _, task := range tasks {
		task(ctx)
	}
}

// testRepos assembles a Repositories bundle from the given mocks.
func testRepos(cursus *MockCursusRepo, family *MockFamilyRepo, enrollment *MockEnrollmentRepo, payment *MockPaymentRepo, notification *MockNotificationRepo) repository.Repositories {
	return repository.Repositories{
		Cursus:       cursus,
		Family:       family,
		Enrollment:   enrollment,
		Payment:      payment,
		Notification: notification,
	}
}
