package repository

import (
	"context"

	"madrasa-backend/internal/domain"
)

type CursusRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Cursus, error)
	ListBySchool(ctx context.Context, schoolID int32) ([]domain.Cursus, error)

	// GetActiveTarif returns the most recent active tarif for the cursus, or
	// domain.ErrNotFound when the cursus is unpriced.
	GetActiveTarif(ctx context.Context, cursusID int32) (*domain.Tarif, error)
	// SetTarif deactivates existing active tarifs and inserts t as the new
	// authoritative price. Historical rows are kept.
	SetTarif(ctx context.Context, t *domain.Tarif) error

	ListReductionsFamiliales(ctx context.Context, cursusID int32, activeOnly bool) ([]domain.ReductionFamiliale, error)
	CreateReductionFamiliale(ctx context.Context, r *domain.ReductionFamiliale) error
	UpdateReductionFamiliale(ctx context.Context, r *domain.ReductionFamiliale) error
	DeactivateReductionFamiliale(ctx context.Context, id int32) error

	ListReductionsMultiCursus(ctx context.Context, beneficiaireID int32, activeOnly bool) ([]domain.ReductionMultiCursus, error)
	// GetActiveReductionBetween looks up an active rule granting a reduction
	// on beneficiaireID for enrollment in requisID.
	GetActiveReductionBetween(ctx context.Context, beneficiaireID, requisID int32) (*domain.ReductionMultiCursus, error)
	CreateReductionMultiCursus(ctx context.Context, r *domain.ReductionMultiCursus) error
	UpdateReductionMultiCursus(ctx context.Context, r *domain.ReductionMultiCursus) error
	DeactivateReductionMultiCursus(ctx context.Context, id int32) error
}

type FamilyRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Family, error)
	ListBySchool(ctx context.Context, schoolID int32) ([]domain.Family, error)
	ListResponsibles(ctx context.Context, familyID int32) ([]domain.Responsible, error)
	GetStudent(ctx context.Context, id int32) (*domain.Student, error)
}

type EnrollmentRepository interface {
	// ListActiveByFamily returns the family's active (student, classroom)
	// rows with the owning cursus resolved.
	ListActiveByFamily(ctx context.Context, familyID int32) ([]domain.Enrollment, error)
}

type PaymentRepository interface {
	// GetOrCreate returns the family's ledger, creating it when absent.
	GetOrCreate(ctx context.Context, familyID, createdBy int32) (*domain.Paiement, error)
	// LockByFamily behaves like GetOrCreate but takes a row lock on the
	// ledger. Only meaningful inside a transaction; it serializes concurrent
	// mutations on the same family.
	LockByFamily(ctx context.Context, familyID, createdBy int32) (*domain.Paiement, error)
	// GetByFamily returns domain.ErrNotFound when no ledger exists yet.
	GetByFamily(ctx context.Context, familyID int32) (*domain.Paiement, error)

	ListLines(ctx context.Context, paiementID int32) ([]domain.LignePaiement, error)
	GetLine(ctx context.Context, lineID int32) (*domain.LignePaiement, error)
	InsertLine(ctx context.Context, line *domain.LignePaiement) error
	UpdateLine(ctx context.Context, line *domain.LignePaiement) error
	DeleteLine(ctx context.Context, lineID int32) error

	// Statistics projections over all ledgers of a school.
	TotalsByType(ctx context.Context, schoolID int32) (map[domain.PaymentType]domain.PaymentTypeStat, error)
	SearchLines(ctx context.Context, schoolID int32, query string, ptype domain.PaymentType, page, pageSize int32) ([]domain.PaymentSearchRow, int32, error)
	RevenueByMonth(ctx context.Context, schoolID int32) ([]domain.MonthlyRevenue, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

// Repositories bundles every repository over one database handle. Inside
// Atomic.InTx the bundle is backed by the transaction, so all reads observe a
// consistent snapshot.
type Repositories struct {
	Cursus       CursusRepository
	Family       FamilyRepository
	Enrollment   EnrollmentRepository
	Payment      PaymentRepository
	Notification NotificationRepository
}

// Atomic runs fn inside a single database transaction; the transaction
// commits when fn returns nil and rolls back otherwise.
type Atomic interface {
	InTx(ctx context.Context, fn func(r Repositories) error) error
}
