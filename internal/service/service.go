package service

import (
	"context"

	"madrasa-backend/internal/domain"
)

// TarifCalculatorService computes per-student, per-cursus prices for a
// family. It is a pure read; passing nil inscriptions makes it load the
// family's current active enrollments.
type TarifCalculatorService interface {
	ComputeFamilyTotal(ctx context.Context, familyID int32, inscriptions []domain.EnrollmentInput) (*domain.FamilyTarifs, error)
}

// CursusTarification is one cursus with its pricing configuration, as shown
// to school staff.
type CursusTarification struct {
	ID                    int32                         `json:"id"`
	Name                  string                        `json:"name"`
	Tarif                 *domain.Tarif                 `json:"tarif"`
	ReductionsFamiliales  []domain.ReductionFamiliale   `json:"reductions_familiales"`
	ReductionsMultiCursus []domain.ReductionMultiCursus `json:"reductions_multi_cursus"`
}

type ReductionFamilialeInput struct {
	NombreElevesMin int32   `json:"nombre_eleves_min" validate:"required,min=2"`
	Pourcentage     float64 `json:"pourcentage_reduction" validate:"gte=0,lte=100"`
}

type ReductionMultiCursusInput struct {
	CursusRequisID int32   `json:"cursus_requis_id" validate:"required"`
	Pourcentage    float64 `json:"pourcentage_reduction" validate:"gte=0,lte=100"`
}

// TarificationService manages tarifs and discount rules. Rules are soft
// disabled, never deleted, so historical pricing stays queryable.
type TarificationService interface {
	ListTarification(ctx context.Context, schoolID int32) ([]CursusTarification, error)
	SetTarif(ctx context.Context, cursusID, prix, createdBy int32) (*domain.Tarif, error)

	CreateReductionFamiliale(ctx context.Context, cursusID int32, in ReductionFamilialeInput) (*domain.ReductionFamiliale, error)
	UpdateReductionFamiliale(ctx context.Context, id int32, in ReductionFamilialeInput) error
	RemoveReductionFamiliale(ctx context.Context, id int32) error

	CreateReductionMultiCursus(ctx context.Context, cursusID int32, in ReductionMultiCursusInput) (*domain.ReductionMultiCursus, error)
	UpdateReductionMultiCursus(ctx context.Context, id int32, pourcentage float64) error
	RemoveReductionMultiCursus(ctx context.Context, id int32) error
}

type PaymentLineInput struct {
	Type          string                `json:"type" validate:"required,oneof=espece carte cheque exoneration"`
	Montant       int32                 `json:"montant" validate:"required,gt=0"`
	Cheque        *domain.ChequeDetails `json:"cheque,omitempty"`
	Justification string                `json:"justification,omitempty"`
}

type PaymentLineUpdate struct {
	Montant       int32                 `json:"montant" validate:"required,gt=0"`
	Cheque        *domain.ChequeDetails `json:"cheque,omitempty"`
	Justification string                `json:"justification,omitempty"`
}

// LineMutation is returned from every ledger mutation with the freshly
// recomputed totals.
type LineMutation struct {
	Ligne        *domain.LignePaiement `json:"ligne,omitempty"`
	NouveauTotal int32                 `json:"nouveau_total"`
	ResteAPayer  int32                 `json:"reste_a_payer"`
}

// PaymentService is the family payment ledger. Every mutation runs in its own
// transaction, re-checks the overpayment cap against freshly computed owed,
// and schedules a completion check after commit.
type PaymentService interface {
	GetDetails(ctx context.Context, familyID int32) (*domain.PaymentDetails, error)
	AddLine(ctx context.Context, familyID, createdBy int32, in PaymentLineInput) (*LineMutation, error)
	ModifyLine(ctx context.Context, familyID, lineID, updatedBy int32, in PaymentLineUpdate) (*LineMutation, error)
	DeleteLine(ctx context.Context, familyID, lineID int32) (*LineMutation, error)
}

type StatisticsService interface {
	PaymentStats(ctx context.Context, schoolID int32) (*domain.PaymentStats, error)
	UnpaidFamilies(ctx context.Context, schoolID int32) ([]domain.UnpaidFamily, error)
	SearchPayments(ctx context.Context, schoolID int32, query string, ptype domain.PaymentType, page, pageSize int32) ([]domain.PaymentSearchRow, int32, error)
	RevenueByMonth(ctx context.Context, schoolID int32) ([]domain.MonthlyRevenue, error)
}

// NotificationList is a page of in-app notifications with the unread count.
type NotificationList struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int32                 `json:"unread_count"`
}

type NotificationService interface {
	List(ctx context.Context, userID int32, limit, offset int32) (*NotificationList, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type EmailService interface {
	SendPaymentCompleted(ctx context.Context, email, name, nomFamille string, details *domain.PaymentDetails) error
	SendPaymentReminder(ctx context.Context, email, name, nomFamille string, resteAPayer int32) error
}

// TaskDispatcher runs a task asynchronously after the caller returns. The
// payment service uses it so a notification failure can never affect a
// committed ledger mutation.
type TaskDispatcher interface {
	Enqueue(name string, task func(ctx context.Context))
}
