package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"madrasa-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// against the pool or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.CursusRepository
	repository.FamilyRepository
	repository.EnrollmentRepository
	repository.PaymentRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		CursusRepository:       NewCursusRepository(db),
		FamilyRepository:       NewFamilyRepository(db),
		EnrollmentRepository:   NewEnrollmentRepository(db),
		PaymentRepository:      NewPaymentRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// Repositories returns the bundle backed by the connection pool.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Cursus:       s.CursusRepository,
		Family:       s.FamilyRepository,
		Enrollment:   s.EnrollmentRepository,
		Payment:      s.PaymentRepository,
		Notification: s.NotificationRepository,
	}
}

// InTx runs fn against transaction-backed repositories. The check-then-write
// sequences of the payment service rely on this being a single transaction.
func (s *Store) InTx(ctx context.Context, fn func(r repository.Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	r := repository.Repositories{
		Cursus:       NewCursusRepository(tx),
		Family:       NewFamilyRepository(tx),
		Enrollment:   NewEnrollmentRepository(tx),
		Payment:      NewPaymentRepository(tx),
		Notification: NewNotificationRepository(tx),
	}
	if err := fn(r); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ repository.Atomic = (*Store)(nil)
