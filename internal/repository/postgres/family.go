package postgres

import (
	"context"
	"database/sql"
	"errors"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/repository"
)

type familyRepository struct {
	db DBTX
}

func NewFamilyRepository(db DBTX) repository.FamilyRepository {
	return &familyRepository{db: db}
}

func (r *familyRepository) GetByID(ctx context.Context, id int32) (*domain.Family, error) {
	var f domain.Family
	err := r.db.QueryRowContext(ctx, `SELECT id, school_id FROM families WHERE id = $1`, id).
		Scan(&f.ID, &f.SchoolID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *familyRepository) ListBySchool(ctx context.Context, schoolID int32) ([]domain.Family, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, school_id FROM families WHERE school_id = $1 ORDER BY id`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Family
	for rows.Next() {
		var f domain.Family
		if err := rows.Scan(&f.ID, &f.SchoolID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *familyRepository) ListResponsibles(ctx context.Context, familyID int32) ([]domain.Responsible, error) {
	query := `SELECT u.id, u.first_name, u.last_name, u.email
	          FROM users u
	          JOIN family_responsibles fr ON fr.user_id = u.id
	          WHERE fr.family_id = $1 ORDER BY fr.id`
	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Responsible
	for rows.Next() {
		var resp domain.Responsible
		if err := rows.Scan(&resp.ID, &resp.FirstName, &resp.LastName, &resp.Email); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func (r *familyRepository) GetStudent(ctx context.Context, id int32) (*domain.Student, error) {
	var s domain.Student
	err := r.db.QueryRowContext(ctx, `SELECT id, first_name, last_name FROM users WHERE id = $1`, id).
		Scan(&s.ID, &s.FirstName, &s.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
