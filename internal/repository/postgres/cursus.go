package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/repository"
)

type cursusRepository struct {
	db DBTX
}

func NewCursusRepository(db DBTX) repository.CursusRepository {
	return &cursusRepository{db: db}
}

func (r *cursusRepository) GetByID(ctx context.Context, id int32) (*domain.Cursus, error) {
	query := `SELECT id, school_id, name, progression, levels_count FROM cursus WHERE id = $1`
	var c domain.Cursus
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.SchoolID, &c.Name, &c.Progression, &c.LevelsCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cursusRepository) ListBySchool(ctx context.Context, schoolID int32) ([]domain.Cursus, error) {
	query := `SELECT id, school_id, name, progression, levels_count FROM cursus WHERE school_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Cursus
	for rows.Next() {
		var c domain.Cursus
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Progression, &c.LevelsCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cursusRepository) GetActiveTarif(ctx context.Context, cursusID int32) (*domain.Tarif, error) {
	query := `SELECT id, cursus_id, prix, actif, created_by, created_at FROM tarifs
	          WHERE cursus_id = $1 AND actif = true ORDER BY created_at DESC, id DESC LIMIT 1`
	var t domain.Tarif
	err := r.db.QueryRowContext(ctx, query, cursusID).Scan(&t.ID, &t.CursusID, &t.Prix, &t.Actif, &t.CreatedBy, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *cursusRepository) SetTarif(ctx context.Context, t *domain.Tarif) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE tarifs SET actif = false WHERE cursus_id = $1 AND actif = true`, t.CursusID); err != nil {
		return fmt.Errorf("deactivate previous tarifs: %w", err)
	}
	query := `INSERT INTO tarifs (cursus_id, prix, actif, created_by, created_at)
	          VALUES ($1, $2, true, $3, now()) RETURNING id, created_at`
	t.Actif = true
	return r.db.QueryRowContext(ctx, query, t.CursusID, t.Prix, t.CreatedBy).Scan(&t.ID, &t.CreatedAt)
}

func (r *cursusRepository) ListReductionsFamiliales(ctx context.Context, cursusID int32, activeOnly bool) ([]domain.ReductionFamiliale, error) {
	query := `SELECT id, cursus_id, nombre_eleves_min, pourcentage_reduction, actif
	          FROM reductions_familiales WHERE cursus_id = $1`
	if activeOnly {
		query += ` AND actif = true`
	}
	query += ` ORDER BY nombre_eleves_min`
	rows, err := r.db.QueryContext(ctx, query, cursusID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReductionFamiliale
	for rows.Next() {
		var red domain.ReductionFamiliale
		if err := rows.Scan(&red.ID, &red.CursusID, &red.NombreElevesMin, &red.Pourcentage, &red.Actif); err != nil {
			return nil, err
		}
		out = append(out, red)
	}
	return out, rows.Err()
}

func (r *cursusRepository) CreateReductionFamiliale(ctx context.Context, red *domain.ReductionFamiliale) error {
	query := `INSERT INTO reductions_familiales (cursus_id, nombre_eleves_min, pourcentage_reduction, actif)
	          VALUES ($1, $2, $3, true) RETURNING id`
	red.Actif = true
	return r.db.QueryRowContext(ctx, query, red.CursusID, red.NombreElevesMin, red.Pourcentage).Scan(&red.ID)
}

func (r *cursusRepository) UpdateReductionFamiliale(ctx context.Context, red *domain.ReductionFamiliale) error {
	query := `UPDATE reductions_familiales SET nombre_eleves_min = $2, pourcentage_reduction = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, red.ID, red.NombreElevesMin, red.Pourcentage)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *cursusRepository) DeactivateReductionFamiliale(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reductions_familiales SET actif = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *cursusRepository) ListReductionsMultiCursus(ctx context.Context, beneficiaireID int32, activeOnly bool) ([]domain.ReductionMultiCursus, error) {
	query := `SELECT r.id, r.cursus_beneficiaire_id, r.cursus_requis_id, c.name, r.pourcentage_reduction, r.actif
	          FROM reductions_multi_cursus r
	          JOIN cursus c ON c.id = r.cursus_requis_id
	          WHERE r.cursus_beneficiaire_id = $1`
	if activeOnly {
		query += ` AND r.actif = true`
	}
	rows, err := r.db.QueryContext(ctx, query, beneficiaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReductionMultiCursus
	for rows.Next() {
		var red domain.ReductionMultiCursus
		if err := rows.Scan(&red.ID, &red.CursusBeneficiaireID, &red.CursusRequisID, &red.CursusRequisNom, &red.Pourcentage, &red.Actif); err != nil {
			return nil, err
		}
		out = append(out, red)
	}
	return out, rows.Err()
}

func (r *cursusRepository) GetActiveReductionBetween(ctx context.Context, beneficiaireID, requisID int32) (*domain.ReductionMultiCursus, error) {
	query := `SELECT id, cursus_beneficiaire_id, cursus_requis_id, pourcentage_reduction, actif
	          FROM reductions_multi_cursus
	          WHERE cursus_beneficiaire_id = $1 AND cursus_requis_id = $2 AND actif = true LIMIT 1`
	var red domain.ReductionMultiCursus
	err := r.db.QueryRowContext(ctx, query, beneficiaireID, requisID).
		Scan(&red.ID, &red.CursusBeneficiaireID, &red.CursusRequisID, &red.Pourcentage, &red.Actif)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &red, nil
}

func (r *cursusRepository) CreateReductionMultiCursus(ctx context.Context, red *domain.ReductionMultiCursus) error {
	query := `INSERT INTO reductions_multi_cursus (cursus_beneficiaire_id, cursus_requis_id, pourcentage_reduction, actif)
	          VALUES ($1, $2, $3, true) RETURNING id`
	red.Actif = true
	return r.db.QueryRowContext(ctx, query, red.CursusBeneficiaireID, red.CursusRequisID, red.Pourcentage).Scan(&red.ID)
}

func (r *cursusRepository) UpdateReductionMultiCursus(ctx context.Context, red *domain.ReductionMultiCursus) error {
	query := `UPDATE reductions_multi_cursus SET pourcentage_reduction = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, red.ID, red.Pourcentage)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *cursusRepository) DeactivateReductionMultiCursus(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reductions_multi_cursus SET actif = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps a zero-row update to domain.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
