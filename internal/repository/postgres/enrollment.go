package postgres

import (
	"context"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/repository"
)

type enrollmentRepository struct {
	db DBTX
}

func NewEnrollmentRepository(db DBTX) repository.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) ListActiveByFamily(ctx context.Context, familyID int32) ([]domain.Enrollment, error) {
	query := `SELECT sc.student_id, sc.classroom_id, c.cursus_id, sc.family_id, sc.status, sc.enrolled_on
	          FROM student_classrooms sc
	          JOIN classrooms c ON c.id = sc.classroom_id
	          WHERE sc.family_id = $1 AND sc.status = 'active'
	          ORDER BY sc.student_id, sc.classroom_id`
	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Enrollment
	for rows.Next() {
		var e domain.Enrollment
		if err := rows.Scan(&e.StudentID, &e.ClassroomID, &e.CursusID, &e.FamilyID, &e.Status, &e.EnrolledOn); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
