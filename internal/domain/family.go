package domain

import "time"

// Family groups students under one payment ledger.
type Family struct {
	ID       int32 `json:"id"`
	SchoolID int32 `json:"school_id"`
}

// Student is the subset of a user the pricing core needs.
type Student struct {
	ID        int32  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Responsible is a family member notified on payment completion.
type Responsible struct {
	ID        int32  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (r Responsible) FullName() string {
	return r.FirstName + " " + r.LastName
}

type EnrollmentStatus string

const (
	EnrollmentActive   EnrollmentStatus = "active"
	EnrollmentInactive EnrollmentStatus = "inactive"
	EnrollmentPending  EnrollmentStatus = "pending"
)

// Enrollment is one (student, classroom) row. The cursus is reached through
// the classroom; only active rows count toward pricing.
type Enrollment struct {
	StudentID   int32            `json:"student_id"`
	ClassroomID int32            `json:"classroom_id"`
	CursusID    int32            `json:"cursus_id"`
	FamilyID    int32            `json:"family_id"`
	Status      EnrollmentStatus `json:"status"`
	EnrolledOn  time.Time        `json:"enrolled_on"`
}

// ClassRef identifies one class a student attends, as supplied by callers of
// the calculator.
type ClassRef struct {
	ClassroomID int32 `json:"classroom_id" validate:"required"`
	CursusID    int32 `json:"cursus_id" validate:"required"`
}

// EnrollmentInput is the calculator's per-student input shape.
type EnrollmentInput struct {
	StudentID int32      `json:"student_id" validate:"required"`
	Classes   []ClassRef `json:"classes" validate:"required,min=1,dive"`
}
