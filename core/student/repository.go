package student

import (
	"context"

	"github.com/vidyalaya/vidyalaya/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("student not found")
	ErrEmailExists     = core.NewConflictError("email", "a student with this email already exists")
	ErrStudentIDExists = core.NewConflictError("studentId", "a student with this student ID already exists")
)

type Repository interface {
	CreateStudent(ctx context.Context, std Student) (Student, error)
	// GetStudent matches on the first non-empty GetFilter field: ID, StudentID then Email.
	GetStudent(ctx context.Context, filter GetFilter) (Student, error)
	QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
	UpdateStudent(ctx context.Context, std Student) (Student, error)
}
