package teacher

import (
	"context"

	"github.com/vidyalaya/vidyalaya/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("teacher not found")
	ErrEmailExists     = core.NewConflictError("email", "a teacher with this email already exists")
	ErrTeacherIDExists = core.NewConflictError("teacherId", "a teacher with this teacher ID already exists")
)

type Repository interface {
	CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
	// GetTeacher matches on the first non-empty GetFilter field: ID, TeacherID then Email.
	GetTeacher(ctx context.Context, filter GetFilter) (Teacher, error)
	QueryTeachers(ctx context.Context, filter QueryFilter) ([]Teacher, error)
	UpdateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
}
