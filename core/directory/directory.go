// Package directory resolves student and teacher references.
//
// HTTP routes receive opaque identifiers that may be a record primary key, a business id
// ("STU-10-23", "TEACH43210") or the primary key of the User the person logs in with.
// Internal callers that know which one they hold pass a typed Ref and skip the fallback chain.
package directory

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/teacher"
	"github.com/vidyalaya/vidyalaya/core/user"
)

type RefKind int

const (
	RefAny RefKind = iota
	RefPrimaryKey
	RefBusinessID
	RefUser
)

// Ref is a reference to a student or teacher.
type Ref struct {
	Kind RefKind
	ID   string
}

func AnyRef(id string) Ref        { return Ref{Kind: RefAny, ID: id} }
func PrimaryKeyRef(id string) Ref { return Ref{Kind: RefPrimaryKey, ID: id} }
func BusinessIDRef(id string) Ref { return Ref{Kind: RefBusinessID, ID: id} }
func UserRef(id string) Ref       { return Ref{Kind: RefUser, ID: id} }

type Directory struct {
	usrRepo user.Repository
	stdRepo student.Repository
	tchRepo teacher.Repository
}

func New(usrRepo user.Repository, stdRepo student.Repository, tchRepo teacher.Repository) *Directory {
	return &Directory{
		usrRepo: usrRepo,
		stdRepo: stdRepo,
		tchRepo: tchRepo,
	}
}

// ResolveStudent returns the Student denoted by ref, or student.ErrNotFound.
// RefAny tries, in order: Student primary key, Student business id, then the User primary key
// whose student reference is tried as a primary key and as a business id.
func (d *Directory) ResolveStudent(ctx context.Context, ref Ref) (student.Student, error) {
	if ref.ID == "" {
		return student.Student{}, student.ErrNotFound
	}

	switch ref.Kind {
	case RefPrimaryKey:
		return d.getStudent(ctx, student.GetFilter{ID: ref.ID})
	case RefBusinessID:
		return d.getStudent(ctx, student.GetFilter{StudentID: ref.ID})
	case RefUser:
		return d.studentOfUser(ctx, ref.ID)
	}

	std, err := d.getStudent(ctx, student.GetFilter{ID: ref.ID})
	if !isMiss(err) {
		return std, err
	}
	std, err = d.getStudent(ctx, student.GetFilter{StudentID: ref.ID})
	if !isMiss(err) {
		return std, err
	}
	return d.studentOfUser(ctx, ref.ID)
}

func (d *Directory) studentOfUser(ctx context.Context, userID string) (student.Student, error) {
	usr, err := d.usrRepo.GetUser(ctx, user.GetFilter{ID: userID})
	if err != nil {
		if isMiss(err) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting user")
	}
	if usr.StudentID == "" {
		return student.Student{}, student.ErrNotFound
	}

	std, err := d.getStudent(ctx, student.GetFilter{ID: usr.StudentID})
	if !isMiss(err) {
		return std, err
	}
	return d.getStudent(ctx, student.GetFilter{StudentID: usr.StudentID})
}

func (d *Directory) getStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	std, err := d.stdRepo.GetStudent(ctx, filter)
	if err != nil && !isMiss(err) {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return std, err
}

// ResolveTeacher returns the Teacher denoted by ref, or teacher.ErrNotFound.
// RefAny follows the same chain as ResolveStudent, using the teacher business id.
func (d *Directory) ResolveTeacher(ctx context.Context, ref Ref) (teacher.Teacher, error) {
	if ref.ID == "" {
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	switch ref.Kind {
	case RefPrimaryKey:
		return d.getTeacher(ctx, teacher.GetFilter{ID: ref.ID})
	case RefBusinessID:
		return d.getTeacher(ctx, teacher.GetFilter{TeacherID: ref.ID})
	case RefUser:
		return d.teacherOfUser(ctx, ref.ID)
	}

	tch, err := d.getTeacher(ctx, teacher.GetFilter{ID: ref.ID})
	if !isMiss(err) {
		return tch, err
	}
	tch, err = d.getTeacher(ctx, teacher.GetFilter{TeacherID: ref.ID})
	if !isMiss(err) {
		return tch, err
	}
	return d.teacherOfUser(ctx, ref.ID)
}

func (d *Directory) teacherOfUser(ctx context.Context, userID string) (teacher.Teacher, error) {
	usr, err := d.usrRepo.GetUser(ctx, user.GetFilter{ID: userID})
	if err != nil {
		if isMiss(err) {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "getting user")
	}
	if usr.TeacherID == "" {
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	tch, err := d.getTeacher(ctx, teacher.GetFilter{ID: usr.TeacherID})
	if !isMiss(err) {
		return tch, err
	}
	return d.getTeacher(ctx, teacher.GetFilter{TeacherID: usr.TeacherID})
}

func (d *Directory) getTeacher(ctx context.Context, filter teacher.GetFilter) (teacher.Teacher, error) {
	tch, err := d.tchRepo.GetTeacher(ctx, filter)
	if err != nil && !isMiss(err) {
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return tch, err
}

// OwnsStudent reports whether usr is the student std logs in as.
func OwnsStudent(usr user.User, std student.Student) bool {
	if !usr.IsStudent() || usr.StudentID == "" {
		return false
	}
	return usr.StudentID == std.StudentID || usr.StudentID == std.ID
}

func isMiss(err error) bool {
	switch errors.Cause(err) {
	case student.ErrNotFound, teacher.ErrNotFound, user.ErrNotFound:
		return true
	}
	return false
}

// Students lists the students, optionally restricted to a class.
func (d *Directory) Students(ctx context.Context, class string) ([]student.Student, error) {
	stds, err := d.stdRepo.QueryStudents(ctx, student.QueryFilter{Class: class})
	return stds, errors.Wrap(err, "querying students")
}

// Teachers lists the teachers, optionally only the active ones.
func (d *Directory) Teachers(ctx context.Context, activeOnly bool) ([]teacher.Teacher, error) {
	var filter teacher.QueryFilter
	if activeOnly {
		active := true
		filter.IsActive = &active
	}
	tchs, err := d.tchRepo.QueryTeachers(ctx, filter)
	return tchs, errors.Wrap(err, "querying teachers")
}
