package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/teacher"
)

const teacherColumns = "id, name, email, password_hash, phone, teacher_id, employee_id, classes, subjects, " +
	"specialization, experience, qualification, salary, is_active, created_by, created_at, updated_at"

type teacherRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	PasswordHash   null.Bytes     `db:"password_hash"`
	Phone          string         `db:"phone"`
	TeacherID      string         `db:"teacher_id"`
	EmployeeID     string         `db:"employee_id"`
	Classes        pq.StringArray `db:"classes"`
	Subjects       pq.StringArray `db:"subjects"`
	Specialization string         `db:"specialization"`
	Experience     string         `db:"experience"`
	Qualification  string         `db:"qualification"`
	Salary         float64        `db:"salary"`
	IsActive       bool           `db:"is_active"`
	CreatedBy      string         `db:"created_by"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func stringArray(list []string) pq.StringArray {
	if list == nil {
		return pq.StringArray{}
	}
	return list
}

func (repo teacherRepository) pack(tch teacher.Teacher) teacherRow {
	return teacherRow{
		ID:             tch.ID,
		Name:           tch.Name,
		Email:          tch.Email,
		PasswordHash:   null.NewBytes(tch.PasswordHash, len(tch.PasswordHash) > 0),
		Phone:          tch.Phone,
		TeacherID:      tch.TeacherID,
		EmployeeID:     tch.EmployeeID,
		Classes:        stringArray(tch.Classes),
		Subjects:       stringArray(tch.Subjects),
		Specialization: tch.Specialization,
		Experience:     tch.Experience,
		Qualification:  tch.Qualification,
		Salary:         tch.Salary,
		IsActive:       tch.IsActive,
		CreatedBy:      tch.CreatedBy,
		CreatedAt:      tch.CreatedAt.UTC(),
		UpdatedAt:      tch.UpdatedAt.UTC(),
	}
}

func (repo teacherRepository) unpack(row teacherRow) teacher.Teacher {
	return teacher.Teacher{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		PasswordHash:   row.PasswordHash.Bytes,
		Phone:          row.Phone,
		TeacherID:      row.TeacherID,
		EmployeeID:     row.EmployeeID,
		Classes:        []string(row.Classes),
		Subjects:       []string(row.Subjects),
		Specialization: row.Specialization,
		Experience:     row.Experience,
		Qualification:  row.Qualification,
		Salary:         row.Salary,
		IsActive:       row.IsActive,
		CreatedBy:      row.CreatedBy,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

func (repo teacherRepository) trapErr(err error, msg string) error {
	switch {
	case err == sql.ErrNoRows:
		return teacher.ErrNotFound
	case constraintViolated(err, "teachers_email_key"):
		return teacher.ErrEmailExists
	case constraintViolated(err, "teachers_teacher_id_key"):
		return teacher.ErrTeacherIDExists
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	tch.ID = uuid.NewString()
	row := repo.pack(tch)
	_, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		INSERT INTO teachers (`+teacherColumns+`)
		VALUES (:id, :name, :email, :password_hash, :phone, :teacher_id, :employee_id, :classes, :subjects,
		        :specialization, :experience, :qualification, :salary, :is_active, :created_by, :created_at,
		        :updated_at)`, row)
	if err != nil {
		return teacher.Teacher{}, repo.trapErr(err, "inserting teacher")
	}
	return repo.unpack(row), nil
}

func (repo teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter) (teacher.Teacher, error) {
	w := new(where)
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.TeacherID != "":
		w.add("teacher_id = ?", filter.TeacherID)
	case filter.Email != "":
		w.add("email = ?", filter.Email)
	default:
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	var row teacherRow
	err := sqlx.GetContext(ctx, executor(ctx, repo.db), &row, "SELECT "+teacherColumns+" FROM teachers"+w.String(), w.args...)
	if err != nil {
		return teacher.Teacher{}, repo.trapErr(err, "finding teacher")
	}
	return repo.unpack(row), nil
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	w := new(where)
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}

	var rows []teacherRow
	q := "SELECT " + teacherColumns + " FROM teachers" + w.String() +
		orderBy(core.DBOrdering{Field: "teacher_id", Ascending: true})
	if err := sqlx.SelectContext(ctx, executor(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}

	tchs := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		tchs = append(tchs, repo.unpack(row))
	}
	return tchs, nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	if !isUUID(tch.ID) {
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	row := repo.pack(tch)
	res, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		UPDATE teachers
		SET name = :name, email = :email, password_hash = :password_hash, phone = :phone, teacher_id = :teacher_id,
		    employee_id = :employee_id, classes = :classes, subjects = :subjects, specialization = :specialization,
		    experience = :experience, qualification = :qualification, salary = :salary, is_active = :is_active,
		    updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return teacher.Teacher{}, repo.trapErr(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacher(ctx, teacher.GetFilter{ID: tch.ID})
}
