package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/attendance"
	"github.com/vidyalaya/vidyalaya/core/student"
)

const studentColumns = "id, name, email, password_hash, class, roll_number, student_id, subjects, parent_name, " +
	"parent_contact, created_by, created_at, updated_at"

type studentRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Email         string         `db:"email"`
	PasswordHash  null.Bytes     `db:"password_hash"`
	Class         string         `db:"class"`
	RollNumber    string         `db:"roll_number"`
	StudentID     string         `db:"student_id"`
	Subjects      pq.StringArray `db:"subjects"`
	ParentName    string         `db:"parent_name"`
	ParentContact string         `db:"parent_contact"`
	CreatedBy     string         `db:"created_by"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo studentRepository) pack(std student.Student) studentRow {
	subjects := std.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	return studentRow{
		ID:            std.ID,
		Name:          std.Name,
		Email:         std.Email,
		PasswordHash:  null.NewBytes(std.PasswordHash, len(std.PasswordHash) > 0),
		Class:         std.Class,
		RollNumber:    std.RollNumber,
		StudentID:     std.StudentID,
		Subjects:      subjects,
		ParentName:    std.ParentName,
		ParentContact: std.ParentContact,
		CreatedBy:     std.CreatedBy,
		CreatedAt:     std.CreatedAt.UTC(),
		UpdatedAt:     std.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) unpack(row studentRow) student.Student {
	return student.Student{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		PasswordHash:  row.PasswordHash.Bytes,
		Class:         row.Class,
		RollNumber:    row.RollNumber,
		StudentID:     row.StudentID,
		Subjects:      []string(row.Subjects),
		ParentName:    row.ParentName,
		ParentContact: row.ParentContact,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) trapErr(err error, msg string) error {
	switch {
	case err == sql.ErrNoRows:
		return student.ErrNotFound
	case constraintViolated(err, "students_email_key"):
		return student.ErrEmailExists
	case constraintViolated(err, "students_student_id_key"):
		return student.ErrStudentIDExists
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.NewString()
	row := repo.pack(std)
	_, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		INSERT INTO students (`+studentColumns+`)
		VALUES (:id, :name, :email, :password_hash, :class, :roll_number, :student_id, :subjects, :parent_name,
		        :parent_contact, :created_by, :created_at, :updated_at)`, row)
	if err != nil {
		return student.Student{}, repo.trapErr(err, "inserting student")
	}
	return repo.unpack(row), nil
}

func (repo studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	w := new(where)
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return student.Student{}, student.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.StudentID != "":
		w.add("student_id = ?", filter.StudentID)
	case filter.Email != "":
		w.add("email = ?", filter.Email)
	default:
		return student.Student{}, student.ErrNotFound
	}

	var row studentRow
	err := sqlx.GetContext(ctx, executor(ctx, repo.db), &row, "SELECT "+studentColumns+" FROM students"+w.String(), w.args...)
	if err != nil {
		return student.Student{}, repo.trapErr(err, "finding student")
	}
	return repo.unpack(row), nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	w := new(where)
	if filter.Class != "" {
		w.add("class = ?", filter.Class)
	}

	var rows []studentRow
	q := "SELECT " + studentColumns + " FROM students" + w.String() +
		orderBy(core.DBOrdering{Field: "student_id", Ascending: true})
	if err := sqlx.SelectContext(ctx, executor(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	stds := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		stds = append(stds, repo.unpack(row))
	}
	return stds, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if !isUUID(std.ID) {
		return student.Student{}, student.ErrNotFound
	}

	row := repo.pack(std)
	res, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		UPDATE students
		SET name = :name, email = :email, password_hash = :password_hash, class = :class, roll_number = :roll_number,
		    student_id = :student_id, subjects = :subjects, parent_name = :parent_name,
		    parent_contact = :parent_contact, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return student.Student{}, repo.trapErr(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, student.GetFilter{ID: std.ID})
}

// legacyEntry mirrors the embedded attendance items, whose date may be stored as a string, a number or null.
type legacyEntry struct {
	Date     interface{} `json:"date"`
	Subject  string      `json:"subject"`
	Status   string      `json:"status"`
	MarkedBy string      `json:"markedBy"`
	Notes    string      `json:"notes"`
}

func (le legacyEntry) unpack() attendance.LegacyEntry {
	var date string
	switch v := le.Date.(type) {
	case nil:
	case string:
		date = v
	default:
		date = fmt.Sprint(v)
	}
	return attendance.LegacyEntry{
		Date:     date,
		Subject:  le.Subject,
		Status:   le.Status,
		MarkedBy: le.MarkedBy,
		Notes:    le.Notes,
	}
}

func readLegacyAttendance(ctx context.Context, db *sqlx.DB, studentID string) ([]attendance.LegacyEntry, error) {
	if !isUUID(studentID) {
		return nil, nil
	}

	var raw types.JSONText
	err := sqlx.GetContext(ctx, executor(ctx, db), &raw, "SELECT attendance FROM students WHERE id = $1", studentID)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(err, "reading legacy attendance")
	}

	var items []legacyEntry
	if err = raw.Unmarshal(&items); err != nil {
		// a malformed legacy list is treated as empty
		if _, ok := err.(*json.SyntaxError); ok {
			return nil, nil
		}
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decoding legacy attendance")
	}

	entries := make([]attendance.LegacyEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, item.unpack())
	}
	return entries, nil
}
