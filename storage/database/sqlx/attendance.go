package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/attendance"
)

const recordColumns = "id, student_id, date, subject, status, marked_by, marked_at, notes, class"

type recordRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Date      time.Time `db:"date"`
	Subject   string    `db:"subject"`
	Status    string    `db:"status"`
	MarkedBy  string    `db:"marked_by"`
	MarkedAt  time.Time `db:"marked_at"`
	Notes     string    `db:"notes"`
	Class     string    `db:"class"`
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) pack(rec attendance.Record) recordRow {
	return recordRow{
		ID:        rec.ID,
		StudentID: rec.StudentID,
		Date:      rec.Date.UTC(),
		Subject:   rec.Subject,
		Status:    rec.Status,
		MarkedBy:  rec.MarkedBy,
		MarkedAt:  rec.MarkedAt.UTC(),
		Notes:     rec.Notes,
		Class:     rec.Class,
	}
}

func (repo attendanceRepository) unpack(row recordRow) attendance.Record {
	return attendance.Record{
		ID:        row.ID,
		StudentID: row.StudentID,
		Date:      row.Date.UTC(),
		Subject:   row.Subject,
		Status:    row.Status,
		MarkedBy:  row.MarkedBy,
		MarkedAt:  row.MarkedAt.UTC(),
		Notes:     row.Notes,
		Class:     row.Class,
	}
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.NewString()
	row := repo.pack(rec)
	_, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		INSERT INTO attendance_records (`+recordColumns+`)
		VALUES (:id, :student_id, :date, :subject, :status, :marked_by, :marked_at, :notes, :class)`, row)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return repo.unpack(row), nil
}

func (repo attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if !isUUID(rec.ID) {
		return attendance.Record{}, attendance.ErrNotFound
	}

	var row recordRow
	err := sqlx.GetContext(ctx, executor(ctx, repo.db), &row, `
		UPDATE attendance_records
		SET subject = $2, status = $3, marked_by = $4, marked_at = $5, notes = $6
		WHERE id = $1
		RETURNING `+recordColumns,
		rec.ID, rec.Subject, rec.Status, rec.MarkedBy, rec.MarkedAt.UTC(), rec.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	return repo.unpack(row), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	w := new(where)
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []attendance.Record{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	if !filter.From.IsZero() {
		w.add("date >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		w.add("date <= ?", filter.To.UTC())
	}

	var rows []recordRow
	q := "SELECT " + recordColumns + " FROM attendance_records" + w.String() + orderBy(core.DBOrdering{Field: "date"})
	if err := sqlx.SelectContext(ctx, executor(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}

	recs := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, repo.unpack(row))
	}
	return recs, nil
}

func (repo attendanceRepository) LegacyRecords(ctx context.Context, studentID string) ([]attendance.LegacyEntry, error) {
	return readLegacyAttendance(ctx, repo.db, studentID)
}
