package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/vidyalaya/vidyalaya/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	defer repo.db.lockWrites(ctx)()

	rec.ID = uuid.NewString()
	repo.db.records[rec.ID] = rec
	return rec, nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	defer repo.db.lockWrites(ctx)()

	orig, ok := repo.db.records[rec.ID]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	orig.Subject = rec.Subject
	orig.Status = rec.Status
	orig.MarkedBy = rec.MarkedBy
	orig.MarkedAt = rec.MarkedAt
	orig.Notes = rec.Notes
	repo.db.records[rec.ID] = orig
	return orig, nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.records {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if !filter.From.IsZero() && rec.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && rec.Date.After(filter.To) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date.After(recs[j].Date) })
	return recs, nil
}

func (repo *attendanceRepository) LegacyRecords(_ context.Context, studentID string) ([]attendance.LegacyEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]attendance.LegacyEntry(nil), repo.db.legacy[studentID]...), nil
}
