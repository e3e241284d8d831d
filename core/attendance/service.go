package attendance

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/student"
)

var (
	ErrNotFound = core.NewNotFoundError("attendance record not found")

	NowFunc = time.Now // mockable
)

// Recent projection sizes
const (
	SummaryRecentCount = 5
	QueryRecentCount   = 10
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		// UpdateRecord saves subject, status, markedBy, markedAt and notes.
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		// QueryRecords returns the matching records sorted by date, most recent first.
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		// LegacyRecords returns the attendance list embedded in the student document, as stored.
		LegacyRecords(ctx context.Context, studentID string) ([]LegacyEntry, error)
	}

	StudentResolver interface {
		ResolveStudent(ctx context.Context, ref directory.Ref) (student.Student, error)
	}

	Service struct {
		repo     Repository
		students StudentResolver
		loc      *time.Location
	}
)

// NewService returns the attendance ledger. Calendar days and months are computed in loc.
func NewService(repo Repository, students StudentResolver, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:     repo,
		students: students,
		loc:      loc,
	}
}

// Record marks the attendance of a student for a day.
// A student has at most one record per calendar day: marking the same day again updates that record.
// created is false when an existing record was updated.
func (svc *Service) Record(ctx context.Context, ref directory.Ref, nr NewRecord, markedBy string) (rec Record, created bool, err error) {
	date, err := time.ParseInLocation(core.DateLayout, core.CleanString(nr.Date), svc.loc)
	if err != nil {
		return Record{}, false, core.NewValidationError(
			errors.New("invalid date"),
			core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"},
		)
	}
	status := core.CleanString(nr.Status, true /* lower */)
	if !IsValidStatus(status) {
		return Record{}, false, core.NewValidationError(
			errors.New("invalid status"),
			core.FieldError{Field: "status", Error: "status must be one of [present absent leave]"},
		)
	}
	subject := core.CleanString(nr.Subject)
	if subject == "" {
		return Record{}, false, core.NewValidationError(
			errors.New("missing subject"),
			core.FieldError{Field: "subject", Error: "this field is required"},
		)
	}

	std, err := svc.students.ResolveStudent(ctx, ref)
	if err != nil {
		return Record{}, false, err
	}

	from, to := dayRange(date, svc.loc)
	existing, err := svc.repo.QueryRecords(ctx, QueryFilter{StudentID: std.ID, From: from, To: to})
	if err != nil {
		return Record{}, false, errors.Wrap(err, "querying day records")
	}

	now := NowFunc().UTC()
	if len(existing) > 0 {
		rec = existing[0]
		rec.Subject = subject
		rec.Status = status
		rec.MarkedBy = markedBy
		rec.MarkedAt = now
		rec.Notes = nr.Notes
		rec, err = svc.repo.UpdateRecord(ctx, rec)
		return rec, false, errors.Wrap(err, "updating record")
	}

	rec = Record{
		StudentID: std.ID,
		Date:      date,
		Subject:   subject,
		Status:    status,
		MarkedBy:  markedBy,
		MarkedAt:  now,
		Notes:     nr.Notes,
		Class:     std.Class,
	}
	rec, err = svc.repo.CreateRecord(ctx, rec)
	return rec, true, errors.Wrap(err, "creating record")
}

// Query returns the records of a student, most recent first, optionally scoped to a month.
// When a month is given and the ledger holds nothing for it, the legacy list embedded in the
// student document is used instead. The two sources are never merged.
func (svc *Service) Query(ctx context.Context, ref directory.Ref, month *Month) ([]Record, error) {
	std, err := svc.students.ResolveStudent(ctx, ref)
	if err != nil {
		return nil, err
	}

	filter := QueryFilter{StudentID: std.ID}
	if month != nil {
		filter.From, filter.To = month.Range(svc.loc)
	}
	recs, err := svc.repo.QueryRecords(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	if len(recs) > 0 || month == nil {
		return recs, nil
	}

	legacy, err := svc.repo.LegacyRecords(ctx, std.ID)
	if err != nil {
		return nil, errors.Wrap(err, "getting legacy records")
	}
	return svc.fromLegacy(std, legacy, filter.From, filter.To), nil
}

func (svc *Service) fromLegacy(std student.Student, legacy []LegacyEntry, from, to time.Time) []Record {
	recs := make([]Record, 0, len(legacy))
	for _, entry := range legacy {
		date, ok := parseLegacyDate(entry.Date, svc.loc)
		if !ok || !inRange(date, from, to) {
			continue
		}
		recs = append(recs, Record{
			StudentID: std.ID,
			Date:      date,
			Subject:   entry.Subject,
			Status:    entry.Status,
			MarkedBy:  entry.MarkedBy,
			Notes:     entry.Notes,
			Class:     std.Class,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.After(recs[j].Date) })
	return recs
}

// Summarize computes the statistics over all the ledger records of a student
// and projects the `recent` most recent ones.
func (svc *Service) Summarize(ctx context.Context, ref directory.Ref, recent int) (Summary, error) {
	recs, err := svc.Query(ctx, ref, nil)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Stats:  ComputeStats(recs),
		Recent: RecentOf(recs, recent),
	}, nil
}

// LegacyView materializes the ledger records of a student in the legacy embedded-list shape.
func (svc *Service) LegacyView(ctx context.Context, ref directory.Ref) ([]LegacyEntry, error) {
	recs, err := svc.Query(ctx, ref, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]LegacyEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, LegacyEntry{
			Date:     rec.Date.UTC().Format(time.RFC3339),
			Subject:  rec.Subject,
			Status:   rec.Status,
			MarkedBy: rec.MarkedBy,
			Notes:    rec.Notes,
		})
	}
	return entries, nil
}

// ComputeStats counts records per status. Records holding an unknown status are ignored,
// so TotalCount always equals PresentCount + AbsentCount + LeaveCount.
func ComputeStats(recs []Record) Stats {
	var st Stats
	for _, rec := range recs {
		switch rec.Status {
		case StatusPresent:
			st.PresentCount++
		case StatusAbsent:
			st.AbsentCount++
		case StatusLeave:
			st.LeaveCount++
		}
	}
	st.TotalCount = st.PresentCount + st.AbsentCount + st.LeaveCount
	st.PresentPercentage = percentage(st.PresentCount, st.TotalCount)
	st.AbsentPercentage = percentage(st.AbsentCount, st.TotalCount)
	st.LeavePercentage = percentage(st.LeaveCount, st.TotalCount)
	return st
}

// RecentOf projects the first n records; recs must be sorted most recent first.
func RecentOf(recs []Record, n int) []RecentRecord {
	if n > len(recs) {
		n = len(recs)
	} else if n < 0 {
		n = 0
	}
	recent := make([]RecentRecord, 0, n)
	for _, rec := range recs[:n] {
		recent = append(recent, RecentRecord{Date: rec.Date, Status: rec.Status, Notes: rec.Notes})
	}
	return recent
}

func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
