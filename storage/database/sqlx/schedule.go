package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/schedule"
)

const slotColumns = "id, class, day, subject, teacher_name, start_time, end_time, location"

type slotRow struct {
	ID          string `db:"id"`
	Class       string `db:"class"`
	Day         string `db:"day"`
	Subject     string `db:"subject"`
	TeacherName string `db:"teacher_name"`
	StartTime   string `db:"start_time"`
	EndTime     string `db:"end_time"`
	Location    string `db:"location"`
}

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo scheduleRepository) CreateSlot(ctx context.Context, slot schedule.Slot) (schedule.Slot, error) {
	slot.ID = uuid.NewString()
	row := slotRow(slot)
	_, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		INSERT INTO schedules (`+slotColumns+`)
		VALUES (:id, :class, :day, :subject, :teacher_name, :start_time, :end_time, :location)`, row)
	if err != nil {
		return schedule.Slot{}, errors.Wrap(err, "inserting schedule slot")
	}
	return slot, nil
}

func (repo scheduleRepository) QuerySlots(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Slot, error) {
	w := new(where)
	if filter.Class != "" {
		w.add("class = ?", filter.Class)
	}
	if filter.Day != "" {
		w.add("lower(day) = lower(?)", filter.Day)
	}

	var rows []slotRow
	if err := sqlx.SelectContext(ctx, executor(ctx, repo.db), &rows, "SELECT "+slotColumns+" FROM schedules"+w.String(), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying schedule slots")
	}

	slots := make([]schedule.Slot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, schedule.Slot(row))
	}
	return slots, nil
}
