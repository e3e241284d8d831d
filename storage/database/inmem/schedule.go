package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vidyalaya/vidyalaya/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) CreateSlot(ctx context.Context, slot schedule.Slot) (schedule.Slot, error) {
	defer repo.db.lockWrites(ctx)()

	slot.ID = uuid.NewString()
	repo.db.slots[slot.ID] = slot
	return slot, nil
}

// QuerySlots returns slots in no particular order.
func (repo *scheduleRepository) QuerySlots(_ context.Context, filter schedule.QueryFilter) ([]schedule.Slot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	slots := make([]schedule.Slot, 0)
	for _, slot := range repo.db.slots {
		if filter.Class != "" && slot.Class != filter.Class {
			continue
		}
		if filter.Day != "" && !strings.EqualFold(slot.Day, filter.Day) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
