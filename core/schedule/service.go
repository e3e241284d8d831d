package schedule

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/student"
)

type (
	Repository interface {
		CreateSlot(ctx context.Context, slot Slot) (Slot, error)
		QuerySlots(ctx context.Context, filter QueryFilter) ([]Slot, error)
	}

	StudentResolver interface {
		ResolveStudent(ctx context.Context, ref directory.Ref) (student.Student, error)
	}

	Service struct {
		repo            Repository
		students        StudentResolver
		defaultLocation string
	}
)

// NewService returns the schedule directory. defaultLocation fills slots saved without a location.
func NewService(repo Repository, students StudentResolver, defaultLocation string) *Service {
	return &Service{
		repo:            repo,
		students:        students,
		defaultLocation: defaultLocation,
	}
}

func (svc *Service) AddSlot(ctx context.Context, ns NewSlot) (Slot, error) {
	slot := Slot{
		Class:       ns.Class,
		Day:         canonicalDay(ns.Day),
		Subject:     ns.Subject,
		TeacherName: ns.TeacherName,
		StartTime:   ns.StartTime,
		EndTime:     ns.EndTime,
		Location:    ns.Location,
	}
	slot, err := svc.repo.CreateSlot(ctx, slot)
	return slot, errors.Wrap(err, "creating slot")
}

// ClassSlots returns the slots of a class sorted by day of the week then start time.
func (svc *Service) ClassSlots(ctx context.Context, class, day string) ([]Slot, error) {
	slots, err := svc.repo.QuerySlots(ctx, QueryFilter{Class: class, Day: strings.TrimSpace(day)})
	if err != nil {
		return nil, errors.Wrap(err, "querying slots")
	}
	SortSlots(slots)
	return slots, nil
}

// ScheduleForClass returns the weekly schedule of the class the referenced student is in.
// day optionally restricts it to one day of the week.
func (svc *Service) ScheduleForClass(ctx context.Context, ref directory.Ref, day string) ([]Entry, error) {
	std, err := svc.students.ResolveStudent(ctx, ref)
	if err != nil {
		return nil, err
	}
	slots, err := svc.ClassSlots(ctx, std.Class, day)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(slots))
	for _, slot := range slots {
		entries = append(entries, svc.project(slot))
	}
	return entries, nil
}

func (svc *Service) project(slot Slot) Entry {
	location := slot.Location
	if location == "" {
		location = svc.defaultLocation
	}
	return Entry{
		ID:       slot.ID,
		Day:      slot.Day,
		Subject:  slot.Subject,
		Teacher:  slot.TeacherName,
		Time:     slot.StartTime + " - " + slot.EndTime,
		Location: location,
	}
}

// SortSlots sorts slots by day of the week (Monday first, unknown days last) then start time.
func SortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		di, dj := dayIndex(slots[i].Day), dayIndex(slots[j].Day)
		if di != dj {
			return di < dj
		}
		return clockLess(slots[i].StartTime, slots[j].StartTime)
	})
}

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}

func parseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// clockLess orders times of day before unparseable values, which compare as strings.
func clockLess(a, b string) bool {
	ta, aok := parseClock(a)
	tb, bok := parseClock(b)
	switch {
	case aok && bok:
		return ta.Before(tb)
	case aok != bok:
		return aok
	}
	return a < b
}
