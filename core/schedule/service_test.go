package schedule_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/storage"
	"github.com/vidyalaya/vidyalaya/testutil"
)

func TestService_ScheduleForClass(t *testing.T) {
	store := storage.OpenMemory()
	dir := directory.New(store.Users, store.Students, store.Teachers)
	svc := schedule.NewService(store.Schedules, dir, "Main Building")
	ctx := context.Background()

	std := testutil.CreateStudent(t, store.Students, "Asha Verma", "asha@school.test", "10", "23")
	for _, ns := range []schedule.NewSlot{
		{Class: "10", Day: "tuesday", Subject: "Science", TeacherName: "Mrs. Iyer", StartTime: "10:00", EndTime: "11:00", Location: "Lab 2"},
		{Class: "10", Day: "Monday", Subject: "English", TeacherName: "Mr. Das", StartTime: "11:00", EndTime: "12:00"},
		{Class: "10", Day: "Monday", Subject: "Math", TeacherName: "Mr. Rao", StartTime: "09:00", EndTime: "10:00"},
		{Class: "9", Day: "Monday", Subject: "History", TeacherName: "Mr. Sen", StartTime: "08:00", EndTime: "09:00"},
	} {
		_, err := svc.AddSlot(ctx, ns)
		require.NoError(t, err)
	}

	entries, err := svc.ScheduleForClass(ctx, directory.AnyRef("STU-10-23"), "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, schedule.Entry{
		ID:       entries[0].ID,
		Day:      "Monday",
		Subject:  "Math",
		Teacher:  "Mr. Rao",
		Time:     "09:00 - 10:00",
		Location: "Main Building",
	}, entries[0])
	assert.Equal(t, "English", entries[1].Subject)
	assert.Equal(t, "Tuesday", entries[2].Day)
	assert.Equal(t, "Lab 2", entries[2].Location)

	entries, err = svc.ScheduleForClass(ctx, directory.AnyRef(std.ID), "TUESDAY")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Science", entries[0].Subject)

	entries, err = svc.ScheduleForClass(ctx, directory.AnyRef(std.ID), "Sunday")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	_, err = svc.ScheduleForClass(ctx, directory.AnyRef("STU-1-1"), "")
	assert.Equal(t, student.ErrNotFound, err)
}

func TestNewSlot_Validate(t *testing.T) {
	validate, translator := testutil.NewValidator()

	valid := func() schedule.NewSlot {
		return schedule.NewSlot{Class: "10", Day: "friday", Subject: "Math", TeacherName: "Mr. Rao", StartTime: "09:00", EndTime: "10:00"}
	}
	tests := []struct {
		name   string
		modify func(ns *schedule.NewSlot)
		want   map[string]string
	}{
		{name: "valid", modify: func(ns *schedule.NewSlot) {}},
		{name: "unknown day", modify: func(ns *schedule.NewSlot) { ns.Day = "Funday" }, want: map[string]string{"day": "day must be a day of the week"}},
		{name: "blank subject", modify: func(ns *schedule.NewSlot) { ns.Subject = "  " }, want: map[string]string{"subject": "this field is required"}},
		{name: "ends before start", modify: func(ns *schedule.NewSlot) { ns.EndTime = "08:00" }, want: map[string]string{"endTime": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := valid()
			tt.modify(&ns)
			err := ns.Validate(validate)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, "Friday", ns.Day)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "got %T", err)
			got := make(map[string]string, len(vErrs))
			for _, vErr := range vErrs {
				got[vErr.Field()] = vErr.Translate(translator)
			}
			for field, msg := range tt.want {
				require.Contains(t, got, field)
				if msg != "" {
					assert.Equal(t, msg, got[field])
				}
			}
		})
	}
}
