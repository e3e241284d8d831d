package schedule

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vidyalaya/vidyalaya/core"
)

// Slot is one weekly time-slot of a class.
type Slot struct {
	ID          string `json:"id"`
	Class       string `json:"class"`
	Day         string `json:"day"`
	Subject     string `json:"subject"`
	TeacherName string `json:"teacherName"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location"`
}

// Entry is the projection of a Slot returned to students.
type Entry struct {
	ID       string `json:"id"`
	Day      string `json:"day"`
	Subject  string `json:"subject"`
	Teacher  string `json:"teacher"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

type NewSlot struct {
	Class       string `json:"class" validate:"required,notblank"`
	Day         string `json:"day" validate:"required,weekday"`
	Subject     string `json:"subject" validate:"required,notblank"`
	TeacherName string `json:"teacherName" validate:"required,notblank"`
	StartTime   string `json:"startTime" validate:"required,clock"`
	EndTime     string `json:"endTime" validate:"required,clock"`
	Location    string `json:"location"`
}

func (ns *NewSlot) Validate(validate *validator.Validate) error {
	ns.Class = core.CleanString(ns.Class)
	ns.Day = canonicalDay(ns.Day)
	ns.Subject = core.CleanString(ns.Subject)
	ns.TeacherName = core.CleanString(ns.TeacherName)
	ns.StartTime = core.CleanString(ns.StartTime)
	ns.EndTime = core.CleanString(ns.EndTime)
	ns.Location = core.CleanString(ns.Location)
	return validate.Struct(ns)
}

type QueryFilter struct {
	Class string
	Day   string // case-insensitive
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// dayIndex orders the week from Monday; unknown days sort last.
func dayIndex(day string) int {
	for i, d := range weekdays {
		if strings.EqualFold(d, strings.TrimSpace(day)) {
			return i
		}
	}
	return len(weekdays)
}

// canonicalDay capitalizes known weekday names ("monday" -> "Monday").
func canonicalDay(day string) string {
	day = core.CleanString(day)
	if i := dayIndex(day); i < len(weekdays) {
		return weekdays[i]
	}
	return day
}
