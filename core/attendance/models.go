package attendance

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vidyalaya/vidyalaya/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLeave   = "leave"
)

func IsValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusLeave:
		return true
	}
	return false
}

// Record is one attendance event of a student. StudentID holds the Student primary key.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Date      time.Time `json:"date"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	MarkedBy  string    `json:"markedBy"`
	MarkedAt  time.Time `json:"markedAt"`
	Notes     string    `json:"notes"`
	Class     string    `json:"class"`
}

// LegacyEntry is the shape of the attendance list embedded in older student documents.
// Date is kept raw: legacy data may hold dates in any format, or none.
type LegacyEntry struct {
	Date     string `json:"date"`
	Subject  string `json:"subject"`
	Status   string `json:"status"`
	MarkedBy string `json:"markedBy"`
	Notes    string `json:"notes"`
}

// NewRecord contains the information needed to mark attendance.
type NewRecord struct {
	Date    string `json:"date" validate:"required,isodate"`
	Subject string `json:"subject" validate:"required,notblank"`
	Status  string `json:"status" validate:"required,oneof=present absent leave"`
	Notes   string `json:"notes"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Date = core.CleanString(nr.Date)
	nr.Subject = core.CleanString(nr.Subject)
	nr.Status = core.CleanString(nr.Status, true /* lower */)
	nr.Notes = strings.TrimSpace(nr.Notes)
	return validate.Struct(nr)
}

type QueryFilter struct {
	StudentID string
	From      time.Time // inclusive; zero means unbounded
	To        time.Time // inclusive; zero means unbounded
}

type Stats struct {
	TotalCount        int `json:"totalCount"`
	PresentCount      int `json:"presentCount"`
	AbsentCount       int `json:"absentCount"`
	LeaveCount        int `json:"leaveCount"`
	PresentPercentage int `json:"presentPercentage"`
	AbsentPercentage  int `json:"absentPercentage"`
	LeavePercentage   int `json:"leavePercentage"`
}

// RecentRecord is the trimmed projection of a Record shown in summaries.
type RecentRecord struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Notes  string    `json:"notes"`
}

type Summary struct {
	Stats
	Recent []RecentRecord
}
