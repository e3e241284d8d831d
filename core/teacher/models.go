package teacher

import (
	"strconv"
	"strings"
	"time"
)

// Creators
const (
	CreatedBySelf  = "self"
	CreatedByAdmin = "admin"
)

type Teacher struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   []byte    `json:"-"`
	Phone          string    `json:"phone"`
	TeacherID      string    `json:"teacherId"`
	EmployeeID     string    `json:"employeeId"`
	Classes        []string  `json:"classes"`
	Subjects       []string  `json:"subjects"`
	Specialization string    `json:"specialization"`
	Experience     string    `json:"experience"`
	Qualification  string    `json:"qualification"`
	Salary         float64   `json:"salary"`
	IsActive       bool      `json:"isActive"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"` // UTC
	UpdatedAt      time.Time `json:"updatedAt"` // UTC
}

// ExperienceYears reads the leading number of Experience ("5 years" -> 5). Unparseable values are 0.
func (t Teacher) ExperienceYears() int {
	fields := strings.Fields(t.Experience)
	if len(fields) == 0 {
		return 0
	}
	years, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "+"), 64)
	if err != nil {
		return 0
	}
	return int(years)
}

const businessIDPrefix = "TEACH"

// BusinessID derives the public teacher identifier from the last 5 digits of phone.
// ok is false when phone holds no digit.
func BusinessID(phone string) (id string, ok bool) {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return "", false
	}
	if len(digits) > 5 {
		digits = digits[len(digits)-5:]
	}
	return businessIDPrefix + string(digits), true
}

type GetFilter struct {
	ID        string
	TeacherID string
	Email     string
}

type QueryFilter struct {
	IsActive *bool
}
