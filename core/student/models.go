package student

import (
	"fmt"
	"time"
)

// Creators
const (
	CreatedBySelf  = "self"
	CreatedByAdmin = "admin"
)

type Student struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  []byte    `json:"-"`
	Class         string    `json:"class"`
	RollNumber    string    `json:"rollNumber"`
	StudentID     string    `json:"studentId"`
	Subjects      []string  `json:"subjects"`
	ParentName    string    `json:"parentName"`
	ParentContact string    `json:"parentContact"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"` // UTC
	UpdatedAt     time.Time `json:"updatedAt"` // UTC
}

// BusinessID derives the public student identifier from the class and roll number.
func BusinessID(class, rollNumber string) string {
	return fmt.Sprintf("STU-%s-%s", class, rollNumber)
}

type GetFilter struct {
	ID        string
	StudentID string
	Email     string
}

type QueryFilter struct {
	Class string
}
