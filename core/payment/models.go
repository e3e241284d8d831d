package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vidyalaya/vidyalaya/core"
)

// Statuses
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// Methods
const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodUPI    = "upi"
	MethodBank   = "bank"
	MethodCheque = "cheque"
)

func IsValidMethod(method string) bool {
	switch method {
	case MethodCash, MethodCard, MethodUPI, MethodBank, MethodCheque:
		return true
	}
	return false
}

// Payment is the fee record of a student for a month. StudentID holds the Student primary key.
type Payment struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"studentId"`
	Amount        float64    `json:"amount"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	Status        string     `json:"status"`
	PaymentDate   *time.Time `json:"paymentDate"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"` // UTC
	UpdatedAt     time.Time  `json:"updatedAt"` // UTC
}

// Salary is the salary record of a teacher for a month. TeacherID holds the Teacher primary key.
type Salary struct {
	ID            string     `json:"id"`
	TeacherID     string     `json:"teacherId"`
	Amount        float64    `json:"amount"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	Status        string     `json:"status"`
	PaymentDate   *time.Time `json:"paymentDate"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"` // UTC
	UpdatedAt     time.Time  `json:"updatedAt"` // UTC
}

// MarkPaid contains the payment metadata recorded when a fee or salary is paid.
// Month and Year select the period of a pending fee; they default to the current period.
type MarkPaid struct {
	Amount *float64 `json:"amount" validate:"omitempty,gte=0"`
	Method string   `json:"method" validate:"omitempty,oneof=cash card upi bank cheque"`
	Date   string   `json:"date" validate:"omitempty,isodate"`
	Notes  string   `json:"notes"`
	Month  int      `json:"month" validate:"omitempty,min=1,max=12"`
	Year   int      `json:"year" validate:"omitempty,min=2000,max=2100"`
}

func (mp *MarkPaid) Validate(validate *validator.Validate) error {
	mp.Method = core.CleanString(mp.Method, true /* lower */)
	mp.Date = core.CleanString(mp.Date)
	mp.Notes = core.CleanString(mp.Notes)
	return validate.Struct(mp)
}

type QueryFilter struct {
	StudentID string
	TeacherID string
	Month     int
	Year      int
}

// PaymentRow is one line of the fee listing of a period: the student and its payment,
// or a synthetic pending payment when none is recorded yet.
type PaymentRow struct {
	Payment
	StudentName       string `json:"studentName"`
	StudentBusinessID string `json:"studentBusinessId"`
	Class             string `json:"class"`
}

// SalaryRow is one line of the salary listing of a period.
type SalaryRow struct {
	Salary
	TeacherName       string `json:"teacherName"`
	TeacherBusinessID string `json:"teacherBusinessId"`
}
