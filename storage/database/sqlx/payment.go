package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/payment"
)

const (
	paymentColumns = "id, student_id, amount, month, year, status, payment_date, payment_method, notes, created_at, updated_at"
	salaryColumns  = "id, teacher_id, amount, month, year, status, payment_date, payment_method, notes, created_at, updated_at"
)

// ledgerRow is a row of payments (StudentID set) or salaries (TeacherID set).
type ledgerRow struct {
	ID            string      `db:"id"`
	StudentID     string      `db:"student_id"`
	TeacherID     string      `db:"teacher_id"`
	Amount        float64     `db:"amount"`
	Month         int         `db:"month"`
	Year          int         `db:"year"`
	Status        string      `db:"status"`
	PaymentDate   null.Time   `db:"payment_date"`
	PaymentMethod null.String `db:"payment_method"`
	Notes         string      `db:"notes"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func packDate(t *time.Time) null.Time {
	if t == nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}

func unpackDate(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func (repo paymentRepository) packPayment(p payment.Payment) ledgerRow {
	return ledgerRow{
		ID:            p.ID,
		StudentID:     p.StudentID,
		Amount:        p.Amount,
		Month:         p.Month,
		Year:          p.Year,
		Status:        p.Status,
		PaymentDate:   packDate(p.PaymentDate),
		PaymentMethod: null.NewString(p.PaymentMethod, p.PaymentMethod != ""),
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func (repo paymentRepository) unpackPayment(row ledgerRow) payment.Payment {
	return payment.Payment{
		ID:            row.ID,
		StudentID:     row.StudentID,
		Amount:        row.Amount,
		Month:         row.Month,
		Year:          row.Year,
		Status:        row.Status,
		PaymentDate:   unpackDate(row.PaymentDate),
		PaymentMethod: row.PaymentMethod.String,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func (repo paymentRepository) packSalary(s payment.Salary) ledgerRow {
	return ledgerRow{
		ID:            s.ID,
		TeacherID:     s.TeacherID,
		Amount:        s.Amount,
		Month:         s.Month,
		Year:          s.Year,
		Status:        s.Status,
		PaymentDate:   packDate(s.PaymentDate),
		PaymentMethod: null.NewString(s.PaymentMethod, s.PaymentMethod != ""),
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}
}

func (repo paymentRepository) unpackSalary(row ledgerRow) payment.Salary {
	return payment.Salary{
		ID:            row.ID,
		TeacherID:     row.TeacherID,
		Amount:        row.Amount,
		Month:         row.Month,
		Year:          row.Year,
		Status:        row.Status,
		PaymentDate:   unpackDate(row.PaymentDate),
		PaymentMethod: row.PaymentMethod.String,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func periodFilter(w *where, filter payment.QueryFilter) {
	if filter.Month != 0 {
		w.add("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		w.add("year = ?", filter.Year)
	}
}

var byCreation = orderBy(core.DBOrdering{Field: "created_at", Ascending: true})

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	p.ID = uuid.NewString()
	_, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES (:id, :student_id, :amount, :month, :year, :status, :payment_date, :payment_method, :notes,
		        :created_at, :updated_at)`, repo.packPayment(p))
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo paymentRepository) GetPayment(ctx context.Context, id string) (payment.Payment, error) {
	if !isUUID(id) {
		return payment.Payment{}, payment.ErrNotFound
	}

	var row ledgerRow
	err := sqlx.GetContext(ctx, executor(ctx, repo.db), &row, "SELECT "+paymentColumns+" FROM payments WHERE id = $1", id)
	switch {
	case err == sql.ErrNoRows:
		return payment.Payment{}, payment.ErrNotFound
	case err != nil:
		return payment.Payment{}, errors.Wrap(err, "finding payment")
	}
	return repo.unpackPayment(row), nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if !isUUID(p.ID) {
		return payment.Payment{}, payment.ErrNotFound
	}

	res, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		UPDATE payments
		SET amount = :amount, status = :status, payment_date = :payment_date, payment_method = :payment_method,
		    notes = :notes, updated_at = :updated_at
		WHERE id = :id`, repo.packPayment(p))
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return repo.GetPayment(ctx, p.ID)
}

func (repo paymentRepository) QueryPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	w := new(where)
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []payment.Payment{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	periodFilter(w, filter)

	var rows []ledgerRow
	q := "SELECT " + paymentColumns + " FROM payments" + w.String() + byCreation
	if err := sqlx.SelectContext(ctx, executor(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}

	ps := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		ps = append(ps, repo.unpackPayment(row))
	}
	return ps, nil
}

func (repo paymentRepository) CreateSalary(ctx context.Context, s payment.Salary) (payment.Salary, error) {
	s.ID = uuid.NewString()
	_, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		INSERT INTO salaries (`+salaryColumns+`)
		VALUES (:id, :teacher_id, :amount, :month, :year, :status, :payment_date, :payment_method, :notes,
		        :created_at, :updated_at)`, repo.packSalary(s))
	if err != nil {
		return payment.Salary{}, errors.Wrap(err, "inserting salary")
	}
	return s, nil
}

func (repo paymentRepository) GetSalary(ctx context.Context, id string) (payment.Salary, error) {
	if !isUUID(id) {
		return payment.Salary{}, payment.ErrSalaryNotFound
	}

	var row ledgerRow
	err := sqlx.GetContext(ctx, executor(ctx, repo.db), &row, "SELECT "+salaryColumns+" FROM salaries WHERE id = $1", id)
	switch {
	case err == sql.ErrNoRows:
		return payment.Salary{}, payment.ErrSalaryNotFound
	case err != nil:
		return payment.Salary{}, errors.Wrap(err, "finding salary")
	}
	return repo.unpackSalary(row), nil
}

func (repo paymentRepository) UpdateSalary(ctx context.Context, s payment.Salary) (payment.Salary, error) {
	if !isUUID(s.ID) {
		return payment.Salary{}, payment.ErrSalaryNotFound
	}

	res, err := sqlx.NamedExecContext(ctx, executor(ctx, repo.db), `
		UPDATE salaries
		SET amount = :amount, status = :status, payment_date = :payment_date, payment_method = :payment_method,
		    notes = :notes, updated_at = :updated_at
		WHERE id = :id`, repo.packSalary(s))
	if err != nil {
		return payment.Salary{}, errors.Wrap(err, "updating salary")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Salary{}, payment.ErrSalaryNotFound
	}
	return repo.GetSalary(ctx, s.ID)
}

func (repo paymentRepository) QuerySalaries(ctx context.Context, filter payment.QueryFilter) ([]payment.Salary, error) {
	w := new(where)
	if filter.TeacherID != "" {
		if !isUUID(filter.TeacherID) {
			return []payment.Salary{}, nil
		}
		w.add("teacher_id = ?", filter.TeacherID)
	}
	periodFilter(w, filter)

	var rows []ledgerRow
	q := "SELECT " + salaryColumns + " FROM salaries" + w.String() + byCreation
	if err := sqlx.SelectContext(ctx, executor(ctx, repo.db), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying salaries")
	}

	ss := make([]payment.Salary, 0, len(rows))
	for _, row := range rows {
		ss = append(ss, repo.unpackSalary(row))
	}
	return ss, nil
}
