package payment

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/teacher"
)

const pendingPrefix = "pending-"

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("payment not found")
	ErrSalaryNotFound = core.NewNotFoundError("salary not found")
	errInvalidID      = errors.New("invalid pending record id")
	errInvalidPeriod  = errors.New("invalid period")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPayment(ctx context.Context, id string) (Payment, error)
		// UpdatePayment saves amount, status, payment date, payment method and notes.
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		QueryPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)

		CreateSalary(ctx context.Context, s Salary) (Salary, error)
		GetSalary(ctx context.Context, id string) (Salary, error)
		UpdateSalary(ctx context.Context, s Salary) (Salary, error)
		QuerySalaries(ctx context.Context, filter QueryFilter) ([]Salary, error)
	}

	Directory interface {
		ResolveStudent(ctx context.Context, ref directory.Ref) (student.Student, error)
		ResolveTeacher(ctx context.Context, ref directory.Ref) (teacher.Teacher, error)
		Students(ctx context.Context, class string) ([]student.Student, error)
		Teachers(ctx context.Context, activeOnly bool) ([]teacher.Teacher, error)
	}

	Service struct {
		repo       Repository
		dir        Directory
		mailSvc    core.EmailService
		monthlyFee float64
		loc        *time.Location
	}
)

// NewService returns the payment and salary ledger.
// monthlyFee is the amount of a student fee paid without an explicit amount.
func NewService(repo Repository, dir Directory, mailSvc core.EmailService, monthlyFee float64, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:       repo,
		dir:        dir,
		mailSvc:    mailSvc,
		monthlyFee: monthlyFee,
		loc:        loc,
	}
}

// PendingPaymentID is the id of the not yet recorded fee of a student.
func PendingPaymentID(studentID string) string {
	return pendingPrefix + studentID
}

// PendingSalaryID is the id of the not yet recorded salary of a teacher for a period.
func PendingSalaryID(teacherID string, month, year int) string {
	return fmt.Sprintf("%s%s-%d-%d", pendingPrefix, teacherID, month, year)
}

func IsPendingID(id string) bool {
	return strings.HasPrefix(id, pendingPrefix)
}

// parsePendingSalaryID splits "pending-{teacherId}-{month}-{year}" from the right,
// so teacher ids holding hyphens are kept whole.
func parsePendingSalaryID(id string) (ref string, month, year int, err error) {
	rest := strings.TrimPrefix(id, pendingPrefix)
	i := strings.LastIndex(rest, "-")
	if i <= 0 {
		return "", 0, 0, errInvalidID
	}
	if year, err = strconv.Atoi(rest[i+1:]); err != nil {
		return "", 0, 0, errInvalidID
	}
	rest = rest[:i]
	i = strings.LastIndex(rest, "-")
	if i <= 0 {
		return "", 0, 0, errInvalidID
	}
	if month, err = strconv.Atoi(rest[i+1:]); err != nil {
		return "", 0, 0, errInvalidID
	}
	if err = checkPeriod(month, year); err != nil {
		return "", 0, 0, err
	}
	return rest[:i], month, year, nil
}

func checkPeriod(month, year int) error {
	if month < 1 || month > 12 || year < 1 {
		return core.NewValidationError(errInvalidPeriod, core.FieldError{Field: "month", Error: "month must be between 1 and 12"})
	}
	return nil
}

func invalidIDError() error {
	return core.NewValidationError(errInvalidID, core.FieldError{Field: "id", Error: errInvalidID.Error()})
}

// currentPeriod returns mp's period, or the current month of the school.
func (svc *Service) currentPeriod(mp MarkPaid) (month, year int) {
	now := NowFunc().In(svc.loc)
	month, year = int(now.Month()), now.Year()
	if mp.Month != 0 {
		month = mp.Month
	}
	if mp.Year != 0 {
		year = mp.Year
	}
	return month, year
}

// paidOn parses the payment date of mp; it defaults to now.
func (svc *Service) paidOn(mp MarkPaid) (time.Time, error) {
	if mp.Date == "" {
		return NowFunc().UTC(), nil
	}
	date, err := time.ParseInLocation(core.DateLayout, mp.Date, svc.loc)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
	}
	return date, nil
}

func method(mp MarkPaid) (string, error) {
	if mp.Method == "" {
		return MethodCash, nil
	}
	if !IsValidMethod(mp.Method) {
		return "", core.NewValidationError(
			errors.New("invalid payment method"),
			core.FieldError{Field: "method", Error: "method must be one of [cash card upi bank cheque]"},
		)
	}
	return mp.Method, nil
}

// MarkPaymentPaid records a student fee as paid.
// id is either the id of a recorded payment, which is updated, or a pending id ("pending-{studentId}")
// for which a paid payment is created for the requested period, unless one is already recorded.
// created reports whether a new record was inserted.
func (svc *Service) MarkPaymentPaid(ctx context.Context, id string, mp MarkPaid) (p Payment, created bool, err error) {
	mthd, err := method(mp)
	if err != nil {
		return Payment{}, false, err
	}
	date, err := svc.paidOn(mp)
	if err != nil {
		return Payment{}, false, err
	}

	if !IsPendingID(id) {
		if p, err = svc.repo.GetPayment(ctx, id); err != nil {
			return Payment{}, false, err
		}
		p, err = svc.payPayment(ctx, p, mp, mthd, date)
		return p, false, err
	}

	ref := strings.TrimPrefix(id, pendingPrefix)
	if ref == "" {
		return Payment{}, false, invalidIDError()
	}
	month, year := svc.currentPeriod(mp)
	if err = checkPeriod(month, year); err != nil {
		return Payment{}, false, err
	}
	std, err := svc.dir.ResolveStudent(ctx, directory.AnyRef(ref))
	if err != nil {
		return Payment{}, false, err
	}

	existing, err := svc.repo.QueryPayments(ctx, QueryFilter{StudentID: std.ID, Month: month, Year: year})
	if err != nil {
		return Payment{}, false, errors.Wrap(err, "querying payments")
	}
	if len(existing) > 0 {
		p, err = svc.payPayment(ctx, existing[0], mp, mthd, date)
		return p, false, err
	}

	now := NowFunc().UTC()
	p = Payment{
		StudentID:     std.ID,
		Amount:        svc.monthlyFee,
		Month:         month,
		Year:          year,
		Status:        StatusPaid,
		PaymentDate:   &date,
		PaymentMethod: mthd,
		Notes:         mp.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if mp.Amount != nil {
		p.Amount = *mp.Amount
	}
	p, err = svc.repo.CreatePayment(ctx, p)
	return p, true, errors.Wrap(err, "creating payment")
}

func (svc *Service) payPayment(ctx context.Context, p Payment, mp MarkPaid, mthd string, date time.Time) (Payment, error) {
	p.Status = StatusPaid
	p.PaymentMethod = mthd
	p.PaymentDate = &date
	p.Notes = mp.Notes
	if mp.Amount != nil {
		p.Amount = *mp.Amount
	}
	p.UpdatedAt = NowFunc().UTC()
	p, err := svc.repo.UpdatePayment(ctx, p)
	return p, errors.Wrap(err, "updating payment")
}

// MarkSalaryPaid records a teacher salary as paid.
// id is either the id of a recorded salary, which is updated, or a pending id
// ("pending-{teacherId}-{month}-{year}") for which a paid salary is created unless one is already recorded.
// The teacher is notified by email.
func (svc *Service) MarkSalaryPaid(ctx context.Context, id string, mp MarkPaid) (s Salary, created bool, err error) {
	mthd, err := method(mp)
	if err != nil {
		return Salary{}, false, err
	}
	date, err := svc.paidOn(mp)
	if err != nil {
		return Salary{}, false, err
	}

	var tch teacher.Teacher
	if IsPendingID(id) {
		ref, month, year, err := parsePendingSalaryID(id)
		if err != nil {
			if _, ok := err.(*core.ValidationError); ok {
				return Salary{}, false, err
			}
			return Salary{}, false, invalidIDError()
		}
		if tch, err = svc.dir.ResolveTeacher(ctx, directory.AnyRef(ref)); err != nil {
			return Salary{}, false, err
		}

		existing, err := svc.repo.QuerySalaries(ctx, QueryFilter{TeacherID: tch.ID, Month: month, Year: year})
		if err != nil {
			return Salary{}, false, errors.Wrap(err, "querying salaries")
		}
		if len(existing) > 0 {
			s, err = svc.paySalary(ctx, existing[0], mp, mthd, date)
		} else {
			now := NowFunc().UTC()
			s = Salary{
				TeacherID:     tch.ID,
				Amount:        BaseSalary(tch),
				Month:         month,
				Year:          year,
				Status:        StatusPaid,
				PaymentDate:   &date,
				PaymentMethod: mthd,
				Notes:         mp.Notes,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if mp.Amount != nil {
				s.Amount = *mp.Amount
			}
			s, err = svc.repo.CreateSalary(ctx, s)
			err = errors.Wrap(err, "creating salary")
			created = true
		}
		if err != nil {
			return Salary{}, false, err
		}
	} else {
		if s, err = svc.repo.GetSalary(ctx, id); err != nil {
			return Salary{}, false, err
		}
		if tch, err = svc.dir.ResolveTeacher(ctx, directory.PrimaryKeyRef(s.TeacherID)); err != nil {
			return Salary{}, false, errors.Wrap(err, "getting salary teacher")
		}
		if s, err = svc.paySalary(ctx, s, mp, mthd, date); err != nil {
			return Salary{}, false, err
		}
	}

	svc.notifySalaryPaid(tch, s)
	return s, created, nil
}

func (svc *Service) paySalary(ctx context.Context, s Salary, mp MarkPaid, mthd string, date time.Time) (Salary, error) {
	s.Status = StatusPaid
	s.PaymentMethod = mthd
	s.PaymentDate = &date
	s.Notes = mp.Notes
	if mp.Amount != nil {
		s.Amount = *mp.Amount
	}
	s.UpdatedAt = NowFunc().UTC()
	s, err := svc.repo.UpdateSalary(ctx, s)
	return s, errors.Wrap(err, "updating salary")
}

func (svc *Service) notifySalaryPaid(tch teacher.Teacher, s Salary) {
	if svc.mailSvc == nil || tch.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: tch.Name, Address: tch.Email}},
		Subject:      "Salary paid",
		TemplateName: "salary_paid",
		TemplateData: map[string]interface{}{
			"Name":   tch.Name,
			"Period": time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006"),
			"Amount": s.Amount,
			"Method": s.PaymentMethod,
		},
	})
}

// ListPayments returns one row per student (of class, if set) for the period:
// its recorded payment, or a synthetic pending payment identified by PendingPaymentID.
func (svc *Service) ListPayments(ctx context.Context, month, year int, class string) ([]PaymentRow, error) {
	if err := checkPeriod(month, year); err != nil {
		return nil, err
	}
	stds, err := svc.dir.Students(ctx, class)
	if err != nil {
		return nil, err
	}
	payments, err := svc.repo.QueryPayments(ctx, QueryFilter{Month: month, Year: year})
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	byStudent := make(map[string]Payment, len(payments))
	for _, p := range payments {
		byStudent[p.StudentID] = p
	}

	rows := make([]PaymentRow, 0, len(stds))
	for _, std := range stds {
		p, ok := byStudent[std.ID]
		if !ok {
			p = Payment{
				ID:        PendingPaymentID(std.ID),
				StudentID: std.ID,
				Amount:    svc.monthlyFee,
				Month:     month,
				Year:      year,
				Status:    StatusPending,
			}
		}
		rows = append(rows, PaymentRow{
			Payment:           p,
			StudentName:       std.Name,
			StudentBusinessID: std.StudentID,
			Class:             std.Class,
		})
	}
	return rows, nil
}

// ListSalaries returns one row per active teacher for the period:
// its recorded salary, or a synthetic pending salary identified by PendingSalaryID.
func (svc *Service) ListSalaries(ctx context.Context, month, year int) ([]SalaryRow, error) {
	if err := checkPeriod(month, year); err != nil {
		return nil, err
	}
	tchs, err := svc.dir.Teachers(ctx, true /* activeOnly */)
	if err != nil {
		return nil, err
	}
	salaries, err := svc.repo.QuerySalaries(ctx, QueryFilter{Month: month, Year: year})
	if err != nil {
		return nil, errors.Wrap(err, "querying salaries")
	}
	byTeacher := make(map[string]Salary, len(salaries))
	for _, s := range salaries {
		byTeacher[s.TeacherID] = s
	}

	rows := make([]SalaryRow, 0, len(tchs))
	for _, tch := range tchs {
		s, ok := byTeacher[tch.ID]
		if !ok {
			s = Salary{
				ID:        PendingSalaryID(tch.ID, month, year),
				TeacherID: tch.ID,
				Amount:    BaseSalary(tch),
				Month:     month,
				Year:      year,
				Status:    StatusPending,
			}
		}
		rows = append(rows, SalaryRow{
			Salary:            s,
			TeacherName:       tch.Name,
			TeacherBusinessID: tch.TeacherID,
		})
	}
	return rows, nil
}

// SalaryBreakdown computes the salary of the referenced teacher for a month.
func (svc *Service) SalaryBreakdown(ctx context.Context, ref directory.Ref, month time.Month, absentDays, lateArrivals int) (Breakdown, error) {
	if month < time.January || month > time.December {
		return Breakdown{}, checkPeriod(int(month), 1)
	}
	tch, err := svc.dir.ResolveTeacher(ctx, ref)
	if err != nil {
		return Breakdown{}, err
	}
	return ComputeSalary(BaseSalary(tch), month, absentDays, lateArrivals), nil
}
