package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/vidyalaya/vidyalaya/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func matchPeriod(filter payment.QueryFilter, month, year int) bool {
	return (filter.Month == 0 || filter.Month == month) && (filter.Year == 0 || filter.Year == year)
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	defer repo.db.lockWrites(ctx)()

	p.ID = uuid.NewString()
	repo.db.payments[p.ID] = p
	return p, nil
}

func (repo *paymentRepository) GetPayment(_ context.Context, id string) (payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.payments[id]; ok {
		return p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	defer repo.db.lockWrites(ctx)()

	orig, ok := repo.db.payments[p.ID]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	orig.Amount = p.Amount
	orig.Status = p.Status
	orig.PaymentDate = p.PaymentDate
	orig.PaymentMethod = p.PaymentMethod
	orig.Notes = p.Notes
	orig.UpdatedAt = p.UpdatedAt
	repo.db.payments[p.ID] = orig
	return orig, nil
}

func (repo *paymentRepository) QueryPayments(_ context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ps := make([]payment.Payment, 0)
	for _, p := range repo.db.payments {
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if !matchPeriod(filter, p.Month, p.Year) {
			continue
		}
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].CreatedAt.Before(ps[j].CreatedAt) })
	return ps, nil
}

func (repo *paymentRepository) CreateSalary(ctx context.Context, s payment.Salary) (payment.Salary, error) {
	defer repo.db.lockWrites(ctx)()

	s.ID = uuid.NewString()
	repo.db.salaries[s.ID] = s
	return s, nil
}

func (repo *paymentRepository) GetSalary(_ context.Context, id string) (payment.Salary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.salaries[id]; ok {
		return s, nil
	}
	return payment.Salary{}, payment.ErrSalaryNotFound
}

func (repo *paymentRepository) UpdateSalary(ctx context.Context, s payment.Salary) (payment.Salary, error) {
	defer repo.db.lockWrites(ctx)()

	orig, ok := repo.db.salaries[s.ID]
	if !ok {
		return payment.Salary{}, payment.ErrSalaryNotFound
	}
	orig.Amount = s.Amount
	orig.Status = s.Status
	orig.PaymentDate = s.PaymentDate
	orig.PaymentMethod = s.PaymentMethod
	orig.Notes = s.Notes
	orig.UpdatedAt = s.UpdatedAt
	repo.db.salaries[s.ID] = orig
	return orig, nil
}

func (repo *paymentRepository) QuerySalaries(_ context.Context, filter payment.QueryFilter) ([]payment.Salary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ss := make([]payment.Salary, 0)
	for _, s := range repo.db.salaries {
		if filter.TeacherID != "" && s.TeacherID != filter.TeacherID {
			continue
		}
		if !matchPeriod(filter, s.Month, s.Year) {
			continue
		}
		ss = append(ss, s)
	}
	sort.Slice(ss, func(i, j int) bool { return ss[i].CreatedAt.Before(ss[j].CreatedAt) })
	return ss, nil
}
