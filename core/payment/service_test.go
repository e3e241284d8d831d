package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/payment"
	"github.com/vidyalaya/vidyalaya/core/teacher"
	emailsvc "github.com/vidyalaya/vidyalaya/services/email"
	"github.com/vidyalaya/vidyalaya/storage"
	"github.com/vidyalaya/vidyalaya/testutil"
)

var now = time.Date(2024, time.May, 20, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*payment.Service, *storage.Storage) {
	t.Helper()

	payment.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { payment.NowFunc = time.Now })
	emailsvc.ResetSentMessages()

	conf := testutil.NewConfig()
	store := storage.OpenMemory()
	dir := directory.New(store.Users, store.Students, store.Teachers)
	return payment.NewService(store.Payments, dir, emailsvc.NewConsoleServiceMock(conf), 1500, time.UTC), store
}

func TestService_MarkPaymentPaid(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, store.Students, "Asha Verma", "asha@school.test", "10", "23")

	// the current period and today by default
	p, created, err := svc.MarkPaymentPaid(ctx, payment.PendingPaymentID(std.ID), payment.MarkPaid{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, std.ID, p.StudentID)
	assert.Equal(t, 5, p.Month)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, 1500.0, p.Amount)
	assert.Equal(t, payment.StatusPaid, p.Status)
	assert.Equal(t, payment.MethodCash, p.PaymentMethod)
	require.NotNil(t, p.PaymentDate)
	assert.True(t, now.Equal(*p.PaymentDate))

	// another period
	april, created, err := svc.MarkPaymentPaid(ctx, payment.PendingPaymentID("STU-10-23"), payment.MarkPaid{Month: 4, Method: payment.MethodCheque})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, p.ID, april.ID)
	assert.Equal(t, 4, april.Month)

	// an existing period record is updated
	amount := 1200.0
	again, created, err := svc.MarkPaymentPaid(ctx, payment.PendingPaymentID(std.ID), payment.MarkPaid{Amount: &amount, Notes: "discount"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, 1200.0, again.Amount)
	assert.Equal(t, "discount", again.Notes)

	rows, err := svc.ListPayments(ctx, 5, 2024, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, p.ID, rows[0].ID)
	assert.Equal(t, "Asha Verma", rows[0].StudentName)

	rows, err = svc.ListPayments(ctx, 6, 2024, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, payment.PendingPaymentID(std.ID), rows[0].ID)
	assert.Equal(t, payment.StatusPending, rows[0].Status)

	tests := []struct {
		name    string
		id      string
		mp      payment.MarkPaid
		wantErr func(error) bool
	}{
		{name: "unknown id", id: "lol", wantErr: core.IsNotFound},
		{name: "unknown student", id: payment.PendingPaymentID("STU-1-1"), wantErr: core.IsNotFound},
		{name: "empty pending id", id: "pending-", wantErr: isValidationErr},
		{name: "invalid method", id: p.ID, mp: payment.MarkPaid{Method: "bitcoin"}, wantErr: isValidationErr},
		{name: "invalid date", id: p.ID, mp: payment.MarkPaid{Date: "20/05/2024"}, wantErr: isValidationErr},
		{name: "invalid month", id: payment.PendingPaymentID(std.ID), mp: payment.MarkPaid{Month: 13}, wantErr: isValidationErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.MarkPaymentPaid(ctx, tt.id, tt.mp)
			require.Error(t, err)
			assert.True(t, tt.wantErr(err), "unexpected error %v", err)
		})
	}
}

func isValidationErr(err error) bool {
	_, ok := err.(*core.ValidationError)
	return ok
}

func TestService_MarkSalaryPaid(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tch := testutil.CreateTeacher(t, store.Teachers, "Sunita Rao", "sunita@school.test", "TEACH-43210", 0, "Physics")
	inactive := testutil.CreateTeacher(t, store.Teachers, "Anil", "anil@school.test", "TEACH00001", 18000)
	inactive.IsActive = false
	_, err := store.Teachers.UpdateTeacher(ctx, inactive)
	require.NoError(t, err)

	rows, err := svc.ListSalaries(ctx, 3, 2024)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, payment.PendingSalaryID(tch.ID, 3, 2024), rows[0].ID)
	assert.Equal(t, 15000.0, rows[0].Amount)

	s, created, err := svc.MarkSalaryPaid(ctx, rows[0].ID, payment.MarkPaid{Method: payment.MethodBank, Date: "2024-03-31"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, tch.ID, s.TeacherID)
	assert.Equal(t, 15000.0, s.Amount)
	assert.Equal(t, 3, s.Month)
	assert.Equal(t, 2024, s.Year)

	sent := emailsvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "sunita@school.test", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "March 2024")

	// the business id resolves to the same teacher and period
	again, created, err := svc.MarkSalaryPaid(ctx, payment.PendingSalaryID(tch.TeacherID, 3, 2024), payment.MarkPaid{})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, s.ID, again.ID)
	assert.Equal(t, payment.MethodCash, again.PaymentMethod)

	byID, created, err := svc.MarkSalaryPaid(ctx, s.ID, payment.MarkPaid{Notes: "adjusted"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "adjusted", byID.Notes)

	_, _, err = svc.MarkSalaryPaid(ctx, "pending-lol", payment.MarkPaid{})
	assert.True(t, isValidationErr(err))
	_, _, err = svc.MarkSalaryPaid(ctx, "lol", payment.MarkPaid{})
	assert.Equal(t, payment.ErrSalaryNotFound, err)
}

func TestService_SalaryBreakdown(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	tch := testutil.CreateTeacher(t, store.Teachers, "Sunita Rao", "sunita@school.test", "TEACH43210", 26000, "Physics")

	bd, err := svc.SalaryBreakdown(ctx, directory.AnyRef("TEACH43210"), time.October, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, payment.ComputeSalary(26000, time.October, 1, 3), bd)
	assert.Equal(t, 26000.0-2000+2600, bd.FinalSalary)

	_, err = svc.SalaryBreakdown(ctx, directory.AnyRef(tch.ID), 0, 0, 0)
	assert.True(t, isValidationErr(err))
	_, err = svc.SalaryBreakdown(ctx, directory.AnyRef("TEACH00000"), time.May, 0, 0)
	assert.Equal(t, teacher.ErrNotFound, err)
}
