package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidyalaya/vidyalaya/core/payment"
)

// ledgerDoc is a document of payments (owner: studentId) or salaries (owner: teacherId).
type ledgerDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	StudentID     oidRef             `bson:"studentId,omitempty"`
	TeacherID     oidRef             `bson:"teacherId,omitempty"`
	Amount        float64            `bson:"amount"`
	Month         ledgerMonth        `bson:"month"`
	Year          int                `bson:"year"`
	Status        string             `bson:"status"`
	PaymentDate   *time.Time         `bson:"paymentDate"`
	PaymentMethod string             `bson:"paymentMethod,omitempty"`
	Notes         string             `bson:"notes"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

type paymentRepository struct {
	payments *mongo.Collection
	salaries *mongo.Collection
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *mongo.Database) payment.Repository {
	return &paymentRepository{
		payments: db.Collection(paymentsCol),
		salaries: db.Collection(salariesCol),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func (repo paymentRepository) unpackPayment(doc ledgerDoc) payment.Payment {
	return payment.Payment{
		ID:            doc.ID.Hex(),
		StudentID:     string(doc.StudentID),
		Amount:        doc.Amount,
		Month:         doc.Month.n,
		Year:          doc.Year,
		Status:        doc.Status,
		PaymentDate:   utcPtr(doc.PaymentDate),
		PaymentMethod: doc.PaymentMethod,
		Notes:         doc.Notes,
		CreatedAt:     doc.CreatedAt.UTC(),
		UpdatedAt:     doc.UpdatedAt.UTC(),
	}
}

func (repo paymentRepository) unpackSalary(doc ledgerDoc) payment.Salary {
	return payment.Salary{
		ID:            doc.ID.Hex(),
		TeacherID:     string(doc.TeacherID),
		Amount:        doc.Amount,
		Month:         doc.Month.n,
		Year:          doc.Year,
		Status:        doc.Status,
		PaymentDate:   utcPtr(doc.PaymentDate),
		PaymentMethod: doc.PaymentMethod,
		Notes:         doc.Notes,
		CreatedAt:     doc.CreatedAt.UTC(),
		UpdatedAt:     doc.UpdatedAt.UTC(),
	}
}

func paidFields(amount float64, status string, date *time.Time, method, notes string, updatedAt time.Time) bson.M {
	return bson.M{
		"amount":        amount,
		"status":        status,
		"paymentDate":   utcPtr(date),
		"paymentMethod": method,
		"notes":         notes,
		"updatedAt":     updatedAt.UTC(),
	}
}

func periodQuery(q bson.M, filter payment.QueryFilter) bson.M {
	if filter.Month != 0 {
		q["month"] = monthMatch(filter.Month)
	}
	if filter.Year != 0 {
		q["year"] = filter.Year
	}
	return q
}

var byCreation = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if _, ok := objectID(p.StudentID); !ok {
		return payment.Payment{}, errors.Errorf("invalid student id %q", p.StudentID)
	}

	doc := ledgerDoc{
		ID:            primitive.NewObjectID(),
		StudentID:     oidRef(p.StudentID),
		Amount:        p.Amount,
		Month:         ledgerMonth{n: p.Month, named: true},
		Year:          p.Year,
		Status:        p.Status,
		PaymentDate:   utcPtr(p.PaymentDate),
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
	if _, err := repo.payments.InsertOne(ctx, doc); err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return repo.unpackPayment(doc), nil
}

func (repo paymentRepository) GetPayment(ctx context.Context, id string) (payment.Payment, error) {
	oid, ok := objectID(id)
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}

	var doc ledgerDoc
	if err := repo.payments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "finding payment")
	}
	return repo.unpackPayment(doc), nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	oid, ok := objectID(p.ID)
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}

	set := paidFields(p.Amount, p.Status, p.PaymentDate, p.PaymentMethod, p.Notes, p.UpdatedAt)
	var updated ledgerDoc
	err := repo.payments.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	return repo.unpackPayment(updated), nil
}

func (repo paymentRepository) QueryPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	q := bson.M{}
	if filter.StudentID != "" {
		q["studentId"] = refMatch(filter.StudentID)
	}

	cur, err := repo.payments.Find(ctx, periodQuery(q, filter), byCreation)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	docs, err := decodeAll[ledgerDoc](ctx, cur)
	if err != nil {
		return nil, errors.Wrap(err, "decoding payments")
	}

	ps := make([]payment.Payment, 0, len(docs))
	for _, doc := range docs {
		ps = append(ps, repo.unpackPayment(doc))
	}
	return ps, nil
}

func (repo paymentRepository) CreateSalary(ctx context.Context, s payment.Salary) (payment.Salary, error) {
	if _, ok := objectID(s.TeacherID); !ok {
		return payment.Salary{}, errors.Errorf("invalid teacher id %q", s.TeacherID)
	}

	doc := ledgerDoc{
		ID:            primitive.NewObjectID(),
		TeacherID:     oidRef(s.TeacherID),
		Amount:        s.Amount,
		Month:         ledgerMonth{n: s.Month},
		Year:          s.Year,
		Status:        s.Status,
		PaymentDate:   utcPtr(s.PaymentDate),
		PaymentMethod: s.PaymentMethod,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}
	if _, err := repo.salaries.InsertOne(ctx, doc); err != nil {
		return payment.Salary{}, errors.Wrap(err, "inserting salary")
	}
	return repo.unpackSalary(doc), nil
}

func (repo paymentRepository) GetSalary(ctx context.Context, id string) (payment.Salary, error) {
	oid, ok := objectID(id)
	if !ok {
		return payment.Salary{}, payment.ErrSalaryNotFound
	}

	var doc ledgerDoc
	if err := repo.salaries.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return payment.Salary{}, payment.ErrSalaryNotFound
		}
		return payment.Salary{}, errors.Wrap(err, "finding salary")
	}
	return repo.unpackSalary(doc), nil
}

func (repo paymentRepository) UpdateSalary(ctx context.Context, s payment.Salary) (payment.Salary, error) {
	oid, ok := objectID(s.ID)
	if !ok {
		return payment.Salary{}, payment.ErrSalaryNotFound
	}

	set := paidFields(s.Amount, s.Status, s.PaymentDate, s.PaymentMethod, s.Notes, s.UpdatedAt)
	var updated ledgerDoc
	err := repo.salaries.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return payment.Salary{}, payment.ErrSalaryNotFound
		}
		return payment.Salary{}, errors.Wrap(err, "updating salary")
	}
	return repo.unpackSalary(updated), nil
}

func (repo paymentRepository) QuerySalaries(ctx context.Context, filter payment.QueryFilter) ([]payment.Salary, error) {
	q := bson.M{}
	if filter.TeacherID != "" {
		q["teacherId"] = refMatch(filter.TeacherID)
	}

	cur, err := repo.salaries.Find(ctx, periodQuery(q, filter), byCreation)
	if err != nil {
		return nil, errors.Wrap(err, "querying salaries")
	}
	docs, err := decodeAll[ledgerDoc](ctx, cur)
	if err != nil {
		return nil, errors.Wrap(err, "decoding salaries")
	}

	ss := make([]payment.Salary, 0, len(docs))
	for _, doc := range docs {
		ss = append(ss, repo.unpackSalary(doc))
	}
	return ss, nil
}
