// Package mongorepos is the MongoDB storage backend. Collections keep the layout of the
// documents written by the earlier web dashboard, legacy student attendance included.
package mongorepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidyalaya/vidyalaya/core"
)

// Collections
const (
	usersCol      = "users"
	studentsCol   = "students"
	teachersCol   = "teachers"
	attendanceCol = "studentAttendances"
	schedulesCol  = "schedules"
	paymentsCol   = "payments"
	salariesCol   = "salaries"
)

// unique index names, used to tell duplicate key errors apart
const (
	idxUserEmail      = "users_email_unique"
	idxStudentEmail   = "students_email_unique"
	idxStudentID      = "students_studentId_unique"
	idxTeacherEmail   = "teachers_email_unique"
	idxTeacherID      = "teachers_teacherId_unique"
	idxAttendanceDate = "attendance_student_date"
	idxPaymentPeriod  = "payments_period"
	idxSalaryPeriod   = "salaries_period"
)

type transactor struct {
	client  *mongo.Client
	enabled bool
}

var _ core.Transactor = (*transactor)(nil) // interface compliance check

// NewTransactor returns a Transactor backed by client sessions.
// When enabled is false (standalone servers have no transactions), fn runs without one.
func NewTransactor(client *mongo.Client, enabled bool) core.Transactor {
	return &transactor{client: client, enabled: enabled}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "starting session")
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(name string, keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
	}
	plain := func(name string, keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
	}

	indexes := map[string][]mongo.IndexModel{
		usersCol: {unique(idxUserEmail, bson.D{{Key: "email", Value: 1}})},
		studentsCol: {
			unique(idxStudentEmail, bson.D{{Key: "email", Value: 1}}),
			unique(idxStudentID, bson.D{{Key: "studentId", Value: 1}}),
		},
		teachersCol: {
			unique(idxTeacherEmail, bson.D{{Key: "email", Value: 1}}),
			unique(idxTeacherID, bson.D{{Key: "teacherId", Value: 1}}),
		},
		attendanceCol: {plain(idxAttendanceDate, bson.D{{Key: "studentId", Value: 1}, {Key: "date", Value: -1}})},
		paymentsCol:   {plain(idxPaymentPeriod, bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}})},
		salariesCol:   {plain(idxSalaryPeriod, bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}})},
	}
	for col, models := range indexes {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", col)
		}
	}
	return nil
}

// objectID parses a hex id; ok is false when id is not an ObjectID.
func objectID(id string) (oid primitive.ObjectID, ok bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func indexViolated(err error, index string) bool {
	return mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), index)
}

// decodeAll drains cur into a slice of T.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer func() { _ = cur.Close(ctx) }()

	docs := make([]T, 0)
	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, cur.Err()
}
