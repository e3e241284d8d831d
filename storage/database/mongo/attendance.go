package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidyalaya/vidyalaya/core/attendance"
)

type recordDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	StudentID hexRef             `bson:"studentId"`
	Date      time.Time          `bson:"date"`
	Subject   string             `bson:"subject"`
	Status    string             `bson:"status"`
	MarkedBy  string             `bson:"markedBy"`
	MarkedAt  time.Time          `bson:"markedAt"`
	Notes     string             `bson:"notes"`
	Class     string             `bson:"class"`
}

type attendanceRepository struct {
	col      *mongo.Collection
	students *mongo.Collection
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *mongo.Database) attendance.Repository {
	return &attendanceRepository{
		col:      db.Collection(attendanceCol),
		students: db.Collection(studentsCol),
	}
}

func (repo attendanceRepository) unpack(doc recordDoc) attendance.Record {
	return attendance.Record{
		ID:        doc.ID.Hex(),
		StudentID: string(doc.StudentID),
		Date:      doc.Date.UTC(),
		Subject:   doc.Subject,
		Status:    doc.Status,
		MarkedBy:  doc.MarkedBy,
		MarkedAt:  doc.MarkedAt.UTC(),
		Notes:     doc.Notes,
		Class:     doc.Class,
	}
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if _, ok := objectID(rec.StudentID); !ok {
		return attendance.Record{}, errors.Errorf("invalid student id %q", rec.StudentID)
	}

	doc := recordDoc{
		ID:        primitive.NewObjectID(),
		StudentID: hexRef(rec.StudentID),
		Date:      rec.Date.UTC(),
		Subject:   rec.Subject,
		Status:    rec.Status,
		MarkedBy:  rec.MarkedBy,
		MarkedAt:  rec.MarkedAt.UTC(),
		Notes:     rec.Notes,
		Class:     rec.Class,
	}
	if _, err := repo.col.InsertOne(ctx, doc); err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return repo.unpack(doc), nil
}

func (repo attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	oid, ok := objectID(rec.ID)
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}

	set := bson.M{
		"subject":  rec.Subject,
		"status":   rec.Status,
		"markedBy": rec.MarkedBy,
		"markedAt": rec.MarkedAt.UTC(),
		"notes":    rec.Notes,
	}
	var updated recordDoc
	err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	return repo.unpack(updated), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	q := bson.M{}
	if filter.StudentID != "" {
		q["studentId"] = refMatch(filter.StudentID)
	}
	date := bson.M{}
	if !filter.From.IsZero() {
		date["$gte"] = filter.From.UTC()
	}
	if !filter.To.IsZero() {
		date["$lte"] = filter.To.UTC()
	}
	if len(date) > 0 {
		q["date"] = date
	}

	cur, err := repo.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	docs, err := decodeAll[recordDoc](ctx, cur)
	if err != nil {
		return nil, errors.Wrap(err, "decoding attendance records")
	}

	recs := make([]attendance.Record, 0, len(docs))
	for _, doc := range docs {
		recs = append(recs, repo.unpack(doc))
	}
	return recs, nil
}

func (repo attendanceRepository) LegacyRecords(ctx context.Context, studentID string) ([]attendance.LegacyEntry, error) {
	return readLegacyAttendance(ctx, repo.students, studentID)
}
