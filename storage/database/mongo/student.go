package mongorepos

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidyalaya/vidyalaya/core/attendance"
	"github.com/vidyalaya/vidyalaya/core/student"
)

type studentDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	PasswordHash  []byte             `bson:"password,omitempty"`
	Class         string             `bson:"class"`
	RollNumber    string             `bson:"rollNumber"`
	StudentID     string             `bson:"studentId"`
	Subjects      []string           `bson:"subjects"`
	ParentName    string             `bson:"parentName"`
	ParentContact string             `bson:"parentContact"`
	CreatedBy     string             `bson:"createdBy"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

type studentRepository struct {
	col *mongo.Collection
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *mongo.Database) student.Repository {
	return &studentRepository{col: db.Collection(studentsCol)}
}

func (repo studentRepository) pack(std student.Student) studentDoc {
	oid, _ := objectID(std.ID)
	subjects := std.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	return studentDoc{
		ID:            oid,
		Name:          std.Name,
		Email:         std.Email,
		PasswordHash:  std.PasswordHash,
		Class:         std.Class,
		RollNumber:    std.RollNumber,
		StudentID:     std.StudentID,
		Subjects:      subjects,
		ParentName:    std.ParentName,
		ParentContact: std.ParentContact,
		CreatedBy:     std.CreatedBy,
		CreatedAt:     std.CreatedAt.UTC(),
		UpdatedAt:     std.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) unpack(doc studentDoc) student.Student {
	return student.Student{
		ID:            doc.ID.Hex(),
		Name:          doc.Name,
		Email:         doc.Email,
		PasswordHash:  doc.PasswordHash,
		Class:         doc.Class,
		RollNumber:    doc.RollNumber,
		StudentID:     doc.StudentID,
		Subjects:      doc.Subjects,
		ParentName:    doc.ParentName,
		ParentContact: doc.ParentContact,
		CreatedBy:     doc.CreatedBy,
		CreatedAt:     doc.CreatedAt.UTC(),
		UpdatedAt:     doc.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) trapErr(err error, msg string) error {
	switch {
	case err == mongo.ErrNoDocuments:
		return student.ErrNotFound
	case indexViolated(err, idxStudentEmail):
		return student.ErrEmailExists
	case indexViolated(err, idxStudentID):
		return student.ErrStudentIDExists
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	doc := repo.pack(std)
	doc.ID = primitive.NewObjectID()
	// new documents carry an empty legacy attendance list, like the ones the dashboard wrote
	insert := struct {
		Student    studentDoc `bson:",inline"`
		Attendance bson.A     `bson:"attendance"`
	}{Student: doc, Attendance: bson.A{}}
	if _, err := repo.col.InsertOne(ctx, insert); err != nil {
		return student.Student{}, repo.trapErr(err, "inserting student")
	}
	return repo.unpack(doc), nil
}

func (repo studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	var q bson.M
	switch {
	case filter.ID != "":
		oid, ok := objectID(filter.ID)
		if !ok {
			return student.Student{}, student.ErrNotFound
		}
		q = bson.M{"_id": oid}
	case filter.StudentID != "":
		q = bson.M{"studentId": filter.StudentID}
	case filter.Email != "":
		q = bson.M{"email": filter.Email}
	default:
		return student.Student{}, student.ErrNotFound
	}

	var doc studentDoc
	if err := repo.col.FindOne(ctx, q).Decode(&doc); err != nil {
		return student.Student{}, repo.trapErr(err, "finding student")
	}
	return repo.unpack(doc), nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	q := bson.M{}
	if filter.Class != "" {
		q["class"] = filter.Class
	}

	cur, err := repo.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "studentId", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	docs, err := decodeAll[studentDoc](ctx, cur)
	if err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}

	stds := make([]student.Student, 0, len(docs))
	for _, doc := range docs {
		stds = append(stds, repo.unpack(doc))
	}
	return stds, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	oid, ok := objectID(std.ID)
	if !ok {
		return student.Student{}, student.ErrNotFound
	}

	doc := repo.pack(std)
	set := bson.M{
		"name":          doc.Name,
		"email":         doc.Email,
		"password":      doc.PasswordHash,
		"class":         doc.Class,
		"rollNumber":    doc.RollNumber,
		"studentId":     doc.StudentID,
		"subjects":      doc.Subjects,
		"parentName":    doc.ParentName,
		"parentContact": doc.ParentContact,
		"updatedAt":     doc.UpdatedAt,
	}
	var updated studentDoc
	err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		return student.Student{}, repo.trapErr(err, "updating student")
	}
	return repo.unpack(updated), nil
}

// readLegacyAttendance decodes the attendance list embedded in a student document.
// Items are decoded loosely: dates may be BSON dates, strings or missing.
func readLegacyAttendance(ctx context.Context, col *mongo.Collection, studentID string) ([]attendance.LegacyEntry, error) {
	oid, ok := objectID(studentID)
	if !ok {
		return nil, nil
	}

	var doc struct {
		Attendance []bson.M `bson:"attendance"`
	}
	opts := options.FindOne().SetProjection(bson.M{"attendance": 1})
	if err := col.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading legacy attendance")
	}

	entries := make([]attendance.LegacyEntry, 0, len(doc.Attendance))
	for _, item := range doc.Attendance {
		entries = append(entries, attendance.LegacyEntry{
			Date:     legacyDate(item["date"]),
			Subject:  legacyString(item["subject"]),
			Status:   legacyString(item["status"]),
			MarkedBy: legacyString(item["markedBy"]),
			Notes:    legacyString(item["notes"]),
		})
	}
	return entries, nil
}

func legacyDate(v interface{}) string {
	switch d := v.(type) {
	case primitive.DateTime:
		return d.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return d.UTC().Format(time.RFC3339)
	}
	return legacyString(v)
}

func legacyString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case primitive.ObjectID:
		return s.Hex()
	}
	return fmt.Sprint(v)
}
