package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidyalaya/vidyalaya/core/teacher"
)

type teacherDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	PasswordHash   []byte             `bson:"password,omitempty"`
	Phone          string             `bson:"phone"`
	TeacherID      string             `bson:"teacherId"`
	EmployeeID     string             `bson:"employeeId"`
	Classes        []string           `bson:"classes"`
	Subjects       []string           `bson:"subjects"`
	Specialization string             `bson:"specialization"`
	Experience     string             `bson:"experience"`
	Qualification  string             `bson:"qualification"`
	Salary         float64            `bson:"salary"`
	IsActive       bool               `bson:"isActive"`
	CreatedBy      string             `bson:"createdBy"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

type teacherRepository struct {
	col *mongo.Collection
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *mongo.Database) teacher.Repository {
	return &teacherRepository{col: db.Collection(teachersCol)}
}

func (repo teacherRepository) pack(tch teacher.Teacher) teacherDoc {
	oid, _ := objectID(tch.ID)
	doc := teacherDoc{
		ID:             oid,
		Name:           tch.Name,
		Email:          tch.Email,
		PasswordHash:   tch.PasswordHash,
		Phone:          tch.Phone,
		TeacherID:      tch.TeacherID,
		EmployeeID:     tch.EmployeeID,
		Classes:        tch.Classes,
		Subjects:       tch.Subjects,
		Specialization: tch.Specialization,
		Experience:     tch.Experience,
		Qualification:  tch.Qualification,
		Salary:         tch.Salary,
		IsActive:       tch.IsActive,
		CreatedBy:      tch.CreatedBy,
		CreatedAt:      tch.CreatedAt.UTC(),
		UpdatedAt:      tch.UpdatedAt.UTC(),
	}
	if doc.Classes == nil {
		doc.Classes = []string{}
	}
	if doc.Subjects == nil {
		doc.Subjects = []string{}
	}
	return doc
}

func (repo teacherRepository) unpack(doc teacherDoc) teacher.Teacher {
	return teacher.Teacher{
		ID:             doc.ID.Hex(),
		Name:           doc.Name,
		Email:          doc.Email,
		PasswordHash:   doc.PasswordHash,
		Phone:          doc.Phone,
		TeacherID:      doc.TeacherID,
		EmployeeID:     doc.EmployeeID,
		Classes:        doc.Classes,
		Subjects:       doc.Subjects,
		Specialization: doc.Specialization,
		Experience:     doc.Experience,
		Qualification:  doc.Qualification,
		Salary:         doc.Salary,
		IsActive:       doc.IsActive,
		CreatedBy:      doc.CreatedBy,
		CreatedAt:      doc.CreatedAt.UTC(),
		UpdatedAt:      doc.UpdatedAt.UTC(),
	}
}

func (repo teacherRepository) trapErr(err error, msg string) error {
	switch {
	case err == mongo.ErrNoDocuments:
		return teacher.ErrNotFound
	case indexViolated(err, idxTeacherEmail):
		return teacher.ErrEmailExists
	case indexViolated(err, idxTeacherID):
		return teacher.ErrTeacherIDExists
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	doc := repo.pack(tch)
	doc.ID = primitive.NewObjectID()
	if _, err := repo.col.InsertOne(ctx, doc); err != nil {
		return teacher.Teacher{}, repo.trapErr(err, "inserting teacher")
	}
	return repo.unpack(doc), nil
}

func (repo teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter) (teacher.Teacher, error) {
	var q bson.M
	switch {
	case filter.ID != "":
		oid, ok := objectID(filter.ID)
		if !ok {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		q = bson.M{"_id": oid}
	case filter.TeacherID != "":
		q = bson.M{"teacherId": filter.TeacherID}
	case filter.Email != "":
		q = bson.M{"email": filter.Email}
	default:
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	var doc teacherDoc
	if err := repo.col.FindOne(ctx, q).Decode(&doc); err != nil {
		return teacher.Teacher{}, repo.trapErr(err, "finding teacher")
	}
	return repo.unpack(doc), nil
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	q := bson.M{}
	if filter.IsActive != nil {
		q["isActive"] = *filter.IsActive
	}

	cur, err := repo.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "teacherId", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	docs, err := decodeAll[teacherDoc](ctx, cur)
	if err != nil {
		return nil, errors.Wrap(err, "decoding teachers")
	}

	tchs := make([]teacher.Teacher, 0, len(docs))
	for _, doc := range docs {
		tchs = append(tchs, repo.unpack(doc))
	}
	return tchs, nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	oid, ok := objectID(tch.ID)
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	doc := repo.pack(tch)
	set := bson.M{
		"name":           doc.Name,
		"email":          doc.Email,
		"password":       doc.PasswordHash,
		"phone":          doc.Phone,
		"teacherId":      doc.TeacherID,
		"employeeId":     doc.EmployeeID,
		"classes":        doc.Classes,
		"subjects":       doc.Subjects,
		"specialization": doc.Specialization,
		"experience":     doc.Experience,
		"qualification":  doc.Qualification,
		"salary":         doc.Salary,
		"isActive":       doc.IsActive,
		"updatedAt":      doc.UpdatedAt,
	}
	var updated teacherDoc
	err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		return teacher.Teacher{}, repo.trapErr(err, "updating teacher")
	}
	return repo.unpack(updated), nil
}
