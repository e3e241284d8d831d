package mongorepos

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidyalaya/vidyalaya/core/schedule"
)

type slotDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Class       string             `bson:"class"`
	Day         string             `bson:"day"`
	Subject     string             `bson:"subject"`
	TeacherName string             `bson:"teacherName"`
	StartTime   string             `bson:"startTime"`
	EndTime     string             `bson:"endTime"`
	Location    string             `bson:"location"`
}

type scheduleRepository struct {
	col *mongo.Collection
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *mongo.Database) schedule.Repository {
	return &scheduleRepository{col: db.Collection(schedulesCol)}
}

func (repo scheduleRepository) unpack(doc slotDoc) schedule.Slot {
	return schedule.Slot{
		ID:          doc.ID.Hex(),
		Class:       doc.Class,
		Day:         doc.Day,
		Subject:     doc.Subject,
		TeacherName: doc.TeacherName,
		StartTime:   doc.StartTime,
		EndTime:     doc.EndTime,
		Location:    doc.Location,
	}
}

func (repo scheduleRepository) CreateSlot(ctx context.Context, slot schedule.Slot) (schedule.Slot, error) {
	doc := slotDoc{
		ID:          primitive.NewObjectID(),
		Class:       slot.Class,
		Day:         slot.Day,
		Subject:     slot.Subject,
		TeacherName: slot.TeacherName,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		Location:    slot.Location,
	}
	if _, err := repo.col.InsertOne(ctx, doc); err != nil {
		return schedule.Slot{}, errors.Wrap(err, "inserting schedule slot")
	}
	return repo.unpack(doc), nil
}

func (repo scheduleRepository) QuerySlots(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Slot, error) {
	q := bson.M{}
	if filter.Class != "" {
		q["class"] = filter.Class
	}
	if filter.Day != "" {
		q["day"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.Day) + "$", Options: "i"}
	}

	cur, err := repo.col.Find(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying schedule slots")
	}
	docs, err := decodeAll[slotDoc](ctx, cur)
	if err != nil {
		return nil, errors.Wrap(err, "decoding schedule slots")
	}

	slots := make([]schedule.Slot, 0, len(docs))
	for _, doc := range docs {
		slots = append(slots, repo.unpack(doc))
	}
	return slots, nil
}
