package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/vidyalaya/vidyalaya/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	defer repo.db.lockWrites(ctx)()

	for _, s := range repo.db.students {
		if s.StudentID == std.StudentID {
			return student.Student{}, student.ErrStudentIDExists
		}
		if s.Email == std.Email {
			return student.Student{}, student.ErrEmailExists
		}
	}
	std.ID = uuid.NewString()
	repo.db.students[std.ID] = std
	return std, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, filter student.GetFilter) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	switch {
	case filter.ID != "":
		if std, ok := repo.db.students[filter.ID]; ok {
			return std, nil
		}
	case filter.StudentID != "":
		for _, std := range repo.db.students {
			if std.StudentID == filter.StudentID {
				return std, nil
			}
		}
	case filter.Email != "":
		for _, std := range repo.db.students {
			if std.Email == filter.Email {
				return std, nil
			}
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stds := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		if filter.Class != "" && std.Class != filter.Class {
			continue
		}
		stds = append(stds, std)
	}
	sort.Slice(stds, func(i, j int) bool { return stds[i].StudentID < stds[j].StudentID })
	return stds, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	defer repo.db.lockWrites(ctx)()

	if _, ok := repo.db.students[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[std.ID] = std
	return std, nil
}
