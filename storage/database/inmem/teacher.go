package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/vidyalaya/vidyalaya/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	defer repo.db.lockWrites(ctx)()

	for _, t := range repo.db.teachers {
		if t.TeacherID == tch.TeacherID {
			return teacher.Teacher{}, teacher.ErrTeacherIDExists
		}
		if t.Email == tch.Email {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
	}
	tch.ID = uuid.NewString()
	repo.db.teachers[tch.ID] = tch
	return tch, nil
}

func (repo *teacherRepository) GetTeacher(_ context.Context, filter teacher.GetFilter) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	switch {
	case filter.ID != "":
		if tch, ok := repo.db.teachers[filter.ID]; ok {
			return tch, nil
		}
	case filter.TeacherID != "":
		for _, tch := range repo.db.teachers {
			if tch.TeacherID == filter.TeacherID {
				return tch, nil
			}
		}
	case filter.Email != "":
		for _, tch := range repo.db.teachers {
			if tch.Email == filter.Email {
				return tch, nil
			}
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) QueryTeachers(_ context.Context, filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tchs := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		if filter.IsActive != nil && tch.IsActive != *filter.IsActive {
			continue
		}
		tchs = append(tchs, tch)
	}
	sort.Slice(tchs, func(i, j int) bool { return tchs[i].TeacherID < tchs[j].TeacherID })
	return tchs, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	defer repo.db.lockWrites(ctx)()

	if _, ok := repo.db.teachers[tch.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	repo.db.teachers[tch.ID] = tch
	return tch, nil
}
