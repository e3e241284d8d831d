package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/teacher"
	"github.com/vidyalaya/vidyalaya/core/user"
	"github.com/vidyalaya/vidyalaya/storage"
	"github.com/vidyalaya/vidyalaya/testutil"
)

func TestDirectory_ResolveStudent(t *testing.T) {
	store := storage.OpenMemory()
	dir := directory.New(store.Users, store.Students, store.Teachers)
	ctx := context.Background()

	std := testutil.CreateStudent(t, store.Students, "Asha Verma", "asha@school.test", "10", "23")
	usr := testutil.CreateUser(t, store.Users, "Asha Verma", "asha@school.test", testutil.Password, user.RoleStudent, true, "STU-10-23")
	// older accounts reference the student primary key
	oldUsr := testutil.CreateUser(t, store.Users, "Asha Verma", "asha.old@school.test", testutil.Password, user.RoleStudent, true, std.ID)
	noStd := testutil.CreateUser(t, store.Users, "Admin", "admin@school.test", testutil.Password, user.RoleAdmin, true)

	tests := []struct {
		name    string
		ref     directory.Ref
		wantErr error
	}{
		{name: "any: primary key", ref: directory.AnyRef(std.ID)},
		{name: "any: business id", ref: directory.AnyRef("STU-10-23")},
		{name: "any: user", ref: directory.AnyRef(usr.ID)},
		{name: "any: user holding the primary key", ref: directory.AnyRef(oldUsr.ID)},
		{name: "primary key", ref: directory.PrimaryKeyRef(std.ID)},
		{name: "business id", ref: directory.BusinessIDRef("STU-10-23")},
		{name: "user", ref: directory.UserRef(usr.ID)},
		{name: "primary key given a business id", ref: directory.PrimaryKeyRef("STU-10-23"), wantErr: student.ErrNotFound},
		{name: "business id given a user", ref: directory.BusinessIDRef(usr.ID), wantErr: student.ErrNotFound},
		{name: "user without student", ref: directory.AnyRef(noStd.ID), wantErr: student.ErrNotFound},
		{name: "unknown", ref: directory.AnyRef("STU-1-1"), wantErr: student.ErrNotFound},
		{name: "empty", ref: directory.AnyRef(""), wantErr: student.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.ResolveStudent(ctx, tt.ref)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, std.ID, got.ID)
		})
	}

	assert.True(t, directory.OwnsStudent(usr, std))
	assert.True(t, directory.OwnsStudent(oldUsr, std))
	assert.False(t, directory.OwnsStudent(noStd, std))
}

func TestDirectory_ResolveTeacher(t *testing.T) {
	store := storage.OpenMemory()
	dir := directory.New(store.Users, store.Students, store.Teachers)
	ctx := context.Background()

	tch := testutil.CreateTeacher(t, store.Teachers, "Sunita Rao", "sunita@school.test", "TEACH43210", 30000, "Physics")
	usr := testutil.CreateUser(t, store.Users, "Sunita Rao", "sunita@school.test", testutil.Password, user.RoleTeacher, true, "TEACH43210")

	for _, ref := range []directory.Ref{
		directory.AnyRef(tch.ID),
		directory.AnyRef("TEACH43210"),
		directory.AnyRef(usr.ID),
		directory.BusinessIDRef("TEACH43210"),
		directory.UserRef(usr.ID),
	} {
		got, err := dir.ResolveTeacher(ctx, ref)
		require.NoError(t, err, "ref %+v", ref)
		assert.Equal(t, tch.ID, got.ID)
	}

	_, err := dir.ResolveTeacher(ctx, directory.AnyRef("TEACH00000"))
	assert.Equal(t, teacher.ErrNotFound, err)
	_, err = dir.ResolveTeacher(ctx, directory.PrimaryKeyRef("TEACH43210"))
	assert.Equal(t, teacher.ErrNotFound, err)
}

func TestDirectory_lists(t *testing.T) {
	store := storage.OpenMemory()
	dir := directory.New(store.Users, store.Students, store.Teachers)
	ctx := context.Background()

	testutil.CreateStudent(t, store.Students, "Asha Verma", "asha@school.test", "10", "23")
	testutil.CreateStudent(t, store.Students, "Ravi Kumar", "ravi@school.test", "9", "7")
	active := testutil.CreateTeacher(t, store.Teachers, "Sunita Rao", "sunita@school.test", "TEACH43210", 30000)
	inactive := testutil.CreateTeacher(t, store.Teachers, "Anil Sen", "anil@school.test", "TEACH11111", 30000)
	inactive.IsActive = false
	_, err := store.Teachers.UpdateTeacher(ctx, inactive)
	require.NoError(t, err)

	stds, err := dir.Students(ctx, "")
	require.NoError(t, err)
	assert.Len(t, stds, 2)
	stds, err = dir.Students(ctx, "9")
	require.NoError(t, err)
	require.Len(t, stds, 1)
	assert.Equal(t, "STU-9-7", stds[0].StudentID)

	tchs, err := dir.Teachers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, tchs, 2)
	tchs, err = dir.Teachers(ctx, true)
	require.NoError(t, err)
	require.Len(t, tchs, 1)
	assert.Equal(t, active.ID, tchs[0].ID)
}
