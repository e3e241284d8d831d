package registration_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/registration"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/teacher"
	"github.com/vidyalaya/vidyalaya/core/user"
	emailsvc "github.com/vidyalaya/vidyalaya/services/email"
	"github.com/vidyalaya/vidyalaya/storage"
	"github.com/vidyalaya/vidyalaya/testutil"
)

func newService(t *testing.T) (*registration.Service, *storage.Storage) {
	t.Helper()
	conf := testutil.NewConfig()
	store := storage.OpenMemory()
	emailsvc.ResetSentMessages()
	svc := registration.NewService(
		store.Tx, store.Users, store.Students, store.Teachers,
		emailsvc.NewConsoleServiceMock(conf), conf.School.DefaultTeacherPassword,
	)
	return svc, store
}

func studentForm() registration.Registration {
	return registration.Registration{
		Role:          user.RoleStudent,
		Email:         "asha@school.test",
		Password:      testutil.Password,
		Name:          "Asha Verma",
		Class:         "10",
		RollNumber:    "23",
		Subjects:      core.StringList{"Math", "Science"},
		ParentName:    "Ravi Verma",
		ParentContact: "9876543210",
	}
}

func teacherForm() registration.Registration {
	return registration.Registration{
		Role:           user.RoleTeacher,
		Email:          "sunita@school.test",
		Password:       testutil.Password,
		Name:           "Sunita Rao",
		Classes:        core.StringList{"9", "10"},
		Subjects:       core.StringList{"Physics"},
		Specialization: "Physics",
		Experience:     "7 years",
		Phone:          "+91 98765-43210",
	}
}

func TestService_RegisterStudent(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, studentForm())
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.Equal(t, "STU-10-23", usr.StudentID)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword(testutil.Password))

	std, err := store.Students.GetStudent(ctx, student.GetFilter{StudentID: "STU-10-23"})
	require.NoError(t, err)
	assert.Equal(t, "asha@school.test", std.Email)
	assert.Equal(t, student.CreatedBySelf, std.CreatedBy)
	assert.Equal(t, []string{"Math", "Science"}, std.Subjects)

	sent := emailsvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "asha@school.test", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "STU-10-23")

	tests := []struct {
		name    string
		form    func(r *registration.Registration)
		wantErr error
	}{
		{name: "email taken", form: func(r *registration.Registration) {}, wantErr: user.ErrEmailExists},
		{
			name:    "student id taken",
			form:    func(r *registration.Registration) { r.Email = "other@school.test" },
			wantErr: student.ErrStudentIDExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := studentForm()
			tt.form(&r)
			_, err := svc.Register(ctx, r)
			assert.Equal(t, tt.wantErr, err)
		})
	}

	// the failed transaction left nothing behind
	_, err = store.Users.GetUser(ctx, user.GetFilter{Email: "other@school.test"})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_RegisterStudent_missingInfo(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	r := studentForm()
	r.ParentContact = ""
	_, err := svc.Register(ctx, r)
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "missing required student information", vErr.Error())

	_, err = store.Users.GetUser(ctx, user.GetFilter{Email: r.Email})
	assert.Equal(t, user.ErrNotFound, err)
	assert.Empty(t, emailsvc.Sent())
}

func TestService_RegisterStudent_preProvisioned(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	std, err := svc.AddStudent(ctx, registration.NewStudent{
		Name:          "Asha Verma",
		Email:         "asha@school.test",
		Class:         "10",
		RollNumber:    "23",
		Subjects:      core.StringList{"Math"},
		ParentName:    "Ravi Verma",
		ParentContact: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "STU-10-23", std.StudentID)
	assert.Equal(t, student.CreatedByAdmin, std.CreatedBy)
	assert.Empty(t, std.PasswordHash)

	// only the credentials are needed
	usr, err := svc.Register(ctx, registration.Registration{
		Role:     user.RoleStudent,
		Email:    "Asha@School.test",
		Password: testutil.Password,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", usr.Name)
	assert.Equal(t, "STU-10-23", usr.StudentID)

	reused, err := store.Students.GetStudent(ctx, student.GetFilter{ID: std.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, reused.PasswordHash)
	stds, err := store.Students.QueryStudents(ctx, student.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, stds, 1)

	_, err = svc.AddStudent(ctx, registration.NewStudent{
		Name: "Asha Verma", Email: "asha@school.test", Class: "9", RollNumber: "1",
		Subjects: core.StringList{"Math"}, ParentName: "Ravi", ParentContact: "1",
	})
	assert.Equal(t, student.ErrEmailExists, err)
}

func TestService_RegisterTeacher(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, teacherForm())
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, usr.Role)
	assert.Equal(t, "TEACH43210", usr.TeacherID)

	tch, err := store.Teachers.GetTeacher(ctx, teacher.GetFilter{TeacherID: "TEACH43210"})
	require.NoError(t, err)
	assert.Equal(t, "TEACH43210", tch.EmployeeID)
	assert.Equal(t, teacher.CreatedBySelf, tch.CreatedBy)
	assert.True(t, tch.IsActive)
	assert.Equal(t, 7, tch.ExperienceYears())

	// another phone ending with the same digits
	r := teacherForm()
	r.Email = "vikram@school.test"
	r.Phone = "043210"
	_, err = svc.Register(ctx, r)
	assert.Equal(t, teacher.ErrTeacherIDExists, err)

	r = teacherForm()
	r.Email = "anil@school.test"
	r.Specialization = ""
	_, err = svc.Register(ctx, r)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "missing required teacher information", vErr.Error())

	_, err = svc.Register(ctx, registration.Registration{Role: "parent", Email: "p@school.test", Password: testutil.Password})
	_, ok = err.(*core.ValidationError)
	assert.True(t, ok, "got %T", err)
}

func TestService_AddTeacher(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	tch, err := svc.AddTeacher(ctx, registration.NewTeacher{
		Name:       "Sunita Rao",
		Email:      "sunita@school.test",
		Phone:      "12",
		EmployeeID: "EMP-7",
		Salary:     28000,
	})
	require.NoError(t, err)
	assert.Equal(t, "TEACH12", tch.TeacherID)
	assert.Equal(t, "EMP-7", tch.EmployeeID)
	assert.Equal(t, teacher.CreatedByAdmin, tch.CreatedBy)
	stored := user.User{PasswordHash: tch.PasswordHash}
	assert.NoError(t, stored.CheckPassword("password123"))

	noPhone, err := svc.AddTeacher(ctx, registration.NewTeacher{Name: "Anil", Email: "anil@school.test"})
	require.NoError(t, err)
	assert.Regexp(t, `^TEACH\d{5}$`, noPhone.TeacherID)

	_, err = svc.AddTeacher(ctx, registration.NewTeacher{Name: "Sunita", Email: "sunita@school.test"})
	assert.Equal(t, teacher.ErrEmailExists, err)

	// the added teacher sets its own password when registering
	usr, err := svc.Register(ctx, registration.Registration{
		Role:     user.RoleTeacher,
		Email:    "sunita@school.test",
		Password: testutil.Password,
	})
	require.NoError(t, err)
	assert.Equal(t, "TEACH12", usr.TeacherID)
	assert.Equal(t, "Sunita Rao", usr.Name)

	tch, err = store.Teachers.GetTeacher(ctx, teacher.GetFilter{ID: tch.ID})
	require.NoError(t, err)
	stored = user.User{PasswordHash: tch.PasswordHash}
	assert.NoError(t, stored.CheckPassword(testutil.Password))
}

func TestRegistration_Validate(t *testing.T) {
	validate, translator := testutil.NewValidator()

	tests := []struct {
		name string
		pwd  string
		want string
	}{
		{name: "valid", pwd: testutil.Password},
		{name: "too short", pwd: "Ab1!", want: "password must contain at least 8 characters"},
		{name: "whitespace", pwd: "Abcd 123!", want: "password must not contain whitespace"},
		{name: "numeric", pwd: "12345678", want: "password cannot be entirely numeric"},
		{name: "not complex", pwd: "abcdefgh1", want: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "similar to name", pwd: "Asha.Verma1!", want: "password cannot be similar to user attributes"},
		{name: "common", pwd: "P@ssw0rd", want: "password is too common"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := studentForm()
			r.Role = " Student "
			r.Password = tt.pwd
			err := r.Validate(validate)
			if tt.want == "" {
				assert.NoError(t, err)
				assert.Equal(t, user.RoleStudent, r.Role)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "got %T", err)
			require.Len(t, vErrs, 1)
			assert.Equal(t, "password", vErrs[0].Field())
			assert.Equal(t, tt.want, vErrs[0].Translate(translator))
		})
	}
}
