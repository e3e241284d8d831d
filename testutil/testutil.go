// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/registration"
	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/teacher"
	"github.com/vidyalaya/vidyalaya/core/user"
)

// Password satisfies the password policy.
const Password = "Kp#82mvZq!"

// NewConfig returns a configuration for tests, independent of the environment.
func NewConfig() *core.Config {
	return &core.Config{
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "Vidyalaya",
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Vidyalaya", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
			ShutdownTimeout:    time.Second,
			DisableReqLogs:     true,
		},
		Database: core.DatabaseConfig{Engine: core.EngineMemory},
		Session: core.SessionConfig{
			Backend: "memory",
			TTL:     time.Hour,
		},
		School: core.SchoolConfig{
			TimeZone:               "UTC",
			Location:               time.UTC,
			DefaultLocation:        "Main Building",
			MonthlyFee:             1500,
			DefaultTeacherPassword: "password123",
		},
	}
}

// NewValidator returns a validator with every application validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	registration.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	return validate, translator
}

// CreateUser saves a User; businessID is the student or teacher id it logs in as.
func CreateUser(t *testing.T, repo user.Repository, name, email, pwd, role string, isActive bool, businessID ...string) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(businessID) > 0 {
		switch role {
		case user.RoleStudent:
			usr.StudentID = businessID[0]
		case user.RoleTeacher:
			usr.TeacherID = businessID[0]
		}
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, name, email, class, rollNumber string) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		Name:          name,
		Email:         email,
		Class:         class,
		RollNumber:    rollNumber,
		StudentID:     student.BusinessID(class, rollNumber),
		Subjects:      []string{"Math", "Science"},
		ParentName:    "Parent of " + name,
		ParentContact: "9876543210",
		CreatedBy:     student.CreatedByAdmin,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateTeacher(t *testing.T, repo teacher.Repository, name, email, teacherID string, salary float64, subjects ...string) teacher.Teacher {
	t.Helper()

	now := time.Now().UTC()
	tch, err := repo.CreateTeacher(context.Background(), teacher.Teacher{
		Name:           name,
		Email:          email,
		TeacherID:      teacherID,
		EmployeeID:     teacherID,
		Classes:        []string{"10"},
		Subjects:       subjects,
		Specialization: "Science",
		Experience:     "3 years",
		Salary:         salary,
		IsActive:       true,
		CreatedBy:      teacher.CreatedByAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}
