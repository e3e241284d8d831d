package registration

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/teacher"
	"github.com/vidyalaya/vidyalaya/core/user"
)

var (
	errMissingStudentInfo = errors.New("missing required student information")
	errMissingTeacherInfo = errors.New("missing required teacher information")
	errInvalidRole        = errors.New("invalid role")

	NowFunc = time.Now // mockable
)

type Service struct {
	tx                     core.Transactor
	usrRepo                user.Repository
	stdRepo                student.Repository
	tchRepo                teacher.Repository
	mailSvc                core.EmailService
	defaultTeacherPassword string
}

func NewService(
	tx core.Transactor,
	usrRepo user.Repository,
	stdRepo student.Repository,
	tchRepo teacher.Repository,
	mailSvc core.EmailService,
	defaultTeacherPassword string,
) *Service {
	return &Service{
		tx:                     tx,
		usrRepo:                usrRepo,
		stdRepo:                stdRepo,
		tchRepo:                tchRepo,
		mailSvc:                mailSvc,
		defaultTeacherPassword: defaultTeacherPassword,
	}
}

// Register creates the User of a student or a teacher and the matching Student or Teacher record.
func (svc *Service) Register(ctx context.Context, r Registration) (user.User, error) {
	switch r.Role {
	case user.RoleStudent:
		return svc.RegisterStudent(ctx, r)
	case user.RoleTeacher:
		return svc.RegisterTeacher(ctx, r)
	default:
		return user.User{}, core.NewValidationError(errInvalidRole)
	}
}

func (svc *Service) checkUserEmail(ctx context.Context, email string) error {
	_, err := svc.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	switch {
	case err == nil:
		return user.ErrEmailExists
	case errors.Cause(err) == user.ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "checking user email")
	}
}

// RegisterStudent registers a student.
// A Student pre-provisioned by an admin with the same email is reused: only its password is set.
// Otherwise all the student fields are required and the student id is derived from class and roll number.
// All the writes happen in one transaction.
func (svc *Service) RegisterStudent(ctx context.Context, r Registration) (user.User, error) {
	email := core.CleanString(r.Email, true /* lower */)
	hash, err := user.HashPassword(r.Password)
	if err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}

	var usr user.User
	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := svc.checkUserEmail(ctx, email); err != nil {
			return err
		}

		now := NowFunc().UTC()
		std, err := svc.stdRepo.GetStudent(ctx, student.GetFilter{Email: email})
		switch {
		case err == nil:
			std.PasswordHash = hash
			std.UpdatedAt = now
			if std, err = svc.stdRepo.UpdateStudent(ctx, std); err != nil {
				return errors.Wrap(err, "updating pre-provisioned student")
			}
		case errors.Cause(err) == student.ErrNotFound:
			if r.Name == "" || r.Class == "" || r.RollNumber == "" || len(r.Subjects) == 0 ||
				r.ParentName == "" || r.ParentContact == "" {
				return core.NewValidationError(errMissingStudentInfo)
			}
			std = student.Student{
				Name:          r.Name,
				Email:         email,
				PasswordHash:  hash,
				Class:         r.Class,
				RollNumber:    r.RollNumber,
				StudentID:     student.BusinessID(r.Class, r.RollNumber),
				Subjects:      r.Subjects,
				ParentName:    r.ParentName,
				ParentContact: r.ParentContact,
				CreatedBy:     student.CreatedBySelf,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if std, err = svc.createStudent(ctx, std); err != nil {
				return err
			}
		default:
			return errors.Wrap(err, "getting student by email")
		}

		name := r.Name
		if name == "" {
			name = std.Name
		}
		usr, err = svc.usrRepo.CreateUser(ctx, user.User{
			Name:         name,
			Email:        email,
			Role:         user.RoleStudent,
			StudentID:    std.StudentID,
			IsActive:     true,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		return errors.Wrap(err, "creating user")
	})
	if err != nil {
		return user.User{}, err
	}

	svc.sendWelcome(usr, usr.StudentID)
	return usr, nil
}

// createStudent creates std unless its student id is already taken.
func (svc *Service) createStudent(ctx context.Context, std student.Student) (student.Student, error) {
	_, err := svc.stdRepo.GetStudent(ctx, student.GetFilter{StudentID: std.StudentID})
	switch {
	case err == nil:
		return student.Student{}, student.ErrStudentIDExists
	case errors.Cause(err) != student.ErrNotFound:
		return student.Student{}, errors.Wrap(err, "checking student id")
	}
	std, err = svc.stdRepo.CreateStudent(ctx, std)
	return std, errors.Wrap(err, "creating student")
}

// RegisterTeacher registers a teacher.
// A Teacher added by an admin with the same email is reused: only its password is set.
// Otherwise name, classes, specialization and experience are required; the teacher id is derived
// from the phone number and the employee id defaults to it.
func (svc *Service) RegisterTeacher(ctx context.Context, r Registration) (user.User, error) {
	email := core.CleanString(r.Email, true /* lower */)
	hash, err := user.HashPassword(r.Password)
	if err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}

	var usr user.User
	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := svc.checkUserEmail(ctx, email); err != nil {
			return err
		}

		now := NowFunc().UTC()
		tch, err := svc.tchRepo.GetTeacher(ctx, teacher.GetFilter{Email: email})
		switch {
		case err == nil:
			tch.PasswordHash = hash
			tch.UpdatedAt = now
			if tch, err = svc.tchRepo.UpdateTeacher(ctx, tch); err != nil {
				return errors.Wrap(err, "updating pre-provisioned teacher")
			}
		case errors.Cause(err) == teacher.ErrNotFound:
			if r.Name == "" || len(r.Classes) == 0 || r.Specialization == "" || r.Experience == "" {
				return core.NewValidationError(errMissingTeacherInfo)
			}
			teacherID := deriveTeacherID(r.Phone)
			tch = teacher.Teacher{
				Name:           r.Name,
				Email:          email,
				PasswordHash:   hash,
				Phone:          r.Phone,
				TeacherID:      teacherID,
				EmployeeID:     teacherID,
				Classes:        r.Classes,
				Subjects:       r.Subjects,
				Specialization: r.Specialization,
				Experience:     r.Experience,
				Qualification:  r.Qualification,
				IsActive:       true,
				CreatedBy:      teacher.CreatedBySelf,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if tch, err = svc.createTeacher(ctx, tch); err != nil {
				return err
			}
		default:
			return errors.Wrap(err, "getting teacher by email")
		}

		name := r.Name
		if name == "" {
			name = tch.Name
		}
		usr, err = svc.usrRepo.CreateUser(ctx, user.User{
			Name:         name,
			Email:        email,
			Role:         user.RoleTeacher,
			TeacherID:    tch.TeacherID,
			IsActive:     true,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		return errors.Wrap(err, "creating user")
	})
	if err != nil {
		return user.User{}, err
	}

	svc.sendWelcome(usr, usr.TeacherID)
	return usr, nil
}

// createTeacher creates tch unless its teacher id is already taken.
func (svc *Service) createTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	_, err := svc.tchRepo.GetTeacher(ctx, teacher.GetFilter{TeacherID: tch.TeacherID})
	switch {
	case err == nil:
		return teacher.Teacher{}, teacher.ErrTeacherIDExists
	case errors.Cause(err) != teacher.ErrNotFound:
		return teacher.Teacher{}, errors.Wrap(err, "checking teacher id")
	}
	tch, err = svc.tchRepo.CreateTeacher(ctx, tch)
	return tch, errors.Wrap(err, "creating teacher")
}

// deriveTeacherID returns "TEACH" + the last 5 digits of phone.
// Without any digit in phone, the 5 digits are drawn from a random uuid.
func deriveTeacherID(phone string) string {
	if id, ok := teacher.BusinessID(phone); ok {
		return id
	}
	u := uuid.New()
	return fmt.Sprintf("TEACH%05d", binary.BigEndian.Uint32(u[:4])%100000)
}

// AddStudent pre-provisions a student; the student sets a password when registering.
func (svc *Service) AddStudent(ctx context.Context, ns NewStudent) (student.Student, error) {
	var std student.Student
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := svc.stdRepo.GetStudent(ctx, student.GetFilter{Email: ns.Email})
		switch {
		case err == nil:
			return student.ErrEmailExists
		case errors.Cause(err) != student.ErrNotFound:
			return errors.Wrap(err, "checking student email")
		}

		now := NowFunc().UTC()
		std, err = svc.createStudent(ctx, student.Student{
			Name:          ns.Name,
			Email:         ns.Email,
			Class:         ns.Class,
			RollNumber:    ns.RollNumber,
			StudentID:     student.BusinessID(ns.Class, ns.RollNumber),
			Subjects:      ns.Subjects,
			ParentName:    ns.ParentName,
			ParentContact: ns.ParentContact,
			CreatedBy:     student.CreatedByAdmin,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		return err
	})
	return std, err
}

// AddTeacher adds a teacher on behalf of an admin.
func (svc *Service) AddTeacher(ctx context.Context, nt NewTeacher) (teacher.Teacher, error) {
	pwd := nt.Password
	if pwd == "" {
		pwd = svc.defaultTeacherPassword
	}
	hash, err := user.HashPassword(pwd)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "hashing password")
	}

	var tch teacher.Teacher
	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := svc.tchRepo.GetTeacher(ctx, teacher.GetFilter{Email: nt.Email})
		switch {
		case err == nil:
			return teacher.ErrEmailExists
		case errors.Cause(err) != teacher.ErrNotFound:
			return errors.Wrap(err, "checking teacher email")
		}

		teacherID := nt.TeacherID
		if teacherID == "" {
			teacherID = deriveTeacherID(nt.Phone)
		}
		employeeID := nt.EmployeeID
		if employeeID == "" {
			employeeID = teacherID
		}

		now := NowFunc().UTC()
		tch, err = svc.createTeacher(ctx, teacher.Teacher{
			Name:           nt.Name,
			Email:          nt.Email,
			PasswordHash:   hash,
			Phone:          nt.Phone,
			TeacherID:      teacherID,
			EmployeeID:     employeeID,
			Classes:        nt.Classes,
			Subjects:       nt.Subjects,
			Specialization: nt.Specialization,
			Experience:     nt.Experience,
			Qualification:  nt.Qualification,
			Salary:         nt.Salary,
			IsActive:       true,
			CreatedBy:      teacher.CreatedByAdmin,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		return err
	})
	return tch, err
}

func (svc *Service) sendWelcome(usr user.User, businessID string) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome!",
		TemplateName: "welcome",
		TemplateData: map[string]interface{}{
			"Name":       usr.Name,
			"Role":       usr.Role,
			"Email":      usr.Email,
			"BusinessID": businessID,
		},
	})
}
