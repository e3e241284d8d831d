package registration

import (
	"github.com/go-playground/validator/v10"

	"github.com/vidyalaya/vidyalaya/core"
)

// Registration is the self-registration form of students and teachers.
// Role specific fields are checked by the Service: a pre-provisioned student only needs its credentials.
type Registration struct {
	Role     string `json:"role" validate:"required,oneof=student teacher"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`

	// student
	Class         string          `json:"class"`
	RollNumber    string          `json:"rollNumber"`
	Subjects      core.StringList `json:"subjects"`
	ParentName    string          `json:"parentName"`
	ParentContact string          `json:"parentContact"`

	// teacher
	Classes        core.StringList `json:"classes"`
	Specialization string          `json:"specialization"`
	Experience     string          `json:"experience"`
	Phone          string          `json:"phone"`
	Qualification  string          `json:"qualification"`
}

func (r *Registration) Validate(validate *validator.Validate) error {
	r.Role = core.CleanString(r.Role, true /* lower */)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Name = core.CleanString(r.Name)
	r.Class = core.CleanString(r.Class)
	r.RollNumber = core.CleanString(r.RollNumber)
	r.Subjects = core.CleanList(r.Subjects)
	r.ParentName = core.CleanString(r.ParentName)
	r.ParentContact = core.CleanString(r.ParentContact)
	r.Classes = core.CleanList(r.Classes)
	r.Specialization = core.CleanString(r.Specialization)
	r.Experience = core.CleanString(r.Experience)
	r.Phone = core.CleanString(r.Phone)
	r.Qualification = core.CleanString(r.Qualification)
	return validate.Struct(r)
}

// NewStudent is the form an admin fills to pre-provision a student.
type NewStudent struct {
	Name          string          `json:"name" validate:"required,notblank"`
	Email         string          `json:"email" validate:"required,email"`
	Class         string          `json:"class" validate:"required,notblank"`
	RollNumber    string          `json:"rollNumber" validate:"required,notblank"`
	Subjects      core.StringList `json:"subjects" validate:"required,min=1"`
	ParentName    string          `json:"parentName" validate:"required,notblank"`
	ParentContact string          `json:"parentContact" validate:"required,notblank"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Class = core.CleanString(ns.Class)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.Subjects = core.CleanList(ns.Subjects)
	ns.ParentName = core.CleanString(ns.ParentName)
	ns.ParentContact = core.CleanString(ns.ParentContact)
	return validate.Struct(ns)
}

// NewTeacher is the form an admin fills to add a teacher.
// TeacherID defaults to the id derived from Phone, EmployeeID to TeacherID,
// Password to the configured default teacher password.
type NewTeacher struct {
	Name           string          `json:"name" validate:"required,notblank"`
	Email          string          `json:"email" validate:"required,email"`
	Phone          string          `json:"phone"`
	TeacherID      string          `json:"teacherId"`
	EmployeeID     string          `json:"employeeId"`
	Password       string          `json:"password"`
	Classes        core.StringList `json:"classes"`
	Subjects       core.StringList `json:"subjects"`
	Specialization string          `json:"specialization"`
	Experience     string          `json:"experience"`
	Qualification  string          `json:"qualification"`
	Salary         float64         `json:"salary" validate:"gte=0"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = core.CleanString(nt.Phone)
	nt.TeacherID = core.CleanString(nt.TeacherID)
	nt.EmployeeID = core.CleanString(nt.EmployeeID)
	nt.Classes = core.CleanList(nt.Classes)
	nt.Subjects = core.CleanList(nt.Subjects)
	nt.Specialization = core.CleanString(nt.Specialization)
	nt.Experience = core.CleanString(nt.Experience)
	nt.Qualification = core.CleanString(nt.Qualification)
	return validate.Struct(nt)
}
