package payment

import (
	"math"
	"time"

	"github.com/vidyalaya/vidyalaya/core/teacher"
)

const (
	WorkingDays           = 26
	LatesPerAbsence       = 3
	FestivalBonusRate     = .10
	MultiSubjectAllowance = 5000

	juniorBase = 15000
	middleBase = 22000 // more than 5 years of experience
	seniorBase = 30000 // more than 10 years of experience
)

// Breakdown details how a monthly salary is computed.
type Breakdown struct {
	BaseSalary          float64 `json:"baseSalary"`
	WorkingDays         int     `json:"workingDays"`
	AbsentDays          int     `json:"absentDays"`
	LateArrivals        int     `json:"lateArrivals"`
	EffectiveAbsentDays int     `json:"effectiveAbsentDays"`
	Deduction           float64 `json:"deduction"`
	FestivalBonus       float64 `json:"festivalBonus"`
	FinalSalary         float64 `json:"finalSalary"`
}

// BaseSalary is the salary of the teacher record, or the scale derived from experience
// and the number of subjects taught when none is set.
func BaseSalary(tch teacher.Teacher) float64 {
	if tch.Salary > 0 {
		return tch.Salary
	}

	base := float64(juniorBase)
	switch years := tch.ExperienceYears(); {
	case years > 10:
		base = seniorBase
	case years > 5:
		base = middleBase
	}
	if len(tch.Subjects) > 1 {
		base += MultiSubjectAllowance
	}
	return base
}

// ComputeSalary applies the absence deduction and the festival bonus (March and October) to base.
// Every LatesPerAbsence late arrivals count as one absent day.
func ComputeSalary(base float64, month time.Month, absentDays, lateArrivals int) Breakdown {
	if absentDays < 0 {
		absentDays = 0
	}
	if lateArrivals < 0 {
		lateArrivals = 0
	}

	b := Breakdown{
		BaseSalary:   base,
		WorkingDays:  WorkingDays,
		AbsentDays:   absentDays,
		LateArrivals: lateArrivals,
	}
	b.EffectiveAbsentDays = absentDays + lateArrivals/LatesPerAbsence
	if b.EffectiveAbsentDays > WorkingDays {
		b.EffectiveAbsentDays = WorkingDays
	}
	b.Deduction = math.Round(float64(b.EffectiveAbsentDays) / WorkingDays * base)
	if month == time.March || month == time.October {
		b.FestivalBonus = math.Round(base * FestivalBonusRate)
	}
	b.FinalSalary = base - b.Deduction + b.FestivalBonus
	return b
}
