package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/vidyalaya/vidyalaya/core"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "{0} must be a day of the week"
)

// InitValidators registers the schedule validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weekdayTag, func(fl validator.FieldLevel) bool {
		return dayIndex(fl.Field().String()) < len(weekdays)
	})
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)

	validate.RegisterStructValidation(slotStructValidation, NewSlot{})
}

// slotStructValidation checks that a slot ends after it starts.
func slotStructValidation(sl validator.StructLevel) {
	ns := sl.Current().Interface().(NewSlot)
	start, sok := parseClock(ns.StartTime)
	end, eok := parseClock(ns.EndTime)
	if sok && eok && !end.After(start) {
		sl.ReportError(ns.EndTime, "endTime", "EndTime", "gtfield", "startTime")
	}
}
