package registration

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/vidyalaya/vidyalaya/core/user"
)

// InitValidators registers the password policy on the registration form.
// user.InitValidators must be called first for the policy translations.
func InitValidators(validate *validator.Validate, _ ut.Translator) {
	validate.RegisterStructValidation(registrationStructValidation, Registration{})
}

func registrationStructValidation(sl validator.StructLevel) {
	r := sl.Current().Interface().(Registration)
	if r.Password == "" {
		return
	}
	user.ValidatePassword(sl, "password", r.Password, r.Name, r.Email)
}
