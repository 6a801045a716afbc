package eligibility

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterBindingValidators installs the custom tags on gin's validator engine.
func RegisterBindingValidators(now func() time.Time) error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		err = RegisterValidators(v, now)
	})
	return err
}

func RegisterValidators(v *validator.Validate, now func() time.Time) error {
	v.RegisterTagNameFunc(jsonTagName)

	validators := map[string]validator.Func{
		"alphaspace": func(fl validator.FieldLevel) bool {
			return utils.IsAlphaSpace(fl.Field().String())
		},
		"kephone": func(fl validator.FieldLevel) bool {
			return utils.IsValidMSISDN(fl.Field().String())
		},
		"nationalid": func(fl validator.FieldLevel) bool {
			return utils.IsValidNationalID(fl.Field().String())
		},
		"adult": func(fl validator.FieldLevel) bool {
			return utils.IsAdult(fl.Field().String(), now())
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

var requiredMessages = map[string]string{
	"fullName":    "Please enter your full name",
	"phoneNumber": "Please enter your phone number",
	"nationalId":  "Please enter your National ID number",
	"gender":      "Please select your gender",
	"dateOfBirth": "Please select a valid date of birth",
	"county":      "Please enter your county of residence",
	"education":   "Please select your level of education",
	"employment":  "Please select your employment status",
	"income":      "Please select your monthly income range",
	"loanPurpose": "Please select the loan purpose",
	"loanAmount":  "Please select a loan amount",
}

var formatMessages = map[string]string{
	"fullName":    "Full Name should only contain letters and spaces",
	"county":      "County should only contain letters and spaces",
	"phoneNumber": consts.ErrorMSISDNNotValid.Message,
	"nationalId":  "National ID must be at least 8 digits",
	"loanAmount":  "Loan amount must be a positive number",
}

// FieldErrors converts binding errors into per-field messages. Errors that
// are not validation failures are reported under "body".
func FieldErrors(err error, now time.Time) *models.ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError("body", "Invalid request body")
	}

	out := &models.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := fe.Field()
		out.Fields[field] = fieldMessage(fe, now)
	}
	return out
}

func fieldMessage(fe validator.FieldError, now time.Time) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		return "This field is required"
	case "adult":
		return dateOfBirthMessage(fe.Value(), now)
	}
	if msg, ok := formatMessages[field]; ok {
		return msg
	}
	return "Invalid value"
}

func dateOfBirthMessage(value any, now time.Time) string {
	s, _ := value.(string)
	born, err := time.ParseInLocation(consts.DateOfBirthLayout, strings.TrimSpace(s), now.Location())
	if err != nil {
		return requiredMessages["dateOfBirth"]
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !born.Before(today) {
		return "Date of Birth must be before today"
	}
	return "You must be at least 18 years old"
}
