// Package validation holds the pure input checks run before every write.
// Failures come back as *domain.ValidationError keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest secret bcrypt accepts. The limit is in
// bytes, so a password of multi-byte characters hits it sooner.
const MaxPasswordBytes = 72

// emailPattern is the basic shape check applied to stored emails.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

var messages = map[string]string{
	"name.required":     "Name is required",
	"name.max":          "Name can not be more than 50 characters",
	"email.required":    "Please include a valid email",
	"email.emailshape":  "Please include a valid email",
	"password.required": "Password is required",
	"password.min":      "Please enter a password with 6 or more characters",
	"password.pwbytes":  "Password can not be more than 72 bytes",
	"title.required":    "Title is required",
	"title.min":         "Title is required",
	"title.max":         "Title can not be more than 100 characters",
	"description.max":   "Description can not be more than 500 characters",
	"status.taskstatus": "Status must be one of todo, in-progress, done",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return domain.TaskStatus(fl.Field().String()).Valid()
	})
	return v
}

type Registration struct {
	Name     string `json:"name"     validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,emailshape"`
	Password string `json:"password" validate:"min=6,pwbytes"`
}

type Login struct {
	Email    string `json:"email"    validate:"required,emailshape"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate fields are optional; empty means keep the stored value.
type ProfileUpdate struct {
	Name     string `json:"name"     validate:"omitempty,max=50"`
	Email    string `json:"email"    validate:"omitempty,emailshape"`
	Password string `json:"password" validate:"omitempty,min=6,pwbytes"`
}

type TaskCreate struct {
	Title       string     `json:"title"       validate:"required,max=100"`
	Description string     `json:"description" validate:"max=500"`
	Status      string     `json:"status"      validate:"omitempty,taskstatus"`
	DueDate     *time.Time `json:"dueDate"`
}

// TaskUpdate uses pointers: nil fields are not being changed.
type TaskUpdate struct {
	Title       *string    `json:"title"       validate:"omitnil,min=1,max=100"`
	Description *string    `json:"description" validate:"omitnil,max=500"`
	Status      *string    `json:"status"      validate:"omitnil,taskstatus"`
	DueDate     *time.Time `json:"dueDate"`
}

// Check validates one of the input structs above. It returns nil or a
// *domain.ValidationError with the first failure of every field.
func Check(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return domain.NewValidationError(fields)
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	return "Invalid " + fe.Field()
}

// ValidEmail reports whether s has the basic shape of an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
