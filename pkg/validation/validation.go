package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 6
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxBioLength      = 500
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// ValidateEmail checks the loose something@domain.tld shape.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength
}

// ValidateUsername checks length and the [A-Za-z0-9_] alphabet.
func ValidateUsername(username string) bool {
	n := len(username)
	return n >= MinUsernameLength && n <= MaxUsernameLength && usernamePattern.MatchString(username)
}

// ValidateRequired checks that value is not blank.
func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Login is the sign-in form.
type Login struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up form.
type Registration struct {
	Username        string `json:"username" validate:"required,username"`
	FirstName       string `json:"first_name" validate:"required,notblank"`
	LastName        string `json:"last_name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email_shape"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ProfileUpdate holds the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"first_name" validate:"omitempty,notblank"`
	LastName  *string `json:"last_name" validate:"omitempty,notblank"`
	Email     *string `json:"email" validate:"omitempty,email_shape"`
	Job       *string `json:"job" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
}

// Post is a question or answer body.
type Post struct {
	Content string `json:"content" validate:"required,notblank"`
}

// Error maps form fields to the first problem found with each.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return strings.Join(parts, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return ValidateRequired(fl.Field().String())
		})
		_ = validate.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
			return ValidateEmail(fl.Field().String())
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String())
		})
	})
	return validate
}

// Struct validates one of the form types. It returns *Error for invalid input.
func Struct(form interface{}) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email_shape":
		return "must be a valid email address"
	case "username":
		return fmt.Sprintf("must be %d-%d characters of letters, digits or underscores", MinUsernameLength, MaxUsernameLength)
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "does not match"
	default:
		return "is invalid"
	}
}
