package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNoteNotFound            = errors.New("note not found")
	ErrAccessDenied            = errors.New("access denied")
	ErrEditConflict            = errors.New("note changed concurrently")
	ErrDuplicateIdentity       = errors.New("username or email already registered")
	ErrInvalidCredentialFormat = errors.New("password does not meet the policy")
	ErrUnknownIdentity         = errors.New("unknown username or email")
	ErrInvalidCredential       = errors.New("invalid password")
	ErrNoSession               = errors.New("no active session")
	ErrValidation              = errors.New("validation failed")
)

// FormError rejects a submitted form. Message is safe to show to the user;
// Err is one of the sentinels above.
type FormError struct {
	Err     error
	Message string
}

func (e *FormError) Error() string {
	return e.Err.Error() + ": " + e.Message
}

func (e *FormError) Unwrap() error {
	return e.Err
}

// UserMessage returns the user-facing text of a FormError, or fallback.
func UserMessage(err error, fallback string) string {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return fallback
}

var validate = validator.New()

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return &FormError{Err: ErrValidation, Message: strings.Join(msgs, " ")}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required."
	case "email":
		return field + " must be a valid email address."
	case "alphanum":
		return field + " may only contain letters and digits."
	case "min":
		return field + " must be at least " + fe.Param() + " characters."
	case "max":
		return field + " must be at most " + fe.Param() + " characters."
	default:
		return field + " is invalid."
	}
}
