package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures so transports can pick a status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindForbidden
	KindNotFound
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a classified service failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrMissingCredentials is returned by Register when username or password is empty.
	ErrMissingCredentials = &Error{Kind: KindValidation, Message: "Username and password are required"}
	// ErrInvalidRole is returned by Register for roles other than user and admin.
	ErrInvalidRole = &Error{Kind: KindValidation, Message: "Role must be user or admin"}
	// ErrPasswordTooLong is returned by Register for passwords bcrypt cannot hash.
	ErrPasswordTooLong = &Error{Kind: KindValidation, Message: "Password must be at most 72 bytes"}
	// ErrDuplicateUsername is returned when attempting to register with an existing username.
	ErrDuplicateUsername = &Error{Kind: KindValidation, Message: "Username already exists"}
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: "Invalid credentials"}
	// ErrUserNotFound is returned when a token subject has no matching user.
	ErrUserNotFound = &Error{Kind: KindAuth, Message: "User not found"}
	// ErrNoValidItems is returned when none of the requested boots exist.
	ErrNoValidItems = &Error{Kind: KindValidation, Message: "No valid boots found"}
)

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func persistenceError(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf reports the Kind of err, or zero when err is not a service Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
