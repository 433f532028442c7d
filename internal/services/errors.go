package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure; handlers map kinds to HTTP statuses.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindAuthentication
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	default:
		return "unexpected"
	}
}

// Error is the error type returned by every service operation.
// Message is safe to show to clients; Err carries the underlying cause.
type Error struct {
	Kind    ErrorKind
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

// Is matches sentinels by kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

var (
	ErrEmailTaken         = &Error{Kind: KindDuplicate, Message: "Email already registered"}
	ErrMissingCredentials = &Error{Kind: KindValidation, Message: "Please provide email and password"}
	ErrUserNotFound       = &Error{Kind: KindAuthentication, Message: "You might be new user.. register first."}
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Message: "Invalid credentials"}
	ErrInvalidToken       = &Error{Kind: KindAuthentication, Message: "Not authorized, token failed"}
	ErrInvalidResetToken  = &Error{Kind: KindValidation, Message: "Invalid or expired password reset token"}
	ErrProfileNotFound    = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrUsersNotFound      = &Error{Kind: KindNotFound, Message: "One or both users not found"}
	ErrAlreadyFollowing   = &Error{Kind: KindDuplicate, Message: "Already following this user"}
	ErrNotFollowing       = &Error{Kind: KindNotFound, Message: "Not following this user"}
	ErrSelfFollow         = &Error{Kind: KindValidation, Message: "You cannot follow yourself"}
	ErrActingForOtherUser = &Error{Kind: KindAuthentication, Message: "Not authorized to act for this user"}
	ErrEmptyPrompt        = &Error{Kind: KindValidation, Message: "Please provide a prompt"}
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrServiceDisabled    = errors.New("service not configured")
)

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func unexpected(message string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindUnexpected for foreign errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnexpected
}
