package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrInternal              = errors.New("internal error")
	ErrNotFound              = errors.New("not found")
	ErrAlreadyExists         = errors.New("already exists")
	ErrUnauthorized          = errors.New("could not validate credentials")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailNotConfirmed     = errors.New("email not confirmed")
	ErrVerification          = errors.New("verification error")
	ErrUnprocessableEntity   = errors.New("invalid token for email verification")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrTokenExpired          = errors.New("token has expired")
	ErrInvalidScope          = errors.New("invalid scope for token")
)

// CredentialError carries the login failure reason shown to the client.
type CredentialError struct {
	Detail string
}

func (e *CredentialError) Error() string { return e.Detail }

func (e *CredentialError) Unwrap() error { return ErrInvalidCredentials }

// DetailError attaches the client-facing message to an error kind,
// e.g. ErrNotFound with "Contacts not found".
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Kind }

func WithDetail(kind error, detail string) error {
	return &DetailError{Kind: kind, Detail: detail}
}

func NewNotFound(detail string) error {
	return WithDetail(ErrNotFound, detail)
}

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func NewInvalidCredentials(detail string) error {
	return &CredentialError{Detail: detail}
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsUnauthorized reports token failures: bad signature, wrong scope,
// unknown subject or a rotated refresh token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidScope)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsEmailNotConfirmed(err error) bool {
	return errors.Is(err, ErrEmailNotConfirmed)
}

func IsVerification(err error) bool {
	return errors.Is(err, ErrVerification)
}

func IsUnprocessableEntity(err error) bool {
	return errors.Is(err, ErrUnprocessableEntity)
}

func IsInvalidOrExpiredToken(err error) bool {
	return errors.Is(err, ErrInvalidOrExpiredToken)
}

func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}
