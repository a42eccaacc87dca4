package shared

import "errors"

var (
	// ErrMissingSecret indicates the signing secret is not configured.
	ErrMissingSecret = errors.New("session: signing secret missing")
	// ErrMalformed indicates the credential could not be decoded.
	ErrMalformed = errors.New("session: malformed credential")
	// ErrSignatureInvalid indicates the credential signature does not match.
	ErrSignatureInvalid = errors.New("session: signature invalid")
	// ErrExpired indicates the credential is past its expiry.
	ErrExpired = errors.New("session: credential expired")
)
