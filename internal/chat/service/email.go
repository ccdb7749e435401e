package service

import (
	"context"
	"regexp"
)

// EmailVerdict is the outcome of an external email check.
type EmailVerdict int

const (
	// EmailAbstain means the checker has no opinion; fall back to the local
	// format check.
	EmailAbstain EmailVerdict = iota
	// EmailValid means the address was positively verified.
	EmailValid
	// EmailInvalid means the address was positively rejected.
	EmailInvalid
)

// EmailVerifier is an optional external verification capability. Only an
// explicit invalid overrides the local check.
type EmailVerifier interface {
	Verify(ctx context.Context, email string) EmailVerdict
}

// NoopEmailVerifier abstains on every address; the local format check
// decides alone.
type NoopEmailVerifier struct{}

// Verify always abstains.
func (NoopEmailVerifier) Verify(context.Context, string) EmailVerdict {
	return EmailAbstain
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// emailFormatOK is the local format check: one @, no whitespace, a dot in
// the domain. Deliverability is out of scope.
func emailFormatOK(email string) bool {
	return email != "" && emailRe.MatchString(email)
}
