package jirasoap

import (
	"errors"
	"fmt"
	"strings"
)

// Fault is a SOAP fault returned by the Jira service.
type Fault struct {
	Code   string
	String string
	Detail string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault (%s): %s", f.Code, f.String)
}

// Authentication reports whether the fault was raised for bad
// credentials or an expired session token.
func (f *Fault) Authentication() bool {
	return strings.Contains(f.String, "RemoteAuthenticationException") ||
		strings.Contains(f.Detail, "RemoteAuthenticationException")
}

// IsAuthFault reports whether err (or any error in its chain) is an
// authentication Fault.
func IsAuthFault(err error) bool {
	var fault *Fault
	return errors.As(err, &fault) && fault.Authentication()
}

// StatusError is returned for a non-2xx HTTP response that carries no
// SOAP fault.
type StatusError struct {
	StatusCode int
	Operation  string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(
		"unexpected status %d on %s: %s",
		e.StatusCode, e.Operation, e.Body,
	)
}
