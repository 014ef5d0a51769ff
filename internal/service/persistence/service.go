// Package persistence is the hash service's client for the counter
// ("persistence") service.
package persistence

import (
	"context"
	"errors"
	"fmt"
)

// Service errors
var (
	ErrUnavailable    = errors.New("persistence store unavailable")
	ErrUpstreamStatus = errors.New("persistence store returned an error status")
	ErrMalformed      = errors.New("persistence store returned a malformed response")
)

// UpstreamErrorKind classifies counter service failures.
type UpstreamErrorKind string

const (
	UpstreamErrorKindUnavailable UpstreamErrorKind = "unavailable"
	UpstreamErrorKindStatus      UpstreamErrorKind = "status"
	UpstreamErrorKindMalformed   UpstreamErrorKind = "malformed"
)

// UpstreamError carries what the hash service needs to describe a failed fetch.
type UpstreamError struct {
	Kind UpstreamErrorKind
	// Status and Reason are set for UpstreamErrorKindStatus.
	Status int
	Reason string
	// Timeout is set when an unavailable error was caused by the request deadline.
	Timeout bool
	cause   error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return "persistence upstream error"
	}
	switch e.Kind {
	case UpstreamErrorKindStatus:
		return fmt.Sprintf("persistence upstream error (kind=%s status=%d reason=%q)", e.Kind, e.Status, e.Reason)
	default:
		if e.cause == nil {
			return fmt.Sprintf("persistence upstream error (kind=%s)", e.Kind)
		}
		return fmt.Sprintf("persistence upstream error (kind=%s): %v", e.Kind, e.cause)
	}
}

// Unwrap exposes both the kind sentinel and the transport or decode cause.
func (e *UpstreamError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := []error{e.sentinel()}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Cause returns the transport or decode error behind the failure, if any.
func (e *UpstreamError) Cause() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func (e *UpstreamError) sentinel() error {
	switch e.Kind {
	case UpstreamErrorKindUnavailable:
		return ErrUnavailable
	case UpstreamErrorKindStatus:
		return ErrUpstreamStatus
	default:
		return ErrMalformed
	}
}

// Service fetches the next counter value.
type Service interface {
	Next(ctx context.Context) (uint64, error)
}
