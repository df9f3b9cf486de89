package models

import "errors"

var (
	// ErrNoInput is returned when a report submission carries no source at all.
	ErrNoInput = errors.New("no input provided")

	// ErrInsufficientInput is returned when every supplied source produced an
	// empty contribution, leaving nothing to classify or extract.
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrDuplicateIdentity is returned when a volunteer email is already registered.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrNotFound is returned when a lookup yields nothing.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable is returned when an external collaborator failed
	// or timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidCoordinate is returned when a latitude/longitude pair is outside
	// the valid range at record-creation time.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)
