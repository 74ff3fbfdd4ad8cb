package core

import (
	"errors"
	"fmt"
)

type AuthErrorKind int

const (
	// AuthNoSession means the browser session carries no OAuth token
	AuthNoSession AuthErrorKind = iota
	// AuthExpired means the token expired and could not be refreshed
	AuthExpired
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthNoSession:
		return "no_session"
	case AuthExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("auth error (%s)", e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

type GenerationErrorKind int

const (
	// GenerationMalformedResponse means the backend text is not a JSON array
	GenerationMalformedResponse GenerationErrorKind = iota
	// GenerationBackendFailure means the backend call itself failed
	GenerationBackendFailure
)

func (k GenerationErrorKind) String() string {
	switch k {
	case GenerationMalformedResponse:
		return "malformed_response"
	case GenerationBackendFailure:
		return "backend_failure"
	default:
		return "unknown"
	}
}

type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ResolutionError describes a failed catalog lookup. The resolver logs it and reports no match.
type ResolutionError struct {
	Song   string
	Artist string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %q by %q: %v", e.Song, e.Artist, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

type WriteErrorKind int

const (
	// WriteEmptySelection means no resolvable track was submitted
	WriteEmptySelection WriteErrorKind = iota
	// WritePartialFailure means the playlist was created but tracks were not added
	WritePartialFailure
	// WriteDuplicateSubmission means the same playlist was already submitted
	WriteDuplicateSubmission
)

func (k WriteErrorKind) String() string {
	switch k {
	case WriteEmptySelection:
		return "empty_selection"
	case WritePartialFailure:
		return "partial_failure"
	case WriteDuplicateSubmission:
		return "duplicate_submission"
	default:
		return "unknown"
	}
}

type WriteError struct {
	Kind WriteErrorKind
	// PlaylistID is set for partial failures whose playlist was left behind.
	PlaylistID string
	Err        error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("write error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("write error (%s)", e.Kind)
}

func (e *WriteError) Unwrap() error { return e.Err }

// PreferenceError reports an invalid or missing preference form field.
type PreferenceError struct {
	Field  string
	Reason string
}

func (e *PreferenceError) Error() string {
	return fmt.Sprintf("invalid preference %s: %s", e.Field, e.Reason)
}

// IsAuthError reports whether err is an AuthError of the given kind.
func IsAuthError(err error, kind AuthErrorKind) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == kind
}

// IsWriteError reports whether err is a WriteError of the given kind.
func IsWriteError(err error, kind WriteErrorKind) bool {
	var writeErr *WriteError
	return errors.As(err, &writeErr) && writeErr.Kind == kind
}

// IsGenerationError reports whether err is a GenerationError of the given kind.
func IsGenerationError(err error, kind GenerationErrorKind) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr) && genErr.Kind == kind
}
