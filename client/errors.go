package client

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmission matches every *SubmissionError under errors.Is.
	ErrSubmission = errors.New("client: submission failed")
	// ErrSuperseded is returned by a Submitter call that a newer call replaced.
	ErrSuperseded = errors.New("client: submission superseded")
)

// Kind classifies a failed submission.
type Kind int

const (
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork Kind = iota + 1
	// KindStatus: the service answered with a non-2xx status.
	KindStatus
	// KindDecode: a 2xx response body was not a valid outcome.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "http status"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// SubmissionError reports a failed round trip to the validation service.
type SubmissionError struct {
	Kind       Kind
	StatusCode int    // set for KindStatus
	Body       string // response body for KindStatus, truncated
	Err        error
}

func (e *SubmissionError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("client: validation service returned status %d: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("client: validation service returned status %d", e.StatusCode)
	default:
		return fmt.Sprintf("client: %s error: %v", e.Kind, e.Err)
	}
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }
