package ai

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential   = errors.New("OpenAI API key is missing")
	ErrInvalidInput        = errors.New("invalid input text")
	ErrDecoding            = errors.New("decode response")
	ErrResponseMissingTags = errors.New(`OpenAI API response is missing a "tags" property`)
	ErrCompletionRequest   = errors.New("failed to get tags from OpenAI API")
)

// RemoteError is an error payload returned by the API.
type RemoteError struct {
	StatusCode int
	Type       string
	Message    string
	Param      any
	Code       any
}

func (e *RemoteError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

// Kind classifies an error returned by the client.
type Kind int

const (
	KindNone Kind = iota
	KindMissingCredential
	KindInvalidInput
	KindDecoding
	KindResponseMissingTags
	KindCompletionRequest
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMissingCredential:
		return "missing_credential"
	case KindInvalidInput:
		return "invalid_input"
	case KindDecoding:
		return "decoding_failure"
	case KindResponseMissingTags:
		return "response_missing_tags"
	case KindCompletionRequest:
		return "completion_request_failed"
	default:
		return "unknown"
	}
}

// KindOf maps err to its Kind. ErrResponseMissingTags wins over
// ErrCompletionRequest since the former wraps a remote error.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrResponseMissingTags):
		return KindResponseMissingTags
	case errors.Is(err, ErrDecoding):
		return KindDecoding
	case errors.Is(err, ErrCompletionRequest):
		return KindCompletionRequest
	default:
		return KindUnknown
	}
}
