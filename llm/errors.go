package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind classifies generation failures so each maps to a distinct
// user-facing message.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNoCandidates
	KindSafetyBlocked
	KindRecitationBlocked
	KindTokenLimit
	KindUnrecognizedStop
	KindBadCredential
	KindQuotaExceeded
	KindNetwork
)

// GenerationError is a typed generation/refinement failure. Reason carries the
// provider's finish reason when one was present.
type GenerationError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.kindString(), e.Err)
	}
	if e.Reason != "" {
		return fmt.Sprintf("generation failed (%s): finish reason %q", e.kindString(), e.Reason)
	}
	return fmt.Sprintf("generation failed (%s)", e.kindString())
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) kindString() string {
	switch e.Kind {
	case KindNoCandidates:
		return "no candidates"
	case KindSafetyBlocked:
		return "safety blocked"
	case KindRecitationBlocked:
		return "recitation blocked"
	case KindTokenLimit:
		return "token limit"
	case KindUnrecognizedStop:
		return "unrecognized stop"
	case KindBadCredential:
		return "bad credential"
	case KindQuotaExceeded:
		return "quota exceeded"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// UserMessage returns the message shown to the user for this failure.
func (e *GenerationError) UserMessage() string {
	switch e.Kind {
	case KindNoCandidates:
		return "The model returned no response. Try rephrasing your request."
	case KindSafetyBlocked:
		return "The response was blocked by the provider's safety filter. Try rephrasing your request."
	case KindRecitationBlocked:
		return "The response was blocked because it matched copyrighted material. Try a more specific request."
	case KindTokenLimit:
		return "The response was cut off at the model's length limit. Try asking for a simpler app."
	case KindUnrecognizedStop:
		return fmt.Sprintf("The model stopped for an unexpected reason (%s). Please try again.", e.Reason)
	case KindBadCredential:
		return "The API key was rejected. Check your credentials in the configuration."
	case KindQuotaExceeded:
		return "API quota exceeded. Wait a while or check your plan and billing."
	case KindNetwork:
		return "Could not reach the generation service. Check your connection and try again."
	default:
		return "Generation failed unexpectedly. Please try again."
	}
}

// Classify maps an arbitrary error from a provider call to a GenerationError.
// Structured information (HTTP status on API errors, context/network error
// types) wins; substring matching on the message text is the best-effort
// fallback for untyped errors.
func Classify(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return &GenerationError{Kind: KindBadCredential, Err: err}
		case 429:
			return &GenerationError{Kind: KindQuotaExceeded, Err: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Kind: KindNetwork, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid authentication"):
		return &GenerationError{Kind: KindBadCredential, Err: err}
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "billing"):
		return &GenerationError{Kind: KindQuotaExceeded, Err: err}
	case strings.Contains(msg, "recitation"):
		return &GenerationError{Kind: KindRecitationBlocked, Err: err}
	case strings.Contains(msg, "safety") || strings.Contains(msg, "content filter") || strings.Contains(msg, "content_filter"):
		return &GenerationError{Kind: KindSafetyBlocked, Err: err}
	case strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") || strings.Contains(msg, "no such host") || strings.Contains(msg, "network"):
		return &GenerationError{Kind: KindNetwork, Err: err}
	default:
		return &GenerationError{Kind: KindUnknown, Err: err}
	}
}

// classifyFinishReason maps a provider finish reason on an otherwise
// successful response. A normal stop returns nil.
func classifyFinishReason(reason openai.FinishReason) *GenerationError {
	switch reason {
	case openai.FinishReasonStop, openai.FinishReasonNull, "":
		return nil
	case openai.FinishReasonLength:
		return &GenerationError{Kind: KindTokenLimit, Reason: string(reason)}
	case openai.FinishReasonContentFilter:
		return &GenerationError{Kind: KindSafetyBlocked, Reason: string(reason)}
	default:
		if strings.Contains(strings.ToLower(string(reason)), "recitation") {
			return &GenerationError{Kind: KindRecitationBlocked, Reason: string(reason)}
		}
		return &GenerationError{Kind: KindUnrecognizedStop, Reason: string(reason)}
	}
}
