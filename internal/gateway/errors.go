package gateway

import "net/http"

// Kind classifies a gateway failure. Every upstream failure is remapped to
// one of these; callers never see a raw upstream error.
type Kind int

const (
	// InvalidInput means the caller sent a bad or missing field.
	InvalidInput Kind = iota
	// ServiceMisconfigured means the upstream credential is absent. Only
	// an operator can fix this.
	ServiceMisconfigured
	// ContentBlocked means the upstream refused the prompt or response on
	// policy grounds.
	ContentBlocked
	// NoResponse means the upstream returned nothing usable.
	NoResponse
	// UpstreamFailure covers everything else.
	UpstreamFailure
)

// Error is a classified gateway failure with a stable, user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus maps the failure kind to its wire status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case InvalidInput, ContentBlocked, NoResponse:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func invalidInput(msg string) *Error {
	return &Error{Kind: InvalidInput, Message: msg}
}

func misconfigured() *Error {
	return &Error{Kind: ServiceMisconfigured, Message: "AI service not configured"}
}

func blocked(msg string) *Error {
	return &Error{Kind: ContentBlocked, Message: msg}
}

func noResponse(msg string) *Error {
	return &Error{Kind: NoResponse, Message: msg}
}

func upstream(msg string) *Error {
	return &Error{Kind: UpstreamFailure, Message: msg}
}
