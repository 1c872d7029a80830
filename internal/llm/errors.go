package llm

import "fmt"

// UpstreamError is a non-success response from the generative service.
// Status is 0 when the transport failed before any response arrived.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Body)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// ParseError is a success response whose text is not valid JSON.
type ParseError struct {
	RawText string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream response is not valid JSON: %s", snippet(e.RawText))
}

func snippet(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
