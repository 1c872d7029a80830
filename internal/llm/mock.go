package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateCall records one GenerateJSON invocation for assertions.
type GenerateCall struct {
	Instructions string
	Input        any
}

// MockClient is a scriptable generative client for tests and for the
// mock provider in local development. Scripted responses and errors are
// consumed in call order; every call is recorded. With no script, it
// answers with canned output so a mock-provider server works end to end.
type MockClient struct {
	GenerateResponses []json.RawMessage
	GenerateErrors    []error

	// Call tracking for assertions
	GenerateCalls []GenerateCall
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) GenerateJSON(ctx context.Context, instructions string, input any) (json.RawMessage, error) {
	i := len(c.GenerateCalls)
	c.GenerateCalls = append(c.GenerateCalls, GenerateCall{Instructions: instructions, Input: input})

	if i < len(c.GenerateErrors) && c.GenerateErrors[i] != nil {
		return nil, c.GenerateErrors[i]
	}
	if i < len(c.GenerateResponses) && c.GenerateResponses[i] != nil {
		return c.GenerateResponses[i], nil
	}
	if len(c.GenerateResponses) > 0 || len(c.GenerateErrors) > 0 {
		return nil, fmt.Errorf("mock: no scripted response for call %d", i+1)
	}

	if strings.Contains(instructions, "Enumerate") {
		return json.RawMessage(mockClaimSetJSON), nil
	}
	return json.RawMessage(mockReportJSON), nil
}

func (c *MockClient) Reset() {
	c.GenerateResponses = nil
	c.GenerateErrors = nil
	c.GenerateCalls = nil
}

const mockClaimSetJSON = `{
	"topic": "mock topic",
	"claims": [
		{"claim_id": "c1", "assertion": "The effect is large", "dimension": "effect_size", "polarity": "affirm", "value": "large", "qualifiers": ["older studies"], "confidence": 0.7},
		{"claim_id": "c2", "assertion": "The effect is negligible", "dimension": "effect_size", "polarity": "deny", "value": "negligible", "qualifiers": ["recent meta-analyses"], "confidence": 0.8},
		{"claim_id": "c3", "assertion": "The effect depends on subgroup", "dimension": "effect_size", "polarity": "mixed", "qualifiers": ["subgroup analyses"], "confidence": 0.6}
	]
}`

const mockReportJSON = `{
	"topic": "mock topic",
	"conflicts": [
		{"conflict_id": "k1", "dimension": "effect_size", "claim_a": "c1", "claim_b": "c2", "conflict_type": "numeric_incompatible", "explanation": "Large and negligible cannot both describe the same measured effect.", "severity": 0.8, "researcher_warning": "Check study era and method before citing either figure."}
	],
	"summary": {"conflict_count": 1, "top_dimensions": ["effect_size"], "safe_citation_note": "Qualify any citation with study era and population."}
}`
