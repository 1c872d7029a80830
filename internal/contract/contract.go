// Package contract decides whether raw generative output can be
// trusted as a ClaimSet or ConflictReport. Everything a model returns
// is treated as untrusted input: it crosses into the typed domain only
// through the decoders here. Validation is structural, not closed-world;
// unknown extra fields are ignored.
package contract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crosscheck-ai/dissent/internal/domain"
)

// SchemaValidationError reports well-formed JSON that violates the
// claim or conflict contract.
type SchemaValidationError struct {
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return "schema validation failed: " + e.Reason
}

func violation(format string, args ...any) *SchemaValidationError {
	return &SchemaValidationError{Reason: fmt.Sprintf(format, args...)}
}

type claimJSON struct {
	ClaimID           string          `json:"claim_id"`
	Assertion         string          `json:"assertion"`
	Dimension         string          `json:"dimension"`
	Polarity          string          `json:"polarity"`
	Value             json.RawMessage `json:"value"`
	Qualifiers        []string        `json:"qualifiers"`
	DefinitionNotes   string          `json:"definition_notes"`
	EraHint           string          `json:"era_hint"`
	WhyPeopleRepeatIt string          `json:"why_people_repeat_it"`
	Confidence        *float64        `json:"confidence"`
}

type claimSetJSON struct {
	Topic  string      `json:"topic"`
	Claims []claimJSON `json:"claims"`
}

// DecodeClaimSet validates raw enumeration-stage output and returns the
// typed claim set. It is a pure function: the same input always yields
// the same decision and the input is never mutated.
func DecodeClaimSet(raw json.RawMessage) (*domain.ClaimSet, error) {
	var payload claimSetJSON
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, violation("claim set does not match the expected shape: %v", err)
	}
	if payload.Topic == "" {
		return nil, violation("claim set is missing topic")
	}
	if len(payload.Claims) < domain.MinClaimSetSize {
		return nil, violation("claim set has %d claims, need at least %d", len(payload.Claims), domain.MinClaimSetSize)
	}

	seen := make(map[string]bool, len(payload.Claims))
	claims := make([]domain.Claim, 0, len(payload.Claims))
	for i, c := range payload.Claims {
		if c.ClaimID == "" {
			return nil, violation("claim %d is missing claim_id", i)
		}
		if seen[c.ClaimID] {
			return nil, violation("duplicate claim_id %q", c.ClaimID)
		}
		seen[c.ClaimID] = true
		if c.Assertion == "" {
			return nil, violation("claim %q is missing assertion", c.ClaimID)
		}
		if c.Dimension == "" {
			return nil, violation("claim %q is missing dimension", c.ClaimID)
		}
		if !domain.ValidPolarity(c.Polarity) {
			return nil, violation("claim %q has invalid polarity %q", c.ClaimID, c.Polarity)
		}
		if c.Confidence == nil {
			return nil, violation("claim %q is missing confidence", c.ClaimID)
		}
		if *c.Confidence < 0 || *c.Confidence > 1 {
			return nil, violation("claim %q has confidence %v outside [0,1]", c.ClaimID, *c.Confidence)
		}

		claims = append(claims, domain.Claim{
			ClaimID:           c.ClaimID,
			Assertion:         c.Assertion,
			Dimension:         c.Dimension,
			Polarity:          domain.Polarity(c.Polarity),
			Value:             scalarText(c.Value),
			Qualifiers:        c.Qualifiers,
			DefinitionNotes:   c.DefinitionNotes,
			EraHint:           c.EraHint,
			WhyPeopleRepeatIt: c.WhyPeopleRepeatIt,
			Confidence:        *c.Confidence,
		})
	}

	return &domain.ClaimSet{Topic: payload.Topic, Claims: claims}, nil
}

type conflictJSON struct {
	ConflictID        string   `json:"conflict_id"`
	Dimension         string   `json:"dimension"`
	ClaimA            string   `json:"claim_a"`
	ClaimB            string   `json:"claim_b"`
	ConflictType      string   `json:"conflict_type"`
	Explanation       string   `json:"explanation"`
	Severity          *float64 `json:"severity"`
	ResearcherWarning string   `json:"researcher_warning"`
}

type summaryJSON struct {
	ConflictCount    *int     `json:"conflict_count"`
	TopDimensions    []string `json:"top_dimensions"`
	SafeCitationNote string   `json:"safe_citation_note"`
}

type conflictReportJSON struct {
	Topic     string          `json:"topic"`
	Conflicts *[]conflictJSON `json:"conflicts"`
	Summary   *summaryJSON    `json:"summary"`
}

// DecodeConflictReport validates raw audit-stage output and returns the
// typed report. An empty conflicts array is valid; a missing one is not.
// Claim references are not resolved here; the orchestrator checks them
// against the claim set it sent (see ValidateReferences).
func DecodeConflictReport(raw json.RawMessage) (*domain.ConflictReport, error) {
	var payload conflictReportJSON
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, violation("conflict report does not match the expected shape: %v", err)
	}
	if payload.Topic == "" {
		return nil, violation("conflict report is missing topic")
	}
	if payload.Conflicts == nil {
		return nil, violation("conflict report is missing conflicts array")
	}
	if payload.Summary == nil {
		return nil, violation("conflict report is missing summary")
	}
	if payload.Summary.ConflictCount == nil {
		return nil, violation("summary is missing conflict_count")
	}
	if *payload.Summary.ConflictCount < 0 {
		return nil, violation("summary conflict_count is negative")
	}

	seen := make(map[string]bool, len(*payload.Conflicts))
	conflicts := make([]domain.Conflict, 0, len(*payload.Conflicts))
	for i, c := range *payload.Conflicts {
		if c.ConflictID == "" {
			return nil, violation("conflict %d is missing conflict_id", i)
		}
		if seen[c.ConflictID] {
			return nil, violation("duplicate conflict_id %q", c.ConflictID)
		}
		seen[c.ConflictID] = true
		if c.ClaimA == "" || c.ClaimB == "" {
			return nil, violation("conflict %q is missing claim references", c.ConflictID)
		}
		if !domain.ValidConflictType(c.ConflictType) {
			return nil, violation("conflict %q has invalid conflict_type %q", c.ConflictID, c.ConflictType)
		}
		if c.Severity == nil {
			return nil, violation("conflict %q is missing severity", c.ConflictID)
		}
		if *c.Severity < 0 || *c.Severity > 1 {
			return nil, violation("conflict %q has severity %v outside [0,1]", c.ConflictID, *c.Severity)
		}

		conflicts = append(conflicts, domain.Conflict{
			ConflictID:        c.ConflictID,
			Dimension:         c.Dimension,
			ClaimA:            c.ClaimA,
			ClaimB:            c.ClaimB,
			ConflictType:      domain.ConflictType(c.ConflictType),
			Explanation:       c.Explanation,
			Severity:          *c.Severity,
			ResearcherWarning: c.ResearcherWarning,
		})
	}

	return &domain.ConflictReport{
		Topic:     payload.Topic,
		Conflicts: conflicts,
		Summary: domain.ReportSummary{
			ConflictCount:    *payload.Summary.ConflictCount,
			TopDimensions:    payload.Summary.TopDimensions,
			SafeCitationNote: payload.Summary.SafeCitationNote,
		},
	}, nil
}

// ValidateReferences checks that every conflict references only claims
// present in the given set. The audit stage only ever sees the truncated
// claim list, so a dangling reference means the model invented claims
// the caller will never be shown.
func ValidateReferences(conflicts []domain.Conflict, claims []domain.Claim) error {
	known := make(map[string]bool, len(claims))
	for _, c := range claims {
		known[c.ClaimID] = true
	}
	for _, c := range conflicts {
		if !known[c.ClaimA] {
			return violation("conflict %q references unknown claim %q", c.ConflictID, c.ClaimA)
		}
		if !known[c.ClaimB] {
			return violation("conflict %q references unknown claim %q", c.ConflictID, c.ClaimB)
		}
	}
	return nil
}

// scalarText renders an optional scalar value as display text. Models
// emit value as a string, a number, or a boolean depending on the claim;
// all are kept, anything else is dropped.
func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "null":
		return ""
	case trimmed == "true" || trimmed == "false":
		return trimmed
	case json.Valid(raw) && len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')):
		return trimmed
	}
	return ""
}
