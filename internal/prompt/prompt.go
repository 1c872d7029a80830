// Package prompt builds the instruction strings for the two pipeline
// stages. The policy is data, not behavior: construction is pure and
// deterministic, so identical params always produce identical strings.
package prompt

import (
	"fmt"

	"github.com/crosscheck-ai/dissent/internal/domain"
)

const claimEnumerationPrompt = `You are auditing what a language model has absorbed about a topic. Enumerate the conflicting factual claims about the topic as they exist in the literature and in popular summaries.%s%s

Rules:
- Do NOT reconcile, average, or harmonize disagreements. Each side of a disagreement is its own claim.
- Every claim must be atomic and testable: one dimension, one asserted value or direction.
- Split claims that differ by paradigm, definition, scope, era, or measurement method into separate claims, and record the difference in qualifiers or definition_notes.
- Set polarity to "affirm", "deny", or "mixed" for the claim's stance on its dimension.
- Set confidence 0.0-1.0 for how firmly the claim is represented in what you learned, not for whether it is true.
- Return at most %d claims.

%s

Respond ONLY with JSON, no markdown fences:
{
  "topic": "the topic",
  "claims": [
    {
      "claim_id": "c1",
      "assertion": "one atomic testable statement",
      "dimension": "axis of comparison",
      "polarity": "affirm",
      "value": "optional concrete value or label",
      "qualifiers": ["population", "era", "method"],
      "definition_notes": "optional",
      "era_hint": "optional",
      "why_people_repeat_it": "optional",
      "confidence": 0.7
    }
  ]
}`

const conflictAuditPrompt = `You are auditing a set of claims for incompatibility. Find pairs of claims that cannot both be true under identical scope and definition. Reference claims only by their claim_id.

Rules:
- A conflict is exactly two claims; never merge several disagreements into one conflict.
- Classify conflict_type as "numeric_incompatible", "polarity_incompatible", "scope_mismatch", "definition_shift", "measurement_paradigm_shift", or "other". When the incompatibility comes from shifted scope or shifted definitions rather than raw disagreement, use the scope or definition types.
- Prioritize the conflicts most likely to mislead a researcher who cites one side without qualifiers.
- Set severity 0.0-1.0 and write a researcher_warning for someone about to cite either claim.
- If no claims conflict, return an empty conflicts array with conflict_count 0.

%s

Respond ONLY with JSON, no markdown fences:
{
  "topic": "the topic",
  "conflicts": [
    {
      "conflict_id": "k1",
      "dimension": "axis of the conflict",
      "claim_a": "c1",
      "claim_b": "c2",
      "conflict_type": "scope_mismatch",
      "explanation": "why both cannot hold under one scope and definition",
      "severity": 0.8,
      "researcher_warning": "what a citer must check first"
    }
  ],
  "summary": {
    "conflict_count": 1,
    "top_dimensions": ["axis"],
    "safe_citation_note": "how to cite this topic without being misled"
  }
}`

const strictNoSourcesDirective = `CRITICAL: Do NOT fabricate sources. Never invent citations, paper titles, author names, journal names, DOIs, or URLs. Never attribute a claim to a named study or researcher. Describe claims as they circulate; if attribution would require inventing a source, leave attribution out.`

const looseNoSourcesDirective = `Do not fabricate citations or sources; describe claims without inventing references.`

// ClaimEnumeration builds the stage-1 instruction string.
func ClaimEnumeration(p domain.DiscoveryParams) string {
	return fmt.Sprintf(claimEnumerationPrompt,
		depthGuidance(p.Depth), domainHint(p.Domain), p.MaxClaims, AntiFabrication(p.StrictNoSources))
}

// ConflictAudit builds the stage-2 instruction string. It carries the
// same anti-fabrication variant as stage 1.
func ConflictAudit(p domain.DiscoveryParams) string {
	return fmt.Sprintf(conflictAuditPrompt, AntiFabrication(p.StrictNoSources))
}

// AntiFabrication returns the directive forbidding invented sources:
// the hard prohibition when strict, a generic one otherwise.
func AntiFabrication(strict bool) string {
	if strict {
		return strictNoSourcesDirective
	}
	return looseNoSourcesDirective
}

func depthGuidance(d domain.Depth) string {
	if d == domain.DepthOverview {
		return " Stay at the level of mainstream summaries and widely repeated positions."
	}
	return " Dig into the academic view: methods disputes, meta-analyses, and paradigm splits, not just popular takes."
}

func domainHint(dom string) string {
	if dom == "" {
		return ""
	}
	return fmt.Sprintf(" Treat the topic within the %s domain.", dom)
}
