package domain

// ConflictType classifies why two claims cannot both hold.
type ConflictType string

const (
	ConflictNumeric          ConflictType = "numeric_incompatible"
	ConflictPolarity         ConflictType = "polarity_incompatible"
	ConflictScopeMismatch    ConflictType = "scope_mismatch"
	ConflictDefinitionShift  ConflictType = "definition_shift"
	ConflictMeasurementShift ConflictType = "measurement_paradigm_shift"
	ConflictOther            ConflictType = "other"
)

func ValidConflictType(t string) bool {
	switch ConflictType(t) {
	case ConflictNumeric, ConflictPolarity, ConflictScopeMismatch,
		ConflictDefinitionShift, ConflictMeasurementShift, ConflictOther:
		return true
	}
	return false
}

// Conflict is a detected incompatibility between exactly two claims.
// ClaimA and ClaimB reference claim_id values from the claim set that
// fed the audit stage.
type Conflict struct {
	ConflictID        string       `json:"conflict_id"`
	Dimension         string       `json:"dimension"`
	ClaimA            string       `json:"claim_a"`
	ClaimB            string       `json:"claim_b"`
	ConflictType      ConflictType `json:"conflict_type"`
	Explanation       string       `json:"explanation"`
	Severity          float64      `json:"severity"`
	ResearcherWarning string       `json:"researcher_warning"`
}

type ReportSummary struct {
	ConflictCount    int      `json:"conflict_count"`
	TopDimensions    []string `json:"top_dimensions"`
	SafeCitationNote string   `json:"safe_citation_note"`
}

// ConflictReport is the validated output of the audit stage.
type ConflictReport struct {
	Topic     string        `json:"topic"`
	Conflicts []Conflict    `json:"conflicts"`
	Summary   ReportSummary `json:"summary"`
}
