package domain

// Polarity states whether a claim asserts, negates, or is ambivalent
// about its dimension.
type Polarity string

const (
	PolarityAffirm Polarity = "affirm"
	PolarityDeny   Polarity = "deny"
	PolarityMixed  Polarity = "mixed"
)

func ValidPolarity(p string) bool {
	switch Polarity(p) {
	case PolarityAffirm, PolarityDeny, PolarityMixed:
		return true
	}
	return false
}

// Claim is an atomic, testable assertion about a topic as the model
// has absorbed it. Claims are never reconciled with each other; the
// audit stage decides which pairs cannot both hold.
type Claim struct {
	ClaimID           string   `json:"claim_id"`
	Assertion         string   `json:"assertion"`
	Dimension         string   `json:"dimension"`
	Polarity          Polarity `json:"polarity"`
	Value             string   `json:"value,omitempty"`
	Qualifiers        []string `json:"qualifiers,omitempty"`
	DefinitionNotes   string   `json:"definition_notes,omitempty"`
	EraHint           string   `json:"era_hint,omitempty"`
	WhyPeopleRepeatIt string   `json:"why_people_repeat_it,omitempty"`
	Confidence        float64  `json:"confidence"`
}

// ClaimSet is the validated output of the enumeration stage.
type ClaimSet struct {
	Topic  string  `json:"topic"`
	Claims []Claim `json:"claims"`
}

// MinClaimSetSize is the smallest claim set the enumeration stage may
// return. Fewer claims is a contract violation, never padded.
const MinClaimSetSize = 3
