package domain

// Depth selects how deep the enumeration stage digs: quick popular
// summaries or the academic literature view.
type Depth string

const (
	DepthOverview Depth = "overview"
	DepthAcademic Depth = "academic"
)

func ValidDepth(d string) bool {
	switch Depth(d) {
	case DepthOverview, DepthAcademic:
		return true
	}
	return false
}

const (
	MinTopicLen      = 2
	MinMaxClaims     = 5
	MaxMaxClaims     = 40
	DefaultMaxClaims = 18
)

// DiscoveryParams are the run parameters for one discovery invocation.
// Zero values mean "use the default"; call ApplyDefaults before Validate.
type DiscoveryParams struct {
	Topic           string `json:"topic"`
	Domain          string `json:"domain,omitempty"`
	Depth           Depth  `json:"depth,omitempty"`
	MaxClaims       int    `json:"max_claims,omitempty"`
	StrictNoSources bool   `json:"strict_no_sources"`
}

// DefaultDiscoveryParams returns params with every optional field at
// its default. StrictNoSources defaults to true.
func DefaultDiscoveryParams(topic string) DiscoveryParams {
	return DiscoveryParams{
		Topic:           topic,
		Depth:           DepthAcademic,
		MaxClaims:       DefaultMaxClaims,
		StrictNoSources: true,
	}
}

// ApplyDefaults fills unset optional fields in place.
func (p *DiscoveryParams) ApplyDefaults() {
	if p.Depth == "" {
		p.Depth = DepthAcademic
	}
	if p.MaxClaims == 0 {
		p.MaxClaims = DefaultMaxClaims
	}
}

// Validate reports the first constraint violation, if any.
// It does not mutate the params; run ApplyDefaults first.
func (p DiscoveryParams) Validate() error {
	if len(p.Topic) < MinTopicLen {
		return &InvalidParamsError{Field: "topic", Reason: "must be at least 2 characters"}
	}
	if !ValidDepth(string(p.Depth)) {
		return &InvalidParamsError{Field: "depth", Reason: `must be "overview" or "academic"`}
	}
	if p.MaxClaims < MinMaxClaims || p.MaxClaims > MaxMaxClaims {
		return &InvalidParamsError{Field: "max_claims", Reason: "must be between 5 and 40"}
	}
	return nil
}

// InvalidParamsError reports a discovery parameter that failed validation.
type InvalidParamsError struct {
	Field  string
	Reason string
}

func (e *InvalidParamsError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// DiscoveryResult is the merged artifact of one pipeline run: the audit
// report's topic and conflicts together with the truncated claim list
// that fed the audit.
type DiscoveryResult struct {
	Topic     string        `json:"topic"`
	Claims    []Claim       `json:"claims"`
	Conflicts []Conflict    `json:"conflicts"`
	Summary   ReportSummary `json:"summary"`
}

// FoundVia is how a user reports having found the service.
type FoundVia string

const (
	FoundViaDirectory FoundVia = "directory"
	FoundViaChatGPT   FoundVia = "chatgpt_suggested"
	FoundViaLink      FoundVia = "link"
	FoundViaFriend    FoundVia = "friend"
	FoundViaOther     FoundVia = "other"
)

func ValidFoundVia(v string) bool {
	switch FoundVia(v) {
	case FoundViaDirectory, FoundViaChatGPT, FoundViaLink, FoundViaFriend, FoundViaOther:
		return true
	}
	return false
}
