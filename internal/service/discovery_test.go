package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/crosscheck-ai/dissent/internal/contract"
	"github.com/crosscheck-ai/dissent/internal/domain"
	"github.com/crosscheck-ai/dissent/internal/llm"
	"go.uber.org/zap"
)

func setupDiscoveryTest() (*DiscoveryService, *llm.MockClient) {
	mock := llm.NewMockClient()
	return NewDiscoveryService(mock, zap.NewNop()), mock
}

func claimSetJSON(t *testing.T, topic string, n int) json.RawMessage {
	t.Helper()
	claims := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		claims = append(claims, map[string]any{
			"claim_id":   fmt.Sprintf("c%d", i+1),
			"assertion":  fmt.Sprintf("assertion %d", i+1),
			"dimension":  "effect",
			"polarity":   "affirm",
			"confidence": 0.5,
		})
	}
	raw, err := json.Marshal(map[string]any{"topic": topic, "claims": claims})
	if err != nil {
		t.Fatalf("marshal claim set: %v", err)
	}
	return raw
}

func conflictEntry(id, a, b string) map[string]any {
	return map[string]any{
		"conflict_id":        id,
		"dimension":          "effect",
		"claim_a":            a,
		"claim_b":            b,
		"conflict_type":      "numeric_incompatible",
		"explanation":        "both cannot hold",
		"severity":           0.8,
		"researcher_warning": "check scope",
	}
}

func reportJSON(t *testing.T, topic string, count int, conflicts ...map[string]any) json.RawMessage {
	t.Helper()
	if conflicts == nil {
		conflicts = []map[string]any{}
	}
	raw, err := json.Marshal(map[string]any{
		"topic":     topic,
		"conflicts": conflicts,
		"summary": map[string]any{
			"conflict_count":     count,
			"top_dimensions":     []string{"effect"},
			"safe_citation_note": "qualify citations",
		},
	})
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	return raw
}

func TestDiscover_MergesClaimsAndConflicts(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateResponses = []json.RawMessage{
		claimSetJSON(t, "statins", 3),
		reportJSON(t, "statins", 1, conflictEntry("k1", "c1", "c2")),
	}

	result, err := svc.Discover(context.Background(), domain.DefaultDiscoveryParams("statins"))
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if result.Topic != "statins" {
		t.Errorf("topic = %q", result.Topic)
	}
	if len(result.Claims) != 3 {
		t.Errorf("got %d claims, want 3", len(result.Claims))
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].ConflictID != "k1" {
		t.Errorf("conflicts = %+v", result.Conflicts)
	}
	if result.Summary.ConflictCount != 1 {
		t.Errorf("conflict_count = %d, want 1", result.Summary.ConflictCount)
	}
	if len(mock.GenerateCalls) != 2 {
		t.Errorf("generative calls = %d, want 2", len(mock.GenerateCalls))
	}
}

func TestDiscover_TruncatesToMaxClaims(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateResponses = []json.RawMessage{
		claimSetJSON(t, "sleep", 9),
		reportJSON(t, "sleep", 1, conflictEntry("k1", "c1", "c5")),
	}

	params := domain.DefaultDiscoveryParams("sleep")
	params.MaxClaims = 5

	result, err := svc.Discover(context.Background(), params)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(result.Claims) != 5 {
		t.Fatalf("got %d claims, want 5", len(result.Claims))
	}
	for i, c := range result.Claims {
		want := fmt.Sprintf("c%d", i+1)
		if c.ClaimID != want {
			t.Errorf("claim %d = %q, want %q (prefix order must be preserved)", i, c.ClaimID, want)
		}
	}

	in, ok := mock.GenerateCalls[1].Input.(auditInput)
	if !ok {
		t.Fatalf("stage-2 input is %T", mock.GenerateCalls[1].Input)
	}
	if len(in.Claims) != 5 {
		t.Errorf("audit stage received %d claims, want 5", len(in.Claims))
	}
	if in.Claims[0].ClaimID != "c1" || in.Claims[4].ClaimID != "c5" {
		t.Errorf("audit stage claims = %v", in.Claims)
	}
}

func TestDiscover_ConflictAgainstDiscardedClaimAborts(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateResponses = []json.RawMessage{
		claimSetJSON(t, "sleep", 9),
		reportJSON(t, "sleep", 1, conflictEntry("k1", "c1", "c7")),
	}

	params := domain.DefaultDiscoveryParams("sleep")
	params.MaxClaims = 5

	result, err := svc.Discover(context.Background(), params)
	var serr *contract.SchemaValidationError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *SchemaValidationError", err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
}

func TestDiscover_TooFewClaimsSkipsAudit(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateResponses = []json.RawMessage{claimSetJSON(t, "sleep", 2)}

	_, err := svc.Discover(context.Background(), domain.DefaultDiscoveryParams("sleep"))
	var serr *contract.SchemaValidationError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *SchemaValidationError", err)
	}
	if len(mock.GenerateCalls) != 1 {
		t.Errorf("generative calls = %d, want 1 (audit must not run)", len(mock.GenerateCalls))
	}
}

func TestDiscover_AuditUpstreamFailureDiscardsClaims(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateResponses = []json.RawMessage{claimSetJSON(t, "sleep", 3), nil}
	mock.GenerateErrors = []error{nil, &llm.UpstreamError{Status: 500, Body: "boom"}}

	result, err := svc.Discover(context.Background(), domain.DefaultDiscoveryParams("sleep"))
	var uerr *llm.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if uerr.Status != 500 {
		t.Errorf("status = %d, want 500", uerr.Status)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil (no partial merge)", result)
	}
}

func TestDiscover_UnparseableEnumerationAborts(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateErrors = []error{&llm.ParseError{RawText: "not json"}}

	_, err := svc.Discover(context.Background(), domain.DefaultDiscoveryParams("sleep"))
	var perr *llm.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if len(mock.GenerateCalls) != 1 {
		t.Errorf("generative calls = %d, want 1", len(mock.GenerateCalls))
	}
}

func TestDiscover_RecomputesConflictCount(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateResponses = []json.RawMessage{
		claimSetJSON(t, "sleep", 3),
		reportJSON(t, "sleep", 7, conflictEntry("k1", "c1", "c2"), conflictEntry("k2", "c1", "c3")),
	}

	result, err := svc.Discover(context.Background(), domain.DefaultDiscoveryParams("sleep"))
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if result.Summary.ConflictCount != 2 {
		t.Errorf("conflict_count = %d, want len(conflicts) = 2", result.Summary.ConflictCount)
	}
}

func TestDiscover_ZeroConflictsIsSuccess(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateResponses = []json.RawMessage{
		claimSetJSON(t, "sleep", 3),
		reportJSON(t, "sleep", 0),
	}

	result, err := svc.Discover(context.Background(), domain.DefaultDiscoveryParams("sleep"))
	if err != nil {
		t.Fatalf("a zero-conflict report is a success, got error %v", err)
	}
	if len(result.Conflicts) != 0 || result.Summary.ConflictCount != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestDiscover_InvalidParams(t *testing.T) {
	svc, mock := setupDiscoveryTest()

	_, err := svc.Discover(context.Background(), domain.DiscoveryParams{Topic: "x"})
	var perr *domain.InvalidParamsError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *InvalidParamsError", err)
	}
	if len(mock.GenerateCalls) != 0 {
		t.Errorf("generative calls = %d, want 0", len(mock.GenerateCalls))
	}
}

func TestDiscover_AppliesDefaults(t *testing.T) {
	svc, mock := setupDiscoveryTest()
	mock.GenerateResponses = []json.RawMessage{
		claimSetJSON(t, "sleep", 3),
		reportJSON(t, "sleep", 0),
	}

	if _, err := svc.Discover(context.Background(), domain.DiscoveryParams{Topic: "sleep", StrictNoSources: true}); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	in, ok := mock.GenerateCalls[0].Input.(enumerationInput)
	if !ok {
		t.Fatalf("stage-1 input is %T", mock.GenerateCalls[0].Input)
	}
	if in.Depth != domain.DepthAcademic {
		t.Errorf("depth = %q, want default %q", in.Depth, domain.DepthAcademic)
	}
}
