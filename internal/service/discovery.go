package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crosscheck-ai/dissent/internal/contract"
	"github.com/crosscheck-ai/dissent/internal/domain"
	"github.com/crosscheck-ai/dissent/internal/prompt"
	"go.uber.org/zap"
)

// DiscoveryService runs the two-stage pipeline: enumerate claims, audit
// them for conflicts, merge into one result. A run either fully
// succeeds or fully fails: nothing is retried, there is no
// stage-1-only fallback, and no partial output ever leaves this
// package.
type DiscoveryService struct {
	llm    domain.GenerativeClient
	logger *zap.Logger
}

func NewDiscoveryService(llm domain.GenerativeClient, logger *zap.Logger) *DiscoveryService {
	return &DiscoveryService{
		llm:    llm,
		logger: logger,
	}
}

type enumerationInput struct {
	Topic  string       `json:"topic"`
	Domain string       `json:"domain,omitempty"`
	Depth  domain.Depth `json:"depth"`
}

type auditInput struct {
	Topic  string         `json:"topic"`
	Claims []domain.Claim `json:"claims"`
}

// Discover executes one pipeline run. The audit stage only ever sees
// the truncated claim list, so conflicts are never computed against
// claims the caller will not be shown.
func (s *DiscoveryService) Discover(ctx context.Context, params domain.DiscoveryParams) (*domain.DiscoveryResult, error) {
	params.ApplyDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	raw, err := s.llm.GenerateJSON(ctx, prompt.ClaimEnumeration(params), enumerationInput{
		Topic:  params.Topic,
		Domain: params.Domain,
		Depth:  params.Depth,
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate claims: %w", err)
	}
	claimSet, err := contract.DecodeClaimSet(raw)
	if err != nil {
		return nil, fmt.Errorf("enumerate claims: %w", err)
	}

	// The model is asked to respect the cap but never trusted to.
	claims := claimSet.Claims
	if len(claims) > params.MaxClaims {
		claims = claims[:params.MaxClaims]
	}

	raw, err = s.llm.GenerateJSON(ctx, prompt.ConflictAudit(params), auditInput{
		Topic:  claimSet.Topic,
		Claims: claims,
	})
	if err != nil {
		return nil, fmt.Errorf("audit conflicts: %w", err)
	}
	report, err := contract.DecodeConflictReport(raw)
	if err != nil {
		return nil, fmt.Errorf("audit conflicts: %w", err)
	}
	if err := contract.ValidateReferences(report.Conflicts, claims); err != nil {
		return nil, fmt.Errorf("audit conflicts: %w", err)
	}

	result := &domain.DiscoveryResult{
		Topic:     report.Topic,
		Claims:    claims,
		Conflicts: report.Conflicts,
		Summary:   report.Summary,
	}
	// conflict_count is derived data; the upstream's own figure is not trusted.
	result.Summary.ConflictCount = len(report.Conflicts)

	s.logger.Info("discovery run complete",
		zap.String("topic", params.Topic),
		zap.Int("claims", len(result.Claims)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}
