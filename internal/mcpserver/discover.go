package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crosscheck-ai/dissent/internal/analytics"
	"github.com/crosscheck-ai/dissent/internal/contract"
	"github.com/crosscheck-ai/dissent/internal/domain"
	"github.com/crosscheck-ai/dissent/internal/llm"
	"github.com/crosscheck-ai/dissent/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

type DiscoverTool struct {
	svc    *service.DiscoveryService
	sink   *analytics.Client
	logger *zap.Logger
}

func NewDiscoverTool(svc *service.DiscoveryService, sink *analytics.Client, logger *zap.Logger) *DiscoverTool {
	return &DiscoverTool{svc: svc, sink: sink, logger: logger}
}

func (t *DiscoverTool) Definition() mcp.Tool {
	return mcp.NewTool("discover_conflicts",
		mcp.WithDescription("Surface the contradictory factual claims that exist about a topic and audit which pairs cannot both be true. Returns claims, typed conflicts, and a summary with a safe-citation note. Disagreements are reported, never reconciled."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("The topic to audit, e.g. 'statins and heart disease' or 'inflation during the 1970s'."),
		),
		mcp.WithString("domain",
			mcp.Description("Optional field the topic belongs to, e.g. 'medicine', 'economics'. Narrows how claims are framed."),
		),
		mcp.WithString("depth",
			mcp.Description("How deep to dig. 'overview' stays at mainstream summaries; 'academic' includes paradigm and methodology disputes."),
			mcp.Enum(string(domain.DepthOverview), string(domain.DepthAcademic)),
		),
		mcp.WithNumber("max_claims",
			mcp.Description("Cap on returned claims, between 5 and 40. Defaults to 18."),
		),
		mcp.WithBoolean("strict_no_sources",
			mcp.Description("When true (the default), the model is hard-forbidden from inventing citations, authors, journals, or DOIs."),
		),
	)
}

func (t *DiscoverTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := domain.DiscoveryParams{
		Topic:           strings.TrimSpace(topic),
		Domain:          strings.TrimSpace(request.GetString("domain", "")),
		Depth:           domain.Depth(request.GetString("depth", "")),
		MaxClaims:       request.GetInt("max_claims", 0),
		StrictNoSources: request.GetBool("strict_no_sources", true),
	}
	// Resolve defaults here so the analytics event records the values
	// the run actually used.
	params.ApplyDefaults()

	start := time.Now()
	result, err := t.svc.Discover(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		kind := errorKind(err)
		t.logger.Warn("discovery failed",
			zap.String("topic", params.Topic),
			zap.String("kind", kind),
			zap.Error(err),
		)
		t.sink.Record(analytics.DiscoveryFailureEvent(params, kind, elapsed))
		return mcp.NewToolResultError(userMessage(err)), nil
	}

	t.sink.Record(analytics.DiscoveryEvent(params, result.Summary.ConflictCount, elapsed))

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal discovery result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// errorKind collapses the pipeline error taxonomy into the short labels
// the analytics sink groups by.
func errorKind(err error) string {
	var invalidErr *domain.InvalidParamsError
	var schemaErr *contract.SchemaValidationError
	var upstreamErr *llm.UpstreamError
	var parseErr *llm.ParseError
	switch {
	case errors.As(err, &invalidErr):
		return "invalid_params"
	case errors.As(err, &schemaErr):
		return "schema_validation"
	case errors.As(err, &upstreamErr):
		return "upstream"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "internal"
	}
}

func userMessage(err error) string {
	var invalidErr *domain.InvalidParamsError
	if errors.As(err, &invalidErr) {
		return fmt.Sprintf("Invalid request: %v.", invalidErr)
	}
	switch errorKind(err) {
	case "schema_validation":
		return "The model returned a malformed report and the run was discarded. Run the tool again."
	case "upstream":
		return "The upstream model service failed. Run the tool again in a moment."
	case "parse":
		return "The model returned unparseable output and the run was discarded. Run the tool again."
	default:
		return "Discovery failed. Run the tool again."
	}
}
