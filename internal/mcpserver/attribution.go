package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/crosscheck-ai/dissent/internal/analytics"
	"github.com/crosscheck-ai/dissent/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

type AttributionTool struct {
	sink   *analytics.Client
	logger *zap.Logger
}

func NewAttributionTool(sink *analytics.Client, logger *zap.Logger) *AttributionTool {
	return &AttributionTool{sink: sink, logger: logger}
}

func (t *AttributionTool) Definition() mcp.Tool {
	return mcp.NewTool("record_attribution",
		mcp.WithDescription("Record how the user says they found this server. Call once per user report; never guess a value."),
		mcp.WithString("found_via",
			mcp.Required(),
			mcp.Description("Where the user found the server."),
			mcp.Enum(
				string(domain.FoundViaDirectory),
				string(domain.FoundViaChatGPT),
				string(domain.FoundViaLink),
				string(domain.FoundViaFriend),
				string(domain.FoundViaOther),
			),
		),
		mcp.WithString("note",
			mcp.Description("Optional free-text detail, e.g. which directory or which friend."),
		),
	)
}

func (t *AttributionTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	foundVia, err := request.RequireString("found_via")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !domain.ValidFoundVia(foundVia) {
		return mcp.NewToolResultError(fmt.Sprintf("found_via must be one of directory, chatgpt_suggested, link, friend, other; got %q", foundVia)), nil
	}

	note := strings.TrimSpace(request.GetString("note", ""))
	t.sink.Record(analytics.AttributionEvent(domain.FoundVia(foundVia), note))
	t.logger.Info("attribution recorded", zap.String("found_via", foundVia))

	return mcp.NewToolResultText("Thanks, attribution recorded."), nil
}
