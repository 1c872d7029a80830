// Package mcpserver exposes the discovery pipeline over the Model
// Context Protocol. It owns tool and resource registration plus the
// translation between protocol arguments and pipeline parameters; the
// pipeline itself lives in internal/service.
package mcpserver

import (
	"net/http"

	"github.com/crosscheck-ai/dissent/internal/analytics"
	"github.com/crosscheck-ai/dissent/internal/buildconfig"
	"github.com/crosscheck-ai/dissent/internal/service"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

type Server struct {
	mcp *server.MCPServer
}

// New wires the tools and the widget resource into an MCP server.
func New(svc *service.DiscoveryService, sink *analytics.Client, logger *zap.Logger) *Server {
	s := server.NewMCPServer(
		"dissent",
		buildconfig.Get().Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	discover := NewDiscoverTool(svc, sink, logger)
	s.AddTool(discover.Definition(), discover.Handle)

	attribution := NewAttributionTool(sink, logger)
	s.AddTool(attribution.Definition(), attribution.Handle)

	s.AddResource(widgetResource(), handleWidgetResource)

	return &Server{mcp: s}
}

// Handler returns the streamable HTTP transport for mounting on the
// main router.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

func serverInstructions() string {
	return `You have access to dissent, a contradiction-surfacing server.

## When to call discover_conflicts
Call it when the user asks what the literature disagrees about, whether
a commonly repeated figure is contested, or before they cite a claim in
research or writing. The tool enumerates the conflicting claims that
exist about a topic and audits which pairs cannot both be true.

## How to read the result
The result is a JSON report: "claims" lists atomic assertions with
polarity and confidence, "conflicts" lists pairwise incompatibilities
referencing claim ids, and "summary" carries the conflict count and a
safe-citation note. Present conflicts as live disagreements. Do NOT
average, reconcile, or pick a winner between conflicting claims; the
point of the report is that the disagreement itself is the finding.

An empty conflicts list is a real answer: it means no pairwise
incompatibility was detected, not that the tool failed.

## Attribution
When a user mentions how they found this server, call record_attribution
once with the matching found_via value. Never guess; only record what
the user actually said.`
}
