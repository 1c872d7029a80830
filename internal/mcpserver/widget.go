package mcpserver

import (
	"context"
	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	widgetURI  = "ui://widget/conflict-radar.html"
	widgetMIME = "text/html+skybridge"
)

//go:embed widget.html
var widgetHTML string

func widgetResource() mcp.Resource {
	return mcp.NewResource(
		widgetURI,
		"Conflict Radar",
		mcp.WithResourceDescription("Inline widget that renders a discovery report as a claim and conflict board."),
		mcp.WithMIMEType(widgetMIME),
	)
}

// handleWidgetResource serves the embedded document verbatim; the host
// injects the tool output at render time.
func handleWidgetResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      widgetURI,
			MIMEType: widgetMIME,
			Text:     widgetHTML,
		},
	}, nil
}
