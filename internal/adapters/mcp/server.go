// Package mcpadapter exposes the quote pipeline as MCP tools so assistants
// can draft quotes over stdio.
package mcpadapter

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

const serverName = "quote-assistant"

type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"generate_quote": {
		def:     generateQuoteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerateQuote },
	},
	"classify_deduction": {
		def:     classifyDeductionToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClassifyDeduction },
	},
	"list_jobs": {
		def:     listJobsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListJobs },
	},
}

var generateQuoteToolDef = mcp.NewTool("generate_quote",
	mcp.WithDescription("Price a Swedish renovation or service job. Returns either a clarification question or a quote with ROT/RUT deduction."),
	mcp.WithString("description", mcp.Required(), mcp.Description("The customer's job description in Swedish.")),
	mcp.WithArray("history",
		mcp.Description("Earlier conversation turns, oldest first."),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"role":    map[string]any{"type": "string", "enum": []string{"user", "assistant"}},
				"content": map[string]any{"type": "string"},
			},
			"required": []string{"role", "content"},
		}),
	),
	mcp.WithString("user_id", mcp.Description("Tradesperson whose rates and history apply.")),
	mcp.WithString("mode", mcp.Enum("draft", "final"), mcp.Description("Draft quotes are not archived or published.")),
	mcp.WithString("location", mcp.Description("Municipality or region used for regional pricing.")),
	mcp.WithObject("previous_quote", mcp.Description("The quote being revised, as returned by an earlier call.")),
)

var classifyDeductionToolDef = mcp.NewTool("classify_deduction",
	mcp.WithDescription("Decide whether work qualifies for ROT, RUT or no tax deduction."),
	mcp.WithString("description", mcp.Required(), mcp.Description("What is being done.")),
	mcp.WithString("work_type", mcp.Description("Registered job type, if known.")),
)

var listJobsToolDef = mcp.NewTool("list_jobs",
	mcp.WithDescription("List registered job types and the measurements each one needs."),
)

// NewServer registers every quote tool on a fresh MCP server.
func NewServer(quotes ports.QuoteGenerator, classifier ports.DeductionClassifier, catalog ports.JobCatalog, version string) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(quotes, classifier, catalog)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the tools over stdio until the client disconnects.
func Run(quotes ports.QuoteGenerator, classifier ports.DeductionClassifier, catalog ports.JobCatalog, version string) error {
	return server.ServeStdio(NewServer(quotes, classifier, catalog, version))
}
