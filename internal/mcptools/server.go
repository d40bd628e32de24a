// Package mcptools exposes the intake engine's pure operations as MCP tools.
package mcptools

import "github.com/modelcontextprotocol/go-sdk/mcp"

// New creates an MCP server with every engine tool registered.
func New(version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "arogya-intake",
		Version: version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "detect_emergency",
		Description: "Check a message for emergency red-flag phrases in the given language",
	}, DetectEmergency)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "extract_symptoms",
		Description: "Extract known symptom tags from the user messages of a conversation",
	}, ExtractSymptoms)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "next_stage",
		Description: "Compute the next intake stage from the current stage and the latest turn",
	}, NextStage)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "compose_guidance",
		Description: "Return the assistant instruction for a stage and language, optionally joined with a user message",
	}, ComposeGuidance)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "lookup_remedies",
		Description: "Look up traditional home remedies for symptom tags",
	}, LookupRemedies)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_languages",
		Description: "List the supported conversation languages",
	}, ListLanguages)

	return srv
}
