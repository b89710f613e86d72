package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ingestDiagnosticsTool returns the tool definition for ingest_diagnostics
func ingestDiagnosticsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_diagnostics",
		Description: "Parse a raw SHIPS diagnostics file and rebuild the database table. Replaces any previously ingested data.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the raw diagnostics file (defaults to the configured path)",
				},
				"batch_size": map[string]interface{}{
					"type":        "integer",
					"description": "Rows per insert transaction (1-10000)",
					"default":     100,
					"minimum":     1,
					"maximum":     10000,
				},
			},
		},
	}
}

// getStormObsTool returns the tool definition for get_storm_obs
func getStormObsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_storm_obs",
		Description: "Get diagnostic observations for one storm by ATCF ID, in physical units with missing values as null",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"atcf_id": map[string]interface{}{
					"type":        "string",
					"description": "ATCF storm ID, e.g. AL122005",
				},
				"time": map[string]interface{}{
					"type":        "string",
					"description": "Optional RFC 3339 timestamp; when set, return only the observation at this time",
				},
			},
			Required: []string{"atcf_id"},
		},
	}
}

// describeParametersTool returns the tool definition for describe_parameters
func describeParametersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "describe_parameters",
		Description: "Look up SHIPS parameter codes in the predictor description file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"codes": map[string]interface{}{
					"type":        "array",
					"description": "Parameter codes to look up; omit to list the whole catalog",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report database status: table presence, row count, columns, size, and build mode",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
