package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stormlab/shipsdb/internal/docs"
	"github.com/stormlab/shipsdb/internal/ingest"
	"github.com/stormlab/shipsdb/internal/parser"
	"github.com/stormlab/shipsdb/internal/storage"
	"github.com/stormlab/shipsdb/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeNotIngested    = -32001 // No diagnostics table exists yet
	ErrorCodeStormNotFound  = -32002 // No rows for the requested ATCF ID
	ErrorCodeMalformedInput = -32003 // Raw diagnostics file failed to parse
)

// handleIngestDiagnostics handles the ingest_diagnostics tool invocation
func (s *Server) handleIngestDiagnostics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	sourcePath := getStringDefault(args, "source_path", s.cfg.RawPath)
	batchSize := getIntDefault(args, "batch_size", s.cfg.BatchSize)
	if batchSize < 1 || batchSize > 10000 {
		return nil, newMCPError(ErrorCodeInvalidParams, "batch_size must be between 1 and 10000", map[string]interface{}{
			"param": "batch_size",
			"value": batchSize,
		})
	}

	var exclude types.Exclusion
	if len(s.cfg.Exclude) > 0 {
		exclude = types.NewExclusion(s.cfg.Exclude)
	}

	stats, err := s.runner.Run(ctx, ingest.Options{
		RawPath:   sourcePath,
		TableName: s.cfg.TableName,
		BatchSize: batchSize,
		Exclude:   exclude,
	})
	if err != nil {
		var ferr *parser.FormatError
		if errors.As(err, &ferr) {
			return nil, newMCPError(ErrorCodeMalformedInput, "diagnostics file failed to parse", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "ingestion failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cached query results refer to the replaced table.
	s.querier.Reset()

	response := map[string]interface{}{
		"ingested":        true,
		"rows":            stats.Rows,
		"batches":         stats.Batches,
		"params_total":    len(stats.Params),
		"params_retained": len(stats.Retained),
		"warnings":        stats.Warnings,
		"duration_ms":     stats.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStormObs handles the get_storm_obs tool invocation
func (s *Server) handleGetStormObs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	atcfID, ok := args["atcf_id"].(string)
	if !ok || atcfID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "atcf_id parameter is required", map[string]interface{}{
			"param":  "atcf_id",
			"reason": "missing or empty",
		})
	}

	if raw, ok := args["time"].(string); ok && raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "time must be RFC 3339", map[string]interface{}{
				"param": "time",
				"value": raw,
			})
		}
		obs, found, err := s.querier.FetchAt(ctx, atcfID, at.UTC())
		if err != nil {
			return nil, queryError(err)
		}
		if !found {
			return nil, newMCPError(ErrorCodeStormNotFound, "no observation at requested time", map[string]interface{}{
				"atcf_id": atcfID,
				"time":    raw,
			})
		}
		return mcp.NewToolResultText(formatJSON(obs)), nil
	}

	obs, err := s.querier.FetchAll(ctx, atcfID)
	if err != nil {
		return nil, queryError(err)
	}
	if obs.Len() == 0 {
		return nil, newMCPError(ErrorCodeStormNotFound, "storm not found", map[string]interface{}{
			"atcf_id": atcfID,
		})
	}
	return mcp.NewToolResultText(formatJSON(obs)), nil
}

// handleDescribeParameters handles the describe_parameters tool invocation
func (s *Server) handleDescribeParameters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	catalog, err := docs.Load(s.cfg.DocPath)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "predictor descriptions unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}

	codes := getStringSlice(args, "codes")
	if len(codes) == 0 {
		codes = catalog.Codes()
	}

	described := make(map[string]string, len(codes))
	var unknown []string
	for _, code := range codes {
		if desc, ok := catalog.Describe(code); ok {
			described[code] = desc
		} else {
			unknown = append(unknown, code)
		}
	}

	response := map[string]interface{}{
		"parameters": described,
	}
	if len(unknown) > 0 {
		response["unknown"] = unknown
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := s.cfg.TableName

	exists, err := s.store.TableExists(ctx, table)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to inspect database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"ingested":       exists,
		"table":          table,
		"db_path":        s.cfg.DBPath,
		"schema_version": storage.CurrentSchemaVersion,
		"build_mode":     storage.BuildMode,
		"driver":         storage.DriverName,
	}

	if exists {
		rows, err := s.store.RowCount(ctx, table)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to count rows", map[string]interface{}{
				"error": err.Error(),
			})
		}
		cols, err := s.store.TableColumns(ctx, table)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to read columns", map[string]interface{}{
				"error": err.Error(),
			})
		}
		size, err := s.store.SizeBytes(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to read database size", map[string]interface{}{
				"error": err.Error(),
			})
		}
		response["rows"] = rows
		response["columns"] = cols
		response["size_bytes"] = size
	} else {
		response["message"] = "No diagnostics ingested. Use ingest_diagnostics to load a raw file."
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// queryError maps query layer failures onto MCP error codes.
func queryError(err error) error {
	if errors.Is(err, storage.ErrNoTable) {
		return newMCPError(ErrorCodeNotIngested, "no diagnostics ingested yet", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return newMCPError(ErrorCodeInternalError, "query failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
