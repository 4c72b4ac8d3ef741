package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// parseToolArguments validates and extracts the arguments map from an
// MCP tool request.
func parseToolArguments(request mcp.CallToolRequest) (map[string]interface{}, *mcp.CallToolResult) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, mcp.NewToolResultError("invalid arguments format")
	}
	return argsMap, nil
}

// marshalToolResponse marshals response to JSON and wraps it as an MCP
// text result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// parseStringArg extracts a string argument, erroring if required but
// missing or empty.
func parseStringArg(argsMap map[string]interface{}, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return str, nil
}

// parseIntArg extracts an integer argument. MCP sends numbers as
// float64, so this handles the conversion. Returns defaultVal if the
// argument is missing or invalid.
func parseIntArg(argsMap map[string]interface{}, key string, defaultVal int) int {
	val, ok := argsMap[key]
	if !ok {
		return defaultVal
	}
	if f, ok := val.(float64); ok {
		return int(f)
	}
	return defaultVal
}

// parseFloatArg extracts a float64 argument, returning defaultVal if
// missing or invalid.
func parseFloatArg(argsMap map[string]interface{}, key string, defaultVal float64) float64 {
	val, ok := argsMap[key]
	if !ok {
		return defaultVal
	}
	if f, ok := val.(float64); ok {
		return f
	}
	return defaultVal
}

// parseBoolArg extracts a boolean argument, returning defaultVal if
// missing or invalid.
func parseBoolArg(argsMap map[string]interface{}, key string, defaultVal bool) bool {
	val, ok := argsMap[key]
	if !ok {
		return defaultVal
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return defaultVal
}

// parseArrayArg extracts a string array argument, filtering out
// non-string elements. Returns nil if the argument is missing.
func parseArrayArg(argsMap map[string]interface{}, key string) []string {
	val, ok := argsMap[key]
	if !ok {
		return nil
	}
	arr, ok := val.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if str, ok := item.(string); ok {
			result = append(result, str)
		}
	}
	return result
}
