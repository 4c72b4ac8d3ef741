package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestParseToolArguments(t *testing.T) {
	t.Parallel()

	t.Run("valid map", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]interface{}{"query": "hello"}
		argsMap, errResult := parseToolArguments(req)
		assert.Nil(t, errResult)
		assert.Equal(t, "hello", argsMap["query"])
	})

	t.Run("invalid shape", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = "not a map"
		_, errResult := parseToolArguments(req)
		assert.NotNil(t, errResult)
	})
}

func TestParseStringArg(t *testing.T) {
	t.Parallel()

	argsMap := map[string]interface{}{"query": "hello", "empty": "", "wrong_type": 5}

	v, err := parseStringArg(argsMap, "query", true)
	assert.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = parseStringArg(argsMap, "missing", true)
	assert.Error(t, err)

	v, err = parseStringArg(argsMap, "missing", false)
	assert.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = parseStringArg(argsMap, "empty", true)
	assert.Error(t, err)

	_, err = parseStringArg(argsMap, "wrong_type", false)
	assert.Error(t, err)
}

func TestParseIntArg(t *testing.T) {
	t.Parallel()

	argsMap := map[string]interface{}{"limit": float64(25)}
	assert.Equal(t, 25, parseIntArg(argsMap, "limit", 10))
	assert.Equal(t, 10, parseIntArg(argsMap, "missing", 10))
}

func TestParseFloatArg(t *testing.T) {
	t.Parallel()

	argsMap := map[string]interface{}{"threshold": float64(0.9)}
	assert.Equal(t, 0.9, parseFloatArg(argsMap, "threshold", 0.7))
	assert.Equal(t, 0.7, parseFloatArg(argsMap, "missing", 0.7))
}

func TestParseBoolArg(t *testing.T) {
	t.Parallel()

	argsMap := map[string]interface{}{"force": true}
	assert.True(t, parseBoolArg(argsMap, "force", false))
	assert.False(t, parseBoolArg(argsMap, "missing", false))
}

func TestParseArrayArg(t *testing.T) {
	t.Parallel()

	argsMap := map[string]interface{}{
		"tags":  []interface{}{"go", "code", 5},
		"empty": []interface{}{},
	}
	assert.Equal(t, []string{"go", "code"}, parseArrayArg(argsMap, "tags"))
	assert.Nil(t, parseArrayArg(argsMap, "missing"))
	assert.Empty(t, parseArrayArg(argsMap, "empty"))
}
