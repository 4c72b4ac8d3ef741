package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/status"
)

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestRunStatusPrintsHumanReadableSummary(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	dir := t.TempDir()
	writeTestConfig(t, dir, srv.URL)
	chdir(t, dir)

	statusJSON = false
	statusDetailed = false

	out, err := captureStdout(t, func() error {
		return runStatus(newTestCmd(), nil)
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "standby")
	assert.Contains(t, out, "Files:")
}

func TestRunStatusJSONOutput(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	dir := t.TempDir()
	writeTestConfig(t, dir, srv.URL)
	chdir(t, dir)

	statusJSON = true
	statusDetailed = false
	defer func() { statusJSON = false }()

	out, err := captureStdout(t, func() error {
		return runStatus(newTestCmd(), nil)
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, string(status.StateStandby), decoded["Progress"].(map[string]interface{})["Status"])
}
