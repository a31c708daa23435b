package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidScore(t *testing.T) {
	out, err := runValidateCmd(t, "text", writeTestScore(t, validScore))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Score valid: 1 staves, 2 events, 2 line(s) on 1 page(s)")
}

func TestValidateValidScoreJSON(t *testing.T) {
	out, err := runValidateCmd(t, "json", writeTestScore(t, validScore))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2048.0, resp.Data.Length)
	assert.Equal(t, 2, resp.Data.Lines)
}

func TestValidateSchemaViolation(t *testing.T) {
	out, err := runValidateCmd(t, "text", writeTestScore(t, schemaInvalidScore))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [SCORE_SCHEMA]")
	assert.Contains(t, out, "pitch")
}

func TestValidateSchemaViolationJSONDetails(t *testing.T) {
	out, err := runValidateCmd(t, "json", writeTestScore(t, schemaInvalidScore))
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SCORE_SCHEMA", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Details)
}

func TestValidateLayoutError(t *testing.T) {
	out, err := runValidateCmd(t, "text", writeTestScore(t, outOfRangeScore))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [EVENT_OUT_OF_RANGE]")
}

func TestValidateMissingFile(t *testing.T) {
	out, err := runValidateCmd(t, "text", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateRequiresOneArg(t *testing.T) {
	_, err := runValidateCmd(t, "text")
	assert.Error(t, err)
}

func TestValidateAppliesQuarterTickOverride(t *testing.T) {
	rootOpts := &RootOptions{Format: "json"}
	rootOpts.settings().Layout.QuarterTickOverride = 128

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeTestScore(t, `grid: [{numerator: 4, denominator: 4, measure_count: 2}]
staves: [{notes: [{time: 0, duration: 256, pitch: 40, hand: "<"}]}]
`)})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 1024.0, resp.Data.Length)
}
