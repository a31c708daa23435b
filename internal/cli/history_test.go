package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/engraver/internal/journal"
)

func runHistoryCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	out, err := runHistoryCmd(t, "text", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No outcomes recorded.")
}

func TestHistoryListsNewestFirst(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	_, err := runEngraveCmd(t, "text", writeTestScore(t, validScore), "--db", db)
	require.NoError(t, err)
	_, err = runEngraveCmd(t, "text", writeTestScore(t, outOfRangeScore), "--db", db)
	require.Error(t, err)

	out, err := runHistoryCmd(t, "text", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "RECORDED")
	failed := bytes.Index([]byte(out), []byte("failed"))
	ok := bytes.Index([]byte(out), []byte(" ok "))
	require.Positive(t, failed)
	require.Positive(t, ok)
	assert.Less(t, failed, ok)

	out, err = runHistoryCmd(t, "json", "--db", db, "--limit", "1")
	require.NoError(t, err)
	var resp struct {
		Data []journal.Outcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, journal.StatusFailed, resp.Data[0].Status)
}

func TestHistoryByRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	_, err := runEngraveCmd(t, "text", writeTestScore(t, validScore), "--db", db)
	require.NoError(t, err)

	out, err := runHistoryCmd(t, "json", "--db", db)
	require.NoError(t, err)
	var all struct {
		Data []journal.Outcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all.Data, 1)

	out, err = runHistoryCmd(t, "json", "--db", db, "--run", all.Data[0].RunID)
	require.NoError(t, err)
	var byRun struct {
		Data []journal.Outcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &byRun))
	assert.Equal(t, all.Data, byRun.Data)

	out, err = runHistoryCmd(t, "json", "--db", db, "--run", "unknown")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
}

func TestHistoryJournalUnavailable(t *testing.T) {
	out, err := runHistoryCmd(t, "text", "--db", filepath.Join(t.TempDir(), "missing", "j.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]")
}
