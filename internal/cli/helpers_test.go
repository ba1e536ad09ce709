package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pairsort/internal/session"
	"github.com/roach88/pairsort/internal/sorter"
	"github.com/roach88/pairsort/internal/store"
	"github.com/roach88/pairsort/internal/testutil"
)

// executeCommand runs the root command with args and stdin.
func executeCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "pairsort.db")
}

// seedSession stores a session whose initial order is fixed to order, so
// the questions asked are known in advance.
func seedSession(t *testing.T, dbPath, id string, order ...string) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	_, err = session.Create(ctx, st, session.NewFixedGenerator(id), "test "+id, testutil.Items(order...))
	require.NoError(t, err)
	require.NoError(t, st.SaveState(ctx, id, sorter.Session{
		Choices:      map[string]string{},
		History:      []sorter.State{},
		TotalBattles: sorter.CountBattles(len(order)),
		Order:        order,
		Removed:      []string{},
		Started:      true,
	}))
}

// decodeResponse parses a JSON envelope, decoding its data into v.
func decodeResponse(t *testing.T, stdout string, v any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &raw), "stdout: %s", stdout)
	if v != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}
