package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rsql/internal/testutil"
)

func init() {
	// Marks and labels are compared as plain text.
	color.NoColor = true
}

const testTraceID = "trace-test"

func testRootOptions(format string) *RootOptions {
	return &RootOptions{
		Format: format,
		Trace:  testutil.NewFixedTraceGenerator(testTraceID),
	}
}

// execute runs cmd with args and returns stdout and the command error.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

// decodeData re-decodes the response data into v.
func decodeData(t *testing.T, resp CLIResponse, v any) {
	t.Helper()
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const moviesJSON = `[
  {"title": "Inception", "year": 2010, "director": {"name": "Nolan"}, "genres": ["sci-fi", "action"]},
  {"title": "Memento", "year": 2000, "director": {"name": "Nolan"}, "genres": ["thriller"]},
  {"title": "Kill Bill", "year": 2003, "director": {"name": "Tarantino"}, "genres": ["action"]}
]`

const opsCUE = `
include_defaults: true
operator: {
	like: {symbol: "=like=", arity: "one"}
}
`

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
