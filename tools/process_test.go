package tools_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/dora-assist/tools"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("posix shell required")
	}
}

func shell(t *testing.T, opts tools.ProcessOptions, in tools.ShellCommandInput) (string, error) {
	t.Helper()
	b, _ := json.Marshal(in)
	return tools.NewShellCommand(sb, opts).Function(context.Background(), b)
}

func TestShellCommand_Success(t *testing.T) {
	skipOnWindows(t)
	out, err := shell(t, tools.ProcessOptions{}, tools.ShellCommandInput{Command: "echo hello; echo warn 1>&2"})
	require.NoError(t, err)
	assert.Equal(t, "hello\n[stderr]\nwarn\n", out)
}

func TestShellCommand_WorkingDir(t *testing.T) {
	skipOnWindows(t)
	require.NoError(t, os.MkdirAll(filepath.Join(sharedDir, rel(t)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sharedDir, rel(t, "marker.txt")), nil, 0o644))

	out, err := shell(t, tools.ProcessOptions{}, tools.ShellCommandInput{Command: "ls", WorkingDir: rel(t)})
	require.NoError(t, err)
	assert.Equal(t, "marker.txt\n", out)

	_, err = shell(t, tools.ProcessOptions{}, tools.ShellCommandInput{Command: "ls", WorkingDir: "../"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_PATH_OUTSIDE_SANDBOX")
}

func TestShellCommand_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	_, err := shell(t, tools.ProcessOptions{}, tools.ShellCommandInput{Command: "echo out; echo bad 1>&2; exit 3"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Command failed with exit code 3"), err.Error())
	assert.Contains(t, err.Error(), "stdout: out")
	assert.Contains(t, err.Error(), "stderr: bad")
}

func TestShellCommand_Timeout(t *testing.T) {
	skipOnWindows(t)
	_, err := shell(t, tools.ProcessOptions{Timeout: 100 * time.Millisecond}, tools.ShellCommandInput{Command: "sleep 5"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestShellCommand_MissingCommand(t *testing.T) {
	_, err := shell(t, tools.ProcessOptions{}, tools.ShellCommandInput{})
	require.EqualError(t, err, "Missing command argument")
}

// fakeDora writes a script that echoes its arguments, standing in for the dora CLI.
func fakeDora(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dora")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\necho \"dora $*\"\n"), 0o755))
	return p
}

func doraTool(t *testing.T, name string) tools.ToolDefinition {
	t.Helper()
	reg := tools.NewCatalog(sb, tools.ProcessOptions{DoraBinary: fakeDora(t)}, name)
	def, ok := reg.Lookup(name)
	require.True(t, ok)
	return def
}

func TestDora_Arguments(t *testing.T) {
	skipOnWindows(t)
	require.NoError(t, os.MkdirAll(filepath.Join(sharedDir, rel(t)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sharedDir, rel(t, "flow.yml")), []byte("nodes: []\n"), 0o644))

	cases := []struct {
		tool  string
		input string
		want  string
	}{
		{"dora_list", `{}`, "dora list --format json\n"},
		{"dora_start", `{"dataflow_path":"` + filepath.ToSlash(rel(t, "flow.yml")) + `"}`, "dora start --detach " + filepath.ToSlash(rel(t, "flow.yml")) + "\n"},
		{"dora_stop", `{"dataflow_id":"abc"}`, "dora stop abc\n"},
		{"dora_destroy", `{"dataflow_id":"abc"}`, "dora destroy abc\n"},
		{"dora_logs", `{"dataflow_id":"abc"}`, "dora logs abc\n"},
		{"dora_logs", `{"dataflow_id":"abc","node":"camera"}`, "dora logs abc --node camera\n"},
	}
	for _, tc := range cases {
		t.Run(tc.tool, func(t *testing.T) {
			out, err := doraTool(t, tc.tool).Function(context.Background(), json.RawMessage(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestDora_MissingArguments(t *testing.T) {
	cases := map[string]string{
		"dora_start":   "Missing dataflow_path argument",
		"dora_stop":    "Missing dataflow_id argument",
		"dora_destroy": "Missing dataflow_id argument",
		"dora_logs":    "Missing dataflow_id argument",
	}
	for tool, want := range cases {
		_, err := doraTool(t, tool).Function(context.Background(), json.RawMessage(`{}`))
		assert.EqualError(t, err, want, tool)
	}
}

func TestDora_StartRejectsOutsideSandbox(t *testing.T) {
	_, err := doraTool(t, "dora_start").Function(context.Background(), json.RawMessage(`{"dataflow_path":"../flow.yml"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_PATH_OUTSIDE_SANDBOX")
}

func TestDora_BinaryMissing(t *testing.T) {
	reg := tools.NewCatalog(sb, tools.ProcessOptions{DoraBinary: filepath.Join(t.TempDir(), "no-such-dora")}, "dora_list")
	res := reg.Execute(context.Background(), "dora_list", "c1", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "failed to execute")
}
