package tools

import (
	"context"
	"encoding/json"
	"runtime"

	"github.com/petasbytes/dora-assist/internal/fsops"
)

type ShellCommandInput struct {
	Command    string `json:"command" jsonschema_description:"Shell command line to execute."`
	WorkingDir string `json:"working_dir,omitempty" jsonschema_description:"Optional relative working directory (defaults to the workspace root)."`
}

var ShellCommandInputSchema = GenerateSchema[ShellCommandInput]()

// NewShellCommand returns the shell_command tool. Commands run through sh -c,
// or cmd /C on Windows, inside the sandbox read root.
func NewShellCommand(sb *fsops.Sandbox, opts ProcessOptions) ToolDefinition {
	return ToolDefinition{
		Name:        "shell_command",
		Description: "Execute a shell command and return its output. Use for building nodes, inspecting the environment or running helper scripts.",
		InputSchema: ShellCommandInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			in, err := decodeInput[ShellCommandInput](input)
			if err != nil {
				return "", err
			}
			if in.Command == "" {
				return "", errMissing("command")
			}
			dir, err := sb.Dir(in.WorkingDir)
			if err != nil {
				return "", err
			}

			shell, flag := "sh", "-c"
			if runtime.GOOS == "windows" {
				shell, flag = "cmd", "/C"
			}
			out, err := runProcess(ctx, opts.timeout(), dir, shell, flag, in.Command)
			if err != nil {
				return "", err
			}
			if out.ExitCode != 0 {
				return "", out.failure("Command")
			}
			return out.successText(), nil
		},
	}
}
