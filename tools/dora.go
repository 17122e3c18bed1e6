package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/dora-assist/internal/fsops"
)

// DefaultDoraBinary is used when ProcessOptions.DoraBinary is empty.
const DefaultDoraBinary = "dora"

type DoraListInput struct{}

type DoraStartInput struct {
	DataflowPath string `json:"dataflow_path" jsonschema_description:"Relative path to the dataflow YAML file."`
}

type DoraDataflowInput struct {
	DataflowID string `json:"dataflow_id" jsonschema_description:"Dataflow UUID or name as shown by dora_list."`
}

type DoraLogsInput struct {
	DataflowID string `json:"dataflow_id" jsonschema_description:"Dataflow UUID or name as shown by dora_list."`
	Node       string `json:"node,omitempty" jsonschema_description:"Optional node id to restrict logs to."`
}

var (
	DoraListInputSchema     = GenerateSchema[DoraListInput]()
	DoraStartInputSchema    = GenerateSchema[DoraStartInput]()
	DoraDataflowInputSchema = GenerateSchema[DoraDataflowInput]()
	DoraLogsInputSchema     = GenerateSchema[DoraLogsInput]()
)

// dora runs the dora CLI in the sandbox root.
type dora struct {
	sb   *fsops.Sandbox
	opts ProcessOptions
}

func (d dora) run(ctx context.Context, args ...string) (string, error) {
	bin := d.opts.DoraBinary
	if bin == "" {
		bin = DefaultDoraBinary
	}
	out, err := runProcess(ctx, d.opts.timeout(), d.sb.ReadRoot(), bin, args...)
	if err != nil {
		return "", err
	}
	if out.ExitCode != 0 {
		return "", out.failure(fmt.Sprintf("dora %s", args[0]))
	}
	return out.successText(), nil
}

// NewDoraTools returns dora_list, dora_start, dora_stop, dora_destroy and dora_logs.
func NewDoraTools(sb *fsops.Sandbox, opts ProcessOptions) []ToolDefinition {
	d := dora{sb: sb, opts: opts}
	return []ToolDefinition{
		{
			Name:        "dora_list",
			Description: "List running dora dataflows with their ids, names and status (JSON).",
			InputSchema: DoraListInputSchema,
			Function: func(ctx context.Context, _ json.RawMessage) (string, error) {
				return d.run(ctx, "list", "--format", "json")
			},
		},
		{
			Name:        "dora_start",
			Description: "Start a dora dataflow from a YAML file in detached mode.",
			InputSchema: DoraStartInputSchema,
			Function: func(ctx context.Context, input json.RawMessage) (string, error) {
				in, err := decodeInput[DoraStartInput](input)
				if err != nil {
					return "", err
				}
				if in.DataflowPath == "" {
					return "", errMissing("dataflow_path")
				}
				// The file must resolve inside the sandbox before dora sees it.
				if _, err := sb.ReadFile(in.DataflowPath); err != nil {
					return "", err
				}
				return d.run(ctx, "start", "--detach", in.DataflowPath)
			},
		},
		d.byID("dora_stop", "Stop a running dora dataflow.", "stop"),
		d.byID("dora_destroy", "Destroy a dora dataflow and tear down its coordinator state.", "destroy"),
		{
			Name:        "dora_logs",
			Description: "Fetch logs of a dora dataflow, optionally for a single node.",
			InputSchema: DoraLogsInputSchema,
			Function: func(ctx context.Context, input json.RawMessage) (string, error) {
				in, err := decodeInput[DoraLogsInput](input)
				if err != nil {
					return "", err
				}
				if in.DataflowID == "" {
					return "", errMissing("dataflow_id")
				}
				args := []string{"logs", in.DataflowID}
				if in.Node != "" {
					args = append(args, "--node", in.Node)
				}
				return d.run(ctx, args...)
			},
		},
	}
}

func (d dora) byID(name, description, subcommand string) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: DoraDataflowInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			in, err := decodeInput[DoraDataflowInput](input)
			if err != nil {
				return "", err
			}
			if in.DataflowID == "" {
				return "", errMissing("dataflow_id")
			}
			return d.run(ctx, subcommand, in.DataflowID)
		},
	}
}
