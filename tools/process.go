package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// defaultCommandTimeout bounds a single subprocess when no timeout is configured.
const defaultCommandTimeout = 60 * time.Second

// ProcessOptions configures subprocess-backed tools.
type ProcessOptions struct {
	// Timeout bounds each command. Zero means defaultCommandTimeout.
	Timeout time.Duration
	// DoraBinary is the dora CLI executable name or path.
	DoraBinary string
}

func (o ProcessOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultCommandTimeout
	}
	return o.Timeout
}

type processOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runProcess runs name with args in dir, capturing both streams. A non-zero
// exit is reported through ExitCode, not err; err covers start failures and timeouts.
func runProcess(ctx context.Context, timeout time.Duration, dir, name string, args ...string) (processOutput, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = dir
	// Grandchildren may keep the pipes open after a kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := processOutput{Stdout: stdout.String(), Stderr: stderr.String()}

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("command timed out after %s", timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return out, nil
}

// successText renders stdout, with stderr appended under a marker when present.
func (p processOutput) successText() string {
	var b strings.Builder
	b.WriteString(p.Stdout)
	if strings.TrimSpace(p.Stderr) != "" {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString("[stderr]\n")
		b.WriteString(p.Stderr)
	}
	if b.Len() == 0 {
		return "(no output)"
	}
	return capOutput(b.String())
}

// failure renders a non-zero exit as an error carrying both streams.
func (p processOutput) failure(what string) error {
	return fmt.Errorf("%s failed with exit code %d\nstdout: %s\nstderr: %s",
		what, p.ExitCode, capOutput(p.Stdout), capOutput(p.Stderr))
}

func capOutput(s string) string {
	if clamped, did := clampRunes(s, overallRuneCap); did {
		return clamped + "\n" + "-- output truncated --"
	}
	return s
}
