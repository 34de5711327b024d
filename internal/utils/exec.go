package utils

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// RunCommand runs a shell command and returns its combined output. The
// caller's context bounds the run; rendering and uploads can take a long
// time, so deadlines belong to the caller, not here.
func RunCommand(ctx context.Context, command string) (string, error) {
	Logf("run: %s", command)

	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if Verbose && output.Len() > 0 {
			Logf("output (error):\n%s", strings.TrimRight(output.String(), "\n"))
		}
		return output.String(), fmt.Errorf("command failed: %w", err)
	}
	if Verbose && output.Len() > 0 {
		Logf("output:\n%s", strings.TrimRight(output.String(), "\n"))
	}
	return output.String(), nil
}
