package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/apiclient"
	"github.com/swadbest/shopctl/internal/output"
)

// confirm asks a yes/no question on the command's input. --yes skips the prompt
// and a closed input counts as no.
func confirm(cmd *cobra.Command, format string, args ...any) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), format+" [y/N]: ", args...)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// aborted is returned when the user declines a confirmation
func aborted(action string) error {
	return &output.CLIError{
		Summary:  action + " cancelled",
		ExitCode: output.ExitGeneral,
	}
}

// notFound prints an empty state for a missing resource. It reports whether err
// was a not-found error so the command can exit cleanly.
func notFound(p *output.Printer, err error, format string, args ...any) bool {
	if !apiclient.IsNotFound(err) {
		return false
	}
	p.Empty(format, args...)
	return true
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readSecret reads one line from the command's input, used when a password flag is omitted
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt+": ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(prompt), err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", &output.CLIError{
			Summary:  strings.ToLower(prompt) + " is required",
			ExitCode: output.ExitUsageError,
		}
	}
	return line, nil
}

func addYesFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "output as JSON")
}

func jsonRequested(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
