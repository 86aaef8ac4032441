package output

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/swadbest/shopctl/internal/apiclient"
	"github.com/swadbest/shopctl/internal/shop"
)

// Exit code constants
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsageError  = 2
	ExitAuthError   = 3
	ExitNetwork     = 4
	ExitServerError = 5
	ExitConfigError = 6
	ExitValidation  = 7
	ExitTimeout     = 8
)

// CLIError is a structured error with user-facing context
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
}

// Error implements the error interface, returning the summary
func (e *CLIError) Error() string {
	return e.Summary
}

// FromError maps a command failure onto a CLIError
func FromError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	switch {
	case errors.Is(err, shop.ErrLoginRequired):
		return &CLIError{
			Summary:    "you are not logged in",
			Suggestion: "Run 'shopctl login' first",
			ExitCode:   ExitAuthError,
		}
	case errors.Is(err, shop.ErrOutOfStock):
		return &CLIError{
			Summary:    "this variant is out of stock",
			Suggestion: "Run 'shopctl products show <id>' to pick another variant",
			ExitCode:   ExitValidation,
		}
	case errors.Is(err, shop.ErrInvalidQuantity), errors.Is(err, shop.ErrMissingID):
		return &CLIError{Summary: err.Error(), ExitCode: ExitUsageError}
	case errors.Is(err, context.DeadlineExceeded):
		return &CLIError{
			Summary:    "the store took too long to respond",
			Detail:     err.Error(),
			Suggestion: "Try again, or raise api.timeout in .shopctl.yaml",
			ExitCode:   ExitTimeout,
		}
	}

	apiErr, ok := apiclient.AsError(err)
	if !ok {
		return &CLIError{Summary: err.Error(), ExitCode: ExitGeneral}
	}

	detail := ""
	if apiErr.RequestID != "" {
		detail = "request id " + apiErr.RequestID
	}

	switch apiErr.Kind {
	case apiclient.KindAuth:
		return &CLIError{
			Summary:    apiErr.Message,
			Detail:     detail,
			Suggestion: "Run 'shopctl login' to sign in again",
			ExitCode:   ExitAuthError,
		}
	case apiclient.KindNetwork:
		if apiErr.Err != nil {
			detail = apiErr.Err.Error()
		}
		return &CLIError{
			Summary:    apiErr.Message,
			Detail:     detail,
			Suggestion: "Check api.base_url with 'shopctl config'",
			ExitCode:   ExitNetwork,
		}
	case apiclient.KindServer:
		return &CLIError{
			Summary:    apiErr.Message,
			Detail:     detail,
			Suggestion: "Wait a moment and try again",
			ExitCode:   ExitServerError,
		}
	case apiclient.KindNotFound:
		return &CLIError{
			Summary:  apiErr.Message,
			Detail:   detail,
			ExitCode: ExitGeneral,
		}
	default:
		return &CLIError{
			Summary:  apiErr.Message,
			Detail:   detail,
			ExitCode: ExitValidation,
		}
	}
}

// FormatError prints a structured error message to stderr
func (p *Printer) FormatError(e *CLIError) {
	if p.useColors {
		color.New(color.FgRed, color.Bold).Fprintf(p.err, "Error: %s\n", e.Summary)
		if e.Detail != "" {
			fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
		}
		if e.Suggestion != "" {
			color.New(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		}
	} else {
		fmt.Fprintf(p.err, "[ERROR] %s\n", e.Summary)
		if e.Detail != "" {
			fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
		}
		if e.Suggestion != "" {
			fmt.Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		}
	}
}
