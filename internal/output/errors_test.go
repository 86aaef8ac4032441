package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/swadbest/shopctl/internal/apiclient"
	"github.com/swadbest/shopctl/internal/shop"
)

func TestCLIError_Error(t *testing.T) {
	err := &CLIError{
		Summary:    "something failed",
		Detail:     "because of reasons",
		Suggestion: "try again",
		ExitCode:   ExitGeneral,
	}

	if err.Error() != "something failed" {
		t.Errorf("Error() = %q, want %q", err.Error(), "something failed")
	}
}

func TestFormatError_AllFields(t *testing.T) {
	var stderr bytes.Buffer
	p := NewPrinter(PrinterOptions{ColorMode: ColorNever, Err: &stderr})

	p.FormatError(&CLIError{
		Summary:    "your session has expired",
		Detail:     "request id 42",
		Suggestion: "Run 'shopctl login' to sign in again",
		ExitCode:   ExitAuthError,
	})

	out := stderr.String()
	for _, want := range []string{"[ERROR] your session has expired", "Cause: request id 42", "Suggestion: Run 'shopctl login'"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output: %q", want, out)
		}
	}
}

func TestFormatError_NoDetail(t *testing.T) {
	var stderr bytes.Buffer
	p := NewPrinter(PrinterOptions{ColorMode: ColorNever, Err: &stderr})

	p.FormatError(&CLIError{
		Summary:    "config file not found",
		Suggestion: "Check .shopctl.yaml syntax or use --config flag",
		ExitCode:   ExitConfigError,
	})

	out := stderr.String()
	if strings.Contains(out, "Cause:") {
		t.Errorf("should not contain Cause line when Detail is empty: %q", out)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantSuffix string
	}{
		{"login required", fmt.Errorf("cart: %w", shop.ErrLoginRequired), ExitAuthError, "shopctl login' first"},
		{"out of stock", shop.ErrOutOfStock, ExitValidation, "pick another variant"},
		{"bad quantity", shop.ErrInvalidQuantity, ExitUsageError, ""},
		{"unauthorized", &apiclient.Error{Kind: apiclient.KindAuth, Status: http.StatusUnauthorized, Message: "expired"}, ExitAuthError, "sign in again"},
		{"network", &apiclient.Error{Kind: apiclient.KindNetwork, Message: "offline", Err: errors.New("dial tcp: refused")}, ExitNetwork, "'shopctl config'"},
		{"server", &apiclient.Error{Kind: apiclient.KindServer, Status: http.StatusBadGateway, Message: "down"}, ExitServerError, "try again"},
		{"validation", &apiclient.Error{Kind: apiclient.KindValidation, Status: http.StatusBadRequest, Message: "bad pin code"}, ExitValidation, ""},
		{"timeout", fmt.Errorf("loading: %w", context.DeadlineExceeded), ExitTimeout, "api.timeout"},
		{"plain", errors.New("boom"), ExitGeneral, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if got.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", got.ExitCode, tt.wantCode)
			}
			if tt.wantSuffix != "" && !strings.HasSuffix(got.Suggestion, tt.wantSuffix) {
				t.Errorf("Suggestion = %q, want suffix %q", got.Suggestion, tt.wantSuffix)
			}
		})
	}
}

func TestFromError_PassesCLIErrorThrough(t *testing.T) {
	orig := &CLIError{Summary: "aborted", ExitCode: ExitUsageError}
	if got := FromError(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("FromError() = %+v, want the original", got)
	}
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestExitCodes(t *testing.T) {
	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsageError != 2 {
		t.Errorf("ExitUsageError = %d, want 2", ExitUsageError)
	}
}
