package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// storeBackend is a scripted store API keyed by "METHOD /path"
type storeBackend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
	last   map[string]*http.Request
	srv    *httptest.Server
}

func newStoreBackend(t *testing.T) *storeBackend {
	t.Helper()
	b := &storeBackend{
		routes: make(map[string]http.HandlerFunc),
		hits:   make(map[string]int),
		last:   make(map[string]*http.Request),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.hits[key]++
		b.last[key] = r.Clone(r.Context())
		h, ok := b.routes[key]
		b.mu.Unlock()
		if !ok {
			respond(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		h(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *storeBackend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

func (b *storeBackend) reply(method, path string, status int, body any) {
	b.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, status, body)
	})
}

func (b *storeBackend) hitCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

func (b *storeBackend) lastRequest(method, path string) *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last[method+" "+path]
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// setupCmdTest isolates config, session and colors, and points the CLI at a fresh backend
func setupCmdTest(t *testing.T) *storeBackend {
	t.Helper()
	b := newStoreBackend(t)

	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	t.Setenv("SHOPCTL_API_BASE_URL", b.srv.URL)
	t.Setenv("SHOPCTL_API_RATE_LIMIT", "0")
	t.Setenv("SHOPCTL_SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("SHOPCTL_LOGGING_LEVEL", "error")

	resetFlags(rootCmd)
	return b
}

// resetFlags puts every flag back to its default so state does not leak between runs
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// exitCode is the code the process would exit with
func (r cmdResult) exitCode() int {
	return handleError(r.err, new(bytes.Buffer))
}

func runCmd(t *testing.T, stdin string, args ...string) cmdResult {
	t.Helper()
	resetFlags(rootCmd)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// signIn logs in through the CLI so later commands find a saved session
func signIn(t *testing.T, b *storeBackend) {
	t.Helper()
	b.reply(http.MethodPost, "/api/users/login", http.StatusOK, map[string]any{
		"user":         map[string]string{"id": "u1", "name": "Asha", "email": "asha@example.com"},
		"accessToken":  "access-1",
		"refreshToken": "refresh-1",
	})
	res := runCmd(t, "", "login", "--email", "asha@example.com", "--password", "secret")
	if res.err != nil {
		t.Fatalf("login failed: %v\nstderr: %s", res.err, res.stderr)
	}
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q. Got:\n%s", w, got)
		}
	}
}
