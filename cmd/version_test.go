package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func setupVersionTest(t *testing.T) {
	t.Helper()
	setupCmdTest(t)
	SetBuildInfo("abc1234", "2026-02-06T07:16:38Z")
}

func TestVersionOutput_ContainsFields(t *testing.T) {
	setupVersionTest(t)

	res := runCmd(t, "", "version")
	if res.err != nil {
		t.Fatalf("version command failed: %v", res.err)
	}

	out := res.stdout
	for _, field := range []string{"shopctl version", "commit:", "built:", "go version:", "platform:"} {
		if !strings.Contains(out, field) {
			t.Errorf("version output missing %q field. Got:\n%s", field, out)
		}
	}
}

func TestVersionShort(t *testing.T) {
	setupVersionTest(t)

	res := runCmd(t, "", "version", "--short")
	if res.err != nil {
		t.Fatalf("version --short failed: %v", res.err)
	}

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 1 {
		t.Errorf("expected 1 line, got %d: %q", len(lines), res.stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	setupVersionTest(t)

	res := runCmd(t, "", "version", "--json")
	if res.err != nil {
		t.Fatalf("version --json failed: %v", res.err)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(res.stdout), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\nGot: %s", err, res.stdout)
	}

	for _, key := range []string{"version", "commit", "built", "goVersion", "platform"} {
		if _, ok := result[key]; !ok {
			t.Errorf("JSON output missing key %q. Got: %v", key, result)
		}
	}
	if result["commit"] != "abc1234" {
		t.Errorf("commit = %q, want abc1234", result["commit"])
	}
}

func TestVersion_WorksWithoutBackend(t *testing.T) {
	setupVersionTest(t)
	t.Setenv("SHOPCTL_API_BASE_URL", "http://127.0.0.1:1")

	app = nil
	res := runCmd(t, "", "version", "--short")
	if res.err != nil {
		t.Fatalf("version failed: %v", res.err)
	}
	if app != nil {
		t.Error("version should not wire the storefront")
	}
}
