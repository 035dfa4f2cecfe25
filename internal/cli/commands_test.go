package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pkggraph/pkg/buildinfo"
	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
	"github.com/matzehuels/pkggraph/pkg/graph"
)

const appIndex = `app@2.0: lib zlib
lib: zlib ssl
zlib:
`

// testEnv isolates a command run from the user's config, cache and store,
// and returns a repository file holding index.
func testEnv(t *testing.T, index string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PKGGRAPH_STORE_BACKEND", "file")
	t.Setenv("PKGGRAPH_STORE_DIR", t.TempDir())
	t.Setenv("PKGGRAPH_MODE", "test")

	path := filepath.Join(t.TempDir(), "index.txt")
	if err := os.WriteFile(path, []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PKGGRAPH_REPOSITORIES", path)
	return path
}

// runCLI runs the root command and returns stdout and status output.
func runCLI(t *testing.T, args ...string) (stdout, status string, err error) {
	t.Helper()
	ui := captureUI(t)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--no-cache"}, args...))

	err = root.Execute()
	return out.String(), ui.String(), err
}

func TestAnalyzeText(t *testing.T) {
	testEnv(t, appIndex)

	out, status, err := runCLI(t, "analyze", "app")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{
		"app 2.0 (depth 3)",
		"3 packages, 4 edges, 1 unresolved",
		"unresolved: ssl (required by lib)",
		"    ssl (unresolved)",
		"load order: app lib zlib",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(status, "fresh") {
		t.Errorf("status missing stats line: %q", status)
	}
}

func TestAnalyzeJSONAndExport(t *testing.T) {
	testEnv(t, appIndex)
	file := filepath.Join(t.TempDir(), "app.json")

	out, _, err := runCLI(t, "analyze", "app", "--format", "json", "--output", file, "--depth", "1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var report graph.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, out)
	}
	if report.MaxDepth != 1 || report.Stats.Nodes != 1 || report.Stats.External != 2 {
		t.Errorf("report = %+v", report.Stats)
	}

	saved, err := graph.ReadReportFile(file)
	if err != nil {
		t.Fatalf("exported report: %v", err)
	}
	if saved.ID != report.ID {
		t.Errorf("exported ID = %q, want %q", saved.ID, report.ID)
	}
}

func TestCommandOutputs(t *testing.T) {
	tests := []struct {
		name  string
		index string
		args  []string
		want  string
	}{
		{"tree", appIndex, []string{"tree", "app"}, "app\n  lib\n    zlib\n    ssl (unresolved)\n  zlib\n"},
		{"order", appIndex, []string{"order", "app"}, "app\nlib\nzlib\n"},
		{"install order", appIndex, []string{"order", "app", "--install"}, "zlib\nlib\napp\n"},
		{"deps", appIndex, []string{"deps", "lib"}, "zlib\nssl (unresolved)\n"},
		{"cycles", "A: B\nB: C\nC: A\n", []string{"cycles", "A"}, "A -> B -> C -> A\n"},
		{"no cycle", appIndex, []string{"cycles", "app"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testEnv(t, tt.index)
			out, _, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("%v: %v", tt.args, err)
			}
			if out != tt.want {
				t.Errorf("%v output:\n%s\nwant:\n%s", tt.args, out, tt.want)
			}
		})
	}
}

func TestOrderWarnsOnCycle(t *testing.T) {
	testEnv(t, "top: A\nA: B\nB: A\n")

	out, status, err := runCLI(t, "order", "top")
	if err != nil {
		t.Fatal(err)
	}
	if out != "top\n" {
		t.Errorf("partial order = %q", out)
	}
	if !strings.Contains(status, "Order is incomplete: 2 of 3") {
		t.Errorf("status = %q", status)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code pkgerrors.Code
	}{
		{"missing package", []string{"analyze", "nope"}, pkgerrors.ErrCodePackageNotFound},
		{"missing deps package", []string{"deps", "nope"}, pkgerrors.ErrCodePackageNotFound},
		{"zero depth", []string{"tree", "app", "--depth", "0"}, pkgerrors.ErrCodeInvalidDepth},
		{"bad format", []string{"analyze", "app", "--format", "xml"}, pkgerrors.ErrCodeInvalidFormat},
		{"bad mode", []string{"analyze", "app", "--mode", "offline"}, pkgerrors.ErrCodeInvalidMode},
		{"bad package name", []string{"analyze", "a..b"}, pkgerrors.ErrCodeInvalidPackage},
		{"missing file", []string{"analyze", "app", "--repo", "/does/not/exist.txt"}, pkgerrors.ErrCodeFileNotFound},
		{"unknown report", []string{"reports", "show", "nope"}, pkgerrors.ErrCodeReportNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testEnv(t, appIndex)
			_, _, err := runCLI(t, tt.args...)
			if !pkgerrors.Is(err, tt.code) {
				t.Errorf("%v: err = %v, want code %s", tt.args, err, tt.code)
			}
		})
	}
}

func TestReportsLifecycle(t *testing.T) {
	testEnv(t, appIndex)

	if _, status, err := runCLI(t, "analyze", "app", "--save"); err != nil {
		t.Fatal(err)
	} else if !strings.Contains(status, "Saved report") {
		t.Errorf("status = %q", status)
	}

	out, _, err := runCLI(t, "reports", "list")
	if err != nil {
		t.Fatal(err)
	}
	fields := strings.Fields(out)
	if len(fields) == 0 || !strings.Contains(out, "app 2.0") {
		t.Fatalf("list output = %q", out)
	}
	id := fields[0]

	out, _, err = runCLI(t, "reports", "show", id, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var report graph.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil || report.ID != id {
		t.Fatalf("show: %v, id %q", err, report.ID)
	}

	if _, _, err := runCLI(t, "reports", "delete", id); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "reports", "show", id); !pkgerrors.Is(err, pkgerrors.ErrCodeReportNotFound) {
		t.Errorf("show after delete: %v", err)
	}
	if _, status, _ := runCLI(t, "reports", "list"); !strings.Contains(status, "No saved reports") {
		t.Errorf("list after delete status = %q", status)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	testEnv(t, appIndex)
	other := filepath.Join(t.TempDir(), "other.txt")
	if err := os.WriteFile(other, []byte("app: only\nonly:\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "deps", "app", "--repo", other)
	if err != nil {
		t.Fatal(err)
	}
	if out != "only\n" {
		t.Errorf("deps with --repo = %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	out, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "version: "+buildinfo.Version) {
		t.Errorf("version output = %q", out)
	}
}
