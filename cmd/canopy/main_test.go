package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/snapshot"
)

func execute(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-dir", configDir, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	out, err := execute(t, t.TempDir(), "render")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	for _, want := range []string{`<main class="app">`, "<h1>canopy todos</h1>", "2 of 3 left", "Rendered by canopy"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "data-cid") {
		t.Error("plain render contains node ids")
	}
}

func TestRenderAnnotate(t *testing.T) {
	out, err := execute(t, t.TempDir(), "render", "--annotate")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<main data-cid="`) {
		t.Errorf("annotated output has no ids:\n%s", out)
	}
}

func TestRenderMerge(t *testing.T) {
	dir := t.TempDir()
	markup := filepath.Join(dir, "server.html")
	stale := `<main class="app"><header class="header"><h1>old title</h1></header><aside>gone</aside></main>`
	if err := os.WriteFile(markup, []byte(stale), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, dir, "render", "--merge", markup)
	if err != nil {
		t.Fatalf("render --merge error = %v", err)
	}
	if !strings.Contains(out, "<h1>canopy todos</h1>") || strings.Contains(out, "old title") {
		t.Errorf("merged text not corrected:\n%s", out)
	}
	if strings.Contains(out, "<aside>") {
		t.Errorf("unmatched markup kept:\n%s", out)
	}
}

func TestRenderMissingMergeFile(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "render", "--merge", filepath.Join(dir, "nope.html"))
	if !errors.HasCode(err, errors.ErrCLIUsage) {
		t.Errorf("error = %v, want %s", err, errors.ErrCLIUsage)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "canopy.json"), []byte(`{"render": {"batchSize": -1}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, dir, "render")
	if !errors.HasCode(err, errors.ErrConfigInvalid) {
		t.Errorf("error = %v, want %s", err, errors.ErrConfigInvalid)
	}
}

func TestTree(t *testing.T) {
	out, err := execute(t, t.TempDir(), "tree")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Root #", "Header #", "TodoList #", "footer #", "<li> key=1", `"Ship canopy"`, "component instances"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "└─ ") {
		t.Errorf("tree has no guides:\n%s", out)
	}
}

func TestTreeYAML(t *testing.T) {
	out, err := execute(t, t.TempDir(), "tree", "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	var nodes []snapshot.Node
	if err := yaml.Unmarshal([]byte(out), &nodes); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if len(nodes) != 1 || nodes[0].Kind != "component" || nodes[0].Name != "Root" {
		t.Errorf("root = %+v", nodes)
	}
}

func TestTreeUnknownFormat(t *testing.T) {
	_, err := execute(t, t.TempDir(), "tree", "--format", "xml")
	if !errors.HasCode(err, errors.ErrCLIUsage) {
		t.Errorf("error = %v, want %s", err, errors.ErrCLIUsage)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cfgDir := t.TempDir()
	store := filepath.Join(t.TempDir(), "snaps")

	out, err := execute(t, cfgDir, "snapshot", "save", "--dir", store)
	if err != nil {
		t.Fatalf("save error = %v", err)
	}
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[1] != "Saved" {
		t.Fatalf("unexpected save output %q", out)
	}
	id := fields[2]

	out, err = execute(t, cfgDir, "snapshot", "list", "--dir", store)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != id {
		t.Errorf("list = %q, want %q", out, id)
	}

	out, err = execute(t, cfgDir, "snapshot", "show", id, "--dir", store)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Rendered by canopy") {
		t.Errorf("show output:\n%s", out)
	}

	out, err = execute(t, cfgDir, "snapshot", "show", id, "--manifest", "--dir", store)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "id: "+id) || !strings.Contains(out, "name: TodoList") {
		t.Errorf("manifest output:\n%s", out)
	}
}

func TestExplain(t *testing.T) {
	out, err := execute(t, t.TempDir(), "explain", "e001")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "E001 [render] Unknown registry label") {
		t.Errorf("explain output:\n%s", out)
	}
	if !strings.Contains(out, errors.Explain(errors.ErrUnknownLabel)) {
		t.Errorf("explain output has no detail:\n%s", out)
	}
}

func TestExplainUnknownSuggests(t *testing.T) {
	_, err := execute(t, t.TempDir(), "explain", "E0001")
	var ce *errors.Error
	if !stderrors.As(err, &ce) || ce.Code != errors.ErrCLIUsage {
		t.Fatalf("error = %v, want %s", err, errors.ErrCLIUsage)
	}
	if !strings.Contains(ce.Suggestion, "E00") {
		t.Errorf("suggestion = %q", ce.Suggestion)
	}
}

func TestExplainListsCodes(t *testing.T) {
	out, err := execute(t, t.TempDir(), "explain")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out, "\n"); n != len(errors.GetAllCodes()) {
		t.Errorf("listed %d codes, want %d", n, len(errors.GetAllCodes()))
	}
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}

func TestNewDevServer(t *testing.T) {
	cfgDir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config-dir", cfgDir})
	c := &cli{configDir: cfgDir}
	cfg, err := c.config()
	if err != nil {
		t.Fatal(err)
	}
	s := newDevServer(cfg, c.logger(cmd))
	defer s.Close()
	if s.Sessions() != 0 {
		t.Errorf("Sessions() = %d, want 0", s.Sessions())
	}
}

func TestRenderDebugLogsMergeMismatch(t *testing.T) {
	dir := t.TempDir()
	markup := filepath.Join(dir, "server.html")
	if err := os.WriteFile(markup, []byte(`<section>stale</section>`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, dir, "render", "--sync", "--debug", "--merge", markup)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, errors.ErrMergeMismatch) {
		t.Errorf("debug output has no %s warning:\n%s", errors.ErrMergeMismatch, out)
	}
}

func TestBareSnapshotSaves(t *testing.T) {
	store := filepath.Join(t.TempDir(), "snaps")
	out, err := execute(t, t.TempDir(), "snapshot", "--dir", store)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Saved ") {
		t.Errorf("output = %q", out)
	}
	entries, err := os.ReadDir(store)
	if err != nil || len(entries) != 1 {
		t.Errorf("store entries = %v, %v", entries, err)
	}
}
