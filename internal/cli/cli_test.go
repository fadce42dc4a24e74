// internal/cli/cli_test.go
package docqa

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/docqa/internal/appconfig"
	"github.com/mwiater/docqa/internal/logging"
	"github.com/mwiater/docqa/internal/providers"
	"github.com/mwiater/docqa/internal/tui"
)

type fakeGenerator struct {
	answer  string
	prompts []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, nil
}

type stubAsker struct {
	questions []string
}

func (s *stubAsker) Ask(ctx context.Context, question string) (string, error) {
	s.questions = append(s.questions, question)
	return "answer to " + question, nil
}

// useConfig installs a config whose temp root lives in a test directory.
func useConfig(t *testing.T) *appconfig.Config {
	t.Helper()
	cfg := appconfig.Default()
	cfg.TempRoot = filepath.Join(t.TempDir(), "tmp")
	original := currentConfig
	currentConfig = &cfg
	t.Cleanup(func() { currentConfig = original })
	return &cfg
}

// writeInputs creates a directory with one text and one CSV file.
func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"notes.txt":  "alpha bravo\ncharlie delta\n",
		"people.csv": "name,city\nZoë,Oslo\nAmir,Lagos\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// jsonString encodes s the way indexes are written: HTML characters left as is.
func jsonString(t *testing.T, s string) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		t.Fatal(err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// runCmd invokes cmd.RunE with a background context and captured output.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	b := new(bytes.Buffer)
	cmd.SetOut(b)
	cmd.SetErr(b)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	err := cmd.RunE(cmd, args)
	return b.String(), err
}

func TestIndexCmd(t *testing.T) {
	cfg := useConfig(t)
	dir := writeInputs(t)

	out, err := runCmd(t, indexCmd, dir)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if !strings.Contains(out, "2 indexed, 0 skipped, 0 failed") {
		t.Fatalf("unexpected report:\n%s", out)
	}
	for _, path := range []string{
		filepath.Join(cfg.TempRoot, "text", "notes_index.json"),
		filepath.Join(cfg.TempRoot, "csv", "people_index.json"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
}

func TestIndexCmdMissingDir(t *testing.T) {
	useConfig(t)
	if _, err := runCmd(t, indexCmd, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestIndexCmdListsFailures(t *testing.T) {
	cfg := useConfig(t)
	cfg.Mode = "best-effort"
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"a":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("fine\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, indexCmd, dir)
	if err != nil {
		t.Fatalf("best-effort index returned error: %v", err)
	}
	failures := strings.Index(out, "1 failure:")
	if failures < 0 {
		t.Fatalf("missing failure section:\n%s", out)
	}
	if !strings.Contains(out[failures:], "broken.json") {
		t.Fatalf("failed file not listed under failures:\n%s", out)
	}
	if !strings.Contains(out, "1 indexed, 0 skipped, 1 failed") {
		t.Fatalf("unexpected report:\n%s", out)
	}
}

func TestShowIndexCmd(t *testing.T) {
	useConfig(t)
	dir := writeInputs(t)
	if _, err := runCmd(t, indexCmd, dir); err != nil {
		t.Fatal(err)
	}

	showIndexRaw = true
	t.Cleanup(func() { showIndexRaw = false })
	out, err := runCmd(t, showIndexCmd, "notes_index.json")
	if err != nil {
		t.Fatalf("show index: %v", err)
	}
	for _, want := range []string{`"file": ` + jsonString(t, filepath.Join(dir, "notes.txt")), `"type": "text"`, `"Paragraph 1: alpha bravo"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %s:\n%s", want, out)
		}
	}

	if _, err := runCmd(t, showIndexCmd, "nope_index.json"); err == nil {
		t.Fatal("expected error for unknown index")
	}
}

func TestSearchCmd(t *testing.T) {
	useConfig(t)
	if _, err := runCmd(t, indexCmd, writeInputs(t)); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, searchCmd, "lagos")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, `matches for "lagos" across 2 indexes (6 chunks and entries)`) || !strings.Contains(out, "people.csv") {
		t.Fatalf("unexpected search output:\n%s", out)
	}
}

func TestAskCmdOneShot(t *testing.T) {
	useConfig(t)
	dir := writeInputs(t)
	if _, err := runCmd(t, indexCmd, dir); err != nil {
		t.Fatal(err)
	}

	gen := &fakeGenerator{answer: "Two files."}
	original := newGenerator
	newGenerator = func(cfg *appconfig.Config) (providers.Generator, error) { return gen, nil }
	t.Cleanup(func() { newGenerator = original })

	out, err := runCmd(t, askCmd, "how", "many", "files?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if strings.TrimSpace(out) != "Two files." {
		t.Fatalf("unexpected answer %q", out)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Question: how many files?") {
		t.Fatalf("unexpected prompts: %v", gen.prompts)
	}
	if !strings.Contains(gen.prompts[0], `"file":`+jsonString(t, filepath.Join(dir, "people.csv"))) {
		t.Fatalf("prompt is missing the csv index:\n%s", gen.prompts[0])
	}
}

func TestAskCmdStartsTUIOnTerminal(t *testing.T) {
	useConfig(t)

	origGen, origTUI, origTerm := newGenerator, startTUI, isTerminal
	t.Cleanup(func() { newGenerator, startTUI, isTerminal = origGen, origTUI, origTerm })

	newGenerator = func(cfg *appconfig.Config) (providers.Generator, error) { return &fakeGenerator{}, nil }
	isTerminal = func() bool { return true }
	started := false
	startTUI = func(ctx context.Context, asker tui.Asker, info tui.Info) error {
		started = true
		if info.IndexCount != 0 {
			t.Fatalf("expected no indexes, got %d", info.IndexCount)
		}
		return nil
	}

	if _, err := runCmd(t, askCmd); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !started {
		t.Fatal("expected the terminal UI to start")
	}
}

func TestRunAskLoop(t *testing.T) {
	asker := &stubAsker{}
	in := strings.NewReader("first question\n\nexit\nnever asked\n")
	out := new(bytes.Buffer)

	if err := runAskLoop(context.Background(), asker, in, out); err != nil {
		t.Fatalf("runAskLoop: %v", err)
	}
	if len(asker.questions) != 2 || asker.questions[0] != "first question" || asker.questions[1] != "" {
		t.Fatalf("unexpected questions: %q", asker.questions)
	}
	if !strings.Contains(out.String(), "answer to first question") {
		t.Fatalf("missing answer:\n%s", out.String())
	}
	if strings.Count(out.String(), askPrompt) != 3 {
		t.Fatalf("expected three prompts:\n%s", out.String())
	}
}

func TestConfigInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docqa.yaml")

	out, err := runCmd(t, configInitCmd, path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote "+path) {
		t.Fatalf("unexpected output %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "tempRoot: tmp") {
		t.Fatalf("unexpected config:\n%s", data)
	}

	if _, err := runCmd(t, configInitCmd, path); err == nil {
		t.Fatal("expected error when the file exists")
	}
}

// TestPersistentPreRunMergesConfig loads a YAML file, lets an environment
// variable override one key and checks the merged configuration.
func TestPersistentPreRunMergesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docqa.yaml")
	yaml := "tempRoot: " + filepath.Join(dir, "indexes") + "\nworkers: 3\nmode: strict\nlogFile: " + filepath.Join(dir, "docqa.log") + "\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCQA_MODE", "best-effort")

	origFile, origCfg := cfgFile, currentConfig
	t.Cleanup(func() {
		cfgFile, currentConfig = origFile, origCfg
		viper.Reset()
		_ = logging.Close()
	})
	cfgFile = path
	initConfig()

	if err := rootCmd.PersistentPreRunE(showConfigCmd, nil); err != nil {
		t.Fatalf("PersistentPreRunE: %v", err)
	}
	cfg := getConfig()
	if cfg.Workers != 3 {
		t.Fatalf("workers = %d, want 3", cfg.Workers)
	}
	if cfg.Mode != "best-effort" {
		t.Fatalf("mode = %q, want env override best-effort", cfg.Mode)
	}
	if cfg.ChunkSize != 10 {
		t.Fatalf("chunkSize = %d, want default 10", cfg.ChunkSize)
	}
	if cfg.ConfigPath != path {
		t.Fatalf("ConfigPath = %q, want %q", cfg.ConfigPath, path)
	}

	out, err := func() (string, error) {
		b := new(bytes.Buffer)
		showConfigCmd.SetOut(b)
		defer showConfigCmd.SetOut(nil)
		showConfigCmd.Run(showConfigCmd, nil)
		return b.String(), nil
	}()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Config file: "+path) || !strings.Contains(out, "best-effort") {
		t.Fatalf("unexpected show config output:\n%s", out)
	}
}

func TestShowMetricsCmd(t *testing.T) {
	cfg := useConfig(t)

	out, err := runCmd(t, showMetricsCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "No metrics recorded") {
		t.Fatalf("unexpected output %q", out)
	}

	origGen := newGenerator
	t.Cleanup(func() { newGenerator = origGen })
	newGenerator = func(cfg *appconfig.Config) (providers.Generator, error) { return &fakeGenerator{answer: "ok"}, nil }
	if _, err := runCmd(t, askCmd, "hello"); err != nil {
		t.Fatal(err)
	}

	out, err = runCmd(t, showMetricsCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, modelLabel(cfg)+": 1 request, 0 failed") {
		t.Fatalf("unexpected metrics output:\n%s", out)
	}
}
