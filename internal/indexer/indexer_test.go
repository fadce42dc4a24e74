package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mwiater/docqa/internal/docindex"
)

func testConfig(t *testing.T, mode Mode, workers int) (Config, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "tmp")
	roots := make(map[docindex.Format]string)
	for _, f := range docindex.Formats {
		roots[f] = filepath.Join(root, string(f))
	}
	return Config{
		FormatRoots: roots,
		Mode:        mode,
		Workers:     workers,
		LockPath:    filepath.Join(root, LockFileName),
		Debounce:    50 * time.Millisecond,
	}, root
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func quiet(string, ...any) {}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":            ModeStrict,
		"strict":      ModeStrict,
		"Best-Effort": ModeBestEffort,
		"best_effort": ModeBestEffort,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("lenient"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestNewRequiresEveryRoot(t *testing.T) {
	cfg, _ := testConfig(t, ModeStrict, 1)
	delete(cfg.FormatRoots, docindex.FormatPDF)
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for missing pdf root")
	}
}

func TestRunIndexesSupportedFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"people.csv": "id,name\n1,alice\n2,bob\n",
		"data.json":  `{"a": 1}`,
		"notes.txt":  "first line\nsecond line\n",
		"image.png":  "not indexed",
	})
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			cfg, root := testConfig(t, ModeStrict, workers)
			ix, err := New(cfg, WithStatus(quiet))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			report, err := ix.Run(context.Background(), dir)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got := report.String(); got != "3 indexed, 1 skipped, 0 failed" {
				t.Fatalf("report = %s", got)
			}

			var names []string
			for _, res := range report.Results {
				names = append(names, filepath.Base(res.Path))
			}
			if strings.Join(names, ",") != "data.json,image.png,notes.txt,people.csv" {
				t.Fatalf("results not in directory order: %v", names)
			}

			for _, want := range []string{
				filepath.Join(root, "csv", "people_index.json"),
				filepath.Join(root, "json", "data_index.json"),
				filepath.Join(root, "text", "notes_index.json"),
			} {
				if _, err := os.Stat(want); err != nil {
					t.Fatalf("expected index %s: %v", want, err)
				}
			}

			indexes, err := docindex.LoadAll(root)
			if err != nil {
				t.Fatalf("LoadAll: %v", err)
			}
			if len(indexes) != 3 {
				t.Fatalf("expected 3 persisted indexes, got %d", len(indexes))
			}
		})
	}
}

func TestRunStrictStopsOnFailure(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a_bad.json": `{"broken": `,
		"b_good.txt": "hello",
	})
	cfg, root := testConfig(t, ModeStrict, 1)
	ix, err := New(cfg, WithStatus(quiet))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := ix.Run(context.Background(), dir)
	var pe *docindex.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if report.Count(StatusFailed) != 1 || report.Count(StatusIndexed) != 0 {
		t.Fatalf("unexpected report: %s", report)
	}
	if _, err := os.Stat(filepath.Join(root, "text", "b_good_index.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("strict run should not index files after a failure")
	}
}

func TestRunBestEffortCollectsFailures(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a_bad.json":  `{"broken": `,
		"b_good.txt":  "hello",
		"c_bad.docx":  "not a zip",
		"d_good.json": `[1, 2]`,
	})
	cfg, _ := testConfig(t, ModeBestEffort, 2)
	ix, err := New(cfg, WithStatus(quiet))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := ix.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := report.String(); got != "2 indexed, 0 skipped, 2 failed" {
		t.Fatalf("report = %s", got)
	}
	failures := report.Failures()
	var de *docindex.DecodeError
	if !errors.As(failures[1].Err, &de) {
		t.Fatalf("expected DecodeError for docx, got %v", failures[1].Err)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	cfg, _ := testConfig(t, ModeStrict, 1)
	ix, err := New(cfg, WithStatus(quiet))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = ix.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	var nf *docindex.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "x", "b.txt": "y"})
	cfg, _ := testConfig(t, ModeBestEffort, 1)
	ix, err := New(cfg, WithStatus(quiet))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ix.Run(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIndexFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"memo.txt": "one\ntwo\n"})
	cfg, root := testConfig(t, ModeStrict, 1)
	ix, err := New(cfg, WithStatus(quiet))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := ix.IndexFile(context.Background(), filepath.Join(dir, "memo.txt"))
	if err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if res.Status != StatusIndexed || res.Summary != "2 paragraphs, 1 chunks, 2 words" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.IndexPath != filepath.Join(root, "text", "memo_index.json") {
		t.Fatalf("index path = %s", res.IndexPath)
	}
	if _, err := os.Stat(cfg.LockPath); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}
}

func TestWatchReindexesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, root := testConfig(t, ModeStrict, 1)
	ix, err := New(cfg, WithStatus(quiet))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		results []Result
	)
	done := make(chan error, 1)
	go func() {
		done <- ix.Watch(ctx, dir, func(res Result) {
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		})
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "ignored.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "late.txt"), []byte("arrived later"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target := filepath.Join(root, "text", "late_index.json")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(target); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watch did not index the new file")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, res := range results {
		if filepath.Ext(res.Path) != ".txt" {
			t.Fatalf("unexpected result for %s", res.Path)
		}
	}
}
