// Package indexer walks a directory and builds a persisted index for every
// supported document in it.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mwiater/docqa/internal/docindex"
	"github.com/mwiater/docqa/internal/logging"
)

// Mode controls how a directory run reacts to a failing file.
type Mode string

const (
	// ModeStrict aborts the run on the first failure.
	ModeStrict Mode = "strict"
	// ModeBestEffort records failures in the report and keeps going.
	ModeBestEffort Mode = "best-effort"
)

// ParseMode converts a configuration value into a Mode. The empty string
// means ModeStrict.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeStrict):
		return ModeStrict, nil
	case string(ModeBestEffort), "best_effort", "besteffort":
		return ModeBestEffort, nil
	default:
		return "", fmt.Errorf("unknown batch mode %q (want %q or %q)", s, ModeStrict, ModeBestEffort)
	}
}

// LockFileName is the run lock created inside the temp root.
const LockFileName = ".docqa.lock"

const defaultDebounce = 500 * time.Millisecond

// Config holds the settings for a DirectoryIndexer.
type Config struct {
	// FormatRoots maps each format to the directory its indexes are saved in.
	FormatRoots map[docindex.Format]string
	Mode        Mode
	// Workers is the number of files indexed concurrently; values below 1
	// mean 1.
	Workers   int
	ChunkSize int
	// LockPath is the cross-process lock held during a run. Empty disables
	// locking.
	LockPath string
	// Debounce is how long Watch waits for a file to settle.
	Debounce time.Duration
}

// Status is the outcome for one file.
type Status string

const (
	StatusIndexed Status = "indexed"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result describes what happened to one file.
type Result struct {
	Path      string
	Format    docindex.Format
	Status    Status
	IndexPath string
	Summary   string
	Err       error
}

// Report lists per-file results in directory order.
type Report struct {
	Dir     string
	Results []Result
}

// Count returns how many results have the given status.
func (r Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (r Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r Report) String() string {
	return fmt.Sprintf("%d indexed, %d skipped, %d failed",
		r.Count(StatusIndexed), r.Count(StatusSkipped), r.Count(StatusFailed))
}

// Indexer dispatches files to format builders and saves their indexes.
type Indexer struct {
	cfg      Config
	builders map[docindex.Format]docindex.Builder
	stores   map[docindex.Format]*docindex.Store
	lock     *runLock
	status   func(format string, args ...any)
}

// Option customizes an Indexer.
type Option func(*Indexer)

// WithStatus sets the progress reporter. The default writes to the log only.
func WithStatus(status func(format string, args ...any)) Option {
	return func(ix *Indexer) {
		if status != nil {
			ix.status = status
		}
	}
}

// New returns an Indexer for cfg. Every supported format needs a root.
func New(cfg Config, opts ...Option) (*Indexer, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeStrict
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}

	ix := &Indexer{
		cfg:      cfg,
		builders: make(map[docindex.Format]docindex.Builder, len(docindex.Formats)),
		stores:   make(map[docindex.Format]*docindex.Store, len(docindex.Formats)),
		lock:     newRunLock(cfg.LockPath),
		status:   logging.LogEvent,
	}
	for _, format := range docindex.Formats {
		root := strings.TrimSpace(cfg.FormatRoots[format])
		if root == "" {
			return nil, fmt.Errorf("no index root configured for format %q", format)
		}
		builder, err := docindex.BuilderFor(format, cfg.ChunkSize)
		if err != nil {
			return nil, err
		}
		ix.builders[format] = builder
		ix.stores[format] = docindex.NewStore(root)
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Run indexes every regular file directly inside dir. In strict mode the
// first failure aborts the run and is returned together with the partial
// report. In best-effort mode failures are only recorded.
func (ix *Indexer) Run(ctx context.Context, dir string) (Report, error) {
	report := Report{Dir: dir}

	files, err := listFiles(dir)
	if err != nil {
		return report, err
	}

	if err := ix.lock.Lock(ctx); err != nil {
		return report, err
	}
	defer ix.lock.Unlock()

	ix.status("[INDEX] Indexing %d files in %s (mode: %s, workers: %d)", len(files), dir, ix.cfg.Mode, ix.cfg.Workers)

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := ix.indexFile(gctx, path)
			results[i] = res
			if res.Status == StatusFailed && ix.cfg.Mode == ModeStrict {
				return res.Err
			}
			return nil
		})
	}
	runErr := g.Wait()

	for _, res := range results {
		if res.Status != "" {
			report.Results = append(report.Results, res)
		}
	}
	if runErr == nil {
		runErr = ctx.Err()
	}
	if runErr != nil {
		return report, fmt.Errorf("index directory %s: %w", dir, runErr)
	}

	ix.status("[INDEX] Finished %s: %s", dir, report)
	return report, nil
}

// IndexFile indexes a single file while holding the run lock.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (Result, error) {
	if err := ix.lock.Lock(ctx); err != nil {
		return Result{Path: path, Status: StatusFailed, Err: err}, err
	}
	defer ix.lock.Unlock()

	res := ix.indexFile(ctx, path)
	return res, res.Err
}

func (ix *Indexer) indexFile(ctx context.Context, path string) Result {
	res := Result{Path: path}

	format, ok := docindex.DetectFormat(path)
	if !ok {
		res.Status = StatusSkipped
		ix.status("[INDEX] Skipping unsupported file: %s", path)
		return res
	}
	res.Format = format

	if err := ctx.Err(); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	start := time.Now()
	idx, err := ix.builders[format].Build(ctx, path)
	if err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("build %s index: %w", format, err)
		ix.status("[INDEX] Failed %s: %v", path, err)
		return res
	}

	saved, err := ix.stores[format].Save(idx, "")
	if err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("save %s index: %w", format, err)
		ix.status("[INDEX] Failed %s: %v", path, err)
		return res
	}

	res.Status = StatusIndexed
	res.IndexPath = saved
	res.Summary = idx.Summary
	ix.status("[INDEX] Indexed %s -> %s (%s) in %s", path, saved, idx.Summary, time.Since(start).Truncate(time.Millisecond))
	return res
}

// listFiles returns the regular files directly inside dir, following
// symlinks, in name order.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &docindex.NotFoundError{Path: dir, Err: err}
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}
