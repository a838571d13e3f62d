package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/oarkflow/muuk/internal/scancache"
)

// Runner invokes clang-scan-deps and returns its stdout. Abstracted so
// tests can substitute a fake rather than requiring clang-scan-deps on
// the test machine.
type Runner interface {
	Run(ctx context.Context, compDBPath string) ([]byte, error)
}

// ExecRunner shells out to a real clang-scan-deps binary, mirroring
// moduleresolver.cpp's parse_dependency_db.
type ExecRunner struct {
	// Bin is the clang-scan-deps executable name or path. Defaults to
	// "clang-scan-deps" when empty.
	Bin string
}

func (r ExecRunner) Run(ctx context.Context, compDBPath string) ([]byte, error) {
	bin := r.Bin
	if bin == "" {
		bin = "clang-scan-deps"
	}
	cmd := exec.CommandContext(ctx, bin, "-format=p1689", "-compilation-database", compDBPath)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", bin, err)
	}
	return out, nil
}

// Scanner drives the compilation-database → clang-scan-deps → P1689
// pipeline, grounded on moduleresolver.cpp's resolve_modules. Unlike the
// original's single whole-database invocation, Scanner shards the
// compilation database and runs clang-scan-deps concurrently across
// shards (one clang-scan-deps process per shard), since module scanning
// is the single most expensive step per build (spec.md §9 "module-scan
// build cache").
type Scanner struct {
	Runner Runner
	// ShardSize caps how many compilation-database entries go into a
	// single clang-scan-deps invocation. Defaults to 64.
	ShardSize int
	// Cache, when set, skips re-invoking the Runner for a shard whose
	// source files are unchanged since the last scan.
	Cache *scancache.Store
}

// NewScanner returns a Scanner backed by a real clang-scan-deps binary.
func NewScanner() *Scanner {
	return &Scanner{Runner: ExecRunner{}}
}

func (s *Scanner) shardSize() int {
	if s.ShardSize > 0 {
		return s.ShardSize
	}
	return 64
}

// Scan splits entries into shards, writes each shard's compilation
// database under scratchDir, and runs the Runner over every shard
// concurrently, merging the resulting P1689 rules. Shard i's result is
// placed at result index i regardless of completion order, so the merged
// Dependencies document is deterministic.
func (s *Scanner) Scan(ctx context.Context, entries []CompDBEntry, scratchDir string) (Dependencies, error) {
	if len(entries) == 0 {
		return Dependencies{}, nil
	}

	shardSize := s.shardSize()
	var shards [][]CompDBEntry
	for i := 0; i < len(entries); i += shardSize {
		end := i + shardSize
		if end > len(entries) {
			end = len(entries)
		}
		shards = append(shards, entries[i:end])
	}

	results := make([]Dependencies, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			dep, err := s.scanShard(gctx, i, shard, scratchDir)
			if err != nil {
				return err
			}
			results[i] = dep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dependencies{}, err
	}

	var merged Dependencies
	for _, r := range results {
		merged.Merge(r)
	}
	log.Debug("module scan complete", "shards", len(shards), "rules", len(merged.Rules))
	return merged, nil
}

func (s *Scanner) scanShard(ctx context.Context, index int, shard []CompDBEntry, scratchDir string) (Dependencies, error) {
	var hash string
	if s.Cache != nil {
		files := make([]string, len(shard))
		for i, e := range shard {
			files[i] = e.File
		}
		hash = scancache.HashFiles(files)
		if cached, ok := s.Cache.Lookup(hash); ok {
			var deps Dependencies
			if err := json.Unmarshal(cached, &deps); err == nil {
				log.Debug("module scan cache hit", "shard", index, "hash", hash)
				return deps, nil
			}
		}
	}

	path := filepath.Join(scratchDir, fmt.Sprintf("dependency-db.%d.json", index))
	if err := WriteCompilationDatabase(path, shard); err != nil {
		return Dependencies{}, fmt.Errorf("writing shard %d compilation database: %w", index, err)
	}
	defer os.Remove(path)

	out, err := s.Runner.Run(ctx, path)
	if err != nil {
		return Dependencies{}, err
	}

	var deps Dependencies
	if err := json.Unmarshal(out, &deps); err != nil {
		return Dependencies{}, fmt.Errorf("parsing p1689 output for shard %d: %w", index, err)
	}

	if s.Cache != nil {
		if err := s.Cache.Put(hash, out); err != nil {
			log.Warn("failed to persist module scan cache entry", "shard", index, "error", err)
		}
	}
	return deps, nil
}
