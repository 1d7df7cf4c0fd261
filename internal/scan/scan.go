// Package scan walks the requested paths, feeds analyzable files to a
// bounded worker pool, and folds the resulting records into a project
// summary. Workers only share the duplicate registry, whose check-and-insert
// is atomic; records are absorbed into the summary on a single goroutine so
// totals cannot lose updates.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linetally/linetally/internal/analysis"
	"github.com/linetally/linetally/internal/summary"
	"github.com/linetally/linetally/internal/tokenizer"
	"github.com/linetally/linetally/internal/types"
	"github.com/linetally/linetally/internal/utils"
)

// Options configures one scan run.
type Options struct {
	// Paths are the validated roots to analyze.
	Paths []types.ValidatedPath
	// Suffixes limits analysis to files whose suffix matches any pattern.
	// Shell patterns are allowed; an empty list means every suffix.
	Suffixes []string
	// Workers bounds analysis concurrency; non-positive means NumCPU.
	Workers int
	// CountDuplicates disables duplicate detection so identical files are
	// analyzed normally.
	CountDuplicates bool
	// IsGenerated is the compiled generated-file predicate, or nil.
	IsGenerated analysis.GeneratedPredicate
	// Markers overrides the built-in no-operation marker table, or nil.
	Markers analysis.MarkerTable
	// Counter enables LLM token estimates, or nil.
	Counter tokenizer.Counter
	// Logger receives per-file events.
	Logger *zap.Logger
}

// Result is the outcome of one scan run.
type Result struct {
	Files   []analysis.SourceAnalysis
	Summary *summary.ProjectSummary
}

// scanTask is one file queued for analysis.
type scanTask struct {
	sequence     int
	absolutePath string
	displayPath  string
	group        string
}

// sequencedRecord pairs a finished record with its walk order.
type sequencedRecord struct {
	sequence int
	record   analysis.SourceAnalysis
}

// Run executes the scan. It returns an error only for walk failures;
// per-file read, decode, and lexer failures become error-state records.
func Run(ctx context.Context, options Options) (Result, error) {
	workerCount := options.Workers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	var registry *analysis.DuplicateRegistry
	if !options.CountDuplicates {
		registry = analysis.NewDuplicateRegistry()
	}
	builder := analysis.NewBuilder(analysis.BuilderOptions{
		Registry:    registry,
		IsGenerated: options.IsGenerated,
		Markers:     options.Markers,
		Counter:     options.Counter,
		Logger:      options.Logger,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	tasks := make(chan scanTask, workerCount*4)
	records := make(chan sequencedRecord, workerCount*4)

	group.Go(func() error {
		defer close(tasks)
		return enqueueTasks(groupCtx, options, tasks)
	})

	workerGroup, workerCtx := errgroup.WithContext(groupCtx)
	for workerIndex := 0; workerIndex < workerCount; workerIndex++ {
		workerGroup.Go(func() error {
			for task := range tasks {
				record := builder.BuildAnalysis(task.absolutePath, task.group)
				record.Path = task.displayPath
				select {
				case records <- sequencedRecord{sequence: task.sequence, record: record}:
				case <-workerCtx.Done():
					return workerCtx.Err()
				}
			}
			return nil
		})
	}
	group.Go(func() error {
		defer close(records)
		return workerGroup.Wait()
	})

	collected := make([]sequencedRecord, 0)
	group.Go(func() error {
		for item := range records {
			collected = append(collected, item)
		}
		return nil
	})

	if waitErr := group.Wait(); waitErr != nil {
		return Result{}, waitErr
	}

	// Restore walk order so summaries are independent of worker timing.
	sort.Slice(collected, func(left int, right int) bool {
		return collected[left].sequence < collected[right].sequence
	})

	result := Result{
		Files:   make([]analysis.SourceAnalysis, 0, len(collected)),
		Summary: summary.NewProjectSummary(),
	}
	for _, item := range collected {
		result.Files = append(result.Files, item.record)
		result.Summary.Absorb(item.record)
	}
	return result, nil
}

// enqueueTasks walks every requested root and queues matching files.
func enqueueTasks(ctx context.Context, options Options, tasks chan<- scanTask) error {
	sequence := 0
	send := func(task scanTask) error {
		task.sequence = sequence
		sequence++
		select {
		case tasks <- task:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for _, root := range options.Paths {
		if root.IsDir {
			if walkErr := enqueueDirectory(root.AbsolutePath, options.Suffixes, send); walkErr != nil {
				return walkErr
			}
			continue
		}
		if !matchesSuffix(root.AbsolutePath, options.Suffixes) {
			continue
		}
		task := scanTask{
			absolutePath: root.AbsolutePath,
			displayPath:  filepath.Base(root.AbsolutePath),
			group:        filepath.Base(filepath.Dir(root.AbsolutePath)),
		}
		if sendErr := send(task); sendErr != nil {
			return sendErr
		}
	}
	return nil
}

// enqueueDirectory queues every analyzable file under root. The group label
// of all files is the root's base name.
func enqueueDirectory(root string, suffixes []string, send func(scanTask) error) error {
	groupLabel := filepath.Base(root)
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, entryErr error) error {
		if entryErr != nil {
			return entryErr
		}
		if path == root {
			return nil
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if entry.IsDir() {
			if isFolderNameToSkip(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isFileNameToSkip(entry.Name()) || !matchesSuffix(path, suffixes) {
			return nil
		}
		return send(scanTask{
			absolutePath: path,
			displayPath:  utils.RelativePathOrSelf(path, root),
			group:        groupLabel,
		})
	})
	if walkErr != nil {
		return fmt.Errorf("cannot scan %s for source files: %w", root, walkErr)
	}
	return nil
}

// isFileNameToSkip reports whether a file name is excluded from analysis:
// hidden names and editor backups.
func isFileNameToSkip(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}

// isFolderNameToSkip reports whether a folder is excluded from traversal:
// hidden folders and underscore-prefixed folders.
func isFolderNameToSkip(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || strings.HasSuffix(name, "~")
}

// matchesSuffix reports whether the file suffix matches any configured
// suffix pattern.
func matchesSuffix(path string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	suffix := utils.SuffixOf(path)
	for _, pattern := range suffixes {
		if matched, matchErr := filepath.Match(pattern, suffix); matchErr == nil && matched {
			return true
		}
	}
	return false
}
