// Package walker implements batch extraction over an addon source tree.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"npc-localizer/internal/irfile"
	"npc-localizer/internal/parser"
	"npc-localizer/internal/worker"
)

// Walker discovers source modules matching a filename suffix.
type Walker struct {
	suffix string
}

// NewWalker creates a walker matching files ending in suffix
// (e.g. "Trash.lua").
func NewWalker(suffix string) *Walker {
	return &Walker{suffix: suffix}
}

// Walk discovers all matching files under root.
func (w *Walker) Walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var paths []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, w.suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(paths)).Str("root", root).Msg("Discovered files")
	return paths, nil
}

// FileReport is the batch outcome for one source file.
type FileReport struct {
	Path     string
	Output   string
	Warnings []string
	Err      error
}

// ExtractAll walks root, extracts every matching module, and writes its
// IR under outputDir, mirroring the source tree layout. Files are
// processed concurrently; each file's outcome is independent.
func (w *Walker) ExtractAll(ctx context.Context, root, outputDir string, format irfile.Format, workers int) ([]FileReport, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	paths, err := w.Walk(rootAbs)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(workers, func(ctx context.Context, path string) (FileReport, error) {
		report := w.extractOne(rootAbs, outputDir, path, format)
		return report, report.Err
	})

	results := pool.Execute(ctx, paths)

	reports := make([]FileReport, 0, len(results))
	for _, res := range results {
		if res.Input == "" {
			continue
		}
		reports = append(reports, res.Result)
	}
	return reports, nil
}

func (w *Walker) extractOne(rootAbs, outputDir, path string, format irfile.Format) FileReport {
	report := FileReport{Path: path}

	result, err := parser.ParseFile(path)
	if err != nil {
		report.Err = err
		return report
	}
	report.Warnings = result.Warnings

	if len(result.Records) == 0 {
		return report
	}

	rel, err := filepath.Rel(rootAbs, path)
	if err != nil {
		report.Err = fmt.Errorf("compute relative path: %w", err)
		return report
	}

	name := result.Module
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	outPath := filepath.Join(outputDir, filepath.Dir(rel), name+"."+string(format))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		report.Err = fmt.Errorf("create output directory: %w", err)
		return report
	}

	if err := irfile.WriteFile(outPath, result.Module, result.Records, format); err != nil {
		report.Err = err
		return report
	}

	report.Output = outPath
	log.Info().Str("input", path).Str("output", outPath).Int("records", len(result.Records)).Msg("Module extracted")
	return report
}
