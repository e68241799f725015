package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"npc-localizer/internal/cache"
	"npc-localizer/internal/config"
	"npc-localizer/internal/irfile"
	"npc-localizer/internal/locale"
	"npc-localizer/internal/parser"
	"npc-localizer/internal/walker"
	"npc-localizer/internal/wowhead"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "npc-localizer",
		Short: "Extracts NPC name records from BigWigs boss modules and localizes them via wowhead",
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(extractDirCmd())
	rootCmd.AddCommand(syncCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <module.lua>",
		Short: "Extract NPC records from one boss module, writing the IR to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			format, err := parseFormat(formatStr)
			if err != nil {
				return err
			}
			reportMissing, _ := cmd.Flags().GetBool("report-missing")
			return runExtract(args[0], format, reportMissing)
		},
	}

	cmd.Flags().String("format", "toml", "IR format: toml or yaml")
	cmd.Flags().Bool("report-missing", false, "Report unmatched IDs and keys")

	return cmd
}

func extractDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract-dir <input-dir> <output-dir>",
		Short: "Extract every matching boss module under a directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			format, err := parseFormat(formatStr)
			if err != nil {
				return err
			}
			suffix, _ := cmd.Flags().GetString("suffix")
			reportMissing, _ := cmd.Flags().GetBool("report-missing")
			return runExtractDir(args[0], args[1], format, suffix, reportMissing)
		},
	}

	cmd.Flags().String("format", "toml", "IR format: toml or yaml")
	cmd.Flags().String("suffix", "", "Source filename suffix to match (default from MODULE_SUFFIX)")
	cmd.Flags().Bool("report-missing", false, "Report unmatched IDs and keys across the whole tree")

	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <ir-file> <output-dir> [module-name]",
		Short: "Synchronize per-locale files, fetching missing names from wowhead",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			moduleOverride := ""
			if len(args) == 3 {
				moduleOverride = args[2]
			}
			forceAll, _ := cmd.Flags().GetBool("force-all")
			locales, _ := cmd.Flags().GetStringSlice("locales")
			return runSync(args[0], args[1], moduleOverride, forceAll, locales)
		},
	}

	cmd.Flags().Bool("force-all", false, "Re-fetch every entry, overriding existing translations")
	cmd.Flags().StringSlice("locales", nil, "Locale codes to synchronize (default: all supported)")

	return cmd
}

func parseFormat(s string) (irfile.Format, error) {
	switch irfile.Format(s) {
	case irfile.FormatTOML, irfile.FormatYAML:
		return irfile.Format(s), nil
	default:
		return "", fmt.Errorf("unknown IR format: %s", s)
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// runExtract handles the `extract` command.
func runExtract(sourcePath string, format irfile.Format, reportMissing bool) error {
	result, err := parser.ParseFile(sourcePath)
	if err != nil {
		return err
	}

	if err := irfile.Write(os.Stdout, result.Module, result.Records, format); err != nil {
		return err
	}

	reportWarnings(map[string][]string{sourcePath: result.Warnings}, reportMissing)
	return nil
}

// runExtractDir handles the `extract-dir` command.
func runExtractDir(inputDir, outputDir string, format irfile.Format, suffix string, reportMissing bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	if suffix == "" {
		suffix = cfg.ModuleSuffix
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	w := walker.NewWalker(suffix)
	reports, err := w.ExtractAll(ctx, inputDir, outputDir, format, cfg.WorkerCount)
	if err != nil {
		return err
	}

	warnings := make(map[string][]string)
	written := 0
	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			log.Error().Err(report.Err).Str("path", report.Path).Msg("Extraction failed")
			failed++
			continue
		}
		if report.Output != "" {
			written++
		}
		if len(report.Warnings) > 0 {
			warnings[report.Path] = report.Warnings
		}
	}

	reportWarnings(warnings, reportMissing)

	log.Info().
		Int("files", len(reports)).
		Int("written", written).
		Int("failed", failed).
		Msg("Batch extraction complete")

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

// reportWarnings surfaces collected per-file warnings on stderr. Without
// the report flag only a count is shown.
func reportWarnings(byFile map[string][]string, reportMissing bool) {
	total := 0
	for _, ws := range byFile {
		total += len(ws)
	}
	if total == 0 {
		return
	}

	if !reportMissing {
		log.Info().Int("warnings", total).Msg("Unmatched entries found, rerun with --report-missing for details")
		return
	}

	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for _, w := range byFile[path] {
			log.Warn().Str("file", path).Msg(w)
		}
	}
}

// runSync handles the `sync` command.
func runSync(irPath, outputDir, moduleOverride string, forceAll bool, localeCodes []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	module, records, warnings, err := irfile.Read(irPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warn().Str("file", irPath).Msg(w)
	}

	if moduleOverride != "" {
		module = moduleOverride
	}
	if module == "" {
		return fmt.Errorf("%s does not name a module and none was given", irPath)
	}

	locales, err := resolveLocales(localeCodes)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var translator locale.Translator = wowhead.NewClient(cfg.UserAgent, time.Duration(cfg.HTTPTimeoutSec)*time.Second)

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect PostgreSQL: %w", err)
		}
		defer pool.Close()

		lookupCache, err := cache.New(ctx, pool)
		if err != nil {
			return err
		}
		if err := lookupCache.Preload(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to preload cache")
		}
		translator = lookupCache.Wrap(translator)
		log.Info().Msg("Lookup cache enabled")
	}

	syncer := locale.NewSynchronizer(translator, locale.Options{
		ForceAll: forceAll,
		Workers:  cfg.WorkerCount,
	})

	summary := syncer.Sync(ctx, records, module, outputDir, locales)

	log.Info().
		Str("module", module).
		Int("files_written", len(summary.FilesWritten)).
		Int("warnings", len(summary.Warnings)).
		Int("failures", len(summary.Failures)).
		Msg("Synchronization complete")

	if len(summary.Failures) > 0 {
		codes := make([]string, 0, len(summary.Failures))
		for code := range summary.Failures {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		return fmt.Errorf("synchronization failed for locales: %s", strings.Join(codes, ", "))
	}
	return nil
}

func resolveLocales(codes []string) ([]locale.Locale, error) {
	if len(codes) == 0 {
		return locale.Supported, nil
	}

	locales := make([]locale.Locale, 0, len(codes))
	for _, code := range codes {
		l, ok := locale.ByCode(code)
		if !ok {
			return nil, fmt.Errorf("unsupported locale: %s", code)
		}
		locales = append(locales, l)
	}
	return locales, nil
}
