package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"vigil/internal/diagfmt"
	"vigil/internal/driver"
	"vigil/internal/library"
	"vigil/internal/trace"
	"vigil/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <file.c|directory>",
	Short: "Trace possible values through a C source file or directory",
	Long:  `Analyze runs the value-flow engine and reports which values each expression can take`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	analyzeCmd.Flags().String("platform", "", "target platform (unix32|unix64|win32|win64)")
	analyzeCmd.Flags().StringSlice("library", nil, "extra library configuration files (yaml)")
	analyzeCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	analyzeCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	analyzeCmd.Flags().Bool("no-cache", false, "disable the persistent disk cache")
	analyzeCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	analyzeCmd.Flags().Bool("trails", false, "include step-by-step fact derivations in json output")
	analyzeCmd.Flags().Bool("source", false, "show source lines with carets under diagnostics")
}

// runAnalyze исполняет команду analyze: один файл или каталог целиком.
// Ненулевой код выхода, если в диагностике есть ошибки.
func runAnalyze(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer dumpTraceOnPanic(cmd)

	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer profCleanup()

	path := args[0]

	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return err
	}

	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	manifestDir := path
	if !st.IsDir() {
		manifestDir = filepath.Dir(path)
	}
	manifest, err := driver.LoadManifest(manifestDir)
	if err != nil && !errors.Is(err, driver.ErrNoManifest) {
		return err
	}
	opts, err = manifest.Apply(opts)
	if err != nil {
		return err
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	// Кэш включён для каталогов по умолчанию; манифест может выключить его явно
	wantCache := st.IsDir() && !noCache &&
		(manifest == nil || manifest.Analysis.Cache == nil || *manifest.Analysis.Cache)
	if wantCache {
		cache, cacheErr := driver.OpenDiskCache("vigil")
		if cacheErr == nil {
			opts.Cache = cache
		}
	}

	var exitCode int
	if st.IsDir() {
		exitCode, err = analyzeDir(cmd, path, opts)
	} else {
		exitCode, err = analyzeFile(cmd, path, opts)
	}
	if err != nil {
		return err
	}
	if exitCode != 0 {
		// Диагностика уже напечатана, usage от cobra не нужен
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

// optionsFromFlags собирает опции драйвера из флагов; нетронутые поля
// заполнит манифест или значения по умолчанию.
func optionsFromFlags(cmd *cobra.Command) (driver.Options, error) {
	var opts driver.Options

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	opts.MaxDiagnostics = maxDiagnostics

	platformName, err := cmd.Flags().GetString("platform")
	if err != nil {
		return opts, fmt.Errorf("failed to get platform flag: %w", err)
	}
	if platformName != "" {
		p, ok := types.PlatformByName(platformName)
		if !ok {
			return opts, fmt.Errorf("unknown platform %q", platformName)
		}
		opts.Platform = p
	}

	libraryFiles, err := cmd.Flags().GetStringSlice("library")
	if err != nil {
		return opts, fmt.Errorf("failed to get library flag: %w", err)
	}
	if len(libraryFiles) > 0 {
		lib, err := library.Load(libraryFiles...)
		if err != nil {
			return opts, fmt.Errorf("library: %w", err)
		}
		opts.Library = lib
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	opts.Jobs = jobs

	opts.Tracer = trace.FromContext(cmd.Context())
	return opts, nil
}

func analyzeFile(cmd *cobra.Command, path string, opts driver.Options) (int, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return 0, fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return 0, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	trails, err := cmd.Flags().GetBool("trails")
	if err != nil {
		return 0, fmt.Errorf("failed to get trails flag: %w", err)
	}
	showSource, err := cmd.Flags().GetBool("source")
	if err != nil {
		return 0, fmt.Errorf("failed to get source flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return 0, fmt.Errorf("failed to get timings flag: %w", err)
	}

	res, err := driver.AnalyzeFile(path, opts)
	if err != nil {
		return 0, fmt.Errorf("analysis failed: %w", err)
	}

	exit := 0
	if res.Bag.HasErrors() {
		exit = 1
	}

	// Диагностика уходит в stderr, факты в stdout
	if res.Bag.Len() > 0 {
		prettyOpts := diagfmt.PrettyOpts{
			Color:      useColor(cmd, os.Stderr),
			ShowSource: showSource,
			ShowNotes:  withNotes,
		}
		diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, prettyOpts)
	}

	groups := driver.CollectFacts(res)
	switch format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:      useColor(cmd, os.Stdout),
			ShowSource: showSource,
		}
		diagfmt.FactsPretty(os.Stdout, res.FileSet, groups, prettyOpts)
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     withNotes,
			IncludeTrails:    trails,
		}
		if err := diagfmt.FactsJSON(os.Stdout, res.FileSet, groups, jsonOpts); err != nil {
			return 0, fmt.Errorf("failed to format facts: %w", err)
		}
	default:
		return 0, fmt.Errorf("unknown format: %s", format)
	}

	if showTimings {
		fmt.Fprint(os.Stderr, res.Timer.Summary())
	}

	return exit, nil
}

func analyzeDir(cmd *cobra.Command, dir string, opts driver.Options) (int, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return 0, fmt.Errorf("failed to get format flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return 0, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return 0, err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return 0, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return 0, fmt.Errorf("failed to get timings flag: %w", err)
	}

	var summaries []driver.FileSummary
	if shouldUseTUI(mode) && format == "pretty" {
		files, err := collectCFiles(dir)
		if err != nil {
			return 0, err
		}
		summaries, err = runAnalyzeDirWithUI(cmd.Context(), "vigil: "+dir, files, dir, opts)
		if err != nil {
			return 0, fmt.Errorf("analysis failed: %w", err)
		}
	} else {
		summaries, err = driver.AnalyzeDir(cmd.Context(), dir, opts, nil)
		if err != nil {
			return 0, fmt.Errorf("analysis failed: %w", err)
		}
	}

	exit := 0
	for _, s := range summaries {
		if s.Err != nil || s.Errors > 0 {
			exit = 1
			break
		}
	}

	switch format {
	case "pretty":
		if !quiet {
			printDirSummary(os.Stdout, summaries)
		}
	case "json":
		out := make([]dirSummaryJSON, 0, len(summaries))
		for _, s := range summaries {
			entry := dirSummaryJSON{
				Path:       s.Path,
				Facts:      s.Facts,
				Bailouts:   s.Bailouts,
				Errors:     s.Errors,
				Warnings:   s.Warnings,
				Cached:     s.Cached,
				DurationMS: float64(s.Duration.Microseconds()) / 1000.0,
			}
			if s.Err != nil {
				entry.Error = s.Err.Error()
			}
			out = append(out, entry)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			return 0, fmt.Errorf("failed to encode summary: %w", err)
		}
	default:
		return 0, fmt.Errorf("unknown format: %s", format)
	}

	if showTimings {
		printDirTimings(os.Stderr, summaries)
	}

	return exit, nil
}

type dirSummaryJSON struct {
	Path       string  `json:"path"`
	Facts      int     `json:"facts"`
	Bailouts   int     `json:"bailouts,omitempty"`
	Errors     int     `json:"errors,omitempty"`
	Warnings   int     `json:"warnings,omitempty"`
	Cached     bool    `json:"cached,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

func printDirSummary(out *os.File, summaries []driver.FileSummary) {
	for _, s := range summaries {
		switch {
		case s.Err != nil:
			fmt.Fprintf(out, "%-40s error: %v\n", s.Path, s.Err)
		case s.Cached:
			fmt.Fprintf(out, "%-40s %5d facts (cached)\n", s.Path, s.Facts)
		default:
			fmt.Fprintf(out, "%-40s %5d facts, %d bailouts, %.1f ms\n",
				s.Path, s.Facts, s.Bailouts, float64(s.Duration.Microseconds())/1000.0)
		}
	}
}

// collectCFiles повторяет обход каталожного режима драйвера, чтобы UI знал
// список файлов заранее.
func collectCFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".c" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
