// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/term"

	"label-scan/internal/config"
	"label-scan/internal/formatters"
	_ "label-scan/internal/formatters/json"
	_ "label-scan/internal/formatters/text"
	"label-scan/internal/observability"
	"label-scan/internal/ocr/tesseract"
	"label-scan/internal/parallel"
	"label-scan/internal/pipeline"
	"label-scan/internal/report"
	"label-scan/internal/version"
	"label-scan/internal/web"
)

// configFlags holds command line flag values
type configFlags struct {
	configFile   string
	outputFormat string
	outputFile   string
	languages    string
	policy       string
	maskedOutDir string
	workers      int
	verbose      bool
	debug        bool
	noColor      bool
	webMode      bool
	webPort      string
	showVersion  bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Println(version.Info())
		return
	}

	cfg := loadConfiguration(flags.configFile)
	applyFlags(cfg, flags)

	observer := observability.NewStandardObserver(observabilityLevel(cfg), os.Stderr)
	pipe, err := pipeline.New(cfg, tesseract.NewEngine(), observer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flags.webMode {
		if err := web.NewWebServer(cfg.Server.Port, pipe).Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files. Usage: label-scan [options] <image> [image...]")
		flag.Usage()
		os.Exit(1)
	}

	if err := runScan(cfg, flags, pipe, observer, files); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *configFlags {
	flags := &configFlags{}
	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&flags.outputFormat, "format", "", "Output format: text, json (default: text)")
	flag.StringVar(&flags.outputFile, "output", "", "Path to output file (if not specified, output to stdout)")
	flag.StringVar(&flags.languages, "languages", "", "Comma-separated OCR languages, e.g. 'eng,tam'")
	flag.StringVar(&flags.policy, "policy", "", "Scoring policy: standard or enriched")
	flag.StringVar(&flags.maskedOutDir, "masked-out", "", "Directory to write PII-masked copies of scanned images")
	flag.IntVar(&flags.workers, "workers", 0, "Worker count for batch scans (default: from config)")
	flag.BoolVar(&flags.verbose, "verbose", false, "Display detailed information for each scan")
	flag.BoolVar(&flags.debug, "debug", false, "Enable debug logging of analyzer timings")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.webMode, "web", false, "Start web server mode instead of CLI scanning")
	flag.StringVar(&flags.webPort, "port", "", "Port for web server (default: 8080)")
	flag.BoolVar(&flags.showVersion, "version", false, "Show version information")
	flag.Parse()
	return flags
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// applyFlags overlays explicitly set flags on the loaded configuration.
func applyFlags(cfg *config.Config, flags *configFlags) {
	if isFlagSet("format") && flags.outputFormat != "" {
		cfg.Defaults.Format = flags.outputFormat
	}
	if isFlagSet("policy") && flags.policy != "" {
		cfg.Defaults.Policy = flags.policy
	}
	if isFlagSet("languages") && flags.languages != "" {
		cfg.OCR.Languages = splitTrim(flags.languages)
	}
	if isFlagSet("workers") && flags.workers > 0 {
		cfg.Batch.Workers = flags.workers
	}
	if isFlagSet("port") && flags.webPort != "" {
		cfg.Server.Port = flags.webPort
	}
	if flags.verbose {
		cfg.Defaults.Verbose = true
	}
	if flags.debug {
		cfg.Defaults.Debug = true
	}
	if flags.noColor || !isTerminal(os.Stdout) {
		cfg.Defaults.NoColor = true
	}
}

func observabilityLevel(cfg *config.Config) observability.ObservabilityLevel {
	if cfg.Defaults.Debug {
		return observability.ObservabilityDebug
	}
	return observability.ObservabilityOff
}

// runScan executes the batch, writes masked copies when requested, and emits
// the formatted reports. A scan that needed manual review or failed flips the
// exit code via the returned error.
func runScan(cfg *config.Config, flags *configFlags, pipe *pipeline.Pipeline, observer *observability.StandardObserver, files []string) error {
	pool := parallel.NewWorkerPool(cfg.Batch.Workers, pipe, observer)
	results, summary, err := pool.ScanFiles(context.Background(), files, pipeline.Options{
		KeepMask: flags.maskedOutDir != "",
	})
	if err != nil {
		return err
	}

	// Stable output order regardless of worker completion order.
	sort.Slice(results, func(i, j int) bool { return results[i].FilePath < results[j].FilePath })

	var ok []*parallel.Result
	var failed []*parallel.Result
	for i := range results {
		if results[i].Error != nil {
			failed = append(failed, &results[i])
		} else {
			ok = append(ok, &results[i])
		}
	}

	if flags.maskedOutDir != "" {
		if err := writeMaskedImages(flags.maskedOutDir, ok); err != nil {
			return err
		}
	}

	output, err := formatReports(cfg, ok)
	if err != nil {
		return err
	}

	if flags.outputFile != "" {
		if err := os.WriteFile(flags.outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	} else if output != "" {
		fmt.Println(output)
	}

	for _, r := range failed {
		fmt.Fprintf(os.Stderr, "Failed: %v\n", r.Error)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to scan", summary.Failed, summary.Total)
	}
	return nil
}

func formatReports(cfg *config.Config, results []*parallel.Result) (string, error) {
	reports := make([]*report.ComplianceReport, 0, len(results))
	for _, r := range results {
		reports = append(reports, r.Report)
	}
	return formatters.Export(cfg.Defaults.Format, reports, formatters.FormatterOptions{
		Verbose: cfg.Defaults.Verbose,
		NoColor: cfg.Defaults.NoColor,
	})
}

// writeMaskedImages persists the PII-redacted PNGs next to their source base
// names under dir.
func writeMaskedImages(dir string, results []*parallel.Result) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating masked output dir: %w", err)
	}
	for _, r := range results {
		if r.Report == nil || len(r.Report.MaskedImagePNG) == 0 {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(r.FilePath), filepath.Ext(r.FilePath))
		out := filepath.Join(dir, base+".masked.png")
		if err := os.WriteFile(out, r.Report.MaskedImagePNG, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
	}
	return nil
}

// isFlagSet reports whether a flag was explicitly provided on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func splitTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
