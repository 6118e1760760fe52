package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/countchrisdo/excel-url-downloader/internal/config"
	"github.com/countchrisdo/excel-url-downloader/internal/source"
)

// runInspect opens the spreadsheet without downloading anything and shows
// what a fetch run would do.
func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	excelFile := fs.String("excel", "", "Path to source spreadsheet")
	urlColumn := fs.String("column", "", "Header of the URL column")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: exceldl inspect [options]

Show the spreadsheet's column headers and how many URLs the configured
column contains. No downloads are performed.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return ExitConfigError
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		return ExitConfigError
	}
	cfg = cfg.Merge(config.Config{ExcelFile: *excelFile, URLColumn: *urlColumn})

	headers, err := source.Headers(cfg.ExcelFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading spreadsheet: %v\n", err)
		return ExitSourceError
	}
	fmt.Printf("Columns: %s\n", strings.Join(headers, ", "))

	tasks, err := source.Read(cfg.ExcelFile, cfg.URLColumn, cfg.DefaultExtension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSourceError
	}

	fmt.Printf("URLs in column %q: %d\n", cfg.URLColumn, len(tasks))
	for i, task := range tasks {
		if i == 5 {
			fmt.Printf("  ... and %d more\n", len(tasks)-i)
			break
		}
		fmt.Printf("  row %d: %s -> %s\n", task.Row, task.URL, task.Dest)
	}

	return ExitSuccess
}
