package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"musview/pkg/musfile"
)

func main() {
	variantName := flag.String("variant", "fixed", "header layout variant: fixed or scanned")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	logFile := flag.String("log", "musview.log", "log file path")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: musview [options] [dir]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Interactive browser for MUS music files. Lists the .mus files in dir\n")
		fmt.Fprintf(flag.CommandLine.Output(), "(default: current directory), decodes a selection on Enter and writes\n")
		fmt.Fprintf(flag.CommandLine.Output(), "a Standard MIDI File next to the source on 'm'.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	variant, err := musfile.ParseVariant(*variantName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "musview: %v\n", err)
		os.Exit(2)
	}

	dir := "."
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	// The TUI owns the terminal, so logs go to a file.
	file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "musview: open log file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	slog.Info("starting musview", "dir", dir, "variant", variant)

	files, err := scanMUSFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "musview: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "musview: no .mus files in %s\n", dir)
		os.Exit(1)
	}
	slog.Info("scanned directory", "files", len(files))

	runTUI(dir, files, variant)
	slog.Info("shutdown complete")
}

// scanMUSFiles returns the names of the .mus files directly inside dir,
// sorted, extension matched case-insensitively.
func scanMUSFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".mus") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
