// Command mus2midi converts MUS music containers to standard MIDI files.
//
// Usage:
//
//	mus2midi [options] <file-or-glob>...
//
// Options:
//
//	-outdir        Write outputs to this directory (default: next to inputs)
//	-variant       Header title layout: fixed or scanned
//	-summary       Also write a <name>.json decode summary per input
//	-jobs          Number of files converted in parallel
//	-serve         Serve a live progress dashboard on this address
//	-verbose       Debug logging
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"musview/pkg/midiseq"
	"musview/pkg/musfile"
	"musview/web"
)

var (
	outDir      = flag.String("outdir", "", "Write outputs to this directory (default: next to inputs)")
	variantName = flag.String("variant", "fixed", "Header title layout: fixed or scanned")
	summary     = flag.Bool("summary", false, "Also write a <name>.json decode summary per input")
	jobs        = flag.Int("jobs", 1, "Number of files converted in parallel")
	serveAddr   = flag.String("serve", "", "Serve a live progress dashboard on this address (e.g. :8080)")
	verbose     = flag.Bool("verbose", false, "Debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file-or-glob>...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Converts MUS music containers to standard MIDI files.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s data/music/credits.mus\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -outdir out -summary 'data/music/*.mus'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -jobs 4 -serve :8080 'data/music/*.mus'\n", os.Args[0])
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	variant, err := musfile.ParseVariant(*variantName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	files, err := expandArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(files, variant); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// expandArgs resolves globs; a pattern with no matches is kept verbatim so
// a missing file reports a proper open error instead of vanishing.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func run(files []string, variant musfile.Variant) error {
	var dashboard *web.Server
	if *serveAddr != "" {
		dashboard = web.NewServer(*serveAddr)
		go func() {
			if err := dashboard.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("dashboard stopped", "error", err)
			}
		}()
		dashboard.BatchStarted(len(files))
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Files are independent: one decode owns one buffer, so a worker pool
	// needs no shared state beyond the failure counter.
	workers := max(*jobs, 1)
	queue := make(chan string)

	var mu sync.Mutex
	failed := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range queue {
				result := convertFile(path, variant)
				if result.Status != "ok" {
					slog.Warn("skipping file", "file", path, "error", result.Error)
					mu.Lock()
					failed++
					mu.Unlock()
				} else {
					slog.Info("converted", "file", path, "output", result.Output)
				}
				if dashboard != nil {
					dashboard.Report(result)
				}
			}
		}()
	}

	for _, path := range files {
		queue <- path
	}
	close(queue)
	wg.Wait()

	if dashboard != nil {
		dashboard.BatchDone()
		slog.Info("batch finished, dashboard still serving; interrupt to exit")
		waitForInterrupt()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = dashboard.Shutdown(ctx)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}

// convertFile decodes one MUS file and writes its MIDI (and optional JSON
// summary) next to it or into -outdir. Errors end up in the result, never in
// a panic: one bad file must not stop a batch.
func convertFile(path string, variant musfile.Variant) web.Result {
	song, err := musfile.DecodeFile(path, musfile.Options{Variant: variant})
	if err != nil {
		return web.Result{File: path, Status: "error", Error: err.Error()}
	}

	sum := song.Summary()
	sum.File = path
	for _, w := range sum.Warnings {
		slog.Warn("sample use inconsistent", "file", path,
			"sequence", w.Sequence, "channel", w.Channel, "samples", w.Samples)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Dir(path)
	if *outDir != "" {
		dir = *outDir
	}

	midiPath := filepath.Join(dir, name+".mid")
	mid, err := midiseq.Build(song, name)
	if err != nil {
		return web.Result{File: path, Status: "error", Error: err.Error(), Summary: &sum}
	}
	if err := mid.WriteFile(midiPath); err != nil {
		return web.Result{File: path, Status: "error", Error: err.Error(), Summary: &sum}
	}

	if *summary {
		if err := writeSummary(filepath.Join(dir, name+".json"), sum); err != nil {
			return web.Result{File: path, Status: "error", Error: err.Error(), Summary: &sum}
		}
	}

	slog.Debug("decoded", "file", path,
		"channels", sum.ChannelCount, "sequences", sum.NumSequences,
		"samples", sum.SampleCount, "trackBytes", sum.TrackBytes)

	return web.Result{File: path, Status: "ok", Output: midiPath, Summary: &sum}
}

func writeSummary(path string, sum musfile.Summary) error {
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
