package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"shogi/pkg/shogi"
)

// result is the outcome of checking one KIF file. moves counts the legal
// moves replayed before err; total is the length of the move list.
type result struct {
	path    string
	moves   int
	total   int
	foulEnd bool
	err     error
}

type outcome int

const (
	outcomeLegal outcome = iota
	outcomeFoul
	outcomeIllegal
	outcomeUnreadable
)

// classify sorts a result into the report buckets. A record ending in a
// foul is expected to fail on its last move and nowhere earlier.
func classify(r result) (outcome, error) {
	switch {
	case r.err == nil && !r.foulEnd:
		return outcomeLegal, nil
	case r.err == nil:
		return outcomeIllegal, errors.New("record ends in a foul but every move is legal")
	case !errors.Is(r.err, shogi.ErrIllegalMove):
		return outcomeUnreadable, r.err
	case r.foulEnd && r.moves == r.total-1:
		return outcomeFoul, r.err
	case r.foulEnd:
		return outcomeIllegal, fmt.Errorf("before the final foul: %w", r.err)
	default:
		return outcomeIllegal, r.err
	}
}

func main() {
	inputDir := flag.String("input", "test_kif", "input directory for KIF files")
	maxFiles := flag.Int("max-files", 0, "maximum number of files to check (0=all)")
	workers := flag.Int("workers", 0, "number of parallel workers (0=NumCPU)")
	verbose := flag.Bool("v", false, "print every file")
	flag.Parse()

	if *workers <= 0 {
		*workers = runtime.NumCPU()
	}

	start := time.Now()
	totalFiles, err := shogi.CountKIF(*inputDir)
	if err != nil {
		fatal(err)
	}
	if totalFiles == 0 {
		fatal(fmt.Errorf("no .kif files found in %s", *inputDir))
	}
	if *maxFiles > 0 && totalFiles > *maxFiles {
		totalFiles = *maxFiles
	}
	fmt.Fprintf(os.Stderr, "files: %d, workers: %d\n", totalFiles, *workers)

	var mu sync.Mutex
	var checked, moves atomic.Int64
	var clean, fouls, bad, unreadable int
	report := func(r result) {
		mu.Lock()
		defer mu.Unlock()
		kind, err := classify(r)
		switch kind {
		case outcomeLegal:
			clean++
			if *verbose {
				fmt.Fprintf(os.Stderr, "ok %s (%d moves)\n", r.path, r.moves)
			}
		case outcomeFoul:
			fouls++
			if *verbose {
				fmt.Fprintf(os.Stderr, "foul %s: %v\n", r.path, err)
			}
		case outcomeIllegal:
			bad++
			fmt.Fprintf(os.Stderr, "illegal %s: %v\n", r.path, err)
		default:
			unreadable++
			fmt.Fprintf(os.Stderr, "unreadable %s: %v\n", r.path, err)
		}
	}

	ch := make(chan string, *workers*4)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer close(ch)
		return feedFiles(ctx, *inputDir, *maxFiles, ch)
	})
	for w := 0; w < *workers; w++ {
		g.Go(func() error {
			for path := range ch {
				r := checkFile(path)
				moves.Add(int64(r.moves))
				report(r)
				if n := checked.Add(1); n%10000 == 0 {
					fmt.Fprintf(os.Stderr, "\r  %d/%d", n, totalFiles)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "checked %d files, %d moves in %v\n",
		checked.Load(), moves.Load(), time.Since(start).Round(time.Millisecond))
	fmt.Printf("legal: %d, expected fouls: %d, illegal: %d, unreadable: %d\n", clean, fouls, bad, unreadable)
	if bad > 0 || unreadable > 0 {
		os.Exit(1)
	}
}

// feedFiles streams paths from WalkKIF into ch, respecting maxFiles.
func feedFiles(ctx context.Context, inputDir string, maxFiles int, ch chan<- string) error {
	sent := 0
	return shogi.WalkKIF(inputDir, func(path string) error {
		if maxFiles > 0 && sent >= maxFiles {
			return filepath.SkipAll
		}
		select {
		case ch <- path:
		case <-ctx.Done():
			return ctx.Err()
		}
		sent++
		return nil
	})
}

func checkFile(path string) result {
	game, err := shogi.LoadGameFromKIF(path)
	if err != nil {
		return result{path: path, err: err}
	}
	n, err := game.Validate()
	return result{path: path, moves: n, total: game.MoveCount(), foulEnd: game.FoulEnd(), err: err}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
