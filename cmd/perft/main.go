package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"shogi/pkg/shogi"
)

func main() {
	configPath := flag.String("config", "", "config.json path (default: search upward from cwd)")
	sfen := flag.String("sfen", "", "start position in SFEN (default: config or standard position)")
	kifPath := flag.String("kif", "", "start from a KIF record instead of -sfen")
	ply := flag.Int("ply", -1, "with -kif, the ply to start from (-1 = end of game)")
	depth := flag.Int("depth", 0, "perft depth (default: config)")
	divide := flag.Bool("divide", false, "print per-move node counts at root")
	workers := flag.Int("workers", 0, "parallel root searches (0 = config or NumCPU)")
	output := flag.String("output", "", "write divide records to this parquet file")
	baseline := flag.String("baseline", "", "compare divide counts against this parquet file")
	repeat := flag.Int("repeat", 1, "repeat perft N times for steadier timings")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["sfen"] {
		cfg.SFEN = *sfen
	}
	if set["depth"] {
		cfg.Depth = *depth
	}
	if set["workers"] {
		cfg.Workers = *workers
	}
	if set["output"] {
		cfg.Output = *output
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Depth <= 0 {
		fatal(fmt.Errorf("-depth must be > 0"))
	}

	pos, err := startPosition(cfg.SFEN, *kifPath, *ply)
	if err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "position: %s\n", pos.SFEN(1))
	fmt.Fprintf(os.Stderr, "depth: %d, workers: %d\n", cfg.Depth, cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	needDivide := *divide || cfg.Output != "" || *baseline != ""
	if needDivide {
		start := time.Now()
		entries, err := pos.PerftDivideParallel(ctx, cfg.Depth, cfg.Workers)
		if err != nil {
			fatal(err)
		}
		elapsed := time.Since(start)
		var sum uint64
		for _, e := range entries {
			if *divide {
				fmt.Printf("%s: %d\n", e.USI, e.Nodes)
			}
			sum += e.Nodes
		}
		fmt.Printf("Total: %d\n", sum)
		fmt.Fprintf(os.Stderr, "elapsed %v, %.0f nodes/s\n", elapsed.Round(time.Millisecond), float64(sum)/elapsed.Seconds())

		records := shogi.DivideRecords(pos, cfg.Depth, entries)
		if cfg.Output != "" {
			if err := shogi.WritePerftParquet(cfg.Output, records, int64(cfg.Workers)); err != nil {
				fatal(err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%d moves)\n", cfg.Output, len(records))
		}
		if *baseline != "" {
			expected, err := shogi.ReadPerftParquet(*baseline, int64(cfg.Workers))
			if err != nil {
				fatal(err)
			}
			mismatches := shogi.CompareDivide(pos.SFEN(1), int32(cfg.Depth), records, expected)
			for _, m := range mismatches {
				fmt.Fprintf(os.Stderr, "mismatch %s\n", m)
			}
			if len(mismatches) > 0 {
				fatal(fmt.Errorf("%d moves differ from %s", len(mismatches), *baseline))
			}
			fmt.Fprintf(os.Stderr, "matches %s\n", *baseline)
		}
		return
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		n, err := pos.PerftParallel(ctx, cfg.Depth, cfg.Workers)
		if err != nil {
			fatal(err)
		}
		totalNodes += n
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Depth Nodes Time NPS
	fmt.Printf("%d \t%d \t%s \t%.0f\n", cfg.Depth, totalNodes, elapsed.Round(time.Millisecond), nps)
}

// loadConfig reads an explicit config file, or the nearest config.json
// above the working directory when there is one.
func loadConfig(path string) (shogi.Config, error) {
	if path != "" {
		return shogi.LoadConfig(path)
	}
	found, _, err := shogi.FindConfigPath()
	if err != nil {
		return shogi.DefaultConfig(), nil
	}
	fmt.Fprintf(os.Stderr, "config: %s\n", found)
	return shogi.LoadConfig(found)
}

func startPosition(sfen, kifPath string, ply int) (*shogi.Position, error) {
	if kifPath == "" {
		if sfen == "" {
			sfen = shogi.StandardSFEN
		}
		return shogi.ParseSFEN(sfen)
	}
	game, err := shogi.LoadGameFromKIF(kifPath)
	if err != nil {
		return nil, err
	}
	if ply < 0 {
		ply = game.MoveCount()
	}
	return game.PositionAt(ply)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
