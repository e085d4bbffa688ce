package shogi

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Perft counts the leaf nodes of the legal move tree depth plies deep.
// Every branch runs on its own clone.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.Moves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		nodes += p.Clone().ApplyMove(m).Reverse().Perft(depth - 1)
	}
	return nodes
}

type DivideEntry struct {
	Move  Move
	USI   string
	Nodes uint64
}

// PerftDivide reports the perft count below each root move, in Moves order.
func (p *Position) PerftDivide(depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	moves := p.Moves()
	entries := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		entries = append(entries, DivideEntry{
			Move:  m,
			USI:   p.USI(m),
			Nodes: p.Clone().ApplyMove(m).Reverse().Perft(depth - 1),
		})
	}
	return entries
}

// PerftParallel computes Perft with one task per root move, at most workers
// at a time (unlimited when workers <= 0). Cancelling ctx stops the search
// between branches and returns ctx.Err().
func (p *Position) PerftParallel(ctx context.Context, depth, workers int) (uint64, error) {
	if depth <= 0 {
		return 1, nil
	}
	entries, err := p.PerftDivideParallel(ctx, depth, workers)
	if err != nil {
		return 0, err
	}
	var nodes uint64
	for _, e := range entries {
		nodes += e.Nodes
	}
	return nodes, nil
}

// PerftDivideParallel is PerftDivide with root moves searched concurrently.
// The result keeps Moves order.
func (p *Position) PerftDivideParallel(ctx context.Context, depth, workers int) ([]DivideEntry, error) {
	if depth <= 0 {
		return nil, nil
	}
	moves := p.Moves()
	entries := make([]DivideEntry, len(moves))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, m := range moves {
		if gctx.Err() != nil {
			break
		}
		entries[i] = DivideEntry{Move: m, USI: p.USI(m)}
		child := p.Clone().ApplyMove(m).Reverse()
		g.Go(func() error {
			n, err := child.perftContext(gctx, depth-1)
			entries[i].Nodes = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *Position) perftContext(ctx context.Context, depth int) (uint64, error) {
	if depth <= 0 {
		return 1, nil
	}
	moves := p.Moves()
	if depth == 1 {
		return uint64(len(moves)), nil
	}
	var nodes uint64
	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := p.Clone().ApplyMove(m).Reverse().perftContext(ctx, depth-1)
		if err != nil {
			return 0, err
		}
		nodes += n
	}
	return nodes, nil
}
