// Package linker: the tech-index builder.
package linker

import (
	"context"
	"errors"
	"fmt"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
	"github.com/lcafoundry/lcacore/index"
)

// ErrCancelled is returned when the build is cancelled between blocks.
var ErrCancelled = errors.New("linker: cancelled")

// Builder expands a product system into a TechIndex by breadth-first
// link closure.
type Builder struct {
	source data.Source
	search *Search
}

// NewBuilder returns a builder over the given source and linking
// configuration.
func NewBuilder(source data.Source, config core.LinkingConfig) *Builder {
	return &Builder{source: source, search: NewSearch(source, config)}
}

// Build expands sys into a technology index.
// Stage 1 (Seed): the reference product takes position 0, the final
// demand is recorded, and the author-declared system links are collected
// by exchange key; none of them is written to the link table here.
// Stage 2 (Expand): BFS over provider discovery. Each block batch-loads
// the exchanges of the frontier's processes; the provider search runs
// for every link candidate and its result is recorded; a declared link
// is recorded only where the search resolves nothing. Declared links on
// exchanges of processes the expansion never reaches are not recorded
// and add nothing to the index. Newly
// discovered providers join the next frontier; the visited set makes
// cycles terminate.
//
// Cancellation is polled once per BFS block.
func (b *Builder) Build(ctx context.Context, sys *core.ProductSystem) (*index.TechIndex, error) {
	ix := index.NewTechIndex(sys.Reference(), sys.Demand)
	declared := make(map[core.ExchangeKey]core.ProcessProduct, len(sys.Links))
	for _, l := range sys.Links {
		declared[l.Key()] = l.Provider()
	}

	visited := map[core.ProcessProduct]struct{}{ix.Ref(): {}}
	frontier := []core.ProcessProduct{ix.Ref()}

	for len(frontier) > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		default:
		}

		ids := make(map[uint64]struct{}, len(frontier))
		for _, p := range frontier {
			ids[p.ProcessID] = struct{}{}
		}
		exchanges, err := b.source.Exchanges(ids)
		if err != nil {
			return nil, fmt.Errorf("linker: load exchanges: %w", err)
		}

		var next []core.ProcessProduct
		enqueue := func(p core.ProcessProduct) {
			if _, seen := visited[p]; seen {
				return
			}
			visited[p] = struct{}{}
			ix.Add(p)
			next = append(next, p)
		}

		for _, recipient := range frontier {
			for _, e := range exchanges[recipient.ProcessID] {
				var provider core.ProcessProduct
				var ok bool
				if b.search.IsLinkCandidate(e) {
					provider, ok, err = b.search.Find(e)
					if err != nil {
						return nil, fmt.Errorf("linker: provider search: %w", err)
					}
				}
				if !ok {
					// a declared link survives only where the search
					// resolves nothing
					if provider, ok = declared[e.Key()]; !ok {
						continue // unlinked under the policy
					}
				}
				ix.PutLink(e.Key(), provider)
				enqueue(provider)
			}
		}
		frontier = next
	}
	return ix, nil
}
