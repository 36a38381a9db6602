// Package sankey: the upstream contribution graph.
package sankey

import (
	"container/heap"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/results"
)

// Node is one materialised product of the contribution graph.
type Node struct {
	// Index is the tech column of the product.
	Index int
	// Product identifies the process/flow pair of the column.
	Product core.ProcessProduct
	// Direct is the contribution of the column itself.
	Direct float64
	// Total is the upstream contribution of the column, total factor
	// applied.
	Total float64
	// Share is Total relative to the root's Total; 1 for the root.
	Share float64
	// Providers are the materialised upstream neighbours: the columns
	// this product consumes from.
	Providers []*Node
}

// Graph is the bounded upstream tree of one selection. The root comes
// first; the other nodes appear in the order they were materialised:
// nodes are expanded largest share first, and the new providers of one
// expanded node are added in column order.
type Graph struct {
	Root *Node

	nodes   []*Node
	byIndex map[int]*Node
}

// NodeCount returns the number of materialised nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// NodeOf returns the node of tech column j, nil if it was cut off.
func (g *Graph) NodeOf(j int) *Node { return g.byIndex[j] }

// Each visits the nodes in expansion order; return false to stop early.
func (g *Graph) Each(fn func(n *Node) bool) {
	for _, n := range g.nodes {
		if !fn(n) {
			return
		}
	}
}

// Builder configures one graph construction over a full result.
type Builder struct {
	result   results.Full
	direct   func(j int) float64
	total    func(j int) float64
	minShare float64
	maxNodes int
}

// OfFlow selects an intervention row: node values are direct and
// upstream amounts of that flow.
func OfFlow(r results.Full, row int) *Builder {
	return &Builder{
		result: r,
		direct: func(j int) float64 { return r.DirectFlowOf(row, j) },
		total: func(j int) float64 {
			return r.TotalFlowOfOne(row, j) * r.TotalFactorOf(j)
		},
	}
}

// OfImpact selects an impact category row.
func OfImpact(r results.Full, k int) *Builder {
	at := func(v []float64) float64 {
		if k < 0 || k >= len(v) {
			return 0
		}
		return v[k]
	}
	return &Builder{
		result: r,
		direct: func(j int) float64 { return at(r.DirectImpactsOf(j)) },
		total:  func(j int) float64 { return at(r.TotalImpactsOf(j)) },
	}
}

// OfCosts selects the net-cost results.
func OfCosts(r results.Full) *Builder {
	return &Builder{
		result: r,
		direct: r.DirectCostsOf,
		total:  r.TotalCostsOf,
	}
}

// MinShare drops providers whose absolute share falls below v.
func (b *Builder) MinShare(v float64) *Builder {
	b.minShare = v
	return b
}

// MaxNodes caps the graph size; 0 means unbounded. The root always
// materialises.
func (b *Builder) MaxNodes(n int) *Builder {
	b.maxNodes = n
	return b
}

// candidate orders the expansion frontier by share, larger first,
// column position breaking ties for determinism.
type candidate struct {
	node  *Node
	share float64
}

type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	si, sj := abs(h[i].share), abs(h[j].share)
	if si != sj {
		return si > sj
	}
	return h[i].node.Index < h[j].node.Index
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)   { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Build expands the graph from the reference column, following tech
// links upstream, largest shares first, until the cutoff or node bound
// stops it. Cycles close as edges to already materialised nodes.
func (b *Builder) Build() *Graph {
	ix := b.result.TechIndex()
	g := &Graph{byIndex: make(map[int]*Node)}

	rootTotal := b.total(0)
	g.Root = b.materialize(g, 0, rootTotal, rootTotal)

	frontier := &candidateHeap{{node: g.Root, share: g.Root.Share}}
	heap.Init(frontier)
	for frontier.Len() > 0 {
		c := heap.Pop(frontier).(candidate)
		for _, i := range b.providersOf(c.node.Index, ix.Size()) {
			if provider, ok := g.byIndex[i]; ok {
				c.node.Providers = append(c.node.Providers, provider)
				continue
			}
			if b.maxNodes > 0 && len(g.nodes) >= b.maxNodes {
				continue
			}
			total := b.total(i)
			share := shareOf(total, rootTotal)
			if abs(share) < b.minShare {
				continue
			}
			provider := b.materialize(g, i, total, rootTotal)
			c.node.Providers = append(c.node.Providers, provider)
			heap.Push(frontier, candidate{node: provider, share: share})
		}
	}
	return g
}

func (b *Builder) materialize(g *Graph, j int, total, rootTotal float64) *Node {
	p, _ := b.result.TechIndex().At(j)
	n := &Node{
		Index:   j,
		Product: p,
		Direct:  b.direct(j),
		Total:   total,
		Share:   shareOf(total, rootTotal),
	}
	g.nodes = append(g.nodes, n)
	g.byIndex[j] = n
	return n
}

// providersOf collects the off-diagonal non-zeros of column j: the
// columns whose products process j consumes.
func (b *Builder) providersOf(j, n int) []int {
	var providers []int
	for i := 0; i < n; i++ {
		if i == j {
			continue
		}
		if b.result.TechValueOf(i, j) != 0 {
			providers = append(providers, i)
		}
	}
	return providers
}

func shareOf(total, rootTotal float64) float64 {
	if rootTotal == 0 {
		return 0
	}
	return total / rootTotal
}
