// Package dq: score matrices and weighted aggregation.
package dq

import (
	"fmt"
	"math"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
	"github.com/lcafoundry/lcacore/results"
)

// Aggregation selects how per-exchange scores fold into flow and impact
// results.
type Aggregation int

const (
	// AggregationNone skips flow and impact aggregation entirely.
	AggregationNone Aggregation = iota
	// WeightedAverage weighs each score by the absolute direct
	// contribution of its cell.
	WeightedAverage
	// WeightedSquaredAverage weighs by the squared contribution,
	// emphasising dominant cells.
	WeightedSquaredAverage
	// Maximum takes the worst score over the cells.
	Maximum
)

// NAHandling decides what a 0 score (not assessed) contributes.
type NAHandling int

const (
	// NAExclude keeps the 0 as-is; its weight still counts.
	NAExclude NAHandling = iota
	// NAUseMax substitutes the score count before aggregation.
	NAUseMax
)

// Rounding selects how an aggregated average becomes a score.
type Rounding int

const (
	// RoundHalfUp rounds to the nearest score, .5 upwards.
	RoundHalfUp Rounding = iota
	// RoundCeil always rounds up.
	RoundCeil
)

// Config is one data-quality evaluation request. A nil ProcessSystem
// skips process scores, a nil ExchangeSystem skips exchange scores and
// everything aggregated from them.
type Config struct {
	ProcessSystem  *System
	ExchangeSystem *System
	Aggregation    Aggregation
	NA             NAHandling
	Rounding       Rounding
}

// byteMatrix is a dense score grid; scores fit a byte by construction.
type byteMatrix struct {
	rows, cols int
	cells      []byte
}

func newByteMatrix(rows, cols int) *byteMatrix {
	return &byteMatrix{rows: rows, cols: cols, cells: make([]byte, rows*cols)}
}

func (m *byteMatrix) get(r, c int) byte    { return m.cells[r*m.cols+c] }
func (m *byteMatrix) set(r, c int, v byte) { m.cells[r*m.cols+c] = v }

// Result holds the data-quality scores of one calculation:
//
//   - per-process scores, indicator × tech column;
//   - per-exchange scores, one flow × tech column grid per indicator;
//   - flow results, exchange scores aggregated over the tech columns
//     with direct-contribution weights;
//   - impact results, exchange scores aggregated over all cells with
//     characterised-contribution weights, in total and per column.
//
// Absent inputs leave the respective part nil; accessors return nil for
// missing parts and out-of-range positions.
type Result struct {
	cfg Config

	processData   [][]byte      // indicator × n
	exchangeData  []*byteMatrix // per indicator: m × n
	flowResult    [][]byte      // indicator × m
	impactResult  [][]byte      // indicator × k
	processImpact []*byteMatrix // per indicator: k × n
}

// NewResult loads the score matrices from the source and aggregates
// them against the contribution result.
//
// Errors: malformed entry strings surface as ErrInvalidEntry with the
// owning process in the message; source failures pass through.
func NewResult(cfg Config, source data.Source, r results.Full) (*Result, error) {
	res := &Result{cfg: cfg}
	if err := res.loadProcessData(source, r); err != nil {
		return nil, err
	}
	if err := res.loadExchangeData(source, r); err != nil {
		return nil, err
	}
	res.aggregateFlows(r)
	res.aggregateImpacts(r)
	return res, nil
}

// ProcessScores returns the per-indicator process scores of tech
// column j.
func (res *Result) ProcessScores(j int) []int {
	return columnOf(res.processData, j)
}

// ExchangeScores returns the per-indicator scores of the exchange at
// (flow row, tech column j).
func (res *Result) ExchangeScores(row, j int) []int {
	if res.exchangeData == nil {
		return nil
	}
	values := make([]int, len(res.exchangeData))
	for i, b := range res.exchangeData {
		if row < 0 || row >= b.rows || j < 0 || j >= b.cols {
			return nil
		}
		values[i] = int(b.get(row, j))
	}
	return values
}

// FlowScores returns the per-indicator aggregated scores of a flow row.
func (res *Result) FlowScores(row int) []int {
	return columnOf(res.flowResult, row)
}

// ImpactScores returns the per-indicator aggregated scores of an impact
// category row.
func (res *Result) ImpactScores(k int) []int {
	return columnOf(res.impactResult, k)
}

// ProcessImpactScores returns the per-indicator scores of impact
// category k restricted to tech column j.
func (res *Result) ProcessImpactScores(j, k int) []int {
	if res.processImpact == nil {
		return nil
	}
	values := make([]int, len(res.processImpact))
	for i, b := range res.processImpact {
		if k < 0 || k >= b.rows || j < 0 || j >= b.cols {
			return nil
		}
		values[i] = int(b.get(k, j))
	}
	return values
}

// columnOf reads column j across the indicator rows of grid.
func columnOf(grid [][]byte, j int) []int {
	if grid == nil {
		return nil
	}
	values := make([]int, len(grid))
	for i, row := range grid {
		if j < 0 || j >= len(row) {
			return nil
		}
		values[i] = int(row[j])
	}
	return values
}

func (res *Result) loadProcessData(source data.Source, r results.Full) error {
	system := res.cfg.ProcessSystem
	if system == nil || system.IndicatorCount() == 0 {
		return nil
	}
	ix := r.TechIndex()
	k, n := system.IndicatorCount(), ix.Size()
	res.processData = make([][]byte, k)
	for i := range res.processData {
		res.processData[i] = make([]byte, n)
	}

	cache := make(map[uint64][]int)
	for j := 0; j < n; j++ {
		p, ok := ix.At(j)
		if !ok {
			continue
		}
		values, ok := cache[p.ProcessID]
		if !ok {
			entry, err := source.ProcessDQEntry(p.ProcessID)
			if err != nil {
				return err
			}
			if values, err = system.ToValues(entry); err != nil {
				return fmt.Errorf("process %d: %w", p.ProcessID, err)
			}
			cache[p.ProcessID] = values
		}
		for i := 0; i < k; i++ {
			res.processData[i][j] = byte(values[i])
		}
	}
	return nil
}

func (res *Result) loadExchangeData(source data.Source, r results.Full) error {
	system := res.cfg.ExchangeSystem
	envi := r.EnviIndex()
	if system == nil || system.IndicatorCount() == 0 ||
		envi == nil || envi.Size() == 0 {
		return nil
	}
	ix := r.TechIndex()
	k, m, n := system.IndicatorCount(), envi.Size(), ix.Size()
	res.exchangeData = make([]*byteMatrix, k)
	for i := range res.exchangeData {
		res.exchangeData[i] = newByteMatrix(m, n)
	}

	exchanges, err := source.Exchanges(ix.ProcessIDs())
	if err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		p, ok := ix.At(j)
		if !ok {
			continue
		}
		for _, e := range exchanges[p.ProcessID] {
			if e.Type != core.ElementaryFlow || e.DQEntry == "" {
				continue
			}
			row, ok := envi.Of(e.FlowID, e.LocationID)
			if !ok {
				continue
			}
			values, err := system.ToValues(e.DQEntry)
			if err != nil {
				return fmt.Errorf("process %d exchange %d: %w",
					e.ProcessID, e.ExchangeID, err)
			}
			for i := 0; i < k; i++ {
				res.exchangeData[i].set(row, j, byte(values[i]))
			}
		}
	}
	return nil
}

// aggregateFlows folds the exchange scores row-wise with the direct
// flow contributions G[i,j] = B[i,j]·s[j] as weights.
func (res *Result) aggregateFlows(r results.Full) {
	if res.cfg.Aggregation == AggregationNone || res.exchangeData == nil {
		return
	}
	system := res.cfg.ExchangeSystem
	k, max := system.IndicatorCount(), system.ScoreCount()
	m, n := r.EnviIndex().Size(), r.TechIndex().Size()

	g := directContributions(r, m, n)
	res.flowResult = make([][]byte, k)
	dqs := make([]byte, n)
	weights := make([]float64, n)
	for i := 0; i < k; i++ {
		res.flowResult[i] = make([]byte, m)
		b := res.exchangeData[i]
		for row := 0; row < m; row++ {
			for j := 0; j < n; j++ {
				dqs[j] = b.get(row, j)
				weights[j] = g[j][row]
			}
			res.flowResult[i][row] = res.cfg.fold(dqs, weights, max)
		}
	}
}

// aggregateImpacts folds the exchange scores with characterised
// contributions C[k,i]·G[i,j] as weights, over all cells for the
// totals and per tech column for the process split.
func (res *Result) aggregateImpacts(r results.Full) {
	if res.cfg.Aggregation == AggregationNone || res.exchangeData == nil {
		return
	}
	d := r.Data()
	impacts := r.ImpactIndex()
	if d.C == nil || impacts == nil || impacts.Size() == 0 {
		return
	}
	system := res.cfg.ExchangeSystem
	kInd, max := system.IndicatorCount(), system.ScoreCount()
	kImp := impacts.Size()
	m, n := r.EnviIndex().Size(), r.TechIndex().Size()

	g := directContributions(r, m, n)
	factors := make([][]float64, kImp)
	for kc := 0; kc < kImp; kc++ {
		factors[kc] = make([]float64, m)
		for row := 0; row < m; row++ {
			v, err := d.C.At(kc, row)
			if err != nil {
				return
			}
			factors[kc][row] = v
		}
	}

	res.impactResult = make([][]byte, kInd)
	res.processImpact = make([]*byteMatrix, kInd)
	cellDqs := make([]byte, m*n)
	cellWeights := make([]float64, m*n)
	colDqs := make([]byte, m)
	colWeights := make([]float64, m)
	for i := 0; i < kInd; i++ {
		res.impactResult[i] = make([]byte, kImp)
		res.processImpact[i] = newByteMatrix(kImp, n)
		b := res.exchangeData[i]
		for kc := 0; kc < kImp; kc++ {
			for j := 0; j < n; j++ {
				for row := 0; row < m; row++ {
					dq := b.get(row, j)
					w := factors[kc][row] * g[j][row]
					cellDqs[row*n+j] = dq
					cellWeights[row*n+j] = w
					colDqs[row] = dq
					colWeights[row] = w
				}
				res.processImpact[i].set(kc, j, res.cfg.fold(colDqs, colWeights, max))
			}
			res.impactResult[i][kc] = res.cfg.fold(cellDqs, cellWeights, max)
		}
	}
}

// directContributions collects the columns of G = B·diag(s). Signs do
// not matter to the fold, which takes absolute or squared weights.
func directContributions(r results.Full, m, n int) [][]float64 {
	g := make([][]float64, n)
	for j := 0; j < n; j++ {
		col := r.DirectFlowsOf(j)
		if col == nil {
			col = make([]float64, m)
		}
		g[j] = col
	}
	return g
}

// fold aggregates one score slice under the configured policy. A zero
// total weight yields 0, also for the squared average with all-zero
// weights.
func (cfg Config) fold(dqs []byte, weights []float64, scoreCount int) byte {
	switch cfg.Aggregation {
	case AggregationNone:
		return 0
	case Maximum:
		v := 0
		for _, dq := range dqs {
			if s := int(cfg.substitute(dq, scoreCount)); s > v {
				v = s
			}
		}
		if v > scoreCount {
			v = scoreCount
		}
		return byte(v)
	}

	square := cfg.Aggregation == WeightedSquaredAverage
	total, sum := 0.0, 0.0
	for i, dq := range dqs {
		w := weights[i]
		if square {
			w *= w
		} else {
			w = math.Abs(w)
		}
		total += w
		sum += float64(cfg.substitute(dq, scoreCount)) * w
	}
	if total == 0 {
		return 0
	}
	value := sum / total
	if cfg.Rounding == RoundCeil {
		value = math.Ceil(value)
	} else {
		value = math.Floor(value + 0.5)
	}
	if value < 0 {
		value = 0
	}
	if int(value) > scoreCount {
		return byte(scoreCount)
	}
	return byte(value)
}

func (cfg Config) substitute(v byte, scoreCount int) byte {
	if v == 0 && cfg.NA == NAUseMax {
		return byte(scoreCount)
	}
	return v
}
