// Package data: the source contract.
package data

import (
	"errors"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/dq"
	"github.com/lcafoundry/lcacore/formula"
)

// ErrNotFound is returned when a requested entity does not exist in the
// source.
var ErrNotFound = errors.New("data: entity not found")

// Source is the read-only adapter the calculation pipeline loads from.
// Implementations must be safe for concurrent readers once warm; the
// pipeline never writes through this interface.
type Source interface {
	// Exchanges returns the calculation exchanges of each requested
	// process. Unknown ids are omitted from the result.
	Exchanges(processIDs map[uint64]struct{}) (map[uint64][]core.CalcExchange, error)

	// Providers returns the process products that deliver the given flow:
	// processes producing it as a product output or treating it as a
	// waste input. Order is stable across calls.
	Providers(flowID uint64) ([]core.ProcessProduct, error)

	// ProcessType classifies a process id; product systems registered as
	// providers report core.SubSystem.
	ProcessType(processID uint64) (core.ProcessType, error)

	// ProductSystem loads a persisted product system. ErrNotFound if
	// unknown.
	ProductSystem(id uint64) (*core.ProductSystem, error)

	// ImpactMethod loads a characterization method. ErrNotFound if
	// unknown.
	ImpactMethod(id uint64) (*core.ImpactMethod, error)

	// DQSystem loads a data-quality system. ErrNotFound if unknown.
	DQSystem(id uint64) (*dq.System, error)

	// Parameters returns the global parameters plus the parameters of the
	// requested contexts, ready for a formula table.
	Parameters(contexts map[uint64]struct{}) ([]formula.Param, error)

	// AllocationFactors returns the allocation factors of each requested
	// process.
	AllocationFactors(processIDs map[uint64]struct{}) (map[uint64][]core.AllocationFactor, error)

	// ProcessDQEntry returns the process-level data-quality entry string
	// of a process, or "" if none is recorded.
	ProcessDQEntry(processID uint64) (string, error)
}
