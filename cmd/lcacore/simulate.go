package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lcafoundry/lcacore/calc"
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/sim"
	"github.com/lcafoundry/lcacore/solver"
)

var (
	iterationsFlag int
	seedFlag       int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte-Carlo simulation",
	Long: `Run a Monte-Carlo simulation of one product system: exchange
amounts and parameter values are resampled from their uncertainty
distributions every iteration.

Examples:
  lcacore simulate --system 10 --iterations 1000
  lcacore simulate --system 10 --iterations 1000 --seed 42 --method 20`,
	RunE: runSimulate,
}

func init() {
	addSetupFlags(simulateCmd)
	f := simulateCmd.Flags()
	f.IntVar(&iterationsFlag, "iterations", 100, "number of iterations")
	f.Int64Var(&seedFlag, "seed", 0, "rng seed; 0 derives one from the clock")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	src, err := loadWorkspace()
	if err != nil {
		return err
	}
	setup, err := setupFromFlags()
	if err != nil {
		return err
	}
	setup.Seed = seedFlag

	log := logger()
	log.Info("starting simulation",
		"system", setup.SystemID, "iterations", iterationsFlag, "seed", seedFlag)
	s, err := sim.New(cmd.Context(), calc.New(src, solver.NewDense()), setup)
	if err != nil {
		return err
	}
	res, err := s.Run(cmd.Context(), iterationsFlag)
	if err != nil {
		return err
	}
	if res.FailedIterations() > 0 {
		log.Warn("iterations discarded", "failed", res.FailedIterations())
	}
	log.Info("simulation done", "iterations", res.Iterations())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	defer w.Flush()

	if envi := res.EnviIndex(); envi != nil {
		fmt.Fprintln(w, "FLOW\tMEAN\tP5\tMEDIAN\tP95")
		envi.Each(func(i int, ref core.FlowRef) bool {
			fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\n",
				flowLabel(ref),
				res.MeanFlow(i),
				res.FlowPercentile(i, 0.05),
				res.FlowPercentile(i, 0.5),
				res.FlowPercentile(i, 0.95))
			return true
		})
	}

	if impacts := res.ImpactIndex(); impacts != nil {
		fmt.Fprintln(w, "\nIMPACT\tMEAN\tP5\tMEDIAN\tP95")
		impacts.Each(func(k int, c core.ImpactCategory) bool {
			fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\n",
				categoryLabel(c),
				res.MeanImpact(k),
				res.ImpactPercentile(k, 0.05),
				res.ImpactPercentile(k, 0.5),
				res.ImpactPercentile(k, 0.95))
			return true
		})
	}

	if res.HasCosts() {
		fmt.Fprintf(w, "\nNET COSTS\t%g\n", res.MeanCosts())
	}
	return nil
}
