package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lcafoundry/lcacore/calc"
	"github.com/lcafoundry/lcacore/sankey"
	"github.com/lcafoundry/lcacore/solver"
)

var (
	contribFlow     uint64
	contribLocation uint64
	contribImpact   uint64
	contribCosts    bool
	minShareFlag    float64
	maxNodesFlag    int
)

var contributionsCmd = &cobra.Command{
	Use:   "contributions",
	Short: "Build the upstream contribution graph of one result value",
	Long: `Build the upstream contribution graph of one result value:
which products it flows through and how much of it each one carries.

Examples:
  lcacore contributions --system 10 --flow 400
  lcacore contributions --system 10 --method 20 --impact 21 --min-share 0.01
  lcacore contributions --system 10 --with-costs --costs --max-nodes 50`,
	RunE: runContributions,
}

func init() {
	addSetupFlags(contributionsCmd)
	f := contributionsCmd.Flags()
	f.Uint64Var(&contribFlow, "flow", 0, "select the total of this elementary flow")
	f.Uint64Var(&contribLocation, "location", 0, "location of the flow in a regionalized result")
	f.Uint64Var(&contribImpact, "impact", 0, "select the total of this impact category")
	f.BoolVar(&contribCosts, "costs", false, "select the net-cost total")
	f.Float64Var(&minShareFlag, "min-share", 0, "cut providers below this share of the root total")
	f.IntVar(&maxNodesFlag, "max-nodes", 0, "bound the graph size; 0 means unbounded")
	rootCmd.AddCommand(contributionsCmd)
}

func runContributions(cmd *cobra.Command, args []string) error {
	src, err := loadWorkspace()
	if err != nil {
		return err
	}
	setup, err := setupFromFlags()
	if err != nil {
		return err
	}

	r, err := calc.New(src, solver.NewDense()).Lazy(cmd.Context(), setup)
	if err != nil {
		return err
	}

	var b *sankey.Builder
	switch {
	case contribCosts:
		b = sankey.OfCosts(r)
	case contribImpact != 0:
		impacts := r.ImpactIndex()
		if impacts == nil {
			return fmt.Errorf("no impact method in the result; pass --method")
		}
		k, ok := impacts.Of(contribImpact)
		if !ok {
			return fmt.Errorf("impact category %d not in the result", contribImpact)
		}
		b = sankey.OfImpact(r, k)
	case contribFlow != 0:
		envi := r.EnviIndex()
		if envi == nil {
			return fmt.Errorf("no elementary flows in the result")
		}
		row, ok := envi.Of(contribFlow, contribLocation)
		if !ok {
			return fmt.Errorf("flow %d not in the result", contribFlow)
		}
		b = sankey.OfFlow(r, row)
	default:
		return fmt.Errorf("select a value: --flow, --impact, or --costs")
	}

	g := b.MinShare(minShareFlag).MaxNodes(maxNodesFlag).Build()
	logger().Debug("graph built", "nodes", g.NodeCount())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "PRODUCT\tFLOW\tDIRECT\tTOTAL\tSHARE")
	g.Each(func(n *sankey.Node) bool {
		fmt.Fprintf(w, "%d\t%d\t%g\t%g\t%.4f\n",
			n.Product.ProcessID, n.Product.FlowID, n.Direct, n.Total, n.Share)
		return true
	})
	return nil
}
