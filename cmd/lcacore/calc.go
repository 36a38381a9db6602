package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lcafoundry/lcacore/calc"
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/solver"
)

var (
	systemFlag       uint64
	demandFlag       float64
	methodFlag       uint64
	allocationFlag   string
	linkingFlag      string
	withCostsFlag    bool
	regionalizedFlag bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run a contribution calculation",
	Long: `Run a contribution calculation of one product system.

Examples:
  lcacore calc --system 10
  lcacore calc --system 10 --method 20 --with-costs
  lcacore calc --system 10 --demand 2.5 --allocation physical`,
	RunE: runCalc,
}

func init() {
	addSetupFlags(calcCmd)
	rootCmd.AddCommand(calcCmd)
}

// addSetupFlags installs the calculation setup flags shared by calc
// and simulate.
func addSetupFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Uint64Var(&systemFlag, "system", 0, "product system id (required)")
	f.Float64Var(&demandFlag, "demand", 0, "final demand override")
	f.Uint64Var(&methodFlag, "method", 0, "impact method id")
	f.StringVar(&allocationFlag, "allocation", "none", "allocation: none, physical, economic, causal")
	f.StringVar(&linkingFlag, "linking", "prefer-defaults", "linking: prefer-defaults, ignore-defaults, only-defaults")
	f.BoolVar(&withCostsFlag, "with-costs", false, "calculate net costs")
	f.BoolVar(&regionalizedFlag, "regionalized", false, "key flow rows by (flow, location)")
	cobra.CheckErr(cmd.MarkFlagRequired("system"))
}

func setupFromFlags() (calc.Setup, error) {
	allocation, err := parseAllocation(allocationFlag)
	if err != nil {
		return calc.Setup{}, err
	}
	linking, err := parseLinking(linkingFlag)
	if err != nil {
		return calc.Setup{}, err
	}
	return calc.Setup{
		SystemID:       systemFlag,
		Demand:         demandFlag,
		Allocation:     allocation,
		ImpactMethodID: methodFlag,
		WithCosts:      withCostsFlag,
		Regionalized:   regionalizedFlag,
		Linking:        linking,
	}, nil
}

func runCalc(cmd *cobra.Command, args []string) error {
	src, err := loadWorkspace()
	if err != nil {
		return err
	}
	setup, err := setupFromFlags()
	if err != nil {
		return err
	}

	log := logger()
	log.Info("running calculation", "system", setup.SystemID, "method", setup.ImpactMethodID)
	r, err := calc.New(src, solver.NewDense()).Eager(cmd.Context(), setup)
	if err != nil {
		return err
	}
	log.Debug("calculation done", "products", r.TechIndex().Size())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PRODUCT\tFLOW\tSCALING")
	r.TechIndex().Each(func(j int, p core.ProcessProduct) bool {
		fmt.Fprintf(w, "%d\t%d\t%g\n", p.ProcessID, p.FlowID, r.ScalingOf(j))
		return true
	})

	if envi := r.EnviIndex(); envi != nil {
		fmt.Fprintln(w, "\nFLOW\tDIRECTION\tTOTAL")
		g := r.TotalFlows()
		envi.Each(func(i int, ref core.FlowRef) bool {
			fmt.Fprintf(w, "%s\t%s\t%g\n", flowLabel(ref), direction(ref), g[i])
			return true
		})
	}

	if impacts := r.ImpactIndex(); impacts != nil {
		fmt.Fprintln(w, "\nIMPACT\tUNIT\tTOTAL")
		h := r.TotalImpacts()
		impacts.Each(func(k int, c core.ImpactCategory) bool {
			fmt.Fprintf(w, "%s\t%s\t%g\n", categoryLabel(c), c.RefUnit, h[k])
			return true
		})
	}

	if r.HasCosts() {
		fmt.Fprintf(w, "\nNET COSTS\t\t%g\n", r.TotalCosts())
	}
	return nil
}

func flowLabel(ref core.FlowRef) string {
	if ref.LocationID != core.NoLocation {
		return fmt.Sprintf("%d@%d", ref.FlowID, ref.LocationID)
	}
	return fmt.Sprintf("%d", ref.FlowID)
}

func direction(ref core.FlowRef) string {
	if ref.IsInput {
		return "input"
	}
	return "output"
}

func categoryLabel(c core.ImpactCategory) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%d", c.ID)
}
