package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
)

var rootCmd = &cobra.Command{
	Use:   "lcacore",
	Short: "lcacore - life cycle assessment calculations",
	Long: `lcacore runs life cycle assessment calculations over a YAML
workspace: contribution calculations with optional impact
characterization and costs, and Monte-Carlo simulations with nested
product systems.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("workspace", "workspace.yaml", "path to the YAML workspace")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")

	viper.SetEnvPrefix("LCACORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"workspace", "log-level", "log-format"} {
		if err := viper.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

var loggerOnce = sync.OnceValue(func() *slog.Logger {
	var level slog.Level
	switch viper.GetString("log-level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if viper.GetString("log-format") == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
})

func logger() *slog.Logger { return loggerOnce() }

// loadWorkspace reads the configured workspace file into a source.
func loadWorkspace() (*data.MemSource, error) {
	path := viper.GetString("workspace")
	logger().Debug("loading workspace", "path", path)
	src, err := data.LoadWorkspace(path)
	if err != nil {
		return nil, fmt.Errorf("load workspace %s: %w", path, err)
	}
	return src, nil
}

func parseAllocation(s string) (core.AllocationMethod, error) {
	switch s {
	case "", "none":
		return core.AllocationNone, nil
	case "physical":
		return core.AllocationPhysical, nil
	case "economic":
		return core.AllocationEconomic, nil
	case "causal":
		return core.AllocationCausal, nil
	}
	return 0, fmt.Errorf("unknown allocation method %q", s)
}

func parseLinking(s string) (core.LinkingConfig, error) {
	cfg := core.DefaultLinkingConfig()
	switch s {
	case "", "prefer-defaults":
		cfg.Linking = core.LinkingPreferDefaults
	case "ignore-defaults":
		cfg.Linking = core.LinkingIgnoreDefaults
	case "only-defaults":
		cfg.Linking = core.LinkingOnlyDefaults
	default:
		return cfg, fmt.Errorf("unknown linking policy %q", s)
	}
	return cfg, nil
}
