package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/edp1096/evalspice/internal/config"
	"github.com/edp1096/evalspice/pkg/simerr"
	"github.com/edp1096/evalspice/pkg/spice"
	"github.com/edp1096/evalspice/pkg/util"
)

var (
	rootCmd = &cobra.Command{
		Use:           "evalspice [netlist]",
		Short:         "DC operating point of a linear resistive netlist",
		Long:          "Reads a .circuit/.end netlist of R, V and I elements from a file, or stdin when the path is '-' or omitted, and prints node voltages and voltage-source currents.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	configPath string
	solver     string
	format     string
	dump       bool
	sweep      string
	verbosity  int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "evalspice.yaml", "Path to the YAML config file")
	rootCmd.Flags().StringVar(&solver, "solver", "", "Linear solver backend: dense or sparse")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text or json")
	rootCmd.Flags().BoolVar(&dump, "dump", false, "Print the assembled equations before solving")
	rootCmd.Flags().StringVar(&sweep, "sweep", "", "DC sweep of one source, SRC:START:STOP:STEP")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	stdr.SetVerbosity(cfg.Log.Verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	backend, err := cfg.Backend()
	if err != nil {
		return err
	}

	text, err := readNetlist(args)
	if err != nil {
		return err
	}

	opts := []spice.Option{spice.WithBackend(backend), spice.WithLogger(logger)}
	out := cmd.OutOrStdout()

	if sweep != "" {
		src, start, stop, step, err := parseSweep(sweep)
		if err != nil {
			return err
		}
		points, err := spice.Sweep(text, src, start, stop, step, opts...)
		if err != nil {
			return err
		}
		return printSweep(out, cfg.Output.Format, src, points)
	}

	if cfg.Output.DumpSystem {
		opts = append(opts, spice.WithSystemDump(cmd.ErrOrStderr()))
	}
	solution, err := spice.Evaluate(text, opts...)
	if err != nil {
		return err
	}
	return printSolution(out, cfg.Output.Format, solution)
}

// loadConfig applies flags over the config file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("solver") {
		cfg.Solver = solver
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = format
	}
	if cmd.Flags().Changed("dump") {
		cfg.Output.DumpSystem = dump
	}
	if verbosity > cfg.Log.Verbosity {
		cfg.Log.Verbosity = verbosity
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)

	return cfg, cfg.Validate()
}

func readNetlist(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", simerr.Wrap(simerr.ErrInputUnavailable, fmt.Errorf("reading stdin: %w", err))
		}
		return string(content), nil
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", simerr.Wrap(simerr.ErrInputUnavailable, err)
	}
	return string(content), nil
}

func parseSweep(arg string) (string, float64, float64, float64, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 4 || parts[0] == "" {
		return "", 0, 0, 0, fmt.Errorf("invalid sweep %q, want SRC:START:STOP:STEP", arg)
	}

	var vals [3]float64
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return "", 0, 0, 0, fmt.Errorf("invalid sweep value %q: %w", p, err)
		}
		vals[i] = v
	}
	return parts[0], vals[0], vals[1], vals[2], nil
}

func printSolution(w io.Writer, format string, solution *spice.Solution) error {
	if format == config.FormatJSON {
		return writeJSON(w, solution)
	}

	fmt.Fprintln(w, "Node Voltages:")
	for _, v := range solution.Voltages {
		fmt.Fprintf(w, "V(%s) = %s\n", v.Name, util.FormatValueFactor(v.Value, "V"))
	}
	fmt.Fprintln(w, "\nBranch Currents:")
	for _, i := range solution.Currents {
		fmt.Fprintf(w, "I(%s) = %s", i.Name, util.FormatValueFactor(i.Value, "A"))
		if i.Short != "" {
			fmt.Fprintf(w, " (short %s)", i.Short)
		}
		fmt.Fprintln(w)
	}
	return nil
}

type sweepPoint struct {
	Value float64 `json:"value"`
	*spice.Solution
}

func printSweep(w io.Writer, format, source string, points []spice.SweepPoint) error {
	if format == config.FormatJSON {
		out := make([]sweepPoint, len(points))
		for i, p := range points {
			out[i] = sweepPoint{Value: p.Value, Solution: p.Solution}
		}
		return writeJSON(w, out)
	}

	unit := "V"
	if strings.HasPrefix(strings.ToUpper(source), "I") {
		unit = "A"
	}

	fmt.Fprintf(w, "DC Sweep Analysis Results (%d points):\n", len(points))
	fmt.Fprintln(w, "Sweep Values    Node Voltages        Branch Currents")
	fmt.Fprintln(w, "------------------------------------------------")
	for _, p := range points {
		fmt.Fprintf(w, "%s=%-11s  ", source, util.FormatValueFactor(p.Value, unit))
		for _, v := range p.Solution.Voltages[1:] {
			fmt.Fprintf(w, "V(%s)=%s  ", v.Name, util.FormatValueFactor(v.Value, "V"))
		}
		for _, i := range p.Solution.Currents {
			fmt.Fprintf(w, "I(%s)=%s  ", i.Name, util.FormatValueFactor(i.Value, "A"))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
