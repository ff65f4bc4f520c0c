package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvsim/app"
	"github.com/kilianp07/pvsim/infra/logger"
)

var simulateFlags struct {
	input   string
	output  string
	formats []string
	tariff  string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one simulation and write the exports",
	RunE:  simulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simulateFlags.input, "input", "i", "", "hourly profile (csv or xlsx), synthetic when empty")
	f.StringVarP(&simulateFlags.output, "output", "o", "", "output directory")
	f.StringSliceVarP(&simulateFlags.formats, "format", "f", nil, "export formats: csv, json, xlsx, pdf, html")
	f.StringVarP(&simulateFlags.tariff, "tariff", "t", "", "tariff variant")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if simulateFlags.input != "" {
		cfg.Input.Path = simulateFlags.input
	}
	if simulateFlags.output != "" {
		cfg.Output.Dir = simulateFlags.output
	}
	if len(simulateFlags.formats) > 0 {
		cfg.Output.Formats = simulateFlags.formats
	}
	if simulateFlags.tariff != "" {
		cfg.Simulation.Tariff = simulateFlags.tariff
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	res, paths, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	s := res.Summary
	fmt.Fprintf(out, "run %s (%s, %d hours)\n", res.RunID, res.Tariff, s.Hours)
	fmt.Fprintf(out, "  cost      %10.2f EUR\n", s.TotalCostEUR)
	fmt.Fprintf(out, "  revenue   %10.2f EUR\n", s.TotalRevenueEUR)
	fmt.Fprintf(out, "  net       %10.2f EUR\n", s.NetBalanceEUR)
	fmt.Fprintf(out, "  autarky   %10.1f %%\n", s.SelfSufficiencyPct)
	fmt.Fprintf(out, "  final soc %10.3f kWh\n", res.FinalSoCKWh)
	if n := res.AnomalyHours(); n > 0 {
		fmt.Fprintf(out, "  %d hours needed defensive handling\n", n)
	}
	for _, p := range paths {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	return nil
}
