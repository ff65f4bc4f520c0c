package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvsim/core/sim"
	"github.com/kilianp07/pvsim/infra/logger"
	"github.com/kilianp07/pvsim/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario <file|dir>...",
	Short: "Run scenario files and check their expected figures",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarios,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var all []*scenarios.Scenario
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return err
		}
		if st.IsDir() {
			scs, err := scenarios.LoadDir(arg)
			if err != nil {
				return err
			}
			all = append(all, scs...)
			continue
		}
		sc, err := scenarios.Load(arg)
		if err != nil {
			return err
		}
		all = append(all, sc)
	}

	engine := sim.NewEngine(logger.New("scenario"))
	out := cmd.OutOrStdout()
	failed := 0
	for _, sc := range all {
		o := scenarios.Run(engine, cfg.Simulation, sc)
		if o.Passed() {
			fmt.Fprintf(out, "PASS %s\n", o.Name)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL %s\n", o.Name)
		for _, f := range o.Failures {
			fmt.Fprintf(out, "     %s\n", f)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(all))
	}
	return nil
}
