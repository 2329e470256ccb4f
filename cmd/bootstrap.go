package cmd

import (
	"fmt"

	"github.com/chrisdamba/trafficsim/internal/simulator"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var bootstrapCycles int

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Backfill the store with past traffic samples and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cycles := cfg.BootstrapCycles
		if cmd.Flags().Changed("cycles") {
			cycles = bootstrapCycles
		}
		if cycles < 0 {
			return fmt.Errorf("cycles must not be negative, got %d", cycles)
		}

		st, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.close()

		bar := progressbar.Default(int64(cycles*len(cfg.Locations)), "bootstrapping")
		sim := newSimulator(cfg, st.traffic, simulator.WithProgress(bar))
		err = sim.Bootstrap(cmd.Context(), cycles)
		_ = bar.Finish()
		if err != nil {
			return fmt.Errorf("bootstrap stored %d samples, %d failed: %w",
				sim.Stats().SamplesAppended, len(multierr.Errors(err)), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %d samples\n", sim.Stats().SamplesAppended)
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().IntVar(&bootstrapCycles, "cycles", 50, "Rounds of history to generate, one sample per location each")
	rootCmd.AddCommand(bootstrapCmd)
}
