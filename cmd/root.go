package cmd

import (
	"fmt"
	"os"

	"github.com/chrisdamba/trafficsim/internal/logger"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *models.Config
	log     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trafficsim",
	Short: "Simulates periodic traffic telemetry for a smart city backend",
	Long: `trafficsim generates traffic samples (congestion, average speed, vehicle count)
for a fixed set of monitored locations on a recurring schedule, stores them, and
serves the latest readings and per-location history over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		log, err = logger.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("error creating logger: %w", err)
		}
		if used := viper.ConfigFileUsed(); used != "" {
			log.Info("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./trafficsim.yaml)")

	flags.Int64("seed", 0, "Random seed for the sample generator (0 uses the clock)")
	flags.StringSlice("locations", models.DefaultLocations, "Monitored locations")
	flags.Float64("base-latitude", models.DefaultCityLat, "Latitude samples are jittered around")
	flags.Float64("base-longitude", models.DefaultCityLon, "Longitude samples are jittered around")
	flags.String("store-driver", models.StoreDriverSQLite, "Sample store: memory, sqlite or postgres")
	flags.String("sqlite-path", "data/traffic.db", "SQLite database file")
	flags.String("database-url", "", "Postgres connection string")
	flags.String("log-level", "info", "Log level")
	flags.String("log-format", "console", "Log format: console or json")

	bindFlags(flags, map[string]string{
		"seed":               "seed",
		"locations":          "locations",
		"base_latitude":      "base-latitude",
		"base_longitude":     "base-longitude",
		"store.driver":       "store-driver",
		"store.sqlite_path":  "sqlite-path",
		"store.database_url": "database-url",
		"log.level":          "log-level",
		"log.format":         "log-format",
	})
}

// bindFlags maps config keys to the flags that override them.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(name)))
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
