package main

import (
	"fmt"
	"os"

	"github.com/mazen160/go-random"
	"github.com/mbalug7/go-sensor-node/pkg/config"
	"github.com/mbalug7/go-sensor-node/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const sessionIDLength = 16

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sensor-node",
	Short: "Wireless IIoT sensor node",
	Long: `sensor-node samples the configured sensors on the cadence of the active
execution table and downloads the results to the remote console over the
CC112x radio link.

The node boots with the default execution table and keeps requesting a new
one until the console uploads it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, verbose)
		if err != nil {
			return err
		}
		session, err := random.String(sessionIDLength)
		if err != nil {
			return fmt.Errorf("failed to generate session id: %w", err)
		}
		logger = logger.With(zap.String("session", session))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().BoolVar(&simulate, "sim", false, "run against the simulated hardware and console")
	runCmd.Flags().StringVar(&uploadPath, "upload", "", "execution table the simulated console uploads (YAML)")

	rootCmd.AddCommand(runCmd, decodeCmd, tableCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
