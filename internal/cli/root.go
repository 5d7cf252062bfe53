package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LeJamon/goMarketd/internal/config"
	applog "github.com/LeJamon/goMarketd/internal/log"
)

var (
	// Global flags
	configFile string
	debug      bool
	quiet      bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "marketd",
	Short: "marketd - escrow marketplace daemon",
	Long: `marketd keeps an escrow marketplace where sellers list bundles of coins,
tokens and NFTs against an asking bundle and buyers settle them atomically
from pre-funded buckets. It serves a JSON-RPC API, an event stream and an
optional sales history.`,
	Version:           "0.1.0-dev",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default ./marketd.toml when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// initConfig loads the configuration and installs the logger.
func initConfig(cmd *cobra.Command, args []string) error {
	paths, err := configPaths(configFile)
	if err != nil {
		return err
	}
	loaded, err := config.LoadConfig(paths)
	if err != nil {
		return err
	}
	l, err := applog.NewLogger(loaded.Log.File, loaded.Log.Debug || debug)
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	return nil
}

// configPaths resolves --conf. Without the flag the default file is used
// only if it exists, so the daemon also runs on defaults alone.
func configPaths(flag string) (config.ConfigPaths, error) {
	if flag != "" {
		return config.ConfigPathsFromDir(filepath.Dir(flag)).WithMain(flag), nil
	}
	paths := config.DefaultConfigPaths()
	if _, err := os.Stat(paths.Main); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.ConfigPaths{Env: paths.Env}, nil
		}
		return config.ConfigPaths{}, err
	}
	return paths, nil
}
