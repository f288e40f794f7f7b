package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jdharms/jumpking-autosplitter/internal/config"
	"github.com/jdharms/jumpking-autosplitter/internal/store"
	"github.com/jdharms/jumpking-autosplitter/internal/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "jumpking-autosplitter [config-name]",
		Short: "Jump King autosplitter for LiveSplit One",
		Long: `Jump King AutoSplitter receives game notifications from the Jump King
autosplitter mod and drives LiveSplit One: it splits, skips and undoes segments
according to a configurable split list.

Split configurations are XML documents kept in a directory or in Redis.

Examples:
  jumpking-autosplitter                         # Interactive mode - select a configuration
  jumpking-autosplitter "any%"                  # Load a configuration by name
  jumpking-autosplitter --store redis --redis-addr localhost:6379
  JKSPLIT_ADAPTER_URL=ws://192.168.1.20:35000/autosplitter jumpking-autosplitter`,
		Args: cobra.MaximumNArgs(1),
		Run:  runAutosplitter,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	// Set up command line flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Settings file (yaml, json or toml)")
	flags.String("store", config.StoreFile, "Configuration store (file or redis)")
	flags.String("config-dir", "./configs/splits", "Directory containing split configuration files")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis store")
	flags.String("redis-prefix", "jumpking:splits:", "Key prefix for the redis store")
	flags.String("log-dir", "./logs", "Directory for log files (empty logs to stderr)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("adapter-url", "ws://localhost:35000/autosplitter", "WebSocket URL of the game mod")
	flags.String("livesplit-host", "localhost", "LiveSplit One WebSocket server host")
	flags.Int("livesplit-port", 1990, "LiveSplit One WebSocket server port")
	flags.String("health-addr", "localhost:50051", "gRPC health server address (empty disables)")
	flags.Int("segments", 0, "Segment count of the LiveSplit run (0 uses the split count)")

	// Bind flags to viper
	for _, key := range []string{
		"store", "config-dir", "redis-addr", "redis-prefix", "log-dir", "log-level",
		"adapter-url", "livesplit-host", "livesplit-port", "health-addr", "segments",
	} {
		viper.BindPFlag(key, flags.Lookup(key))
	}
}

func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}

	viper.SetEnvPrefix("JKSPLIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func runAutosplitter(cmd *cobra.Command, args []string) {
	// Determine configuration name from args or interactive selection
	if len(args) > 0 {
		viper.Set("config-name", args[0])
	}

	appConfig, err := config.LoadAppConfig(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger first
	logger, err := ui.InitializeLogger(appConfig.LogDir, appConfig.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Jump King AutoSplitter starting up")
	logger.WithFields(logrus.Fields{
		"config-name":    appConfig.ConfigName,
		"store":          appConfig.Store,
		"config-dir":     appConfig.ConfigDir,
		"redis-addr":     appConfig.RedisAddr,
		"log-dir":        appConfig.LogDir,
		"log-level":      appConfig.LogLevel,
		"adapter-url":    appConfig.AdapterURL,
		"livesplit-host": appConfig.LiveSplitHost,
		"livesplit-port": appConfig.LiveSplitPort,
		"health-addr":    appConfig.HealthAddr,
		"segments":       appConfig.Segments,
		"config-file":    viper.ConfigFileUsed(),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	documents, closeStore, err := openStore(ctx, logger, appConfig)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open configuration store")
	}
	defer closeStore()

	// Create and start the CLI interface
	cliInterface := ui.NewCLI(logger, appConfig, config.NewConfigLoader(logger, documents))

	if err := cliInterface.Start(ctx, appConfig.ConfigName); err != nil {
		logger.WithError(err).Error("Failed to start autosplitter")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeStore()
		os.Exit(1)
	}
}

// openStore creates the configured document store
func openStore(ctx context.Context, logger *logrus.Logger, appConfig *config.AppConfig) (store.Store, func(), error) {
	switch appConfig.Store {
	case config.StoreRedis:
		rs := store.NewRedisStore(logger, appConfig.RedisAddr, appConfig.RedisPrefix)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	default:
		return store.NewFileStore(logger, appConfig.ConfigDir), func() {}, nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
