package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aman-zulfiqar/raydium-swap/internal/config"
	"github.com/aman-zulfiqar/raydium-swap/internal/swapengine"
	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	rpcURL   string
	logLevel string
	jsonOut  bool

	logger = logrus.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "raydiumswap",
	Short: "Quote and build Raydium AMM v4 swaps",
	Long: `raydiumswap quotes swaps against Raydium AMM v4 pools and builds the
instructions or an unsigned transaction for them. It never submits anything.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "", "Solana RPC endpoint (overrides SOLANA_RPC_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of text")
}

// loadEngine reads configuration the same way the API server does, with
// command line overrides on top.
func loadEngine(ctx context.Context) (*swapengine.Engine, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	logger.SetLevel(lvl)

	cfg := config.Load()
	if rpcURL != "" {
		cfg.RPCUrl = rpcURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	engine, err := swapengine.NewEngine(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := engine.ApplyStoredSettings(ctx); err != nil {
		logger.WithError(err).Warn("failed to load stored swap settings")
	}
	return engine, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
