package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/cinemax-auth/internal/config"
	"github.com/spec-kit/cinemax-auth/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "cinemax-auth",
	Short: "CineMax authentication backend",
	Long: `CineMax authentication backend. Usage:

	cinemax-auth server
	cinemax-auth migrate up
	cinemax-auth seed
`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and the shared logger for every subcommand.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
