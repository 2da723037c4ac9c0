package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/cinemax-auth/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo customer and staff accounts into empty tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if cfg.Postgres.DSN == "" {
			return errors.New("seed needs POSTGRES_DSN; the in-memory stores do not outlive the command")
		}

		st, err := openStores(cmd.Context(), cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		created, err := service.NewSeedService(st.customers, st.staff, cfg.Auth.BcryptCost, logger).Seed(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("seed finished", zap.Int("created", created))
		fmt.Fprintf(cmd.OutOrStdout(), "created %d demo accounts\n", created)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
