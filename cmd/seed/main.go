package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paper-api/internal/core/config"
	"paper-api/internal/core/database"
	"paper-api/internal/core/logger"
	"paper-api/internal/seed"
	"paper-api/pkg/utils"
)

var (
	configPath string
	reset      bool
	randSeed   int64

	rootCmd = &cobra.Command{
		Use:          "seed",
		Short:        "Migrate the schema and insert demo users, books, reviews and likes",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(configPath)
			if err != nil {
				return err
			}
			log, cleanup := logger.FromConfig(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
			defer cleanup()

			db, err := database.NewGorm(database.Opts{
				Driver:             cfg.DB.Driver,
				DSN:                cfg.DB.DSN,
				Username:           cfg.DB.Username,
				Password:           cfg.DB.Password,
				MaxOpenConns:       cfg.DB.MaxOpenConns,
				MaxIdleConns:       cfg.DB.MaxIdleConns,
				ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
				LogLevel:           cfg.DB.LogLevel,
				Logger:             log,
			})
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			res, err := seed.Run(ctx, db, seed.Options{Reset: reset, RandSeed: randSeed, Log: log})
			if err != nil {
				log.Error("seed failed", zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d books=%d reviews=%d likes=%d\n", res.Users, res.Books, res.Reviews, res.Likes)
			return nil
		},
	}

	hashCmd = &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for admin.password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := utils.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
)

func init() {
	def := os.Getenv("CONFIG_PATH")
	if def == "" {
		def = "./configs/config.local.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", def, "config file (yaml)")
	rootCmd.Flags().BoolVar(&reset, "reset", false, "truncate users/books/reviews/likes before inserting")
	rootCmd.Flags().Int64Var(&randSeed, "rand-seed", time.Now().UnixNano(), "seed for the random like/dislike values")
	rootCmd.AddCommand(hashCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
