// Package cli implements the verify command line tool: a thin driver around
// the trident verification flow for development and sandbox testing.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"trident/internal/platform/config"
	"trident/internal/platform/logger"
)

var (
	envFile string
	verbose bool

	cfg config.Client
)

var rootCmd = &cobra.Command{
	Use:   "verify",
	Short: "Drive a 3-D Secure card verification against a payment gateway",
	Long: `verify tokenizes nothing and renders nothing: it takes an existing payment
method nonce and an amount, runs the 3-D Secure verification flow (lookup,
challenge, JWT authentication), and prints the resulting nonce with its
liability-shift flags.

Configuration comes from the environment (TRIDENT_* variables), optionally
loaded from a .env file.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", envFile, err)
			}
		} else {
			// Best effort: a .env in the working directory is picked up.
			_ = godotenv.Load()
		}
		cfg = config.FromEnv()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file to load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log the flow's internals")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(configCmd)
}

func flowLogger() *slog.Logger {
	if verbose {
		return logger.New()
	}
	return logger.Discard()
}
