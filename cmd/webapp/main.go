package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/burbanox/keycloak-harold-burbano/pkg/prettylog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose = false

var rootCmd = &cobra.Command{
	Use:   "webapp",
	Short: "Keycloak-backed web app with role-gated pages",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		godotenv.Load()

		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		if os.Getenv("PRETTY_LOGS") != "false" {
			logger := slog.New(prettylog.NewHandler(logLevel))
			slog.SetDefault(logger)
		} else {
			slog.SetLogLoggerLevel(logLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
