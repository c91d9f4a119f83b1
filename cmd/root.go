package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/axellelanca/visitorpulse/internal/config"
	"github.com/spf13/cobra"
)

// Cfg is the global variable that will contain the loaded configuration
// It will be accessible to all Cobra commands throughout the application
var Cfg *config.Config

// RootCmd is the base command for the CLI application
// All other commands (run-server, migrate, stats, query, expire-sessions) are added as subcommands
var RootCmd = &cobra.Command{
	Use:   "visitorpulse",
	Short: "Anonymous visitor and session tracking service",
	Long: `visitorpulse records anonymous visitors through a cookie, tracks their
sessions with periodic heartbeats and serves aggregate statistics.`,
}

// Execute is the main entry point for the Cobra application
// It is called from 'main.go' and handles command execution and error handling
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Configuration is loaded before any command executes
	cobra.OnInitialize(initConfig)

	// Subcommands register themselves via their own init() functions,
	// which keeps this package free of import cycles.
}

// initConfig loads the application configuration into Cfg.
// Commands fail on their own when Cfg is nil.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v", err)
	}
}

// MustConfig returns the loaded configuration or exits when loading failed.
func MustConfig() *config.Config {
	if Cfg == nil {
		log.Fatal("Échec du chargement de la configuration, arrêt.")
	}
	return Cfg
}
