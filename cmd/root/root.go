// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"fjacquet/camp-registration/internal/config"
	"fjacquet/camp-registration/internal/container"
	"fjacquet/camp-registration/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
	Format string
	Config string
}

var (
	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}

	// Log is the shared logger for commands. It is replaced once the
	// configuration is loaded.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	cfg *config.Config

	initOnce      sync.Once
	containerOnce sync.Once
	appContainer  *container.Container
	containerErr  error

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "camp-registration",
		Short: "Summer camp registration and payment receipt tooling.",
		Long: `camp-registration reads bank transfer receipts (Telebirr, CBE), extracts
their transaction details, verifies payments with the verification API and
manages camp registrations. It can also serve the registration HTTP API.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to camp-registration!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			loaded, err := config.Load(SharedFlags.Config)
			if err != nil {
				return err
			}
			cfg = loaded
			Log = logging.NewLogrusAdapterWithWriter(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file (stdin when empty or -)")
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (stdout when empty or -)")
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "json", "Output format")
		Cmd.PersistentFlags().StringVar(&SharedFlags.Config, "config", "", "Config file (default searches config.yaml)")
	})
}

// GetConfig returns the configuration loaded by the root command.
func GetConfig() *config.Config {
	return cfg
}

// SetConfig replaces the loaded configuration and logger.
func SetConfig(c *config.Config, log logging.Logger) {
	cfg = c
	if log != nil {
		Log = log
	}
}

// GetLogger returns the configured logger.
func GetLogger() logging.Logger {
	return Log
}

// GetContainer builds the application container on first use. Commands that
// only read receipts never open the store.
func GetContainer(ctx context.Context) (*container.Container, error) {
	containerOnce.Do(func() {
		if cfg == nil {
			containerErr = fmt.Errorf("configuration not loaded")
			return
		}
		appContainer, containerErr = container.NewContainerWithLogger(ctx, cfg, Log)
	})
	return appContainer, containerErr
}
