// Package serve implements the serve command.
package serve

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/camp-registration/cmd/root"
	"fjacquet/camp-registration/internal/config"
	"fjacquet/camp-registration/internal/server"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the registration HTTP API",
	Long: `Serve starts the HTTP API used by the registration form: PDF receipt
checks, receipt uploads, registration submission and payment verification.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := root.GetContainer(ctx)
		if err != nil {
			return err
		}
		cfg := c.GetConfig()
		srv := server.New(c.GetService(), c.GetLogger(), cfg.MaxUploadBytes())
		read, write := Timeouts(cfg)
		return srv.Run(ctx, ListenAddr(addr, cfg), read, write)
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr and PORT)")
}

// ListenAddr picks the listen address: the flag, then the PORT environment
// variable used by container platforms, then server.addr.
func ListenAddr(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if port := config.GetEnv("PORT", ""); port != "" {
		return ":" + port
	}
	return cfg.Server.Addr
}

// Timeouts returns the configured server read and write timeouts.
func Timeouts(cfg *config.Config) (time.Duration, time.Duration) {
	return time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
}
